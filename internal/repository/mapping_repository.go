package repository

import (
	"database/sql"
	"fmt"

	"github.com/asheworth/portfolio-analyzer/internal/model"
)

// MappingRepository provides read access to the fund-to-ticker mapping.
// Several fund-name spellings may map to the same ticker.
type MappingRepository struct {
	db *sql.DB
}

// NewMappingRepository creates a new MappingRepository with the provided database connection.
func NewMappingRepository(db *sql.DB) *MappingRepository {
	return &MappingRepository{db: db}
}

// FundIdentifiers returns every distinct (fund, platform, wrapper)
// combination that traded, with whatever identifiers are known for it.
// The SEDOL recorded on the transaction itself wins over the mapped one.
func (r *MappingRepository) FundIdentifiers() ([]model.FundIdentifiers, error) {
	query := `
		SELECT DISTINCT
			t.fund_name,
			t.platform,
			t.tax_wrapper,
			COALESCE(t.sedol, ''),
			COALESCE(ftm.ticker, ''),
			COALESCE(ftm.sedol, ''),
			COALESCE(ftm.isin, '')
		FROM transactions t
		LEFT JOIN fund_ticker_mapping ftm ON t.fund_name = ftm.fund_name
		WHERE t.excluded = 0
		  AND t.transaction_type IN ('BUY', 'SELL')
		ORDER BY t.fund_name
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query fund identifiers: %w", err)
	}
	defer rows.Close()

	var funds []model.FundIdentifiers
	for rows.Next() {
		var f model.FundIdentifiers
		var txSedol, mapSedol string

		err := rows.Scan(
			&f.FundName,
			&f.Platform,
			&f.TaxWrapper,
			&txSedol,
			&f.Ticker,
			&mapSedol,
			&f.Isin,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fund identifier row: %w", err)
		}

		f.Sedol = txSedol
		if f.Sedol == "" {
			f.Sedol = mapSedol
		}

		funds = append(funds, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fund identifier rows: %w", err)
	}

	return funds, nil
}
