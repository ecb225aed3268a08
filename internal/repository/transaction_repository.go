package repository

import (
	"database/sql"
	"fmt"

	"github.com/asheworth/portfolio-analyzer/internal/apperrors"
	"github.com/asheworth/portfolio-analyzer/internal/model"
)

// TransactionRepository provides read access to the transaction ledger.
// All queries exclude soft-deleted rows and non-trading transaction types.
type TransactionRepository struct {
	db *sql.DB
}

// NewTransactionRepository creates a new TransactionRepository with the provided database connection.
func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// AnalysisTransactions retrieves every BUY/SELL transaction joined with its
// ticker mapping, ordered by date with ledger order breaking ties. This is
// the immutable snapshot every analyzer reads.
func (r *TransactionRepository) AnalysisTransactions() ([]model.Transaction, error) {
	query := `
		SELECT
			t.id,
			t.platform,
			t.tax_wrapper,
			t.date,
			t.fund_name,
			t.transaction_type,
			t.units,
			t.price_per_unit,
			t.value,
			COALESCE(ftm.ticker, ''),
			COALESCE(t.sedol, '')
		FROM transactions t
		LEFT JOIN fund_ticker_mapping ftm ON t.fund_name = ftm.fund_name
		WHERE t.excluded = 0
		  AND t.transaction_type IN ('BUY', 'SELL')
		ORDER BY t.date, t.id
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrLedgerUnavailable, err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// TransactionsForHolding retrieves the BUY/SELL history for a single current
// holding. It matches by ticker mapping first; when no rows match it falls
// back to a fund-name substring match (platforms abbreviate fund names
// differently, so the first 20 characters are usually the stable part).
func (r *TransactionRepository) TransactionsForHolding(ticker, fundName, platform, taxWrapper string) ([]model.Transaction, error) {
	query := `
		SELECT
			t.id,
			t.platform,
			t.tax_wrapper,
			t.date,
			t.fund_name,
			t.transaction_type,
			t.units,
			t.price_per_unit,
			t.value,
			COALESCE(ftm.ticker, ''),
			COALESCE(t.sedol, '')
		FROM transactions t
		JOIN fund_ticker_mapping ftm ON t.fund_name = ftm.fund_name
		WHERE ftm.ticker = ?
		  AND t.platform = ?
		  AND t.tax_wrapper = ?
		  AND t.excluded = 0
		  AND t.transaction_type IN ('BUY', 'SELL')
		ORDER BY t.date, t.id
	`

	rows, err := r.db.Query(query, ticker, platform, taxWrapper)
	if err != nil {
		return nil, fmt.Errorf("failed to query holding transactions: %w", err)
	}
	defer rows.Close()

	transactions, err := scanTransactions(rows)
	if err != nil {
		return nil, err
	}
	if len(transactions) > 0 {
		return transactions, nil
	}

	// Fall back to fund-name pattern matching
	pattern := fundName
	if len(pattern) > 20 {
		pattern = pattern[:20]
	}

	fallbackQuery := `
		SELECT
			t.id,
			t.platform,
			t.tax_wrapper,
			t.date,
			t.fund_name,
			t.transaction_type,
			t.units,
			t.price_per_unit,
			t.value,
			COALESCE(ftm.ticker, ''),
			COALESCE(t.sedol, '')
		FROM transactions t
		LEFT JOIN fund_ticker_mapping ftm ON t.fund_name = ftm.fund_name
		WHERE t.fund_name LIKE ?
		  AND t.platform = ?
		  AND t.tax_wrapper = ?
		  AND t.excluded = 0
		  AND t.transaction_type IN ('BUY', 'SELL')
		ORDER BY t.date, t.id
	`

	rows, err = r.db.Query(fallbackQuery, "%"+pattern+"%", platform, taxWrapper)
	if err != nil {
		return nil, fmt.Errorf("failed to query holding transactions by name: %w", err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// Stats returns the counts and date range of the analysed ledger.
func (r *TransactionRepository) Stats() (model.LedgerStats, error) {
	query := `
		SELECT
			COUNT(*),
			SUM(CASE WHEN transaction_type = 'BUY' THEN 1 ELSE 0 END),
			SUM(CASE WHEN transaction_type = 'SELL' THEN 1 ELSE 0 END),
			MIN(date),
			MAX(date)
		FROM transactions
		WHERE excluded = 0
		  AND transaction_type IN ('BUY', 'SELL')
	`

	var stats model.LedgerStats
	var buys, sells sql.NullInt64
	var firstDate, lastDate sql.NullString

	err := r.db.QueryRow(query).Scan(&stats.TotalTransactions, &buys, &sells, &firstDate, &lastDate)
	if err != nil {
		return model.LedgerStats{}, fmt.Errorf("%w: %v", apperrors.ErrLedgerUnavailable, err)
	}

	stats.BuyCount = int(buys.Int64)
	stats.SellCount = int(sells.Int64)

	if firstDate.Valid {
		if stats.FirstDate, err = ParseTime(firstDate.String); err != nil {
			return model.LedgerStats{}, err
		}
	}
	if lastDate.Valid {
		if stats.LastDate, err = ParseTime(lastDate.String); err != nil {
			return model.LedgerStats{}, err
		}
	}

	return stats, nil
}

// scanTransactions reads transaction rows in the column order used by every
// query in this file.
func scanTransactions(rows *sql.Rows) ([]model.Transaction, error) {
	var transactions []model.Transaction

	for rows.Next() {
		var t model.Transaction
		var dateStr string

		err := rows.Scan(
			&t.ID,
			&t.Platform,
			&t.TaxWrapper,
			&dateStr,
			&t.FundName,
			&t.Type,
			&t.Units,
			&t.PricePerUnit,
			&t.Value,
			&t.Ticker,
			&t.Sedol,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}

		t.Date, err = ParseTime(dateStr)
		if err != nil || t.Date.IsZero() {
			return nil, fmt.Errorf("failed to parse transaction date: %w", err)
		}

		transactions = append(transactions, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction rows: %w", err)
	}

	return transactions, nil
}
