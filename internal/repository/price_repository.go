package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/asheworth/portfolio-analyzer/internal/apperrors"
	"github.com/asheworth/portfolio-analyzer/internal/model"
)

// PriceRepository provides read access to the daily close price history.
type PriceRepository struct {
	db *sql.DB
}

// NewPriceRepository creates a new PriceRepository with the provided database connection.
func NewPriceRepository(db *sql.DB) *PriceRepository {
	return &PriceRepository{db: db}
}

// ClosePrice returns the close price for an exact ticker/date pair.
// Returns apperrors.ErrPriceNotFound when no row exists; there is no
// interpolation between trading days.
func (r *PriceRepository) ClosePrice(ticker string, date time.Time) (float64, error) {
	var price float64

	err := r.db.QueryRow(
		`SELECT close_price FROM price_history WHERE ticker = ? AND date = ?`,
		ticker, date.Format(DateFormat),
	).Scan(&price)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, apperrors.ErrPriceNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to query close price: %w", err)
	}

	return price, nil
}

// Series returns the full price history for a ticker in ascending date order.
func (r *PriceRepository) Series(ticker string) ([]model.PricePoint, error) {
	rows, err := r.db.Query(
		`SELECT date, ticker, close_price FROM price_history WHERE ticker = ? ORDER BY date`,
		ticker,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query price series: %w", err)
	}
	defer rows.Close()

	var series []model.PricePoint
	for rows.Next() {
		var p model.PricePoint
		var dateStr string

		if err := rows.Scan(&dateStr, &p.Ticker, &p.ClosePrice); err != nil {
			return nil, fmt.Errorf("failed to scan price row: %w", err)
		}
		if p.Date, err = ParseTime(dateStr); err != nil {
			return nil, err
		}

		series = append(series, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating price rows: %w", err)
	}

	return series, nil
}

// Latest returns the most recent price point for a ticker.
// Returns apperrors.ErrPriceNotFound when the ticker has no history at all.
func (r *PriceRepository) Latest(ticker string) (model.PricePoint, error) {
	var p model.PricePoint
	var dateStr string

	err := r.db.QueryRow(
		`SELECT date, ticker, close_price FROM price_history WHERE ticker = ? ORDER BY date DESC LIMIT 1`,
		ticker,
	).Scan(&dateStr, &p.Ticker, &p.ClosePrice)
	if errors.Is(err, sql.ErrNoRows) {
		return model.PricePoint{}, apperrors.ErrPriceNotFound
	}
	if err != nil {
		return model.PricePoint{}, fmt.Errorf("failed to query latest price: %w", err)
	}

	if p.Date, err = ParseTime(dateStr); err != nil {
		return model.PricePoint{}, err
	}

	return p, nil
}

// LatestDate returns the most recent date with any price data. This anchors
// the terminal valuation for money-weighted return calculations.
func (r *PriceRepository) LatestDate() (time.Time, error) {
	var dateStr sql.NullString

	err := r.db.QueryRow(`SELECT MAX(date) FROM price_history`).Scan(&dateStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to query latest price date: %w", err)
	}
	if !dateStr.Valid {
		return time.Time{}, apperrors.ErrPriceNotFound
	}

	return ParseTime(dateStr.String)
}
