package service

import (
	"time"

	"github.com/asheworth/portfolio-analyzer/internal/model"
)

// TransactionSource yields BUY/SELL ledger rows, excluding soft-deleted
// records, ordered by date with ledger order breaking ties. Implementations
// must not expose rows the analysis should never see.
type TransactionSource interface {
	AnalysisTransactions() ([]model.Transaction, error)
	TransactionsForHolding(ticker, fundName, platform, taxWrapper string) ([]model.Transaction, error)
	Stats() (model.LedgerStats, error)
}

// PriceSource yields daily close prices: exact point lookup, the full
// series for a ticker, and the latest available price.
type PriceSource interface {
	ClosePrice(ticker string, date time.Time) (float64, error)
	Series(ticker string) ([]model.PricePoint, error)
	Latest(ticker string) (model.PricePoint, error)
	LatestDate() (time.Time, error)
}

// MappingSource yields the known identifiers per traded fund position.
type MappingSource interface {
	FundIdentifiers() ([]model.FundIdentifiers, error)
}

// SnapshotSource yields the current-holdings statement.
type SnapshotSource interface {
	Load() (model.HoldingsSnapshot, error)
}
