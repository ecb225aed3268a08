package testutil

import (
	"database/sql"
	"testing"

	"github.com/asheworth/portfolio-analyzer/internal/repository"
	"github.com/asheworth/portfolio-analyzer/internal/service"
	"github.com/asheworth/portfolio-analyzer/internal/snapshot"
)

// NewTestAnalysisService wires a full AnalysisService over a test database
// and a holdings snapshot file.
func NewTestAnalysisService(t *testing.T, db *sql.DB, holdingsPath string) *service.AnalysisService {
	t.Helper()

	return service.NewAnalysisService(
		repository.NewTransactionRepository(db),
		repository.NewPriceRepository(db),
		repository.NewMappingRepository(db),
		snapshot.NewLoader(holdingsPath),
	)
}

// NewTestHoldingPeriodService wires a HoldingPeriodService over a test
// database.
func NewTestHoldingPeriodService(t *testing.T, db *sql.DB) *service.HoldingPeriodService {
	t.Helper()

	return service.NewHoldingPeriodService(repository.NewTransactionRepository(db))
}

// NewTestPriceImpactService wires a PriceImpactService over a test database.
func NewTestPriceImpactService(t *testing.T, db *sql.DB) *service.PriceImpactService {
	t.Helper()

	return service.NewPriceImpactService(
		repository.NewTransactionRepository(db),
		repository.NewPriceRepository(db),
	)
}

// NewTestCrossReferenceService wires a CrossReferenceService over a test
// database.
func NewTestCrossReferenceService(t *testing.T, db *sql.DB) *service.CrossReferenceService {
	t.Helper()

	return service.NewCrossReferenceService(repository.NewMappingRepository(db))
}

// NewTestTradingFrequencyService wires a TradingFrequencyService over a test
// database.
func NewTestTradingFrequencyService(t *testing.T, db *sql.DB) *service.TradingFrequencyService {
	t.Helper()

	return service.NewTradingFrequencyService(repository.NewTransactionRepository(db))
}

// NewTestCurrentHoldingsService wires a CurrentHoldingsService over a test
// database and a holdings snapshot file.
func NewTestCurrentHoldingsService(t *testing.T, db *sql.DB, holdingsPath string) *service.CurrentHoldingsService {
	t.Helper()

	return service.NewCurrentHoldingsService(
		repository.NewTransactionRepository(db),
		repository.NewPriceRepository(db),
		snapshot.NewLoader(holdingsPath),
	)
}

// NewTestPerformanceService wires a PerformanceService over a test database
// and a holdings snapshot file.
func NewTestPerformanceService(t *testing.T, db *sql.DB, holdingsPath string) *service.PerformanceService {
	t.Helper()

	return service.NewPerformanceService(
		repository.NewTransactionRepository(db),
		repository.NewPriceRepository(db),
		snapshot.NewLoader(holdingsPath),
	)
}
