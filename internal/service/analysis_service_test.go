package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/asheworth/portfolio-analyzer/internal/apperrors"
	"github.com/asheworth/portfolio-analyzer/internal/model"
	"github.com/asheworth/portfolio-analyzer/internal/testutil"
)

// TestAnalysisService_Run tests the full pipeline composition.
//
// WHY: The individual analyzers are tested on their own; this verifies they
// compose into one result with performance merged into the holdings and a
// blended overall confidence, and that concurrent runs are rejected.
func TestAnalysisService_Run(t *testing.T) {
	seedPortfolio := func(t *testing.T) (*testing.T, string) {
		t.Helper()
		path := testutil.WriteHoldingsFile(t, model.HoldingsSnapshot{
			"VWRL.L": {FundName: "Test Fund", Holdings: []model.SnapshotPosition{
				{Platform: "Vanguard", TaxWrapper: "ISA", Units: 60},
			}},
		})
		return t, path
	}

	t.Run("produces a complete result", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		_, path := seedPortfolio(t)
		svc := testutil.NewTestAnalysisService(t, db, path)

		testutil.SeedTickerMapping(t, db, "Test Fund", "VWRL.L", "", "")
		testutil.NewTransaction().WithDate("2024-01-01").WithUnits(100, 2.00).Build(t, db)
		testutil.NewTransaction().Sell().WithDate("2024-06-01").WithUnits(40, 4.00).Build(t, db)
		testutil.SeedPrice(t, db, "VWRL.L", "2024-01-01", 2.00)
		testutil.SeedPrice(t, db, "VWRL.L", "2024-06-01", 4.00)

		result, err := svc.Run(context.Background())
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}

		if result.ID == "" {
			t.Error("Expected a run ID")
		}
		if result.TotalTransactions != 2 || result.BuyCount != 1 || result.SellCount != 1 {
			t.Errorf("Expected ledger stats 2/1/1, got %d/%d/%d",
				result.TotalTransactions, result.BuyCount, result.SellCount)
		}
		if len(result.HoldingPeriods) != 1 {
			t.Errorf("Expected 1 holding period result, got %d", len(result.HoldingPeriods))
		}
		if len(result.FrequencyByFund) != 1 {
			t.Errorf("Expected 1 fund frequency entry, got %d", len(result.FrequencyByFund))
		}
		if len(result.PriceImpacts) != 2 {
			t.Errorf("Expected 2 price impact results, got %d", len(result.PriceImpacts))
		}
		if len(result.CurrentHoldings) != 1 {
			t.Fatalf("Expected 1 current holding, got %d", len(result.CurrentHoldings))
		}

		// Performance metrics merged into the holding
		holding := result.CurrentHoldings[0]
		if holding.TWR == nil {
			t.Error("Expected TWR merged into the current holding")
		}
		if holding.Benchmarks == nil {
			t.Error("Expected benchmarks merged into the current holding")
		}

		if result.OverallConfidence <= 0 || result.OverallConfidence > 1 {
			t.Errorf("Expected overall confidence in (0, 1], got %f", result.OverallConfidence)
		}
	})

	t.Run("overall confidence blends analyzer averages", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		_, path := seedPortfolio(t)
		svc := testutil.NewTestAnalysisService(t, db, path)

		// Only a buy and a clean sell: holding period confidence 1.0, no
		// price impacts, no cross-reference matches. The blend is then
		// (1.0*0.4 + 1.0*0.2) / 0.6 = 1.0.
		testutil.NewTransaction().WithDate("2024-01-01").WithUnits(100, 2.00).Build(t, db)
		testutil.NewTransaction().Sell().WithDate("2024-06-01").WithUnits(40, 4.00).Build(t, db)

		result, err := svc.Run(context.Background())
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if result.OverallConfidence != 1.0 {
			t.Errorf("Expected overall confidence 1.0, got %f", result.OverallConfidence)
		}
	})

	t.Run("latest returns the stored result", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		_, path := seedPortfolio(t)
		svc := testutil.NewTestAnalysisService(t, db, path)

		testutil.NewTransaction().Build(t, db)

		ran, err := svc.Run(context.Background())
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}

		latest, err := svc.Latest()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if latest.ID != ran.ID {
			t.Errorf("Expected latest ID %s, got %s", ran.ID, latest.ID)
		}
	})

	t.Run("latest before any run is not found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		_, path := seedPortfolio(t)
		svc := testutil.NewTestAnalysisService(t, db, path)

		_, err := svc.Latest()
		if !errors.Is(err, apperrors.ErrAnalysisNotFound) {
			t.Errorf("Expected ErrAnalysisNotFound, got %v", err)
		}
	})
}
