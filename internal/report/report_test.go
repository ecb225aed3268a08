package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/asheworth/portfolio-analyzer/internal/model"
)

func sampleResult() *model.AnalysisResult {
	twr := 12.5
	return &model.AnalysisResult{
		ID:                "test-run",
		GeneratedAt:       time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
		DataStartDate:     time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC),
		DataEndDate:       time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		TotalTransactions: 3,
		BuyCount:          2,
		SellCount:         1,
		HoldingPeriods: []model.HoldingPeriodResult{
			{
				FundName:    "Test Fund",
				Platform:    "VANGUARD",
				TaxWrapper:  "ISA",
				BuyDate:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
				SellDate:    time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
				HoldingDays: 9,
				UnitsSold:   10,
				GainLoss:    -5,
				GainLossPct: -2.5,
				Category:    model.VeryShortTerm,
				Confidence:  1.0,
			},
		},
		HoldingPeriodSummary: model.HoldingPeriodSummary{
			TotalAnalyzed: 1,
			ByCategory: map[model.HoldingPeriodCategory]model.CategorySummary{
				model.VeryShortTerm: {Count: 1, PctOfTotal: 100, Label: "<30 days", Flag: "HIGH ATTENTION"},
				model.ShortTerm:     {Label: "30-89 days", Flag: "ATTENTION"},
				model.MediumTerm:    {Label: "90-364 days", Flag: "NORMAL"},
				model.LongTerm:      {Label: "365+ days", Flag: "GOOD"},
			},
			AvgHoldingDays: 9,
			QuickFlipCount: 1,
			QuickFlipPct:   100,
		},
		CurrentHoldings: []model.HoldingAnalysis{
			{
				Ticker:       "VWRL.L",
				FundName:     "Test Fund",
				Platform:     "Vanguard",
				TaxWrapper:   "ISA",
				Units:        100,
				CurrentPrice: 4,
				CurrentValue: 400,
				CostBasis:    250,
				Confidence:   1.0,
				TWR:          &twr,
			},
		},
		CurrentHoldingsSummary: model.HoldingsSummary{
			TotalHoldings:       1,
			HoldingsWithPrices:  1,
			TotalCurrentValue:   400,
			TotalCostBasis:      250,
			TotalUnrealizedGain: 150,
			ByWrapper:           map[string]model.GroupTotals{"ISA": {Value: 400, Cost: 250, Gain: 150}},
			ByPlatform:          map[string]model.GroupTotals{"Vanguard": {Value: 400, Cost: 250, Gain: 150}},
		},
		OverallConfidence: 0.95,
	}
}

// TestGenerator_Generate tests the markdown rendering.
//
// WHY: The report is the engine's user-facing artifact. This checks the
// section structure is intact for a populated result, not the exact prose.
func TestGenerator_Generate(t *testing.T) {
	t.Run("renders all sections for a populated result", func(t *testing.T) {
		output := NewGenerator(sampleResult()).Generate()

		expected := []string{
			"# Portfolio Transaction Analysis Report",
			"**Total Transactions Analyzed:** 3 (2 BUY, 1 SELL)",
			"## Executive Summary",
			"## Current Holdings (Unrealized Gains)",
			"## 1. Holding Period Analysis",
			"## 2. Trading Frequency Analysis",
			"## 3. Price Impact Analysis",
			"## 4. Cross-Reference Matches",
			"## Appendix: Data Quality Notes",
		}
		for _, want := range expected {
			if !strings.Contains(output, want) {
				t.Errorf("Expected report to contain %q", want)
			}
		}

		if !strings.Contains(output, "HIGH ATTENTION") {
			t.Error("Expected the quick-flip attention flag in the report")
		}
	})

	t.Run("renders an empty result without panicking", func(t *testing.T) {
		result := &model.AnalysisResult{
			ID:          "empty-run",
			GeneratedAt: time.Now(),
			HoldingPeriodSummary: model.HoldingPeriodSummary{
				ByCategory: map[model.HoldingPeriodCategory]model.CategorySummary{},
			},
		}

		output := NewGenerator(result).Generate()
		if !strings.Contains(output, "# Portfolio Transaction Analysis Report") {
			t.Error("Expected the report title even for an empty result")
		}
	})
}

// TestGenerator_Save tests writing the report to disk.
func TestGenerator_Save(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "analysis.md")

	if err := NewGenerator(sampleResult()).Save(path); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Expected report file to exist: %v", err)
	}
	if !strings.Contains(string(data), "# Portfolio Transaction Analysis Report") {
		t.Error("Expected the saved file to contain the report")
	}
}
