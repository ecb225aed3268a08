package service_test

import (
	"testing"

	"github.com/asheworth/portfolio-analyzer/internal/testutil"
)

// TestCrossReferenceService_Analyze tests duplicate-holding detection.
//
// WHY: The confidence tiers (ticker+ISIN, SEDOL, ticker, ISIN) decide
// whether a match lands in the verified or review section, and positions on
// the identical platform and wrapper must never match themselves.
func TestCrossReferenceService_Analyze(t *testing.T) {
	t.Run("ticker plus ISIN agreement yields full confidence", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestCrossReferenceService(t, db)

		testutil.SeedTickerMapping(t, db, "Fund A", "VWRL.L", "", "IE00B3RBWM25")
		testutil.SeedTickerMapping(t, db, "Fund B", "VWRL.L", "", "IE00B3RBWM25")
		testutil.NewTransaction().WithFund("Fund A").WithPlatform("VANGUARD").Build(t, db)
		testutil.NewTransaction().WithFund("Fund B").WithPlatform("FIDELITY").Build(t, db)

		verified, unsure, _, err := svc.Analyze()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if len(verified) != 1 {
			t.Fatalf("Expected 1 verified match, got %d", len(verified))
		}
		if len(unsure) != 0 {
			t.Errorf("Expected no unsure matches, got %d", len(unsure))
		}

		m := verified[0]
		if m.MatchType != "ticker+isin" {
			t.Errorf("Expected match type ticker+isin, got %q", m.MatchType)
		}
		if m.Confidence != 1.0 {
			t.Errorf("Expected confidence 1.00, got %f", m.Confidence)
		}
	})

	t.Run("ticker without ISIN agreement is a lower tier", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestCrossReferenceService(t, db)

		testutil.SeedTickerMapping(t, db, "Fund A", "VWRL.L", "", "")
		testutil.SeedTickerMapping(t, db, "Fund B", "VWRL.L", "", "")
		testutil.NewTransaction().WithFund("Fund A").WithPlatform("VANGUARD").Build(t, db)
		testutil.NewTransaction().WithFund("Fund B").WithPlatform("FIDELITY").Build(t, db)

		verified, _, _, err := svc.Analyze()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if len(verified) != 1 {
			t.Fatalf("Expected 1 verified match, got %d", len(verified))
		}
		if verified[0].MatchType != "ticker" {
			t.Errorf("Expected match type ticker, got %q", verified[0].MatchType)
		}
		if verified[0].Confidence != 0.95 {
			t.Errorf("Expected confidence 0.95, got %f", verified[0].Confidence)
		}
	})

	t.Run("SEDOL match when no ticker is shared", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestCrossReferenceService(t, db)

		testutil.SeedTickerMapping(t, db, "Fund A", "", "B3RBWM2", "")
		testutil.SeedTickerMapping(t, db, "Fund B", "", "B3RBWM2", "")
		testutil.NewTransaction().WithFund("Fund A").WithPlatform("VANGUARD").Build(t, db)
		testutil.NewTransaction().WithFund("Fund B").WithPlatform("FIDELITY").Build(t, db)

		verified, _, _, err := svc.Analyze()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if len(verified) != 1 {
			t.Fatalf("Expected 1 verified match, got %d", len(verified))
		}
		if verified[0].MatchType != "sedol" {
			t.Errorf("Expected match type sedol, got %q", verified[0].MatchType)
		}
		if verified[0].Confidence != 0.98 {
			t.Errorf("Expected confidence 0.98, got %f", verified[0].Confidence)
		}
	})

	t.Run("ISIN match is the lowest tier", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestCrossReferenceService(t, db)

		testutil.SeedTickerMapping(t, db, "Fund A", "", "", "IE00B3RBWM25")
		testutil.SeedTickerMapping(t, db, "Fund B", "", "", "IE00B3RBWM25")
		testutil.NewTransaction().WithFund("Fund A").WithPlatform("VANGUARD").Build(t, db)
		testutil.NewTransaction().WithFund("Fund B").WithPlatform("FIDELITY").Build(t, db)

		verified, _, _, err := svc.Analyze()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if len(verified) != 1 {
			t.Fatalf("Expected 1 verified match, got %d", len(verified))
		}
		if verified[0].MatchType != "isin" {
			t.Errorf("Expected match type isin, got %q", verified[0].MatchType)
		}
		if verified[0].Confidence != 0.92 {
			t.Errorf("Expected confidence 0.92, got %f", verified[0].Confidence)
		}
	})

	t.Run("higher tier suppresses repeat matches for the same pair", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestCrossReferenceService(t, db)

		// Shared ticker, SEDOL and ISIN: only the ticker tier should fire
		testutil.SeedTickerMapping(t, db, "Fund A", "VWRL.L", "B3RBWM2", "IE00B3RBWM25")
		testutil.SeedTickerMapping(t, db, "Fund B", "VWRL.L", "B3RBWM2", "IE00B3RBWM25")
		testutil.NewTransaction().WithFund("Fund A").WithPlatform("VANGUARD").Build(t, db)
		testutil.NewTransaction().WithFund("Fund B").WithPlatform("FIDELITY").Build(t, db)

		verified, unsure, _, err := svc.Analyze()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if total := len(verified) + len(unsure); total != 1 {
			t.Fatalf("Expected exactly 1 match across tiers, got %d", total)
		}
		if verified[0].MatchType != "ticker+isin" {
			t.Errorf("Expected the ticker+isin tier, got %q", verified[0].MatchType)
		}
	})

	t.Run("identical platform and wrapper never match", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestCrossReferenceService(t, db)

		testutil.SeedTickerMapping(t, db, "Fund A", "VWRL.L", "", "")
		testutil.SeedTickerMapping(t, db, "Fund B", "VWRL.L", "", "")
		testutil.NewTransaction().WithFund("Fund A").Build(t, db)
		testutil.NewTransaction().WithFund("Fund B").Build(t, db)

		verified, unsure, _, err := svc.Analyze()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if total := len(verified) + len(unsure); total != 0 {
			t.Errorf("Expected no matches on the same platform and wrapper, got %d", total)
		}
	})

	t.Run("same fund split across wrappers on one platform", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestCrossReferenceService(t, db)

		testutil.SeedTickerMapping(t, db, "Test Fund", "VWRL.L", "", "")
		testutil.NewTransaction().WithWrapper("ISA").Build(t, db)
		testutil.NewTransaction().WithWrapper("SIPP").Build(t, db)

		verified, _, _, err := svc.Analyze()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}

		// The pair fires both the ticker tier and the wrapper-split check
		var split bool
		for _, m := range verified {
			if m.MatchType == "same_platform_different_wrapper" {
				split = true
				if m.Confidence != 1.0 {
					t.Errorf("Expected split confidence 1.0, got %f", m.Confidence)
				}
				if m.WrapperA == m.WrapperB {
					t.Errorf("Expected different wrappers, got %q and %q", m.WrapperA, m.WrapperB)
				}
			}
		}
		if !split {
			t.Error("Expected a same_platform_different_wrapper match")
		}
	})

	t.Run("funds without identifiers are reported", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestCrossReferenceService(t, db)

		testutil.NewTransaction().WithFund("Mystery Fund").Build(t, db)
		testutil.NewTransaction().WithFund("Mystery Fund").WithWrapper("SIPP").Build(t, db)

		_, _, withoutIDs, err := svc.Analyze()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if len(withoutIDs) != 1 {
			t.Fatalf("Expected 1 fund without identifiers, got %d", len(withoutIDs))
		}
		if withoutIDs[0] != "Mystery Fund" {
			t.Errorf("Expected 'Mystery Fund', got %q", withoutIDs[0])
		}
	})
}
