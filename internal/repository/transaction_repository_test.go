package repository_test

import (
	"testing"

	"github.com/asheworth/portfolio-analyzer/internal/model"
	"github.com/asheworth/portfolio-analyzer/internal/repository"
	"github.com/asheworth/portfolio-analyzer/internal/testutil"
)

// TestTransactionRepository_AnalysisTransactions tests the analyzer's view
// of the ledger.
//
// WHY: Every analyzer reads this one query. It must exclude soft-deleted
// rows, attach ticker mappings, and order by date so FIFO matching works.
func TestTransactionRepository_AnalysisTransactions(t *testing.T) {
	t.Run("returns empty when the ledger is empty", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewTransactionRepository(db)

		transactions, err := repo.AnalysisTransactions()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if len(transactions) != 0 {
			t.Errorf("Expected no transactions, got %d", len(transactions))
		}
	})

	t.Run("excludes soft-deleted rows", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewTransactionRepository(db)

		testutil.NewTransaction().WithFund("Kept Fund").Build(t, db)
		testutil.NewTransaction().WithFund("Excluded Fund").ExcludedFromAnalysis().Build(t, db)
		testutil.AssertRowCount(t, db, "transactions", 2)

		transactions, err := repo.AnalysisTransactions()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if len(transactions) != 1 {
			t.Fatalf("Expected 1 transaction, got %d", len(transactions))
		}
		if transactions[0].FundName != "Kept Fund" {
			t.Errorf("Expected 'Kept Fund', got %q", transactions[0].FundName)
		}
	})

	t.Run("orders by date then insertion order", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewTransactionRepository(db)

		testutil.NewTransaction().WithDate("2024-03-01").Build(t, db)
		testutil.NewTransaction().WithDate("2024-01-01").Build(t, db)
		testutil.NewTransaction().WithDate("2024-01-01").Sell().Build(t, db)

		transactions, err := repo.AnalysisTransactions()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if len(transactions) != 3 {
			t.Fatalf("Expected 3 transactions, got %d", len(transactions))
		}
		if !transactions[0].Date.Before(transactions[2].Date) {
			t.Error("Expected ascending date order")
		}
		// Same-date rows keep ledger order: the BUY was inserted first
		if transactions[0].Type != model.TransactionBuy || transactions[1].Type != model.TransactionSell {
			t.Errorf("Expected BUY then SELL on the same date, got %s then %s",
				transactions[0].Type, transactions[1].Type)
		}
	})

	t.Run("attaches mapped tickers", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewTransactionRepository(db)

		testutil.SeedTickerMapping(t, db, "Mapped Fund", "VWRL.L", "", "")
		testutil.NewTransaction().WithFund("Mapped Fund").Build(t, db)
		testutil.NewTransaction().WithFund("Unmapped Fund").Build(t, db)

		transactions, err := repo.AnalysisTransactions()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if len(transactions) != 2 {
			t.Fatalf("Expected 2 transactions, got %d", len(transactions))
		}

		byFund := make(map[string]string)
		for _, tx := range transactions {
			byFund[tx.FundName] = tx.Ticker
		}
		if byFund["Mapped Fund"] != "VWRL.L" {
			t.Errorf("Expected ticker VWRL.L for mapped fund, got %q", byFund["Mapped Fund"])
		}
		if byFund["Unmapped Fund"] != "" {
			t.Errorf("Expected empty ticker for unmapped fund, got %q", byFund["Unmapped Fund"])
		}
	})
}

// TestTransactionRepository_TransactionsForHolding tests the per-holding
// lookup used by cost basis and performance.
//
// WHY: Holdings are keyed by ticker, but the ledger stores fund names. The
// ticker match must come first with a fund-name fallback for unmapped rows.
func TestTransactionRepository_TransactionsForHolding(t *testing.T) {
	t.Run("matches by ticker mapping", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewTransactionRepository(db)

		testutil.SeedTickerMapping(t, db, "Vanguard FTSE All-World", "VWRL.L", "", "")
		testutil.NewTransaction().WithFund("Vanguard FTSE All-World").Build(t, db)
		testutil.NewTransaction().WithFund("Other Fund").Build(t, db)

		transactions, err := repo.TransactionsForHolding("VWRL.L", "Vanguard FTSE All-World", "VANGUARD", "ISA")
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if len(transactions) != 1 {
			t.Fatalf("Expected 1 transaction, got %d", len(transactions))
		}
		if transactions[0].FundName != "Vanguard FTSE All-World" {
			t.Errorf("Expected mapped fund, got %q", transactions[0].FundName)
		}
	})

	t.Run("falls back to fund name match", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewTransactionRepository(db)

		// No ticker mapping exists, so only the name pattern can match
		testutil.NewTransaction().WithFund("FTSE Global All Cap Index Fund").Build(t, db)

		transactions, err := repo.TransactionsForHolding("VAFTGAG", "FTSE Global All Cap Index Fund", "VANGUARD", "ISA")
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if len(transactions) != 1 {
			t.Fatalf("Expected 1 transaction via name fallback, got %d", len(transactions))
		}
	})

	t.Run("filters by platform and wrapper", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewTransactionRepository(db)

		testutil.SeedTickerMapping(t, db, "Test Fund", "VWRL.L", "", "")
		testutil.NewTransaction().WithWrapper("ISA").Build(t, db)
		testutil.NewTransaction().WithWrapper("SIPP").Build(t, db)
		testutil.NewTransaction().WithPlatform("FIDELITY").Build(t, db)

		transactions, err := repo.TransactionsForHolding("VWRL.L", "Test Fund", "VANGUARD", "ISA")
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if len(transactions) != 1 {
			t.Fatalf("Expected 1 transaction for VANGUARD/ISA, got %d", len(transactions))
		}
	})

	t.Run("returns empty when nothing matches", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewTransactionRepository(db)

		transactions, err := repo.TransactionsForHolding("VWRL.L", "Unknown Fund", "VANGUARD", "ISA")
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if len(transactions) != 0 {
			t.Errorf("Expected no transactions, got %d", len(transactions))
		}
	})
}

// TestTransactionRepository_Stats tests the ledger statistics.
func TestTransactionRepository_Stats(t *testing.T) {
	t.Run("counts buys and sells with date range", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewTransactionRepository(db)

		testutil.NewTransaction().WithDate("2023-06-01").Build(t, db)
		testutil.NewTransaction().WithDate("2024-02-01").Build(t, db)
		testutil.SeedTransaction(t, db, model.TransactionSell, "Test Fund", "2024-03-01", 40, 2.50)

		stats, err := repo.Stats()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if stats.TotalTransactions != 3 {
			t.Errorf("Expected 3 transactions, got %d", stats.TotalTransactions)
		}
		if stats.BuyCount != 2 {
			t.Errorf("Expected 2 buys, got %d", stats.BuyCount)
		}
		if stats.SellCount != 1 {
			t.Errorf("Expected 1 sell, got %d", stats.SellCount)
		}
		if stats.FirstDate.Format("2006-01-02") != "2023-06-01" {
			t.Errorf("Expected first date 2023-06-01, got %s", stats.FirstDate.Format("2006-01-02"))
		}
		if stats.LastDate.Format("2006-01-02") != "2024-03-01" {
			t.Errorf("Expected last date 2024-03-01, got %s", stats.LastDate.Format("2006-01-02"))
		}
	})

	t.Run("empty ledger yields zero counts", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewTransactionRepository(db)

		stats, err := repo.Stats()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if stats.TotalTransactions != 0 {
			t.Errorf("Expected 0 transactions, got %d", stats.TotalTransactions)
		}
	})
}
