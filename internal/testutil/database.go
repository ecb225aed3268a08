package testutil

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite" // Test Package
)

// SetupTestDB creates an in-memory SQLite database for testing.
// The database is automatically cleaned up when the test completes.
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    db := testutil.SetupTestDB(t)
//	    // db is ready to use with schema created
//	}
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	// In-memory database (destroyed when connection closes)
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		t.Fatalf("Failed to ping test database: %v", err)
	}

	// Configure SQLite for testing
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = MEMORY", // Faster for tests
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			t.Fatalf("Failed to set pragma: %v", err)
		}
	}

	// Create schema
	if err := createTestSchema(db); err != nil {
		t.Fatalf("Failed to create test schema: %v", err)
	}

	// Cleanup when test ends
	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// createTestSchema creates all database tables for testing.
// Schema is synchronized with the production migrations.
func createTestSchema(db *sql.DB) error {
	schema := `
		-- Transaction ledger
		CREATE TABLE IF NOT EXISTS transactions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			platform TEXT NOT NULL,
			tax_wrapper TEXT NOT NULL,
			date TEXT NOT NULL,
			fund_name TEXT NOT NULL,
			transaction_type TEXT NOT NULL,
			units REAL NOT NULL,
			price_per_unit REAL NOT NULL,
			value REAL NOT NULL,
			currency TEXT NOT NULL DEFAULT 'GBP',
			sedol TEXT,
			reference TEXT,
			raw_description TEXT,
			excluded INTEGER NOT NULL DEFAULT 0,
			created_at TEXT DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(platform, date, fund_name, transaction_type, value, reference)
		);

		-- Daily close prices
		CREATE TABLE IF NOT EXISTS price_history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			date TEXT NOT NULL,
			ticker TEXT NOT NULL,
			close_price REAL NOT NULL,
			UNIQUE(date, ticker)
		);

		-- Fund name to identifier mapping
		CREATE TABLE IF NOT EXISTS fund_ticker_mapping (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			fund_name TEXT NOT NULL,
			ticker TEXT,
			sedol TEXT,
			isin TEXT,
			UNIQUE(fund_name, ticker)
		);

		-- Indexes for performance
		CREATE INDEX IF NOT EXISTS ix_transactions_date ON transactions(date);
		CREATE INDEX IF NOT EXISTS ix_transactions_fund_name ON transactions(fund_name);
		CREATE INDEX IF NOT EXISTS ix_transactions_type ON transactions(transaction_type);
		CREATE INDEX IF NOT EXISTS ix_price_history_ticker_date ON price_history(ticker, date);
		CREATE INDEX IF NOT EXISTS ix_fund_ticker_mapping_fund_name ON fund_ticker_mapping(fund_name);
	`

	_, err := db.Exec(schema)
	return err
}

// CountRows returns the number of rows in a table.
// Useful for assertions in tests.
func CountRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()

	var count int
	query := "SELECT COUNT(*) FROM " + table
	err := db.QueryRow(query).Scan(&count)
	if err != nil {
		t.Fatalf("Failed to count rows in %s: %v", table, err)
	}

	return count
}

// AssertRowCount asserts that a table has the expected number of rows.
func AssertRowCount(t *testing.T, db *sql.DB, table string, expected int) {
	t.Helper()

	actual := CountRows(t, db, table)
	if actual != expected {
		t.Errorf("Expected %d rows in %s, got %d", expected, table, actual)
	}
}
