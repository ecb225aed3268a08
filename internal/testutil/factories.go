package testutil

import (
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/asheworth/portfolio-analyzer/internal/model"
)

// TransactionBuilder provides a fluent interface for seeding test
// transactions.
//
// Example usage:
//
//	// Simple creation with defaults
//	testutil.NewTransaction().Build(t, db)
//
//	// Customized transaction
//	testutil.NewTransaction().
//	    Sell().
//	    WithFund("Vanguard FTSE All-World").
//	    WithDate("2024-03-15").
//	    WithUnits(100, 5.50).
//	    Build(t, db)
type TransactionBuilder struct {
	Platform   string
	TaxWrapper string
	Date       string
	FundName   string
	Type       string
	Units      float64
	Price      float64
	Value      float64
	Sedol      string
	Reference  string
	Excluded   bool
	valueSet   bool
}

// NewTransaction creates a TransactionBuilder with sensible defaults.
func NewTransaction() *TransactionBuilder {
	return &TransactionBuilder{
		Platform:   "VANGUARD",
		TaxWrapper: "ISA",
		Date:       "2024-01-15",
		FundName:   "Test Fund",
		Type:       model.TransactionBuy,
		Units:      100,
		Price:      2.50,
		Reference:  uuid.NewString(),
	}
}

// Buy marks the transaction as a purchase.
func (b *TransactionBuilder) Buy() *TransactionBuilder {
	b.Type = model.TransactionBuy
	return b
}

// Sell marks the transaction as a sale.
func (b *TransactionBuilder) Sell() *TransactionBuilder {
	b.Type = model.TransactionSell
	return b
}

// WithPlatform sets the platform.
func (b *TransactionBuilder) WithPlatform(platform string) *TransactionBuilder {
	b.Platform = platform
	return b
}

// WithWrapper sets the tax wrapper.
func (b *TransactionBuilder) WithWrapper(wrapper string) *TransactionBuilder {
	b.TaxWrapper = wrapper
	return b
}

// WithDate sets the trade date in YYYY-MM-DD form.
func (b *TransactionBuilder) WithDate(date string) *TransactionBuilder {
	b.Date = date
	return b
}

// WithFund sets the fund name.
func (b *TransactionBuilder) WithFund(fundName string) *TransactionBuilder {
	b.FundName = fundName
	return b
}

// WithUnits sets the traded quantity and price per unit.
func (b *TransactionBuilder) WithUnits(units, price float64) *TransactionBuilder {
	b.Units = units
	b.Price = price
	return b
}

// WithValue overrides the total value, which otherwise defaults to
// units * price.
func (b *TransactionBuilder) WithValue(value float64) *TransactionBuilder {
	b.Value = value
	b.valueSet = true
	return b
}

// WithSedol sets the SEDOL carried on the ledger row itself.
func (b *TransactionBuilder) WithSedol(sedol string) *TransactionBuilder {
	b.Sedol = sedol
	return b
}

// Excluded marks the transaction as soft-deleted.
func (b *TransactionBuilder) ExcludedFromAnalysis() *TransactionBuilder {
	b.Excluded = true
	return b
}

// Build inserts the transaction and returns its row ID.
func (b *TransactionBuilder) Build(t *testing.T, db *sql.DB) int64 {
	t.Helper()

	value := b.Value
	if !b.valueSet {
		value = b.Units * b.Price
	}

	result, err := db.Exec(`
		INSERT INTO transactions (platform, tax_wrapper, date, fund_name, transaction_type,
			units, price_per_unit, value, sedol, reference, excluded)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, b.Platform, b.TaxWrapper, b.Date, b.FundName, b.Type,
		b.Units, b.Price, value, b.Sedol, b.Reference, b.Excluded)
	if err != nil {
		t.Fatalf("Failed to create test transaction: %v", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		t.Fatalf("Failed to get transaction ID: %v", err)
	}
	return id
}

// Convenience functions

// SeedTransaction inserts one BUY or SELL ledger row.
func SeedTransaction(t *testing.T, db *sql.DB, txType, fundName, date string, units, price float64) int64 {
	t.Helper()

	builder := NewTransaction().WithFund(fundName).WithDate(date).WithUnits(units, price)
	if txType == model.TransactionSell {
		builder.Sell()
	}
	return builder.Build(t, db)
}

// SeedPrice inserts one daily close price.
func SeedPrice(t *testing.T, db *sql.DB, ticker, date string, closePrice float64) {
	t.Helper()

	_, err := db.Exec(
		`INSERT INTO price_history (date, ticker, close_price) VALUES (?, ?, ?)`,
		date, ticker, closePrice,
	)
	if err != nil {
		t.Fatalf("Failed to create test price: %v", err)
	}
}

// SeedPriceSeries inserts a run of daily closes starting at a date.
func SeedPriceSeries(t *testing.T, db *sql.DB, ticker, startDate string, prices []float64) {
	t.Helper()

	start, err := time.Parse("2006-01-02", startDate)
	if err != nil {
		t.Fatalf("Invalid start date %q: %v", startDate, err)
	}
	for i, price := range prices {
		SeedPrice(t, db, ticker, start.AddDate(0, 0, i).Format("2006-01-02"), price)
	}
}

// SeedTickerMapping inserts one fund-name-to-identifier mapping.
func SeedTickerMapping(t *testing.T, db *sql.DB, fundName, ticker, sedol, isin string) {
	t.Helper()

	_, err := db.Exec(
		`INSERT INTO fund_ticker_mapping (fund_name, ticker, sedol, isin) VALUES (?, ?, ?, ?)`,
		fundName, ticker, sedol, isin,
	)
	if err != nil {
		t.Fatalf("Failed to create test ticker mapping: %v", err)
	}
}

// WriteHoldingsFile writes a holdings snapshot to a temp file and returns
// its path. The file is removed with the test's temp directory.
func WriteHoldingsFile(t *testing.T, snapshot model.HoldingsSnapshot) string {
	t.Helper()

	data, err := json.Marshal(snapshot)
	if err != nil {
		t.Fatalf("Failed to marshal holdings snapshot: %v", err)
	}

	path := filepath.Join(t.TempDir(), "current_holdings.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("Failed to write holdings snapshot: %v", err)
	}
	return path
}
