package model

import (
	"fmt"
	"time"
)

// Transaction types recognised by the analysis engine. Other ledger rows
// (fees, dividends, transfers) are filtered out at the repository layer.
const (
	TransactionBuy  = "BUY"
	TransactionSell = "SELL"
)

// Transaction represents a single BUY or SELL ledger row.
// Units and Value are non-negative magnitudes; direction is carried by Type.
type Transaction struct {
	ID           int64     `json:"id"`
	Platform     string    `json:"platform"`
	TaxWrapper   string    `json:"taxWrapper"`
	Date         time.Time `json:"date"`
	FundName     string    `json:"fundName"`
	Type         string    `json:"type"`
	Units        float64   `json:"units"`
	PricePerUnit float64   `json:"pricePerUnit"`
	Value        float64   `json:"value"`
	Ticker       string    `json:"ticker,omitempty"` // from fund_ticker_mapping, may be empty
	Sedol        string    `json:"sedol,omitempty"`
}

// FundKey identifies one position: a fund held on a platform under a wrapper.
type FundKey struct {
	FundName   string
	Platform   string
	TaxWrapper string
}

func (k FundKey) String() string {
	return fmt.Sprintf("%s (%s/%s)", k.FundName, k.Platform, k.TaxWrapper)
}

// FundIdentifiers carries the known external identifiers for a fund key.
type FundIdentifiers struct {
	FundKey
	Ticker string
	Sedol  string
	Isin   string
}

// HasIdentifier reports whether any external identifier is known at all.
func (f FundIdentifiers) HasIdentifier() bool {
	return f.Ticker != "" || f.Sedol != "" || f.Isin != ""
}

// LedgerStats are the basic counts and date range of the analysed ledger.
type LedgerStats struct {
	TotalTransactions int       `json:"totalTransactions"`
	BuyCount          int       `json:"buyCount"`
	SellCount         int       `json:"sellCount"`
	FirstDate         time.Time `json:"firstDate"`
	LastDate          time.Time `json:"lastDate"`
}

// PricePoint is one daily close for a ticker.
type PricePoint struct {
	Date       time.Time `json:"date"`
	Ticker     string    `json:"ticker"`
	ClosePrice float64   `json:"closePrice"`
}
