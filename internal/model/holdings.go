package model

import "time"

// SnapshotPosition is one currently-held position within a snapshot entry.
type SnapshotPosition struct {
	Platform   string  `json:"platform"`
	TaxWrapper string  `json:"tax_wrapper"`
	Units      float64 `json:"units"`
}

// SnapshotEntry groups the positions held for one ticker.
type SnapshotEntry struct {
	FundName string             `json:"fund_name"`
	Holdings []SnapshotPosition `json:"holdings"`
}

// HoldingsSnapshot is a point-in-time statement of currently-held positions,
// keyed by ticker. It is independent of the transaction history.
type HoldingsSnapshot map[string]SnapshotEntry

// HoldingAnalysis is the cost-basis and unrealised-gain view of one current
// holding, optionally enriched with performance metrics.
type HoldingAnalysis struct {
	Ticker            string    `json:"ticker"`
	FundName          string    `json:"fundName"`
	Platform          string    `json:"platform"`
	TaxWrapper        string    `json:"taxWrapper"`
	Units             float64   `json:"units"`
	CurrentPrice      float64   `json:"currentPrice"`
	CurrentValue      float64   `json:"currentValue"`
	CostBasis         float64   `json:"costBasis"`
	UnrealizedGain    float64   `json:"unrealizedGain"`
	UnrealizedGainPct float64   `json:"unrealizedGainPct"`
	PriceDate         time.Time `json:"priceDate"`
	FirstBuyDate      time.Time `json:"firstBuyDate"`
	TotalBuys         int       `json:"totalBuys"`
	Confidence        float64   `json:"confidence"`
	Notes             string    `json:"notes,omitempty"`

	// Performance metrics, merged in after the performance analysis runs.
	TWR               *float64            `json:"twr,omitempty"`
	MWR               *float64            `json:"mwr,omitempty"`
	HoldingPeriodDays int                 `json:"holdingPeriodDays"`
	Benchmarks        map[string]*float64 `json:"benchmarks,omitempty"` // ticker -> annualised return %
}

// GroupTotals rolls up value, cost and gain for one wrapper or platform.
type GroupTotals struct {
	Value float64 `json:"value"`
	Cost  float64 `json:"cost"`
	Gain  float64 `json:"gain"`
}

// HoldingsSummary aggregates the current holdings analysis.
type HoldingsSummary struct {
	TotalHoldings          int                    `json:"totalHoldings"`
	HoldingsWithPrices     int                    `json:"holdingsWithPrices"`
	HoldingsWithoutPrices  int                    `json:"holdingsWithoutPrices"`
	TotalCurrentValue      float64                `json:"totalCurrentValue"`
	TotalCostBasis         float64                `json:"totalCostBasis"`
	TotalUnrealizedGain    float64                `json:"totalUnrealizedGain"`
	TotalUnrealizedGainPct float64                `json:"totalUnrealizedGainPct"`
	ByWrapper              map[string]GroupTotals `json:"byWrapper"`
	ByPlatform             map[string]GroupTotals `json:"byPlatform"`
	TopGainers             []HoldingAnalysis      `json:"topGainers"`
	TopLosers              []HoldingAnalysis      `json:"topLosers"`
}
