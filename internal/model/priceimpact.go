package model

import "time"

// Price impact classifications.
const (
	ImpactFavorable   = "favorable"
	ImpactNeutral     = "neutral"
	ImpactUnfavorable = "unfavorable"
)

// PriceImpactConfidence applies to every price impact result: execution
// prices are intraday while the comparison price is the daily close.
const PriceImpactConfidence = 0.85

// PriceImpactResult compares one execution price against the market close
// on the same date.
type PriceImpactResult struct {
	Date            time.Time `json:"date"`
	FundName        string    `json:"fundName"`
	Ticker          string    `json:"ticker"`
	TransactionType string    `json:"transactionType"`
	ExecutionPrice  float64   `json:"executionPrice"`
	MarketPrice     float64   `json:"marketPrice"` // normalised to execution units
	PriceDiff       float64   `json:"priceDiff"`
	PriceDiffPct    float64   `json:"priceDiffPct"`
	ValueImpact     float64   `json:"valueImpact"`
	Units           float64   `json:"units"`
	Classification  string    `json:"classification"`
	Confidence      float64   `json:"confidence"`
}

// Favorable reports whether the trade was executed at a favourable price.
func (r PriceImpactResult) Favorable() bool {
	return r.Classification == ImpactFavorable
}

// TypeImpact breaks down classifications for one transaction type.
type TypeImpact struct {
	Count       int `json:"count"`
	Favorable   int `json:"favorable"`
	Unfavorable int `json:"unfavorable"`
}

// PriceImpactSummary aggregates execution quality over all scored trades.
// NetImpact is positive when execution was favourable overall.
type PriceImpactSummary struct {
	TotalAnalyzed          int                   `json:"totalAnalyzed"`
	MissingPrices          int                   `json:"missingPrices"`
	FavorableCount         int                   `json:"favorableCount"`
	UnfavorableCount       int                   `json:"unfavorableCount"`
	NeutralCount           int                   `json:"neutralCount"`
	FavorablePct           float64               `json:"favorablePct"`
	UnfavorablePct         float64               `json:"unfavorablePct"`
	NeutralPct             float64               `json:"neutralPct"`
	AvgDeviationPct        float64               `json:"avgDeviationPct"`
	TotalFavorableImpact   float64               `json:"totalFavorableImpact"`
	TotalUnfavorableImpact float64               `json:"totalUnfavorableImpact"`
	NetImpact              float64               `json:"netImpact"`
	ByType                 map[string]TypeImpact `json:"byType"`
}
