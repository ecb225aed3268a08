package model

import "time"

// AnalysisResult is the aggregate output of one full analysis run. It is
// composed once by the analysis service and never mutated afterwards.
type AnalysisResult struct {
	ID          string    `json:"id"`
	GeneratedAt time.Time `json:"generatedAt"`

	// Ledger metadata
	DataStartDate     time.Time `json:"dataStartDate"`
	DataEndDate       time.Time `json:"dataEndDate"`
	TotalTransactions int       `json:"totalTransactions"`
	BuyCount          int       `json:"buyCount"`
	SellCount         int       `json:"sellCount"`

	// Holding period
	HoldingPeriods       []HoldingPeriodResult `json:"holdingPeriods"`
	HoldingPeriodSummary HoldingPeriodSummary  `json:"holdingPeriodSummary"`

	// Trading frequency
	FrequencyByFund     []TradingFrequencyMetrics `json:"frequencyByFund"`
	FrequencyByPlatform []TradingFrequencyMetrics `json:"frequencyByPlatform"`
	FrequencyByWrapper  []TradingFrequencyMetrics `json:"frequencyByWrapper"`
	MonthlyPattern      MonthlyPattern            `json:"monthlyPattern"`

	// Price impact
	PriceImpacts       []PriceImpactResult `json:"priceImpacts"`
	PriceImpactSummary PriceImpactSummary  `json:"priceImpactSummary"`

	// Cross-reference
	VerifiedMatches []CrossReferenceMatch `json:"verifiedMatches"`
	UnsureMatches   []CrossReferenceMatch `json:"unsureMatches"`

	// Current holdings and performance
	CurrentHoldings        []HoldingAnalysis             `json:"currentHoldings"`
	CurrentHoldingsSummary HoldingsSummary               `json:"currentHoldingsSummary"`
	WrapperPerformance     map[string]WrapperPerformance `json:"wrapperPerformance"`

	// Data quality
	DataQualityNotes          []string `json:"dataQualityNotes"`
	FundsWithoutTicker        []string `json:"fundsWithoutTicker"`
	TransactionsMissingPrices int      `json:"transactionsMissingPrices"`

	OverallConfidence float64 `json:"overallConfidence"`
}
