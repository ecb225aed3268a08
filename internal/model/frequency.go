package model

import "time"

// TradingFrequencyMetrics aggregates trade counts for one grouping key.
// Depending on the grouping, only one of FundName+Ticker, Platform or
// TaxWrapper is populated. Confidence is always 1.0: the numbers are direct
// counts over the ledger.
type TradingFrequencyMetrics struct {
	FundName          string    `json:"fundName,omitempty"`
	Ticker            string    `json:"ticker,omitempty"`
	Platform          string    `json:"platform,omitempty"`
	TaxWrapper        string    `json:"taxWrapper,omitempty"`
	TotalTrades       int       `json:"totalTrades"`
	BuyCount          int       `json:"buyCount"`
	SellCount         int       `json:"sellCount"`
	FirstTradeDate    time.Time `json:"firstTradeDate"`
	LastTradeDate     time.Time `json:"lastTradeDate"`
	ActiveMonths      int       `json:"activeMonths"`
	AvgTradesPerMonth float64   `json:"avgTradesPerMonth"`
	Confidence        float64   `json:"confidence"`
}

// MonthCounts are the trade counts for one calendar month or year.
type MonthCounts struct {
	Trades int `json:"trades"`
	Buys   int `json:"buys"`
	Sells  int `json:"sells"`
}

// MonthlyPattern describes trading activity over calendar time.
// Monthly keys are "2006-01", Yearly keys are "2006".
type MonthlyPattern struct {
	Monthly           map[string]MonthCounts `json:"monthly"`
	Yearly            map[string]MonthCounts `json:"yearly"`
	PeakMonth         string                 `json:"peakMonth"`
	PeakMonthTrades   int                    `json:"peakMonthTrades"`
	TotalMonths       int                    `json:"totalMonths"`
	AvgTradesPerMonth float64                `json:"avgTradesPerMonth"`
}
