package model

import "time"

// Benchmarks are the index trackers every holding is compared against,
// keyed by ticker with a display name.
var Benchmarks = map[string]string{
	"VWRL.L": "FTSE All-World",
	"VUSA.L": "S&P 500",
	"VFEM.L": "Emerging Markets",
	"VUKE.L": "FTSE 100",
	"IJPN.L": "Japan",
}

// BenchmarkReturn is a benchmark's own annualised return over a comparison
// window. ReturnPct is nil when no price data covers the window.
type BenchmarkReturn struct {
	Ticker     string    `json:"ticker"`
	Name       string    `json:"name"`
	ReturnPct  *float64  `json:"returnPct"`
	StartDate  time.Time `json:"startDate"`
	EndDate    time.Time `json:"endDate"`
	StartPrice *float64  `json:"startPrice,omitempty"`
	EndPrice   *float64  `json:"endPrice,omitempty"`
}

// HoldingPerformance carries the return metrics for one current holding.
// TWR and MWR are annualised percentages; nil when they could not be
// computed from the available data.
type HoldingPerformance struct {
	Ticker            string                     `json:"ticker"`
	FundName          string                     `json:"fundName"`
	Platform          string                     `json:"platform"`
	TaxWrapper        string                     `json:"taxWrapper"`
	CurrentUnits      float64                    `json:"currentUnits"`
	CurrentValue      float64                    `json:"currentValue"`
	TotalInvested     float64                    `json:"totalInvested"`
	TotalWithdrawn    float64                    `json:"totalWithdrawn"`
	TWR               *float64                   `json:"twr"`
	MWR               *float64                   `json:"mwr"`
	HoldingPeriodDays int                        `json:"holdingPeriodDays"`
	FirstTransaction  time.Time                  `json:"firstTransaction"`
	LastTransaction   time.Time                  `json:"lastTransaction"`
	NumTransactions   int                        `json:"numTransactions"`
	Benchmarks        map[string]BenchmarkReturn `json:"benchmarks"`
}

// AlphaVs returns the excess TWR over a benchmark, or nil when either side
// is unavailable.
func (p HoldingPerformance) AlphaVs(benchmarkTicker string) *float64 {
	if p.TWR == nil {
		return nil
	}
	bench, ok := p.Benchmarks[benchmarkTicker]
	if !ok || bench.ReturnPct == nil {
		return nil
	}
	alpha := *p.TWR - *bench.ReturnPct
	return &alpha
}

// WrapperPerformance aggregates holdings per tax wrapper using
// value-weighted averages.
type WrapperPerformance struct {
	Wrapper        string                     `json:"wrapper"`
	CurrentValue   float64                    `json:"currentValue"`
	TotalInvested  float64                    `json:"totalInvested"`
	TotalWithdrawn float64                    `json:"totalWithdrawn"`
	TWR            *float64                   `json:"twr"`
	MWR            *float64                   `json:"mwr"`
	NumHoldings    int                        `json:"numHoldings"`
	Benchmarks     map[string]BenchmarkReturn `json:"benchmarks"`
}
