package model

import "time"

// HoldingPeriodCategory buckets a realised sale by how long the consumed lot
// was held.
type HoldingPeriodCategory string

const (
	VeryShortTerm HoldingPeriodCategory = "very_short_term" // <30 days
	ShortTerm     HoldingPeriodCategory = "short_term"      // 30-89 days
	MediumTerm    HoldingPeriodCategory = "medium_term"     // 90-364 days
	LongTerm      HoldingPeriodCategory = "long_term"       // 365+ days
)

// Categories lists all holding period categories in ascending duration order.
var Categories = []HoldingPeriodCategory{VeryShortTerm, ShortTerm, MediumTerm, LongTerm}

// CategoryFromDays classifies a holding duration in days.
func CategoryFromDays(days int) HoldingPeriodCategory {
	switch {
	case days < 30:
		return VeryShortTerm
	case days < 90:
		return ShortTerm
	case days < 365:
		return MediumTerm
	default:
		return LongTerm
	}
}

// Label returns the human-readable day-range label.
func (c HoldingPeriodCategory) Label() string {
	switch c {
	case VeryShortTerm:
		return "<30 days"
	case ShortTerm:
		return "30-89 days"
	case MediumTerm:
		return "90-364 days"
	default:
		return "365+ days"
	}
}

// Flag returns the attention flag attached to the category.
func (c HoldingPeriodCategory) Flag() string {
	switch c {
	case VeryShortTerm:
		return "HIGH ATTENTION"
	case ShortTerm:
		return "ATTENTION"
	case MediumTerm:
		return "NORMAL"
	default:
		return "GOOD"
	}
}

// HoldingPeriodResult records one (partial) lot consumption at a sell.
type HoldingPeriodResult struct {
	FundName    string                `json:"fundName"`
	Ticker      string                `json:"ticker,omitempty"`
	Platform    string                `json:"platform"`
	TaxWrapper  string                `json:"taxWrapper"`
	BuyDate     time.Time             `json:"buyDate"`
	SellDate    time.Time             `json:"sellDate"`
	HoldingDays int                   `json:"holdingDays"`
	UnitsSold   float64               `json:"unitsSold"`
	BuyPrice    float64               `json:"buyPrice"`
	SellPrice   float64               `json:"sellPrice"`
	BuyValue    float64               `json:"buyValue"`
	SellValue   float64               `json:"sellValue"`
	GainLoss    float64               `json:"gainLoss"`
	GainLossPct float64               `json:"gainLossPct"`
	Category    HoldingPeriodCategory `json:"category"`
	Confidence  float64               `json:"confidence"`
}

// QuickFlip reports whether the position was sold within 30 days.
func (r HoldingPeriodResult) QuickFlip() bool {
	return r.Category == VeryShortTerm
}

// CategorySummary aggregates results falling into one category.
type CategorySummary struct {
	Count          int     `json:"count"`
	PctOfTotal     float64 `json:"pctOfTotal"`
	AvgGainLossPct float64 `json:"avgGainLossPct"`
	TotalGainLoss  float64 `json:"totalGainLoss"`
	Label          string  `json:"label"`
	Flag           string  `json:"flag"`
}

// HoldingPeriodSummary is the aggregate view over all realised sales.
type HoldingPeriodSummary struct {
	TotalAnalyzed  int                                       `json:"totalAnalyzed"`
	ByCategory     map[HoldingPeriodCategory]CategorySummary `json:"byCategory"`
	AvgHoldingDays float64                                   `json:"avgHoldingDays"`
	AvgGainLossPct float64                                   `json:"avgGainLossPct"`
	TotalGainLoss  float64                                   `json:"totalGainLoss"`
	QuickFlipCount int                                       `json:"quickFlipCount"`
	QuickFlipPct   float64                                   `json:"quickFlipPct"`
}
