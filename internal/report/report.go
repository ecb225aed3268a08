// Package report renders an analysis result as a markdown report.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/asheworth/portfolio-analyzer/internal/model"
)

// reviewConfidence is the cutoff below which a holding's cost basis is
// considered incomplete and listed for manual review.
const reviewConfidence = 0.8

// Generator renders one analysis result.
type Generator struct {
	result *model.AnalysisResult
}

// NewGenerator creates a Generator for the given result.
func NewGenerator(result *model.AnalysisResult) *Generator {
	return &Generator{result: result}
}

// Generate renders the complete markdown report.
func (g *Generator) Generate() string {
	sections := []string{
		g.header(),
		g.executiveSummary(),
		g.currentHoldingsSection(),
		g.holdingPeriodSection(),
		g.tradingFrequencySection(),
		g.priceImpactSection(),
		g.crossReferenceSection(),
		g.dataQualitySection(),
		methodologySection(),
	}
	return strings.Join(sections, "\n\n")
}

// Save writes the report to a file, creating parent directories as needed.
func (g *Generator) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(g.Generate()), 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

func (g *Generator) header() string {
	r := g.result
	return fmt.Sprintf(`# Portfolio Transaction Analysis Report

**Generated:** %s
**Data Range:** %s to %s
**Total Transactions Analyzed:** %d (%d BUY, %d SELL)
**Overall Confidence:** %.2f

---`,
		r.GeneratedAt.Format("2006-01-02 15:04:05"),
		r.DataStartDate.Format("2006-01-02"), r.DataEndDate.Format("2006-01-02"),
		r.TotalTransactions, r.BuyCount, r.SellCount,
		r.OverallConfidence)
}

func (g *Generator) executiveSummary() string {
	r := g.result
	hp := r.HoldingPeriodSummary
	pi := r.PriceImpactSummary

	var b strings.Builder
	b.WriteString("## Executive Summary\n\n")
	b.WriteString("| Metric | Value | Confidence |\n")
	b.WriteString("|--------|-------|------------|\n")
	fmt.Fprintf(&b, "| Average Holding Period | %.0f days | 0.95 |\n", hp.AvgHoldingDays)
	fmt.Fprintf(&b, "| Quick Flips (<30 days) | %d trades (%.1f%%) | 0.95 |\n", hp.QuickFlipCount, hp.QuickFlipPct)
	fmt.Fprintf(&b, "| Favorable Price Impact | %.1f%% of trades | 0.85 |\n", pi.FavorablePct)
	fmt.Fprintf(&b, "| Net Price Impact | £%s | 0.85 |\n", commaf(pi.NetImpact))
	fmt.Fprintf(&b, "| Cross-Platform Matches | %d verified | 0.92 |\n", len(r.VerifiedMatches))
	fmt.Fprintf(&b, "| Items Requiring Review | %d | - |\n", len(r.UnsureMatches))
	b.WriteString("\n### Key Findings\n\n")
	fmt.Fprintf(&b, "1. **Holding Periods**: %s\n", holdingInsight(hp))
	fmt.Fprintf(&b, "2. **Trading Frequency**: %s\n", frequencyInsight(r.MonthlyPattern))
	fmt.Fprintf(&b, "3. **Price Execution**: %s", priceInsight(pi))
	return b.String()
}

func holdingInsight(summary model.HoldingPeriodSummary) string {
	if summary.TotalAnalyzed == 0 {
		return "Insufficient data for analysis"
	}
	switch {
	case summary.QuickFlipPct > 20:
		return fmt.Sprintf("High short-term trading activity (%.1f%% of sales within 30 days)", summary.QuickFlipPct)
	case summary.QuickFlipPct > 10:
		return fmt.Sprintf("Moderate short-term trading (%.1f%% of sales within 30 days)", summary.QuickFlipPct)
	default:
		return fmt.Sprintf("Generally long-term focused (%.1f%% quick flips)", summary.QuickFlipPct)
	}
}

func frequencyInsight(monthly model.MonthlyPattern) string {
	if monthly.TotalMonths == 0 {
		return "Insufficient data for analysis"
	}
	switch {
	case monthly.AvgTradesPerMonth > 10:
		return fmt.Sprintf("High trading activity (avg %.1f trades/month)", monthly.AvgTradesPerMonth)
	case monthly.AvgTradesPerMonth > 5:
		return fmt.Sprintf("Moderate trading activity (avg %.1f trades/month)", monthly.AvgTradesPerMonth)
	default:
		return fmt.Sprintf("Low trading frequency (avg %.1f trades/month)", monthly.AvgTradesPerMonth)
	}
}

func priceInsight(summary model.PriceImpactSummary) string {
	if summary.TotalAnalyzed == 0 {
		return "Insufficient price data for analysis"
	}
	switch {
	case summary.FavorablePct > 60:
		return fmt.Sprintf("Strong execution (%.1f%% favorable trades)", summary.FavorablePct)
	case summary.FavorablePct > 40:
		return fmt.Sprintf("Mixed execution quality (%.1f%% favorable trades)", summary.FavorablePct)
	default:
		return fmt.Sprintf("Execution timing could improve (%.1f%% favorable trades)", summary.FavorablePct)
	}
}

func (g *Generator) currentHoldingsSection() string {
	holdings := g.result.CurrentHoldings
	summary := g.result.CurrentHoldingsSummary

	if len(holdings) == 0 {
		return `## Current Holdings (Unrealized Gains)

*No current holdings data available. Ensure the holdings snapshot file exists.*

**Note:** This section analyzes still-held positions from the holdings snapshot.`
	}

	var b strings.Builder
	b.WriteString("## Current Holdings (Unrealized Gains)\n\n")
	b.WriteString("This section analyzes still-held positions from your current portfolio.\n\n")

	b.WriteString("### Portfolio Summary\n\n")
	b.WriteString("| Metric | Value |\n|--------|-------|\n")
	fmt.Fprintf(&b, "| Total Current Value | £%s |\n", commaf(summary.TotalCurrentValue))
	fmt.Fprintf(&b, "| Total Cost Basis | £%s |\n", commaf(summary.TotalCostBasis))
	fmt.Fprintf(&b, "| **Unrealized Gain/Loss** | **£%s** |\n", commaf(summary.TotalUnrealizedGain))
	fmt.Fprintf(&b, "| **Unrealized Return** | **%+.2f%%** |\n", summary.TotalUnrealizedGainPct)

	b.WriteString("\n### By Tax Wrapper\n\n")
	b.WriteString("| Wrapper | Current Value | Cost Basis | Unrealized Gain | Return |\n")
	b.WriteString("|---------|---------------|------------|-----------------|--------|\n")
	if len(summary.ByWrapper) == 0 {
		b.WriteString("| *No data* | - | - | - | - |\n")
	}
	for _, wrapper := range sortedKeys(summary.ByWrapper) {
		totals := summary.ByWrapper[wrapper]
		gainPct := 0.0
		if totals.Cost > 0 {
			gainPct = totals.Gain / totals.Cost * 100
		}
		fmt.Fprintf(&b, "| %s | £%s | £%s | £%s | %+.1f%% |\n",
			wrapper, commaf(totals.Value), commaf(totals.Cost), commaf(totals.Gain), gainPct)
	}

	var highConf, lowConf []model.HoldingAnalysis
	for _, h := range holdings {
		if h.CurrentValue <= 0 {
			continue
		}
		if h.Confidence >= reviewConfidence {
			highConf = append(highConf, h)
		} else {
			lowConf = append(lowConf, h)
		}
	}

	fmt.Fprintf(&b, "\n### Verified Holdings by Platform (Confidence >= %.1f)\n\n", reviewConfidence)
	b.WriteString(verifiedHoldingsByPlatform(highConf))

	if len(lowConf) > 0 {
		fmt.Fprintf(&b, "\n\n### Items Requiring Review (Confidence < %.1f)\n\n", reviewConfidence)
		b.WriteString("The following holdings have incomplete cost basis data. Please provide historical buy transactions.\n\n")
		b.WriteString(reviewHoldings(lowConf))
	}

	fmt.Fprintf(&b, "\n\n**Note:** Cost basis calculated using FIFO from transaction history. Only holdings with confidence >= %.1f are shown in the verified section.", reviewConfidence)
	return b.String()
}

func verifiedHoldingsByPlatform(holdings []model.HoldingAnalysis) string {
	if len(holdings) == 0 {
		return "*No high-confidence holdings found.*"
	}

	byPlatform := make(map[string][]model.HoldingAnalysis)
	for _, h := range holdings {
		byPlatform[h.Platform] = append(byPlatform[h.Platform], h)
	}

	var sections []string
	for _, platform := range sortedKeys(byPlatform) {
		group := byPlatform[platform]
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].CurrentValue > group[j].CurrentValue
		})

		var total, cost, gain float64
		for _, h := range group {
			total += h.CurrentValue
			cost += h.CostBasis
			gain += h.UnrealizedGain
		}
		gainPct := 0.0
		if cost > 0 {
			gainPct = gain / cost * 100
		}

		var b strings.Builder
		fmt.Fprintf(&b, "#### %s\n\n", platform)
		fmt.Fprintf(&b, "**Platform Total:** £%s | **Cost:** £%s | **Gain:** £%s (%+.1f%%)\n\n",
			commaf(total), commaf(cost), commaf(gain), gainPct)
		b.WriteString("| Fund | Ticker | Wrapper | Value | Cost | TWR | MWR | Alpha | Days |\n")
		b.WriteString("|------|--------|---------|-------|------|-----|-----|-------|------|\n")
		for _, h := range group {
			daysStr := "-"
			if h.HoldingPeriodDays > 0 {
				daysStr = fmt.Sprintf("%d", h.HoldingPeriodDays)
			}

			// Alpha is measured against the All-World tracker
			alphaStr := "N/A"
			if h.TWR != nil {
				if bench, ok := h.Benchmarks["VWRL.L"]; ok && bench != nil {
					alphaStr = fmt.Sprintf("%+.1f%%", *h.TWR-*bench)
				}
			}

			fmt.Fprintf(&b, "| %s | %s | %s | £%s | £%s | %s | %s | %s | %s |\n",
				truncate(h.FundName, 30), h.Ticker, h.TaxWrapper,
				commaf0(h.CurrentValue), commaf0(h.CostBasis),
				pctOrNA(h.TWR), pctOrNA(h.MWR), alphaStr, daysStr)
		}
		sections = append(sections, strings.TrimRight(b.String(), "\n"))
	}

	return strings.Join(sections, "\n\n")
}

func reviewHoldings(holdings []model.HoldingAnalysis) string {
	type groupKey struct{ platform, wrapper string }

	groups := make(map[groupKey][]model.HoldingAnalysis)
	var keys []groupKey
	for _, h := range holdings {
		key := groupKey{h.Platform, h.TaxWrapper}
		if _, ok := groups[key]; !ok {
			keys = append(keys, key)
		}
		groups[key] = append(groups[key], h)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].platform != keys[j].platform {
			return keys[i].platform < keys[j].platform
		}
		return keys[i].wrapper < keys[j].wrapper
	})

	var sections []string
	for _, key := range keys {
		group := groups[key]
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].CurrentValue > group[j].CurrentValue
		})

		var total float64
		for _, h := range group {
			total += h.CurrentValue
		}

		var b strings.Builder
		fmt.Fprintf(&b, "#### %s - %s\n\n", key.platform, key.wrapper)
		fmt.Fprintf(&b, "**Section Total:** £%s\n\n", commaf(total))
		b.WriteString("| Fund | Ticker | Units | Value | Cost | Conf |\n")
		b.WriteString("|------|--------|-------|-------|------|------|\n")
		for _, h := range group {
			fmt.Fprintf(&b, "| %s | %s | %s | £%s | £%s | %.2f |\n",
				truncate(h.FundName, 40), h.Ticker,
				commaf(h.Units), commaf(h.CurrentValue), commaf(h.CostBasis), h.Confidence)
		}
		sections = append(sections, strings.TrimRight(b.String(), "\n"))
	}

	return strings.Join(sections, "\n\n")
}

func (g *Generator) holdingPeriodSection() string {
	summary := g.result.HoldingPeriodSummary
	periods := g.result.HoldingPeriods

	if len(periods) == 0 {
		return `## 1. Holding Period Analysis

*No holding period data available - no complete buy-sell cycles found.*

**Confidence Level:** N/A`
	}

	var b strings.Builder
	b.WriteString("## 1. Holding Period Analysis\n\n")
	b.WriteString("### Summary by Category\n\n")
	b.WriteString("| Category | Count | % of Total | Avg Gain/Loss | Total Gain/Loss | Flag |\n")
	b.WriteString("|----------|-------|------------|---------------|-----------------|------|\n")
	for _, cat := range model.Categories {
		cs := summary.ByCategory[cat]
		if cs.Count == 0 {
			continue
		}
		fmt.Fprintf(&b, "| %s | %d | %.1f%% | %+.2f%% | £%s | %s |\n",
			cs.Label, cs.Count, cs.PctOfTotal, cs.AvgGainLossPct, commaf(cs.TotalGainLoss), cs.Flag)
	}

	fmt.Fprintf(&b, "\n**Total Holdings Analyzed:** %d\n", summary.TotalAnalyzed)
	fmt.Fprintf(&b, "**Average Holding Period:** %.0f days\n", summary.AvgHoldingDays)
	fmt.Fprintf(&b, "**Total Realised Gain/Loss:** £%s\n", commaf(summary.TotalGainLoss))

	b.WriteString(quickFlipsTable(periods))

	b.WriteString("\n**Confidence Level:** 0.95\n")
	b.WriteString("**Caveats:**\n")
	b.WriteString("- FIFO (First-In-First-Out) methodology used for lot matching\n")
	b.WriteString("- Transfers between platforms/wrappers not tracked as sales\n")
	b.WriteString("- Partial sells consume oldest lots first")
	return b.String()
}

func quickFlipsTable(periods []model.HoldingPeriodResult) string {
	var flips []model.HoldingPeriodResult
	for _, p := range periods {
		if p.QuickFlip() {
			flips = append(flips, p)
		}
	}
	if len(flips) == 0 {
		return ""
	}
	sort.SliceStable(flips, func(i, j int) bool {
		return flips[i].HoldingDays < flips[j].HoldingDays
	})

	type flipKey struct {
		fund, platform, buy, sell string
		days                      int
	}
	seen := make(map[flipKey]struct{})

	var b strings.Builder
	b.WriteString("\n### Quick Flips (<30 days) - Top 15\n\n")
	b.WriteString("| Fund | Platform | Wrapper | Buy Date | Sell Date | Days | Gain/Loss |\n")
	b.WriteString("|------|----------|---------|----------|-----------|------|-----------|\n")
	rows := 0
	for _, f := range flips {
		key := flipKey{f.FundName, f.Platform,
			f.BuyDate.Format("2006-01-02"), f.SellDate.Format("2006-01-02"), f.HoldingDays}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %d | %+.2f%% |\n",
			truncate(f.FundName, 35), f.Platform, f.TaxWrapper,
			f.BuyDate.Format("2006-01-02"), f.SellDate.Format("2006-01-02"),
			f.HoldingDays, f.GainLossPct)
		rows++
		if rows >= 15 {
			break
		}
	}
	return b.String()
}

func (g *Generator) tradingFrequencySection() string {
	r := g.result

	var b strings.Builder
	b.WriteString("## 2. Trading Frequency Analysis\n\n")

	b.WriteString("### By Platform\n\n")
	b.WriteString("| Platform | Total Trades | Buys | Sells | First Trade | Last Trade |\n")
	b.WriteString("|----------|--------------|------|-------|-------------|------------|\n")
	if len(r.FrequencyByPlatform) == 0 {
		b.WriteString("| *No data* | - | - | - | - | - |\n")
	}
	for _, m := range r.FrequencyByPlatform {
		fmt.Fprintf(&b, "| %s | %d | %d | %d | %s | %s |\n",
			m.Platform, m.TotalTrades, m.BuyCount, m.SellCount,
			m.FirstTradeDate.Format("2006-01-02"), m.LastTradeDate.Format("2006-01-02"))
	}

	b.WriteString("\n### By Tax Wrapper\n\n")
	b.WriteString("| Tax Wrapper | Total Trades | Buys | Sells |\n")
	b.WriteString("|-------------|--------------|------|-------|\n")
	if len(r.FrequencyByWrapper) == 0 {
		b.WriteString("| *No data* | - | - | - |\n")
	}
	for _, m := range r.FrequencyByWrapper {
		fmt.Fprintf(&b, "| %s | %d | %d | %d |\n", m.TaxWrapper, m.TotalTrades, m.BuyCount, m.SellCount)
	}

	b.WriteString("\n### Top 10 Most Traded Funds\n\n")
	b.WriteString("| Fund | Ticker | Total Trades | Trades/Month |\n")
	b.WriteString("|------|--------|--------------|--------------|\n")
	if len(r.FrequencyByFund) == 0 {
		b.WriteString("| *No data* | - | - | - |\n")
	}
	for i, m := range r.FrequencyByFund {
		if i >= 10 {
			break
		}
		ticker := m.Ticker
		if ticker == "" {
			ticker = "N/A"
		}
		fmt.Fprintf(&b, "| %s | %s | %d | %.2f |\n",
			truncate(m.FundName, 40), ticker, m.TotalTrades, m.AvgTradesPerMonth)
	}

	b.WriteString("\n### Yearly Trading Pattern\n\n")
	b.WriteString("| Year | Total Trades | Buys | Sells |\n")
	b.WriteString("|------|--------------|------|-------|\n")
	if len(r.MonthlyPattern.Yearly) == 0 {
		b.WriteString("| *No data* | - | - | - |\n")
	}
	for _, year := range sortedKeys(r.MonthlyPattern.Yearly) {
		counts := r.MonthlyPattern.Yearly[year]
		fmt.Fprintf(&b, "| %s | %d | %d | %d |\n", year, counts.Trades, counts.Buys, counts.Sells)
	}

	peakMonth := r.MonthlyPattern.PeakMonth
	if peakMonth == "" {
		peakMonth = "N/A"
	}
	fmt.Fprintf(&b, "\n**Peak Month:** %s (%d trades)\n", peakMonth, r.MonthlyPattern.PeakMonthTrades)
	fmt.Fprintf(&b, "**Average Trades/Month:** %.2f\n\n", r.MonthlyPattern.AvgTradesPerMonth)
	b.WriteString("**Confidence Level:** 1.00 (direct database counts)")
	return b.String()
}

func (g *Generator) priceImpactSection() string {
	summary := g.result.PriceImpactSummary

	if len(g.result.PriceImpacts) == 0 {
		return `## 3. Price Impact Analysis

*No price impact data available - transactions could not be matched to market prices.*

**Confidence Level:** N/A`
	}

	buyStats := summary.ByType[model.TransactionBuy]
	sellStats := summary.ByType[model.TransactionSell]

	var b strings.Builder
	b.WriteString("## 3. Price Impact Analysis\n\n")
	b.WriteString("### Summary\n\n")
	b.WriteString("| Metric | Value |\n|--------|-------|\n")
	fmt.Fprintf(&b, "| Transactions Analyzed | %d |\n", summary.TotalAnalyzed)
	fmt.Fprintf(&b, "| Missing Price Data | %d transactions |\n", summary.MissingPrices)
	fmt.Fprintf(&b, "| Average Deviation | %.2f%% |\n", summary.AvgDeviationPct)
	fmt.Fprintf(&b, "| Net Impact | £%s |\n", commaf(summary.NetImpact))

	b.WriteString("\n### Classification Breakdown\n\n")
	b.WriteString("| Classification | Count | Percentage |\n")
	b.WriteString("|----------------|-------|------------|\n")
	fmt.Fprintf(&b, "| Favorable | %d | %.1f%% |\n", summary.FavorableCount, summary.FavorablePct)
	fmt.Fprintf(&b, "| Neutral (±0.5%%) | %d | %.1f%% |\n", summary.NeutralCount, summary.NeutralPct)
	fmt.Fprintf(&b, "| Unfavorable | %d | %.1f%% |\n", summary.UnfavorableCount, summary.UnfavorablePct)

	b.WriteString("\n### By Transaction Type\n\n")
	b.WriteString("| Type | Total | Favorable | Unfavorable |\n")
	b.WriteString("|------|-------|-----------|-------------|\n")
	fmt.Fprintf(&b, "| BUY | %d | %d | %d |\n", buyStats.Count, buyStats.Favorable, buyStats.Unfavorable)
	fmt.Fprintf(&b, "| SELL | %d | %d | %d |\n", sellStats.Count, sellStats.Favorable, sellStats.Unfavorable)

	b.WriteString("\n**Confidence Level:** 0.85\n")
	b.WriteString("**Caveats:**\n")
	b.WriteString("- Market prices are daily closes; intraday execution prices will differ\n")
	b.WriteString("- Positive deviation on BUY = paid above market (unfavorable)\n")
	b.WriteString("- Positive deviation on SELL = sold above market (favorable)\n")
	b.WriteString("- Currency conversion may affect USD/EUR-denominated funds")
	return b.String()
}

func (g *Generator) crossReferenceSection() string {
	var b strings.Builder
	b.WriteString("## 4. Cross-Reference Matches\n\n")

	b.WriteString("### Verified Matches (Confidence >= 0.90)\n\n")
	b.WriteString("These matches are high-confidence identifications of the same underlying fund held across different platforms or tax wrappers.\n\n")
	b.WriteString("| Fund A | Location A | Fund B | Location B | Match Type | Confidence |\n")
	b.WriteString("|--------|------------|--------|------------|------------|------------|\n")
	if len(g.result.VerifiedMatches) == 0 {
		b.WriteString("| *No verified matches found* | - | - | - | - | - |\n")
	}
	for _, m := range g.result.VerifiedMatches {
		fmt.Fprintf(&b, "| %s | %s/%s | %s | %s/%s | %s | %.2f |\n",
			truncate(m.FundA, 30), m.PlatformA, m.WrapperA,
			truncate(m.FundB, 30), m.PlatformB, m.WrapperB,
			m.MatchType, m.Confidence)
	}

	b.WriteString("\n### Requires Review (Confidence < 0.90)\n\n")
	b.WriteString("**ACTION REQUIRED:** Please review these potential matches and confirm or reject.\n\n")
	b.WriteString("| Fund A | Location A | Fund B | Location B | Match Type | Confidence | Reason |\n")
	b.WriteString("|--------|------------|--------|------------|------------|------------|--------|\n")
	if len(g.result.UnsureMatches) == 0 {
		b.WriteString("| *No uncertain matches* | - | - | - | - | - | - |\n")
	}
	for _, m := range g.result.UnsureMatches {
		fmt.Fprintf(&b, "| %s | %s/%s | %s | %s/%s | %s | %.2f | %s |\n",
			truncate(m.FundA, 30), m.PlatformA, m.WrapperA,
			truncate(m.FundB, 30), m.PlatformB, m.WrapperB,
			m.MatchType, m.Confidence, truncate(m.Reason, 30))
	}

	b.WriteString("\n**Note:** Confidence threshold set to 0.90 (strict) as requested.")
	return b.String()
}

func (g *Generator) dataQualitySection() string {
	r := g.result

	var b strings.Builder
	b.WriteString("## Appendix: Data Quality Notes\n\n")
	b.WriteString("### Issues Detected\n\n")
	if len(r.DataQualityNotes) == 0 {
		b.WriteString("- No issues detected\n")
	}
	for _, note := range r.DataQualityNotes {
		fmt.Fprintf(&b, "- %s\n", note)
	}

	b.WriteString("\n### Missing Data\n\n")
	fmt.Fprintf(&b, "- **Funds without ticker mapping:** %d\n", len(r.FundsWithoutTicker))
	fmt.Fprintf(&b, "- **Transactions missing price data:** %d\n", r.TransactionsMissingPrices)

	if len(r.FundsWithoutTicker) > 0 {
		b.WriteString("\n### Funds Without Ticker Mapping\n\n")
		b.WriteString("These funds cannot be included in price impact analysis:\n\n")
		for i, fund := range r.FundsWithoutTicker {
			if i >= 20 {
				fmt.Fprintf(&b, "  - ... and %d more\n", len(r.FundsWithoutTicker)-20)
				break
			}
			fmt.Fprintf(&b, "  - %s\n", fund)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func methodologySection() string {
	return `## Methodology

### Holding Period Analysis
- **Method:** FIFO (First-In-First-Out) lot matching
- **Categories:**
  - Very short-term: <30 days
  - Short-term: 30-89 days
  - Medium-term: 90-364 days
  - Long-term: 365+ days
- **Gain/Loss:** Calculated as (sell_value - buy_value) / buy_value x 100

### Price Impact Analysis
- **Source:** Transaction execution price vs. daily market close
- **Classification:**
  - Favorable: Bought below market OR sold above market
  - Neutral: Within ±0.5% of market
  - Unfavorable: Bought above market OR sold below market

### Cross-Reference Matching
- **Confidence Levels:**
  - 1.00: Ticker + ISIN match
  - 0.98: SEDOL exact match
  - 0.95: Ticker match only
  - 0.92: ISIN match only
  - <0.90: Requires manual review

### Confidence Framework

| Level | Meaning |
|-------|---------|
| 1.00 | Direct database fact (counts, dates) |
| 0.95-0.99 | Strong identifier match |
| 0.90-0.94 | Good match, minor uncertainty |
| 0.85-0.89 | Needs review |
| <0.85 | Low confidence (flagged) |

---

*Report generated by Portfolio Transaction Analyzer*`
}

// truncate clips a string to at most n bytes so long fund names do not
// break the report tables.
func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func pctOrNA(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%+.1f%%", *v)
}

// commaf formats a float with thousands separators and two decimals.
func commaf(v float64) string {
	return commaSeparate(fmt.Sprintf("%.2f", v))
}

// commaf0 formats a float with thousands separators and no decimals.
func commaf0(v float64) string {
	return commaSeparate(fmt.Sprintf("%.0f", v))
}

func commaSeparate(s string) string {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart := s
	fracPart := ""
	if dot := strings.IndexByte(s, '.'); dot >= 0 {
		intPart, fracPart = s[:dot], s[dot:]
	}

	var b strings.Builder
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(digit)
	}

	out := b.String() + fracPart
	if neg {
		out = "-" + out
	}
	return out
}

func sortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
