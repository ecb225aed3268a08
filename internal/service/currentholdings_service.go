package service

import (
	"errors"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/asheworth/portfolio-analyzer/internal/apperrors"
	"github.com/asheworth/portfolio-analyzer/internal/model"
)

// platformAliases maps the display names used in the holdings snapshot to
// the platform values stored in the ledger.
var platformAliases = map[string]string{
	"Interactive Investor": "INTERACTIVE_INVESTOR",
	"Fidelity":             "FIDELITY",
	"InvestEngine":         "INVEST_ENGINE",
	"Vanguard":             "VANGUARD",
	"Interactive Brokers":  "Interactive Brokers",
	"DODL":                 "DODL",
}

// ledgerPlatform translates a snapshot platform name to its ledger form.
// Unknown platforms fall back to upper snake case.
func ledgerPlatform(platform string) string {
	if mapped, ok := platformAliases[platform]; ok {
		return mapped
	}
	return strings.ReplaceAll(strings.ToUpper(platform), " ", "_")
}

// convertLSEPrice converts an LSE quote from pence to pounds when it looks
// like a pence value. Price feeds mix pence and pound quotes for .L tickers,
// so anything above 500 is treated as pence.
func convertLSEPrice(ticker string, price float64) float64 {
	if strings.HasSuffix(ticker, ".L") && price > 500 {
		return price / 100.0
	}
	return price
}

// CurrentHoldingsService values still-held positions from the holdings
// snapshot, deriving cost basis from the transaction history.
type CurrentHoldingsService struct {
	transactions TransactionSource
	prices       PriceSource
	snapshot     SnapshotSource
}

// NewCurrentHoldingsService creates a new CurrentHoldingsService reading from the provided sources.
func NewCurrentHoldingsService(transactions TransactionSource, prices PriceSource, snapshot SnapshotSource) *CurrentHoldingsService {
	return &CurrentHoldingsService{transactions: transactions, prices: prices, snapshot: snapshot}
}

// Analyze values every position in the current holdings snapshot. Holdings
// are returned in ticker order so output is stable across runs.
func (s *CurrentHoldingsService) Analyze() ([]model.HoldingAnalysis, model.HoldingsSummary, error) {
	log.Printf("Starting current holdings analysis")

	snapshot, err := s.snapshot.Load()
	if err != nil {
		return nil, model.HoldingsSummary{}, err
	}
	if len(snapshot) == 0 {
		log.Printf("  No current holdings found")
		return nil, model.HoldingsSummary{}, nil
	}

	tickers := make([]string, 0, len(snapshot))
	for ticker := range snapshot {
		tickers = append(tickers, ticker)
	}
	sort.Strings(tickers)

	var results []model.HoldingAnalysis
	withPrices, withoutPrices := 0, 0
	var totalValue, totalCost float64

	for _, ticker := range tickers {
		entry := snapshot[ticker]
		fundName := entry.FundName
		if fundName == "" {
			fundName = ticker
		}

		for _, position := range entry.Holdings {
			price, priceDate, err := s.latestPrice(ticker)
			if err != nil {
				if !errors.Is(err, apperrors.ErrPriceNotFound) {
					return nil, model.HoldingsSummary{}, err
				}
				withoutPrices++
				results = append(results, model.HoldingAnalysis{
					Ticker:     ticker,
					FundName:   fundName,
					Platform:   position.Platform,
					TaxWrapper: position.TaxWrapper,
					Units:      position.Units,
					Confidence: 0.3,
					Notes:      "No price data available",
				})
				continue
			}

			withPrices++
			currentValue := position.Units * price

			costBasis, totalBuys, firstBuy, confidence, err := s.costBasis(
				ticker, fundName, position.Platform, position.TaxWrapper, position.Units)
			if err != nil {
				return nil, model.HoldingsSummary{}, err
			}

			unrealizedGain := currentValue - costBasis
			unrealizedGainPct := 0.0
			if costBasis > 0 {
				unrealizedGainPct = unrealizedGain / costBasis * 100
			}

			notes := ""
			if confidence < 0.9 {
				notes = "Cost basis may be incomplete (pre-history purchases)"
			}

			results = append(results, model.HoldingAnalysis{
				Ticker:            ticker,
				FundName:          fundName,
				Platform:          position.Platform,
				TaxWrapper:        position.TaxWrapper,
				Units:             position.Units,
				CurrentPrice:      price,
				CurrentValue:      currentValue,
				CostBasis:         costBasis,
				UnrealizedGain:    unrealizedGain,
				UnrealizedGainPct: unrealizedGainPct,
				PriceDate:         priceDate,
				FirstBuyDate:      firstBuy,
				TotalBuys:         totalBuys,
				Confidence:        confidence,
				Notes:             notes,
			})

			totalValue += currentValue
			totalCost += costBasis
		}
	}

	summary := summarizeHoldings(results, withPrices, withoutPrices, totalValue, totalCost)

	log.Printf("  Analyzed %d holdings (%d with prices, %d without)",
		len(results), withPrices, withoutPrices)
	log.Printf("  Total value £%.2f, unrealized gain £%.2f",
		totalValue, summary.TotalUnrealizedGain)

	return results, summary, nil
}

// latestPrice finds the newest close for a ticker, falling back to the .L
// variant for tickers that look like bare LSE symbols. ISIN-style tickers
// (GB, IE, LU prefixes) never get the suffix.
func (s *CurrentHoldingsService) latestPrice(ticker string) (float64, time.Time, error) {
	point, err := s.prices.Latest(ticker)
	if err == nil {
		return convertLSEPrice(ticker, point.ClosePrice), point.Date, nil
	}
	if !errors.Is(err, apperrors.ErrPriceNotFound) {
		return 0, time.Time{}, err
	}

	if !strings.HasSuffix(ticker, ".L") &&
		!strings.HasPrefix(ticker, "GB") &&
		!strings.HasPrefix(ticker, "IE") &&
		!strings.HasPrefix(ticker, "LU") {
		lseTicker := ticker + ".L"
		point, err = s.prices.Latest(lseTicker)
		if err == nil {
			return convertLSEPrice(lseTicker, point.ClosePrice), point.Date, nil
		}
		if !errors.Is(err, apperrors.ErrPriceNotFound) {
			return 0, time.Time{}, err
		}
	}

	return 0, time.Time{}, apperrors.ErrPriceNotFound
}

// costBasis replays the position's transactions FIFO and sums the remaining
// lots. Confidence drops to 0.7 when the surviving lots cover less than 90%
// of the units actually held, which indicates pre-history purchases.
func (s *CurrentHoldingsService) costBasis(ticker, fundName, platform, taxWrapper string, unitsHeld float64) (float64, int, time.Time, float64, error) {
	transactions, err := s.transactions.TransactionsForHolding(
		ticker, fundName, ledgerPlatform(platform), taxWrapper)
	if err != nil {
		return 0, 0, time.Time{}, 0, err
	}
	if len(transactions) == 0 {
		return 0, 0, time.Time{}, 0.5, nil
	}

	var lots []*model.Lot
	totalBuys := 0
	var firstBuy time.Time

	for _, tx := range transactions {
		switch tx.Type {
		case model.TransactionBuy:
			lots = append(lots, &model.Lot{
				BuyDate:        tx.Date,
				Units:          tx.Units,
				PricePerUnit:   tx.PricePerUnit,
				RemainingUnits: tx.Units,
			})
			totalBuys++
			if firstBuy.IsZero() {
				firstBuy = tx.Date
			}
		case model.TransactionSell:
			unitsToSell := tx.Units
			for unitsToSell > model.UnitTolerance && len(lots) > 0 {
				lot := lots[0]
				unitsToSell -= lot.Consume(unitsToSell)
				if lot.Exhausted() {
					lots = lots[1:]
				}
			}
		}
	}

	var costBasis, unitsAccounted float64
	for _, lot := range lots {
		if !lot.Exhausted() {
			costBasis += lot.RemainingUnits * lot.PricePerUnit
			unitsAccounted += lot.RemainingUnits
		}
	}

	confidence := 1.0
	if diff := unitsAccounted - unitsHeld; diff > unitsHeld*0.1 || diff < -unitsHeld*0.1 {
		confidence = 0.7
	}

	return costBasis, totalBuys, firstBuy, confidence, nil
}

func summarizeHoldings(results []model.HoldingAnalysis, withPrices, withoutPrices int, totalValue, totalCost float64) model.HoldingsSummary {
	summary := model.HoldingsSummary{
		TotalHoldings:         len(results),
		HoldingsWithPrices:    withPrices,
		HoldingsWithoutPrices: withoutPrices,
		TotalCurrentValue:     totalValue,
		TotalCostBasis:        totalCost,
		TotalUnrealizedGain:   totalValue - totalCost,
		ByWrapper:             make(map[string]model.GroupTotals),
		ByPlatform:            make(map[string]model.GroupTotals),
	}
	if totalCost > 0 {
		summary.TotalUnrealizedGainPct = summary.TotalUnrealizedGain / totalCost * 100
	}

	for _, r := range results {
		if r.CurrentValue <= 0 {
			continue
		}

		wrapper := summary.ByWrapper[r.TaxWrapper]
		wrapper.Value += r.CurrentValue
		wrapper.Cost += r.CostBasis
		wrapper.Gain += r.UnrealizedGain
		summary.ByWrapper[r.TaxWrapper] = wrapper

		platform := summary.ByPlatform[r.Platform]
		platform.Value += r.CurrentValue
		platform.Cost += r.CostBasis
		platform.Gain += r.UnrealizedGain
		summary.ByPlatform[r.Platform] = platform
	}

	var withCost []model.HoldingAnalysis
	for _, r := range results {
		if r.CostBasis > 0 {
			withCost = append(withCost, r)
		}
	}
	gainers := make([]model.HoldingAnalysis, len(withCost))
	copy(gainers, withCost)
	sort.SliceStable(gainers, func(i, j int) bool {
		return gainers[i].UnrealizedGain > gainers[j].UnrealizedGain
	})
	losers := make([]model.HoldingAnalysis, len(withCost))
	copy(losers, withCost)
	sort.SliceStable(losers, func(i, j int) bool {
		return losers[i].UnrealizedGain < losers[j].UnrealizedGain
	})

	if len(gainers) > 5 {
		gainers = gainers[:5]
	}
	if len(losers) > 5 {
		losers = losers[:5]
	}
	summary.TopGainers = gainers
	summary.TopLosers = losers

	return summary
}
