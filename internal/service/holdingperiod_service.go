package service

import (
	"fmt"
	"log"

	"github.com/asheworth/portfolio-analyzer/internal/model"
)

// HoldingPeriodService analyzes how long positions were held before being
// sold, using FIFO lot matching per (fund, platform, wrapper) position.
type HoldingPeriodService struct {
	transactions TransactionSource
}

// NewHoldingPeriodService creates a new HoldingPeriodService reading from the provided source.
func NewHoldingPeriodService(transactions TransactionSource) *HoldingPeriodService {
	return &HoldingPeriodService{transactions: transactions}
}

// Analyze runs the full holding period analysis over the transaction ledger.
// Returns one result per (partial) lot consumption, summary statistics, and
// any data quality issues found along the way.
func (s *HoldingPeriodService) Analyze() ([]model.HoldingPeriodResult, model.HoldingPeriodSummary, []string, error) {
	log.Printf("Starting holding period analysis (FIFO method)")

	transactions, err := s.transactions.AnalysisTransactions()
	if err != nil {
		return nil, model.HoldingPeriodSummary{}, nil, err
	}
	log.Printf("  Loaded %d BUY/SELL transactions", len(transactions))

	keys, grouped := groupTransactionsByFund(transactions)
	log.Printf("  Grouped into %d fund/platform/wrapper combinations", len(grouped))

	var allResults []model.HoldingPeriodResult
	var allIssues []string

	for _, key := range keys {
		results, issues := processPosition(key, grouped[key])
		allResults = append(allResults, results...)
		allIssues = append(allIssues, issues...)
	}

	summary := summarizeHoldingPeriods(allResults)

	log.Printf("  Analyzed %d holding period records", len(allResults))
	if len(allIssues) > 0 {
		log.Printf("  Found %d data quality issues", len(allIssues))
	}

	return allResults, summary, allIssues, nil
}

// processPosition runs FIFO matching over one position's transactions,
// which arrive already ordered by date then ledger order.
func processPosition(key model.FundKey, transactions []model.Transaction) ([]model.HoldingPeriodResult, []string) {
	var results []model.HoldingPeriodResult
	var issues []string
	var lotQueue []*model.Lot

	// Ticker comes from the position's first transaction, if mapped
	var ticker string
	if len(transactions) > 0 {
		ticker = transactions[0].Ticker
	}

	for _, tx := range transactions {
		switch tx.Type {
		case model.TransactionBuy:
			lotQueue = append(lotQueue, &model.Lot{
				BuyDate:        tx.Date,
				Units:          tx.Units,
				PricePerUnit:   tx.PricePerUnit,
				RemainingUnits: tx.Units,
				FundName:       tx.FundName,
				Platform:       tx.Platform,
				TaxWrapper:     tx.TaxWrapper,
				TransactionID:  tx.ID,
			})

		case model.TransactionSell:
			unitsToSell := tx.Units
			sellPrice := tx.PricePerUnit
			sellDate := tx.Date

			// Consume lots oldest-first until the sell is fulfilled
			for unitsToSell > model.UnitTolerance && len(lotQueue) > 0 {
				lot := lotQueue[0]
				if lot.Exhausted() {
					lotQueue = lotQueue[1:]
					continue
				}

				consumed := lot.Consume(unitsToSell)
				unitsToSell -= consumed

				holdingDays := int(sellDate.Sub(lot.BuyDate).Hours() / 24)
				buyValue := consumed * lot.PricePerUnit
				sellValue := consumed * sellPrice
				gainLoss := sellValue - buyValue
				gainLossPct := 0.0
				if buyValue > 0 {
					gainLossPct = gainLoss / buyValue * 100
				}

				results = append(results, model.HoldingPeriodResult{
					FundName:    key.FundName,
					Ticker:      ticker,
					Platform:    key.Platform,
					TaxWrapper:  key.TaxWrapper,
					BuyDate:     lot.BuyDate,
					SellDate:    sellDate,
					HoldingDays: holdingDays,
					UnitsSold:   consumed,
					BuyPrice:    lot.PricePerUnit,
					SellPrice:   sellPrice,
					BuyValue:    buyValue,
					SellValue:   sellValue,
					GainLoss:    gainLoss,
					GainLossPct: gainLossPct,
					Category:    model.CategoryFromDays(holdingDays),
					Confidence:  1.0,
				})

				if lot.Exhausted() {
					lotQueue = lotQueue[1:]
				}
			}

			// Sell exceeded available lots: pre-history purchase
			if unitsToSell > model.UnitTolerance {
				issues = append(issues, fmt.Sprintf(
					"%s: SELL on %s has %.4f units with no matching BUY lots",
					key, sellDate.Format("2006-01-02"), unitsToSell,
				))
				// Still keep the partial results, but flag the last one
				if len(results) > 0 && results[len(results)-1].SellDate.Equal(sellDate) {
					results[len(results)-1].Confidence = 0.7
				}
			}
		}
	}

	return results, issues
}

// summarizeHoldingPeriods computes the aggregate statistics over all
// realised sales.
func summarizeHoldingPeriods(results []model.HoldingPeriodResult) model.HoldingPeriodSummary {
	summary := model.HoldingPeriodSummary{
		ByCategory: make(map[model.HoldingPeriodCategory]model.CategorySummary),
	}
	for _, cat := range model.Categories {
		summary.ByCategory[cat] = model.CategorySummary{Label: cat.Label(), Flag: cat.Flag()}
	}
	if len(results) == 0 {
		return summary
	}

	byCategory := make(map[model.HoldingPeriodCategory][]model.HoldingPeriodResult)
	var totalDays int
	var totalGainLossPct, totalGainLoss float64
	quickFlips := 0

	for _, r := range results {
		byCategory[r.Category] = append(byCategory[r.Category], r)
		totalDays += r.HoldingDays
		totalGainLossPct += r.GainLossPct
		totalGainLoss += r.GainLoss
		if r.QuickFlip() {
			quickFlips++
		}
	}

	total := len(results)
	for _, cat := range model.Categories {
		catResults := byCategory[cat]
		cs := model.CategorySummary{Label: cat.Label(), Flag: cat.Flag()}
		if len(catResults) > 0 {
			var gainLossPct, gainLoss float64
			for _, r := range catResults {
				gainLossPct += r.GainLossPct
				gainLoss += r.GainLoss
			}
			cs.Count = len(catResults)
			cs.PctOfTotal = float64(len(catResults)) / float64(total) * 100
			cs.AvgGainLossPct = gainLossPct / float64(len(catResults))
			cs.TotalGainLoss = gainLoss
		}
		summary.ByCategory[cat] = cs
	}

	summary.TotalAnalyzed = total
	summary.AvgHoldingDays = float64(totalDays) / float64(total)
	summary.AvgGainLossPct = totalGainLossPct / float64(total)
	summary.TotalGainLoss = totalGainLoss
	summary.QuickFlipCount = quickFlips
	summary.QuickFlipPct = float64(quickFlips) / float64(total) * 100

	return summary
}
