package service

import (
	"errors"
	"log"
	"math"
	"strings"

	"github.com/asheworth/portfolio-analyzer/internal/apperrors"
	"github.com/asheworth/portfolio-analyzer/internal/model"
)

// neutralTolerancePct is the band around the market close within which an
// execution price is classified neutral.
const neutralTolerancePct = 0.5

// lsePenceSuffix marks London Stock Exchange tickers, which are quoted in
// pence while the ledger stores pounds.
const lsePenceSuffix = ".L"

// PriceImpactService compares execution prices against same-day market
// closes to assess trading quality.
type PriceImpactService struct {
	transactions TransactionSource
	prices       PriceSource
}

// NewPriceImpactService creates a new PriceImpactService reading from the provided sources.
func NewPriceImpactService(transactions TransactionSource, prices PriceSource) *PriceImpactService {
	return &PriceImpactService{transactions: transactions, prices: prices}
}

// Analyze scores every ticker-mapped trade that has a market close on its
// execution date. Returns the per-trade results, summary statistics and the
// count of mapped trades with no matching price row.
func (s *PriceImpactService) Analyze() ([]model.PriceImpactResult, model.PriceImpactSummary, int, error) {
	log.Printf("Starting price impact analysis")

	transactions, err := s.transactions.AnalysisTransactions()
	if err != nil {
		return nil, model.PriceImpactSummary{}, 0, err
	}

	var results []model.PriceImpactResult
	missingCount := 0

	for _, tx := range transactions {
		if tx.Ticker == "" {
			continue
		}

		rawMarketPrice, err := s.prices.ClosePrice(tx.Ticker, tx.Date)
		if err != nil {
			if errors.Is(err, apperrors.ErrPriceNotFound) {
				missingCount++
				continue
			}
			return nil, model.PriceImpactSummary{}, 0, err
		}
		if tx.PricePerUnit <= 0 || rawMarketPrice <= 0 {
			continue
		}

		marketPrice := normalizeMarketPrice(tx.Ticker, rawMarketPrice, tx.PricePerUnit)

		priceDiff := tx.PricePerUnit - marketPrice
		priceDiffPct := 0.0
		if marketPrice > 0 {
			priceDiffPct = priceDiff / marketPrice * 100
		}

		results = append(results, model.PriceImpactResult{
			Date:            tx.Date,
			FundName:        tx.FundName,
			Ticker:          tx.Ticker,
			TransactionType: tx.Type,
			ExecutionPrice:  tx.PricePerUnit,
			MarketPrice:     marketPrice,
			PriceDiff:       priceDiff,
			PriceDiffPct:    priceDiffPct,
			ValueImpact:     priceDiff * tx.Units,
			Units:           tx.Units,
			Classification:  classifyImpact(tx.Type, tx.PricePerUnit, marketPrice),
			Confidence:      model.PriceImpactConfidence,
		})
	}

	log.Printf("  Scored %d transactions with matching price data", len(results))
	log.Printf("  Missing price data for %d transactions", missingCount)

	summary := summarizePriceImpact(results, missingCount)
	return results, summary, missingCount, nil
}

// normalizeMarketPrice converts LSE pence quotes to pounds when the market
// price is roughly 100x the execution price.
func normalizeMarketPrice(ticker string, marketPrice, executionPrice float64) float64 {
	if strings.HasSuffix(ticker, lsePenceSuffix) && executionPrice > 0 {
		ratio := marketPrice / executionPrice
		if ratio > 80 && ratio < 120 {
			return marketPrice / 100.0
		}
	}
	return marketPrice
}

// classifyImpact labels an execution relative to the market close. Buying
// below market or selling above market is favorable.
func classifyImpact(transactionType string, executionPrice, marketPrice float64) string {
	diffPct := (executionPrice - marketPrice) / marketPrice * 100
	if math.Abs(diffPct) <= neutralTolerancePct {
		return model.ImpactNeutral
	}
	if transactionType == model.TransactionBuy {
		if executionPrice < marketPrice {
			return model.ImpactFavorable
		}
		return model.ImpactUnfavorable
	}
	if executionPrice > marketPrice {
		return model.ImpactFavorable
	}
	return model.ImpactUnfavorable
}

func summarizePriceImpact(results []model.PriceImpactResult, missingCount int) model.PriceImpactSummary {
	summary := model.PriceImpactSummary{
		MissingPrices: missingCount,
		ByType: map[string]model.TypeImpact{
			model.TransactionBuy:  {},
			model.TransactionSell: {},
		},
	}
	if len(results) == 0 {
		return summary
	}

	var totalDeviation float64
	for _, r := range results {
		totalDeviation += math.Abs(r.PriceDiffPct)

		byType := summary.ByType[r.TransactionType]
		byType.Count++

		switch r.Classification {
		case model.ImpactFavorable:
			summary.FavorableCount++
			summary.TotalFavorableImpact += math.Abs(r.ValueImpact)
			byType.Favorable++
		case model.ImpactUnfavorable:
			summary.UnfavorableCount++
			summary.TotalUnfavorableImpact += math.Abs(r.ValueImpact)
			byType.Unfavorable++
		default:
			summary.NeutralCount++
		}
		summary.ByType[r.TransactionType] = byType

		// Paying less than market on a BUY is a gain, so the sign flips
		if r.TransactionType == model.TransactionBuy {
			summary.NetImpact -= r.ValueImpact
		} else {
			summary.NetImpact += r.ValueImpact
		}
	}

	total := float64(len(results))
	summary.TotalAnalyzed = len(results)
	summary.FavorablePct = float64(summary.FavorableCount) / total * 100
	summary.UnfavorablePct = float64(summary.UnfavorableCount) / total * 100
	summary.NeutralPct = float64(summary.NeutralCount) / total * 100
	summary.AvgDeviationPct = totalDeviation / total

	return summary
}
