package service

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/asheworth/portfolio-analyzer/internal/apperrors"
	"github.com/asheworth/portfolio-analyzer/internal/model"
)

// AnalysisService runs the full analysis pipeline and keeps the most recent
// result for retrieval. Only one run executes at a time.
type AnalysisService struct {
	transactions TransactionSource

	holdingPeriod *HoldingPeriodService
	frequency     *TradingFrequencyService
	priceImpact   *PriceImpactService
	crossRef      *CrossReferenceService
	holdings      *CurrentHoldingsService
	performance   *PerformanceService

	mu      sync.Mutex
	running bool
	latest  *model.AnalysisResult
}

// NewAnalysisService creates a new AnalysisService composing all analyzers
// over the provided sources.
func NewAnalysisService(transactions TransactionSource, prices PriceSource, mappings MappingSource, snapshot SnapshotSource) *AnalysisService {
	return &AnalysisService{
		transactions:  transactions,
		holdingPeriod: NewHoldingPeriodService(transactions),
		frequency:     NewTradingFrequencyService(transactions),
		priceImpact:   NewPriceImpactService(transactions, prices),
		crossRef:      NewCrossReferenceService(mappings),
		holdings:      NewCurrentHoldingsService(transactions, prices, snapshot),
		performance:   NewPerformanceService(transactions, prices, snapshot),
	}
}

// Latest returns the most recent analysis result.
// Returns apperrors.ErrAnalysisNotFound when no run has completed yet.
func (s *AnalysisService) Latest() (*model.AnalysisResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.latest == nil {
		return nil, apperrors.ErrAnalysisNotFound
	}
	return s.latest, nil
}

// Run executes the full analysis pipeline: ledger statistics, the five
// independent analyzers concurrently, performance afterwards, then the
// merge and the overall confidence score.
// Returns apperrors.ErrAnalysisRunning when a run is already in flight.
func (s *AnalysisService) Run(ctx context.Context) (*model.AnalysisResult, error) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil, apperrors.ErrAnalysisRunning
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	log.Printf("Starting full portfolio analysis")
	started := time.Now()

	stats, err := s.transactions.Stats()
	if err != nil {
		return nil, err
	}
	log.Printf("  Ledger: %d transactions (%d BUY, %d SELL), %s to %s",
		stats.TotalTransactions, stats.BuyCount, stats.SellCount,
		stats.FirstDate.Format("2006-01-02"), stats.LastDate.Format("2006-01-02"))

	result := &model.AnalysisResult{
		ID:                uuid.NewString(),
		GeneratedAt:       time.Now().UTC(),
		DataStartDate:     stats.FirstDate,
		DataEndDate:       stats.LastDate,
		TotalTransactions: stats.TotalTransactions,
		BuyCount:          stats.BuyCount,
		SellCount:         stats.SellCount,
	}

	// The five analyzers read independent slices of the data and never
	// write, so they can run concurrently.
	g, _ := errgroup.WithContext(ctx)

	g.Go(func() error {
		periods, summary, issues, err := s.holdingPeriod.Analyze()
		if err != nil {
			return err
		}
		result.HoldingPeriods = periods
		result.HoldingPeriodSummary = summary
		result.DataQualityNotes = append(result.DataQualityNotes, issues...)
		return nil
	})

	g.Go(func() error {
		byFund, byPlatform, byWrapper, monthly, err := s.frequency.Analyze()
		if err != nil {
			return err
		}
		result.FrequencyByFund = byFund
		result.FrequencyByPlatform = byPlatform
		result.FrequencyByWrapper = byWrapper
		result.MonthlyPattern = monthly
		return nil
	})

	g.Go(func() error {
		impacts, summary, missing, err := s.priceImpact.Analyze()
		if err != nil {
			return err
		}
		result.PriceImpacts = impacts
		result.PriceImpactSummary = summary
		result.TransactionsMissingPrices = missing
		return nil
	})

	g.Go(func() error {
		verified, unsure, withoutIDs, err := s.crossRef.Analyze()
		if err != nil {
			return err
		}
		result.VerifiedMatches = verified
		result.UnsureMatches = unsure
		result.FundsWithoutTicker = withoutIDs
		return nil
	})

	g.Go(func() error {
		holdings, summary, err := s.holdings.Analyze()
		if err != nil {
			return err
		}
		result.CurrentHoldings = holdings
		result.CurrentHoldingsSummary = summary
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	perfResults, wrapperPerf, err := s.performance.Analyze()
	if err != nil {
		return nil, err
	}
	result.WrapperPerformance = wrapperPerf
	mergePerformance(result.CurrentHoldings, perfResults)

	result.OverallConfidence = overallConfidence(result)

	log.Printf("Analysis complete in %s (overall confidence %.2f)",
		time.Since(started).Round(time.Millisecond), result.OverallConfidence)

	s.mu.Lock()
	s.latest = result
	s.mu.Unlock()

	return result, nil
}

// mergePerformance attaches TWR, MWR and benchmark returns to the matching
// current holdings, keyed by (ticker, platform, wrapper).
func mergePerformance(holdings []model.HoldingAnalysis, performance []model.HoldingPerformance) {
	type key struct{ ticker, platform, wrapper string }

	lookup := make(map[key]model.HoldingPerformance, len(performance))
	for _, p := range performance {
		lookup[key{p.Ticker, p.Platform, p.TaxWrapper}] = p
	}

	for i := range holdings {
		h := &holdings[i]
		p, ok := lookup[key{h.Ticker, h.Platform, h.TaxWrapper}]
		if !ok {
			continue
		}
		h.TWR = p.TWR
		h.MWR = p.MWR
		h.HoldingPeriodDays = p.HoldingPeriodDays
		h.Benchmarks = make(map[string]*float64, len(p.Benchmarks))
		for ticker, bench := range p.Benchmarks {
			h.Benchmarks[ticker] = bench.ReturnPct
		}
	}
}

// overallConfidence blends the per-analyzer confidences: holding period 40%,
// trading frequency 20%, price impact 20%, cross-reference 20%. Analyzers
// that produced no results drop out and the remaining weights renormalise.
func overallConfidence(result *model.AnalysisResult) float64 {
	var components, weights []float64

	if len(result.HoldingPeriods) > 0 {
		var values []float64
		for _, hp := range result.HoldingPeriods {
			values = append(values, hp.Confidence)
		}
		components = append(components, stat.Mean(values, nil))
		weights = append(weights, 0.4)
	}

	// Trading frequency is direct counting, always fully confident
	components = append(components, 1.0)
	weights = append(weights, 0.2)

	if len(result.PriceImpacts) > 0 {
		var values []float64
		for _, pi := range result.PriceImpacts {
			values = append(values, pi.Confidence)
		}
		components = append(components, stat.Mean(values, nil))
		weights = append(weights, 0.2)
	}

	allMatches := len(result.VerifiedMatches) + len(result.UnsureMatches)
	if allMatches > 0 {
		var values []float64
		for _, m := range result.VerifiedMatches {
			values = append(values, m.Confidence)
		}
		for _, m := range result.UnsureMatches {
			values = append(values, m.Confidence)
		}
		components = append(components, stat.Mean(values, nil))
		weights = append(weights, 0.2)
	}

	return stat.Mean(components, weights)
}
