package service

import (
	"errors"
	"log"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/asheworth/portfolio-analyzer/internal/apperrors"
	"github.com/asheworth/portfolio-analyzer/internal/model"
	"github.com/asheworth/portfolio-analyzer/internal/solver"
)

// daysPerYear is the average calendar year length used for annualisation.
const daysPerYear = 365.25

// PerformanceService computes time-weighted and money-weighted returns for
// current holdings and compares them against index benchmarks.
type PerformanceService struct {
	transactions TransactionSource
	prices       PriceSource
	snapshot     SnapshotSource
}

// NewPerformanceService creates a new PerformanceService reading from the provided sources.
func NewPerformanceService(transactions TransactionSource, prices PriceSource, snapshot SnapshotSource) *PerformanceService {
	return &PerformanceService{transactions: transactions, prices: prices, snapshot: snapshot}
}

// Analyze computes TWR, MWR and benchmark comparisons for every holding in
// the snapshot that has transaction history, then aggregates by tax wrapper.
func (s *PerformanceService) Analyze() ([]model.HoldingPerformance, map[string]model.WrapperPerformance, error) {
	log.Printf("Starting performance analysis (TWR/MWR)")

	snapshot, err := s.snapshot.Load()
	if err != nil {
		return nil, nil, err
	}

	currentDate, err := s.prices.LatestDate()
	if err != nil {
		if !errors.Is(err, apperrors.ErrPriceNotFound) {
			return nil, nil, err
		}
		currentDate = time.Now().UTC().Truncate(24 * time.Hour)
	}

	tickers := make([]string, 0, len(snapshot))
	for ticker := range snapshot {
		tickers = append(tickers, ticker)
	}
	sort.Strings(tickers)

	benchmarkSeries, err := s.loadBenchmarkSeries()
	if err != nil {
		return nil, nil, err
	}

	var results []model.HoldingPerformance

	for _, ticker := range tickers {
		entry := snapshot[ticker]
		fundName := entry.FundName
		if fundName == "" {
			fundName = ticker
		}

		series, err := s.priceSeries(ticker)
		if err != nil {
			return nil, nil, err
		}

		for _, position := range entry.Holdings {
			currentPrice := 0.0
			if len(series) > 0 {
				currentPrice = series[len(series)-1].ClosePrice
			}
			currentValue := position.Units * currentPrice

			transactions, err := s.transactions.TransactionsForHolding(
				ticker, fundName, ledgerPlatform(position.Platform), position.TaxWrapper)
			if err != nil {
				return nil, nil, err
			}
			if len(transactions) == 0 {
				log.Printf("  No transactions found for %s at %s/%s",
					ticker, position.Platform, position.TaxWrapper)
				continue
			}

			var totalInvested, totalWithdrawn float64
			firstTx, lastTx := transactions[0].Date, transactions[0].Date
			for _, tx := range transactions {
				switch tx.Type {
				case model.TransactionBuy:
					totalInvested += tx.Value
				case model.TransactionSell:
					totalWithdrawn += tx.Value
				}
				if tx.Date.Before(firstTx) {
					firstTx = tx.Date
				}
				if tx.Date.After(lastTx) {
					lastTx = tx.Date
				}
			}

			holdingDays := 0
			if currentDate.After(firstTx) {
				holdingDays = int(currentDate.Sub(firstTx).Hours() / 24)
			}

			results = append(results, model.HoldingPerformance{
				Ticker:            ticker,
				FundName:          fundName,
				Platform:          position.Platform,
				TaxWrapper:        position.TaxWrapper,
				CurrentUnits:      position.Units,
				CurrentValue:      currentValue,
				TotalInvested:     totalInvested,
				TotalWithdrawn:    totalWithdrawn,
				TWR:               calculateTWR(transactions, series, currentValue),
				MWR:               calculateMWR(transactions, currentValue, currentDate),
				HoldingPeriodDays: holdingDays,
				FirstTransaction:  firstTx,
				LastTransaction:   lastTx,
				NumTransactions:   len(transactions),
				Benchmarks:        benchmarksForPeriod(benchmarkSeries, firstTx, currentDate),
			})
		}
	}

	wrapperSummary := aggregateByWrapper(results, benchmarkSeries, currentDate)

	log.Printf("  Computed performance for %d holdings across %d wrappers",
		len(results), len(wrapperSummary))

	return results, wrapperSummary, nil
}

// priceSeries loads a ticker's history with LSE pence quotes converted to
// pounds.
func (s *PerformanceService) priceSeries(ticker string) ([]model.PricePoint, error) {
	series, err := s.prices.Series(ticker)
	if err != nil {
		return nil, err
	}
	for i := range series {
		series[i].ClosePrice = convertLSEPrice(ticker, series[i].ClosePrice)
	}
	return series, nil
}

func (s *PerformanceService) loadBenchmarkSeries() (map[string][]model.PricePoint, error) {
	series := make(map[string][]model.PricePoint, len(model.Benchmarks))
	for ticker := range model.Benchmarks {
		points, err := s.priceSeries(ticker)
		if err != nil {
			return nil, err
		}
		series[ticker] = points
	}
	return series, nil
}

// calculateTWR chains sub-period returns between cash flows:
// (1+r1)*(1+r2)*...*(1+rn) - 1, annualised over the observed window.
// Returns nil when no sub-period can be valued.
func calculateTWR(transactions []model.Transaction, series []model.PricePoint, currentValue float64) *float64 {
	if len(transactions) == 0 || len(series) == 0 {
		return nil
	}

	var subPeriods []float64
	unitsHeld := 0.0
	prevValue := 0.0

	for _, tx := range transactions {
		price, ok := priceOnOrBefore(series, tx.Date)
		if !ok {
			continue
		}

		valueBefore := unitsHeld * price
		if prevValue > 0 && valueBefore > 0 {
			subPeriods = append(subPeriods, valueBefore/prevValue)
		}

		if tx.Type == model.TransactionBuy {
			unitsHeld += tx.Units
		} else {
			unitsHeld -= tx.Units
		}
		prevValue = unitsHeld * price
	}

	if prevValue > 0 && currentValue > 0 {
		subPeriods = append(subPeriods, currentValue/prevValue)
	}
	if len(subPeriods) == 0 {
		return nil
	}

	twr := 1.0
	for _, r := range subPeriods {
		twr *= r
	}
	twr -= 1

	firstDate := transactions[0].Date
	lastPriceDate := series[len(series)-1].Date
	days := int(lastPriceDate.Sub(firstDate).Hours() / 24)

	pct := annualizePct(twr, days)
	return &pct
}

// calculateMWR solves for the internal rate of return over the holding's
// cash flows plus a terminal inflow of the current value. Returns nil when
// no rate in (-0.99, 10.0) zeroes the NPV and Newton iteration fails too.
func calculateMWR(transactions []model.Transaction, currentValue float64, currentDate time.Time) *float64 {
	if len(transactions) == 0 {
		return nil
	}

	type flow struct {
		amount float64
		date   time.Time
	}
	flows := make([]flow, 0, len(transactions)+1)
	for _, tx := range transactions {
		amount := math.Abs(tx.Value)
		if tx.Type == model.TransactionBuy {
			amount = -amount
		}
		flows = append(flows, flow{amount: amount, date: tx.Date})
	}
	flows = append(flows, flow{amount: currentValue, date: currentDate})

	firstDate := flows[0].date
	for _, f := range flows {
		if f.date.Before(firstDate) {
			firstDate = f.date
		}
	}

	years := make([]float64, len(flows))
	for i, f := range flows {
		years[i] = f.date.Sub(firstDate).Hours() / 24 / daysPerYear
	}

	npv := func(rate float64) float64 {
		if rate <= -1 {
			return math.Inf(1)
		}
		total := 0.0
		for i, f := range flows {
			total += f.amount / math.Pow(1+rate, years[i])
		}
		return total
	}

	irr, ok := solver.FindRoot(npv, -0.99, 10.0, 0.1)
	if !ok {
		return nil
	}
	pct := irr * 100
	return &pct
}

// annualizePct converts a total return to an annualised percentage over a
// window of the given length. Windows of zero days report the total return.
func annualizePct(totalReturn float64, days int) float64 {
	if days > 0 {
		years := float64(days) / daysPerYear
		return (math.Pow(1+totalReturn, 1/years) - 1) * 100
	}
	return totalReturn * 100
}

// priceOnOrBefore finds the close for the latest date not after the given
// date in an ascending series.
func priceOnOrBefore(series []model.PricePoint, date time.Time) (float64, bool) {
	idx := sort.Search(len(series), func(i int) bool {
		return series[i].Date.After(date)
	})
	if idx == 0 {
		return 0, false
	}
	return series[idx-1].ClosePrice, true
}

// benchmarksForPeriod computes every benchmark's annualised return over a
// comparison window. The actual window is clamped to available price data:
// first close on or after the start, last close on or before the end.
func benchmarksForPeriod(allSeries map[string][]model.PricePoint, start, end time.Time) map[string]model.BenchmarkReturn {
	benchmarks := make(map[string]model.BenchmarkReturn, len(model.Benchmarks))
	for ticker, name := range model.Benchmarks {
		benchmarks[ticker] = benchmarkReturn(ticker, name, allSeries[ticker], start, end)
	}
	return benchmarks
}

func benchmarkReturn(ticker, name string, series []model.PricePoint, start, end time.Time) model.BenchmarkReturn {
	result := model.BenchmarkReturn{
		Ticker:    ticker,
		Name:      name,
		StartDate: start,
		EndDate:   end,
	}
	if len(series) == 0 {
		return result
	}

	// First close on or after the start of the window
	startIdx := sort.Search(len(series), func(i int) bool {
		return !series[i].Date.Before(start)
	})
	// Last close on or before the end of the window
	endIdx := sort.Search(len(series), func(i int) bool {
		return series[i].Date.After(end)
	}) - 1

	if startIdx >= len(series) || endIdx < 0 {
		return result
	}

	startPoint, endPoint := series[startIdx], series[endIdx]
	result.StartDate = startPoint.Date
	result.EndDate = endPoint.Date
	result.StartPrice = &startPoint.ClosePrice
	result.EndPrice = &endPoint.ClosePrice

	totalReturn := endPoint.ClosePrice/startPoint.ClosePrice - 1
	days := int(endPoint.Date.Sub(startPoint.Date).Hours() / 24)
	pct := annualizePct(totalReturn, days)
	result.ReturnPct = &pct

	return result
}

// aggregateByWrapper rolls holdings up per tax wrapper with value-weighted
// average returns. The benchmark window starts at the value-weighted average
// first-transaction date, so larger positions pull the comparison period
// toward their own history.
func aggregateByWrapper(results []model.HoldingPerformance, benchmarkSeries map[string][]model.PricePoint, currentDate time.Time) map[string]model.WrapperPerformance {
	summary := make(map[string]model.WrapperPerformance)

	for _, wrapper := range []string{"ISA", "GIA", "SIPP"} {
		var holdings []model.HoldingPerformance
		for _, r := range results {
			if r.TaxWrapper == wrapper {
				holdings = append(holdings, r)
			}
		}
		if len(holdings) == 0 {
			continue
		}

		perf := model.WrapperPerformance{
			Wrapper:     wrapper,
			NumHoldings: len(holdings),
		}

		var twrValues, twrWeights, mwrValues, mwrWeights []float64
		var dateOrdinals, dateWeights []float64
		for _, h := range holdings {
			perf.CurrentValue += h.CurrentValue
			perf.TotalInvested += h.TotalInvested
			perf.TotalWithdrawn += h.TotalWithdrawn

			if h.TWR != nil {
				twrValues = append(twrValues, *h.TWR)
				twrWeights = append(twrWeights, h.CurrentValue)
			}
			if h.MWR != nil {
				mwrValues = append(mwrValues, *h.MWR)
				mwrWeights = append(mwrWeights, h.CurrentValue)
			}
			if !h.FirstTransaction.IsZero() && h.CurrentValue > 0 {
				dateOrdinals = append(dateOrdinals, float64(h.FirstTransaction.Unix()/86400))
				dateWeights = append(dateWeights, h.CurrentValue)
			}
		}

		perf.TWR = weightedMean(twrValues, twrWeights)
		perf.MWR = weightedMean(mwrValues, mwrWeights)

		if avgOrdinal := weightedMean(dateOrdinals, dateWeights); avgOrdinal != nil {
			avgStart := time.Unix(int64(*avgOrdinal)*86400, 0).UTC()
			perf.Benchmarks = benchmarksForPeriod(benchmarkSeries, avgStart, currentDate)
		}

		summary[wrapper] = perf
	}

	return summary
}

// weightedMean averages values with the given weights, or nil when the
// weights carry no mass.
func weightedMean(values, weights []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	totalWeight := 0.0
	for _, w := range weights {
		totalWeight += w
	}
	if totalWeight <= 0 {
		return nil
	}
	mean := stat.Mean(values, weights)
	return &mean
}
