package service

import (
	"log"
	"sort"
	"time"

	"github.com/asheworth/portfolio-analyzer/internal/model"
)

// TradingFrequencyService counts trading activity by fund, platform and tax
// wrapper, and derives the calendar pattern of trades.
type TradingFrequencyService struct {
	transactions TransactionSource
}

// NewTradingFrequencyService creates a new TradingFrequencyService reading from the provided source.
func NewTradingFrequencyService(transactions TransactionSource) *TradingFrequencyService {
	return &TradingFrequencyService{transactions: transactions}
}

// Analyze runs the full trading frequency analysis. Returns per-fund,
// per-platform and per-wrapper metrics plus the monthly pattern.
func (s *TradingFrequencyService) Analyze() ([]model.TradingFrequencyMetrics, []model.TradingFrequencyMetrics, []model.TradingFrequencyMetrics, model.MonthlyPattern, error) {
	log.Printf("Starting trading frequency analysis")

	transactions, err := s.transactions.AnalysisTransactions()
	if err != nil {
		return nil, nil, nil, model.MonthlyPattern{}, err
	}

	byFund := analyzeByFund(transactions)
	log.Printf("  Analyzed %d unique funds", len(byFund))

	byPlatform := analyzeByGroup(transactions, func(tx model.Transaction) string { return tx.Platform }, func(m *model.TradingFrequencyMetrics, key string) { m.Platform = key })
	log.Printf("  Analyzed %d platforms", len(byPlatform))

	byWrapper := analyzeByGroup(transactions, func(tx model.Transaction) string { return tx.TaxWrapper }, func(m *model.TradingFrequencyMetrics, key string) { m.TaxWrapper = key })
	log.Printf("  Analyzed %d tax wrappers", len(byWrapper))

	monthly := analyzeMonthlyPattern(transactions)
	log.Printf("  Analyzed %d months of trading", monthly.TotalMonths)

	return byFund, byPlatform, byWrapper, monthly, nil
}

// frequencyAccumulator collects counts for one grouping key before the
// derived fields are computed.
type frequencyAccumulator struct {
	totalTrades int
	buyCount    int
	sellCount   int
	firstTrade  time.Time
	lastTrade   time.Time
	months      map[string]struct{}
}

func (a *frequencyAccumulator) add(tx model.Transaction) {
	a.totalTrades++
	switch tx.Type {
	case model.TransactionBuy:
		a.buyCount++
	case model.TransactionSell:
		a.sellCount++
	}
	if a.firstTrade.IsZero() || tx.Date.Before(a.firstTrade) {
		a.firstTrade = tx.Date
	}
	if tx.Date.After(a.lastTrade) {
		a.lastTrade = tx.Date
	}
	a.months[tx.Date.Format("2006-01")] = struct{}{}
}

func (a *frequencyAccumulator) metrics() model.TradingFrequencyMetrics {
	months := len(a.months)
	if months < 1 {
		months = 1
	}
	return model.TradingFrequencyMetrics{
		TotalTrades:       a.totalTrades,
		BuyCount:          a.buyCount,
		SellCount:         a.sellCount,
		FirstTradeDate:    a.firstTrade,
		LastTradeDate:     a.lastTrade,
		ActiveMonths:      months,
		AvgTradesPerMonth: float64(a.totalTrades) / float64(months),
		Confidence:        1.0,
	}
}

func newFrequencyAccumulator() *frequencyAccumulator {
	return &frequencyAccumulator{months: make(map[string]struct{})}
}

// analyzeByFund counts trades per fund, consolidating funds that map to the
// same ticker. The shortest fund name in the ticker group becomes the
// canonical name, which is usually the cleanest variant. Funds without a
// ticker stay separate under their own name.
func analyzeByFund(transactions []model.Transaction) []model.TradingFrequencyMetrics {
	type fundGroup struct {
		name   string
		ticker string
		acc    *frequencyAccumulator
	}

	groups := make(map[string]*fundGroup)
	var order []string
	for _, tx := range transactions {
		// Group key is the ticker when mapped, otherwise the fund name
		key := tx.Ticker
		if key == "" {
			key = "fund:" + tx.FundName
		}
		g, ok := groups[key]
		if !ok {
			g = &fundGroup{name: tx.FundName, ticker: tx.Ticker, acc: newFrequencyAccumulator()}
			groups[key] = g
			order = append(order, key)
		}
		if len(tx.FundName) < len(g.name) || (len(tx.FundName) == len(g.name) && tx.FundName < g.name) {
			g.name = tx.FundName
		}
		g.acc.add(tx)
	}

	results := make([]model.TradingFrequencyMetrics, 0, len(groups))
	for _, key := range order {
		g := groups[key]
		m := g.acc.metrics()
		m.FundName = g.name
		m.Ticker = g.ticker
		results = append(results, m)
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].TotalTrades > results[j].TotalTrades
	})
	return results
}

// analyzeByGroup counts trades per value of an arbitrary grouping key.
func analyzeByGroup(transactions []model.Transaction, keyOf func(model.Transaction) string, setKey func(*model.TradingFrequencyMetrics, string)) []model.TradingFrequencyMetrics {
	groups := make(map[string]*frequencyAccumulator)
	var order []string
	for _, tx := range transactions {
		key := keyOf(tx)
		acc, ok := groups[key]
		if !ok {
			acc = newFrequencyAccumulator()
			groups[key] = acc
			order = append(order, key)
		}
		acc.add(tx)
	}

	results := make([]model.TradingFrequencyMetrics, 0, len(groups))
	for _, key := range order {
		m := groups[key].metrics()
		setKey(&m, key)
		results = append(results, m)
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].TotalTrades > results[j].TotalTrades
	})
	return results
}

// analyzeMonthlyPattern derives the calendar distribution of trades. The
// peak month is the earliest month with the highest trade count.
func analyzeMonthlyPattern(transactions []model.Transaction) model.MonthlyPattern {
	monthly := make(map[string]model.MonthCounts)
	for _, tx := range transactions {
		month := tx.Date.Format("2006-01")
		counts := monthly[month]
		counts.Trades++
		switch tx.Type {
		case model.TransactionBuy:
			counts.Buys++
		case model.TransactionSell:
			counts.Sells++
		}
		monthly[month] = counts
	}

	months := make([]string, 0, len(monthly))
	for month := range monthly {
		months = append(months, month)
	}
	sort.Strings(months)

	pattern := model.MonthlyPattern{
		Monthly: monthly,
		Yearly:  make(map[string]model.MonthCounts),
	}
	totalTrades := 0
	for _, month := range months {
		counts := monthly[month]
		totalTrades += counts.Trades
		if counts.Trades > pattern.PeakMonthTrades {
			pattern.PeakMonthTrades = counts.Trades
			pattern.PeakMonth = month
		}

		year := month[:4]
		yearly := pattern.Yearly[year]
		yearly.Trades += counts.Trades
		yearly.Buys += counts.Buys
		yearly.Sells += counts.Sells
		pattern.Yearly[year] = yearly
	}

	pattern.TotalMonths = len(monthly)
	if len(monthly) > 0 {
		pattern.AvgTradesPerMonth = float64(totalTrades) / float64(len(monthly))
	}
	return pattern
}
