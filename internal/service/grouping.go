package service

import "github.com/asheworth/portfolio-analyzer/internal/model"

// groupTransactionsByFund buckets transactions by (fund, platform, wrapper).
// Keys are returned in first-seen ledger order so analysis output is stable
// across runs.
func groupTransactionsByFund(transactions []model.Transaction) ([]model.FundKey, map[model.FundKey][]model.Transaction) {
	grouped := make(map[model.FundKey][]model.Transaction)
	var keys []model.FundKey
	for _, tx := range transactions {
		key := model.FundKey{FundName: tx.FundName, Platform: tx.Platform, TaxWrapper: tx.TaxWrapper}
		if _, seen := grouped[key]; !seen {
			keys = append(keys, key)
		}
		grouped[key] = append(grouped[key], tx)
	}
	return keys, grouped
}
