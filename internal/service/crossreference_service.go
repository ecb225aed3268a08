package service

import (
	"fmt"
	"log"
	"sort"

	"github.com/asheworth/portfolio-analyzer/internal/model"
)

// CrossReferenceService detects the same underlying fund held across
// different platforms or tax wrappers by matching external identifiers.
type CrossReferenceService struct {
	mappings MappingSource
}

// NewCrossReferenceService creates a new CrossReferenceService reading from the provided source.
func NewCrossReferenceService(mappings MappingSource) *CrossReferenceService {
	return &CrossReferenceService{mappings: mappings}
}

// Analyze runs the full cross-reference analysis. Returns verified matches,
// matches below the verification threshold, and fund names with no external
// identifier at all.
func (s *CrossReferenceService) Analyze() ([]model.CrossReferenceMatch, []model.CrossReferenceMatch, []string, error) {
	log.Printf("Starting cross-reference analysis")

	funds, err := s.mappings.FundIdentifiers()
	if err != nil {
		return nil, nil, nil, err
	}
	log.Printf("  Found %d fund/platform/wrapper combinations", len(funds))

	byTicker := groupByIdentifier(funds, func(f model.FundIdentifiers) string { return f.Ticker })
	bySedol := groupByIdentifier(funds, func(f model.FundIdentifiers) string { return f.Sedol })
	byIsin := groupByIdentifier(funds, func(f model.FundIdentifiers) string { return f.Isin })

	log.Printf("  %d unique tickers, %d unique SEDOLs, %d unique ISINs",
		len(byTicker), len(bySedol), len(byIsin))

	var allMatches []model.CrossReferenceMatch
	matchedPairs := make(map[[2]string]struct{})

	// Ticker matches take priority, with ISIN agreement raising confidence
	for _, ticker := range sortedIdentifiers(byTicker) {
		group := byTicker[ticker]
		forEachPair(group, func(a, b model.FundIdentifiers) {
			isinConfirmed := a.Isin != "" && a.Isin == b.Isin

			matchType := "ticker"
			confidence := 0.95
			reason := fmt.Sprintf("Same ticker: %s", ticker)
			if isinConfirmed {
				matchType = "ticker+isin"
				confidence = 1.0
				reason += fmt.Sprintf(" and ISIN: %s", a.Isin)
			}

			allMatches = append(allMatches, newMatch(a, b, matchType, ticker, confidence, reason))
			matchedPairs[fundPair(a.FundName, b.FundName)] = struct{}{}
		})
	}

	for _, sedol := range sortedIdentifiers(bySedol) {
		group := bySedol[sedol]
		forEachPair(group, func(a, b model.FundIdentifiers) {
			pair := fundPair(a.FundName, b.FundName)
			if _, done := matchedPairs[pair]; done {
				return
			}
			allMatches = append(allMatches, newMatch(a, b, "sedol", sedol, 0.98,
				fmt.Sprintf("Same SEDOL: %s", sedol)))
			matchedPairs[pair] = struct{}{}
		})
	}

	for _, isin := range sortedIdentifiers(byIsin) {
		group := byIsin[isin]
		forEachPair(group, func(a, b model.FundIdentifiers) {
			pair := fundPair(a.FundName, b.FundName)
			if _, done := matchedPairs[pair]; done {
				return
			}
			allMatches = append(allMatches, newMatch(a, b, "isin", isin, 0.92,
				fmt.Sprintf("Same ISIN: %s", isin)))
			matchedPairs[pair] = struct{}{}
		})
	}

	allMatches = append(allMatches, findWrapperSplits(byTicker)...)

	var verified, unsure []model.CrossReferenceMatch
	for _, m := range allMatches {
		if m.Verified() {
			verified = append(verified, m)
		} else {
			unsure = append(unsure, m)
		}
	}

	withoutIdentifiers := fundsWithoutIdentifiers(funds)

	log.Printf("  Found %d verified matches, %d unsure matches", len(verified), len(unsure))
	log.Printf("  %d funds without identifiers", len(withoutIdentifiers))

	return verified, unsure, withoutIdentifiers, nil
}

// findWrapperSplits finds the same fund held under multiple tax wrappers on
// one platform, for example both ISA and SIPP. Grouping uses the ticker as
// the most reliable identifier.
func findWrapperSplits(byTicker map[string][]model.FundIdentifiers) []model.CrossReferenceMatch {
	var matches []model.CrossReferenceMatch
	seen := make(map[[4]string]struct{})

	for _, ticker := range sortedIdentifiers(byTicker) {
		byPlatform := make(map[string][]model.FundIdentifiers)
		var platforms []string
		for _, f := range byTicker[ticker] {
			if _, ok := byPlatform[f.Platform]; !ok {
				platforms = append(platforms, f.Platform)
			}
			byPlatform[f.Platform] = append(byPlatform[f.Platform], f)
		}

		for _, platform := range platforms {
			group := byPlatform[platform]
			for i, a := range group {
				for _, b := range group[i+1:] {
					if a.TaxWrapper == b.TaxWrapper {
						continue
					}
					key := wrapperPair(a, b)
					if _, done := seen[key]; done {
						continue
					}
					seen[key] = struct{}{}

					matches = append(matches, model.CrossReferenceMatch{
						FundA:             a.FundName,
						FundB:             b.FundName,
						PlatformA:         platform,
						PlatformB:         platform,
						WrapperA:          a.TaxWrapper,
						WrapperB:          b.TaxWrapper,
						MatchType:         "same_platform_different_wrapper",
						MatchedIdentifier: ticker,
						Confidence:        1.0,
						Reason: fmt.Sprintf("Same fund (%s) held in %s and %s on %s",
							ticker, a.TaxWrapper, b.TaxWrapper, platform),
					})
				}
			}
		}
	}

	return matches
}

func fundsWithoutIdentifiers(funds []model.FundIdentifiers) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, f := range funds {
		if f.HasIdentifier() {
			continue
		}
		if _, ok := seen[f.FundName]; ok {
			continue
		}
		seen[f.FundName] = struct{}{}
		names = append(names, f.FundName)
	}
	return names
}

// groupByIdentifier buckets funds by one identifier, skipping empty values.
func groupByIdentifier(funds []model.FundIdentifiers, idOf func(model.FundIdentifiers) string) map[string][]model.FundIdentifiers {
	groups := make(map[string][]model.FundIdentifiers)
	for _, f := range funds {
		if id := idOf(f); id != "" {
			groups[id] = append(groups[id], f)
		}
	}
	return groups
}

func sortedIdentifiers(groups map[string][]model.FundIdentifiers) []string {
	ids := make([]string, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// forEachPair visits every unordered pair in the group that spans a
// different platform or wrapper.
func forEachPair(group []model.FundIdentifiers, visit func(a, b model.FundIdentifiers)) {
	for i, a := range group {
		for _, b := range group[i+1:] {
			if a.Platform == b.Platform && a.TaxWrapper == b.TaxWrapper {
				continue
			}
			visit(a, b)
		}
	}
}

func newMatch(a, b model.FundIdentifiers, matchType, identifier string, confidence float64, reason string) model.CrossReferenceMatch {
	return model.CrossReferenceMatch{
		FundA:             a.FundName,
		FundB:             b.FundName,
		PlatformA:         a.Platform,
		PlatformB:         b.Platform,
		WrapperA:          a.TaxWrapper,
		WrapperB:          b.TaxWrapper,
		MatchType:         matchType,
		MatchedIdentifier: identifier,
		Confidence:        confidence,
		Reason:            reason,
	}
}

// fundPair builds an order-independent key for a fund name pair.
func fundPair(a, b string) [2]string {
	if a > b {
		a, b = b, a
	}
	return [2]string{a, b}
}

// wrapperPair builds an order-independent key over (fund, wrapper) pairs.
func wrapperPair(a, b model.FundIdentifiers) [4]string {
	ka := [2]string{a.FundName, a.TaxWrapper}
	kb := [2]string{b.FundName, b.TaxWrapper}
	if ka[0] > kb[0] || (ka[0] == kb[0] && ka[1] > kb[1]) {
		ka, kb = kb, ka
	}
	return [4]string{ka[0], ka[1], kb[0], kb[1]}
}
