package model

// VerifiedThreshold is the confidence at or above which a cross-reference
// match is treated as verified rather than needing manual review.
const VerifiedThreshold = 0.90

// CrossReferenceMatch pairs two fund positions believed to represent the
// same underlying holding on different platforms or wrappers.
type CrossReferenceMatch struct {
	FundA             string  `json:"fundA"`
	FundB             string  `json:"fundB"`
	PlatformA         string  `json:"platformA"`
	PlatformB         string  `json:"platformB"`
	WrapperA          string  `json:"wrapperA"`
	WrapperB          string  `json:"wrapperB"`
	MatchType         string  `json:"matchType"` // "ticker", "ticker+isin", "sedol", "isin", "same_platform_different_wrapper"
	MatchedIdentifier string  `json:"matchedIdentifier"`
	Confidence        float64 `json:"confidence"`
	Reason            string  `json:"reason"`
}

// Verified reports whether the match meets the verification threshold.
func (m CrossReferenceMatch) Verified() bool {
	return m.Confidence >= VerifiedThreshold
}
