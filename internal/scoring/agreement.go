package scoring

import (
	"github.com/PUGALARASANL2004/inpersonSales-ReviewSys-FATAL/internal/domain"
)

// AgreementCalculator measures how much consensus attempts agree with each
// other. The numbers are diagnostics only and never change a score.
type AgreementCalculator struct{}

func NewAgreementCalculator() *AgreementCalculator {
	return &AgreementCalculator{}
}

// StatusAgreement returns the share of attempts voting for the modal status
// of one parameter. A single attempt trivially agrees with itself.
func (c *AgreementCalculator) StatusAgreement(column []domain.ParameterScore) float64 {
	if len(column) < 2 {
		return 1.0
	}

	counts := make(map[domain.ScoreStatus]int)
	for _, s := range column {
		counts[s.Status]++
	}

	maxCount := 0
	for _, count := range counts {
		if count > maxCount {
			maxCount = count
		}
	}
	return float64(maxCount) / float64(len(column))
}

// FleissKappa measures chance-corrected agreement on statuses across one
// parameter's attempts. Below roughly 0.6 the attempts disagree enough that
// a human should look at the call.
func (c *AgreementCalculator) FleissKappa(column []domain.ParameterScore) float64 {
	n := len(column)
	if n < 2 {
		return 1.0
	}

	counts := make(map[domain.ScoreStatus]int)
	for _, s := range column {
		counts[s.Status]++
	}
	if len(counts) <= 1 {
		return 1.0
	}

	sumSquares := 0.0
	pe := 0.0
	for _, count := range counts {
		sumSquares += float64(count * count)
		pj := float64(count) / float64(n)
		pe += pj * pj
	}

	pBar := (sumSquares - float64(n)) / float64(n*(n-1))

	if pe >= 1.0 {
		return 1.0
	}
	return (pBar - pe) / (1.0 - pe)
}

// NeedsReview reports whether any parameter's attempts disagree enough to
// flag the report for manual review.
func (c *AgreementCalculator) NeedsReview(agreement map[string]float64) bool {
	for _, a := range agreement {
		if a < 0.6 {
			return true
		}
	}
	return false
}
