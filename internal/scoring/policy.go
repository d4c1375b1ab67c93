package scoring

import (
	"math"
	"strings"

	"github.com/PUGALARASANL2004/inpersonSales-ReviewSys-FATAL/internal/domain"
)

// PolicyEngine applies the fatal and NA rules to a consensus score set and
// produces the numeric core of a report.
//
// NA parameters are removed from both sides of the percentage: they award
// nothing and their max points shrink the denominator, so inapplicability
// never penalizes a call. A failed fatal parameter zeroes the whole call.
type PolicyEngine struct{}

func NewPolicyEngine() *PolicyEngine {
	return &PolicyEngine{}
}

// Apply joins consensus scores with their rubric definitions and computes
// totals, percentage, pass/fail and the fatal override.
func (e *PolicyEngine) Apply(rubric *domain.Rubric, scores []domain.ParameterScore) (*domain.ScoreReport, error) {
	report := &domain.ScoreReport{
		RubricID:    rubric.ID,
		RubricTitle: rubric.Title,
		TotalPoints: rubric.TotalPoints,
	}

	var failedFatalNames []string

	for _, cat := range rubric.Categories {
		for _, p := range cat.Parameters {
			score := findScore(scores, p.ID)
			if score == nil {
				return nil, &domain.CoverageError{MissingParameterIDs: []string{p.ID}}
			}

			cs := domain.CriterionScore{
				ID:              p.ID,
				Name:            p.Name,
				Category:        cat.Name,
				MaxPoints:       p.MaxPoints,
				PointsAwarded:   score.PointsAwarded,
				Status:          score.Status,
				IsFatal:         p.Fatal,
				Rationale:       score.Rationale,
				Evidence:        score.Evidence,
				ValidationNotes: score.ValidationNotes,
			}

			switch score.Status {
			case domain.StatusNA:
				cs.PointsAwarded = domain.PointsNA
			case domain.StatusFatalFailed:
				cs.PointsAwarded = 0
				report.EffectiveTotalPoints += p.MaxPoints
				if p.Fatal {
					report.FatalTriggered = true
					report.FailedFatalParameterIDs = append(report.FailedFatalParameterIDs, p.ID)
					failedFatalNames = append(failedFatalNames, p.Name)
				} else {
					// Only rubric-fatal parameters can zero the call.
					cs.Status = domain.StatusScored
				}
			default:
				report.EffectiveTotalPoints += p.MaxPoints
				report.TotalScore += cs.PointsAwarded
			}

			report.CriteriaScores = append(report.CriteriaScores, cs)
		}
	}

	if report.FatalTriggered {
		report.TotalScore = 0
		report.FatalReason = "Fatal parameter failed: " + strings.Join(failedFatalNames, ", ")
	}

	if report.EffectiveTotalPoints > 0 {
		report.Percentage = round2(float64(report.TotalScore) / float64(report.EffectiveTotalPoints) * 100)
	}
	report.Passed = !report.FatalTriggered && report.Percentage >= rubric.PassThresholdPercent

	return report, nil
}

func findScore(scores []domain.ParameterScore, id string) *domain.ParameterScore {
	for i := range scores {
		if scores[i].ParameterID == id {
			return &scores[i]
		}
	}
	return nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
