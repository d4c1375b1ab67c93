package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PUGALARASANL2004/inpersonSales-ReviewSys-FATAL/internal/domain"
)

func TestPolicyComputesTotalsAndPercentage(t *testing.T) {
	policy := NewPolicyEngine()

	report, err := policy.Apply(testRubric(t), []domain.ParameterScore{
		{ParameterID: "greeting", Status: domain.StatusScored, PointsAwarded: 8},
		{ParameterID: "closing", Status: domain.StatusScored, PointsAwarded: 4},
	})
	require.NoError(t, err)

	assert.Equal(t, 15, report.TotalPoints)
	assert.Equal(t, 15, report.EffectiveTotalPoints)
	assert.Equal(t, 12, report.TotalScore)
	assert.Equal(t, 80.0, report.Percentage)
	assert.True(t, report.Passed)
	assert.False(t, report.FatalTriggered)
	assert.Len(t, report.CriteriaScores, 2)
	assert.Equal(t, "Greeting", report.CriteriaScores[0].Category)
}

func TestPolicyFatalOverridesEverything(t *testing.T) {
	policy := NewPolicyEngine()

	report, err := policy.Apply(testRubric(t), []domain.ParameterScore{
		{ParameterID: "greeting", Status: domain.StatusScored, PointsAwarded: 8},
		{ParameterID: "closing", Status: domain.StatusFatalFailed, PointsAwarded: 0, Rationale: "Price misstated."},
	})
	require.NoError(t, err)

	assert.True(t, report.FatalTriggered)
	assert.Equal(t, 0, report.TotalScore)
	assert.Equal(t, []string{"closing"}, report.FailedFatalParameterIDs)
	assert.Equal(t, "Fatal parameter failed: Closing", report.FatalReason)
	assert.False(t, report.Passed)
}

func TestPolicyIgnoresFatalStatusOnPlainParameter(t *testing.T) {
	policy := NewPolicyEngine()

	report, err := policy.Apply(testRubric(t), []domain.ParameterScore{
		{ParameterID: "greeting", Status: domain.StatusFatalFailed, PointsAwarded: 0},
		{ParameterID: "closing", Status: domain.StatusScored, PointsAwarded: 5},
	})
	require.NoError(t, err)

	// greeting is not rubric-fatal, so the status only zeroes it.
	assert.False(t, report.FatalTriggered)
	assert.Empty(t, report.FailedFatalParameterIDs)
	assert.Equal(t, domain.StatusScored, report.CriteriaScores[0].Status)
	assert.Equal(t, 0, report.CriteriaScores[0].PointsAwarded)
	assert.Equal(t, 5, report.TotalScore)
	assert.Equal(t, 15, report.EffectiveTotalPoints)
}

func TestPolicyNAShrinksDenominator(t *testing.T) {
	policy := NewPolicyEngine()

	report, err := policy.Apply(testRubric(t), []domain.ParameterScore{
		{ParameterID: "greeting", Status: domain.StatusScored, PointsAwarded: 8},
		{ParameterID: "closing", Status: domain.StatusNA, PointsAwarded: domain.PointsNA},
	})
	require.NoError(t, err)

	assert.Equal(t, 10, report.EffectiveTotalPoints)
	assert.Equal(t, 8, report.TotalScore)
	assert.Equal(t, 80.0, report.Percentage)
	assert.True(t, report.Passed)
	assert.Equal(t, domain.PointsNA, report.CriteriaScores[1].PointsAwarded)
	assert.Equal(t, domain.StatusNA, report.CriteriaScores[1].Status)
}

func TestPolicyAllNAYieldsZeroPercentage(t *testing.T) {
	policy := NewPolicyEngine()

	report, err := policy.Apply(testRubric(t), []domain.ParameterScore{
		{ParameterID: "greeting", Status: domain.StatusNA, PointsAwarded: domain.PointsNA},
		{ParameterID: "closing", Status: domain.StatusNA, PointsAwarded: domain.PointsNA},
	})
	require.NoError(t, err)

	assert.Equal(t, 0, report.EffectiveTotalPoints)
	assert.Equal(t, 0.0, report.Percentage)
	assert.False(t, report.Passed)
}

func TestPolicyPercentageRoundsToTwoDecimals(t *testing.T) {
	policy := NewPolicyEngine()

	report, err := policy.Apply(testRubric(t), []domain.ParameterScore{
		{ParameterID: "greeting", Status: domain.StatusScored, PointsAwarded: 5},
		{ParameterID: "closing", Status: domain.StatusScored, PointsAwarded: 0},
	})
	require.NoError(t, err)

	// 5/15 = 33.333...
	assert.Equal(t, 33.33, report.Percentage)
}

func TestPolicyMissingScoreIsCoverageError(t *testing.T) {
	policy := NewPolicyEngine()

	_, err := policy.Apply(testRubric(t), []domain.ParameterScore{
		{ParameterID: "greeting", Status: domain.StatusScored, PointsAwarded: 8},
	})
	var ce *domain.CoverageError
	require.ErrorAs(t, err, &ce)
}
