package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PUGALARASANL2004/inpersonSales-ReviewSys-FATAL/internal/domain"
)

func attempt(greetingPoints int, closingStatus domain.ScoreStatus, closingPoints int) []domain.ParameterScore {
	return []domain.ParameterScore{
		{ParameterID: "greeting", Status: domain.StatusScored, PointsAwarded: greetingPoints},
		{ParameterID: "closing", Status: closingStatus, PointsAwarded: closingPoints},
	}
}

func TestAggregateMedianOddAttempts(t *testing.T) {
	agg := NewConsensusAggregator()
	attempts := [][]domain.ParameterScore{
		attempt(6, domain.StatusScored, 3),
		attempt(8, domain.StatusScored, 5),
		attempt(7, domain.StatusScored, 4),
	}

	scores, agreement, err := agg.Aggregate(testRubric(t), attempts)
	require.NoError(t, err)

	assert.Equal(t, 7, scores[0].PointsAwarded)
	assert.Equal(t, 4, scores[1].PointsAwarded)
	assert.Equal(t, 1.0, agreement["greeting"])
}

func TestAggregateLowerMiddleOnEvenAttempts(t *testing.T) {
	agg := NewConsensusAggregator()
	attempts := [][]domain.ParameterScore{
		attempt(6, domain.StatusScored, 3),
		attempt(8, domain.StatusScored, 5),
	}

	scores, _, err := agg.Aggregate(testRubric(t), attempts)
	require.NoError(t, err)

	assert.Equal(t, 6, scores[0].PointsAwarded)
	assert.Equal(t, 3, scores[1].PointsAwarded)
}

func TestAggregateFatalMajorityWins(t *testing.T) {
	agg := NewConsensusAggregator()
	attempts := [][]domain.ParameterScore{
		attempt(8, domain.StatusFatalFailed, 0),
		attempt(8, domain.StatusFatalFailed, 0),
		attempt(8, domain.StatusScored, 5),
	}

	scores, agreement, err := agg.Aggregate(testRubric(t), attempts)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusFatalFailed, scores[1].Status)
	assert.Equal(t, 0, scores[1].PointsAwarded)
	assert.InDelta(t, 2.0/3.0, agreement["closing"], 1e-9)
}

func TestAggregateFatalTieBreaksToFatal(t *testing.T) {
	agg := NewConsensusAggregator()
	attempts := [][]domain.ParameterScore{
		attempt(8, domain.StatusFatalFailed, 0),
		attempt(8, domain.StatusScored, 5),
	}

	scores, _, err := agg.Aggregate(testRubric(t), attempts)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFatalFailed, scores[1].Status)
}

func TestAggregateFatalMinorityLoses(t *testing.T) {
	agg := NewConsensusAggregator()
	attempts := [][]domain.ParameterScore{
		attempt(8, domain.StatusFatalFailed, 0),
		attempt(8, domain.StatusScored, 5),
		attempt(8, domain.StatusScored, 4),
	}

	scores, _, err := agg.Aggregate(testRubric(t), attempts)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusScored, scores[1].Status)
	// The dissenting zero still participates in the median.
	assert.Equal(t, 4, scores[1].PointsAwarded)
}

func TestAggregateNAMajority(t *testing.T) {
	agg := NewConsensusAggregator()
	attempts := [][]domain.ParameterScore{
		attempt(8, domain.StatusNA, domain.PointsNA),
		attempt(8, domain.StatusNA, domain.PointsNA),
		attempt(8, domain.StatusScored, 5),
	}

	scores, _, err := agg.Aggregate(testRubric(t), attempts)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusNA, scores[1].Status)
	assert.Equal(t, domain.PointsNA, scores[1].PointsAwarded)
}

func TestAggregateEvidenceFromFirstMatchingAttempt(t *testing.T) {
	agg := NewConsensusAggregator()

	a1 := attempt(6, domain.StatusScored, 3)
	a1[0].Rationale = "first"
	a1[0].Evidence = []domain.Evidence{{Quote: "first quote"}}
	a2 := attempt(7, domain.StatusScored, 4)
	a2[0].Rationale = "second"
	a2[0].Evidence = []domain.Evidence{{Quote: "second quote"}}
	a3 := attempt(8, domain.StatusScored, 5)

	scores, _, err := agg.Aggregate(testRubric(t), [][]domain.ParameterScore{a1, a2, a3})
	require.NoError(t, err)

	// Median is 7, supplied by the second attempt.
	assert.Equal(t, 7, scores[0].PointsAwarded)
	assert.Equal(t, "second", scores[0].Rationale)
	assert.Equal(t, "second quote", scores[0].Evidence[0].Quote)
}

func TestAggregateOrderIndependent(t *testing.T) {
	agg := NewConsensusAggregator()
	a := attempt(6, domain.StatusScored, 3)
	b := attempt(8, domain.StatusScored, 5)
	c := attempt(7, domain.StatusScored, 4)

	first, _, err := agg.Aggregate(testRubric(t), [][]domain.ParameterScore{a, b, c})
	require.NoError(t, err)
	second, _, err := agg.Aggregate(testRubric(t), [][]domain.ParameterScore{c, a, b})
	require.NoError(t, err)

	assert.Equal(t, first[0].PointsAwarded, second[0].PointsAwarded)
	assert.Equal(t, first[1].PointsAwarded, second[1].PointsAwarded)
}

func TestAggregateRejectsEmptyInput(t *testing.T) {
	agg := NewConsensusAggregator()
	_, _, err := agg.Aggregate(testRubric(t), nil)
	var ie *domain.InputError
	require.ErrorAs(t, err, &ie)
}
