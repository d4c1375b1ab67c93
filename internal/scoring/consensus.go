package scoring

import (
	"sort"

	"github.com/PUGALARASANL2004/inpersonSales-ReviewSys-FATAL/internal/domain"
)

// ConsensusAggregator folds several validated attempts into one score set.
// Statuses are decided by vote, points by median. With an even attempt count
// the lower middle point value wins, and a fatal tie counts as fatal. Both
// choices keep the aggregate conservative.
type ConsensusAggregator struct {
	agreement *AgreementCalculator
}

func NewConsensusAggregator() *ConsensusAggregator {
	return &ConsensusAggregator{agreement: NewAgreementCalculator()}
}

// Aggregate combines attempts parameter by parameter. All attempts must come
// from the same validator run shape: rubric order, one entry per parameter.
// It returns the consensus scores plus per-parameter status agreement.
func (a *ConsensusAggregator) Aggregate(rubric *domain.Rubric, attempts [][]domain.ParameterScore) ([]domain.ParameterScore, map[string]float64, error) {
	if len(attempts) == 0 {
		return nil, nil, domain.NewInputError("no attempts to aggregate")
	}

	params := rubric.Parameters()
	for _, attempt := range attempts {
		if len(attempt) != len(params) {
			return nil, nil, domain.NewSchemaError("consensus input",
				"attempt has %d scores, rubric has %d parameters", len(attempt), len(params))
		}
	}

	scores := make([]domain.ParameterScore, 0, len(params))
	agreement := make(map[string]float64, len(params))

	for i, p := range params {
		column := make([]domain.ParameterScore, len(attempts))
		for j := range attempts {
			column[j] = attempts[j][i]
		}
		consensus := a.aggregateParameter(p, column)
		scores = append(scores, consensus)
		agreement[p.ID] = a.agreement.StatusAgreement(column)
	}

	return scores, agreement, nil
}

func (a *ConsensusAggregator) aggregateParameter(p domain.Parameter, column []domain.ParameterScore) domain.ParameterScore {
	n := len(column)
	fatalVotes, naVotes := 0, 0
	for _, s := range column {
		switch s.Status {
		case domain.StatusFatalFailed:
			fatalVotes++
		case domain.StatusNA:
			naVotes++
		}
	}

	var status domain.ScoreStatus
	switch {
	// A split vote on a fatal failure is treated as failed. The rubric
	// marks these parameters fatal precisely because a miss is unacceptable.
	case 2*fatalVotes >= n && fatalVotes > 0:
		status = domain.StatusFatalFailed
	case 2*naVotes > n:
		status = domain.StatusNA
	default:
		status = domain.StatusScored
	}

	points := 0
	switch status {
	case domain.StatusNA:
		points = domain.PointsNA
	case domain.StatusScored:
		points = medianPoints(column)
	}

	consensus := domain.ParameterScore{
		ParameterID:   p.ID,
		Status:        status,
		PointsAwarded: points,
	}

	// Rationale and evidence come from the first attempt that agrees with
	// the consensus, preferring an exact point match.
	if match := firstMatching(column, status, points, true); match != nil {
		consensus.Rationale = match.Rationale
		consensus.Evidence = match.Evidence
		consensus.Claims = match.Claims
		consensus.ValidationNotes = match.ValidationNotes
	} else if match := firstMatching(column, status, points, false); match != nil {
		consensus.Rationale = match.Rationale
		consensus.Evidence = match.Evidence
		consensus.Claims = match.Claims
		consensus.ValidationNotes = match.ValidationNotes
	}

	return consensus
}

// medianPoints takes the median over non-NA attempts, lower middle on even
// counts.
func medianPoints(column []domain.ParameterScore) int {
	var points []int
	for _, s := range column {
		if s.Status == domain.StatusNA {
			continue
		}
		points = append(points, s.PointsAwarded)
	}
	if len(points) == 0 {
		return 0
	}
	sort.Ints(points)
	return points[(len(points)-1)/2]
}

func firstMatching(column []domain.ParameterScore, status domain.ScoreStatus, points int, exact bool) *domain.ParameterScore {
	for i := range column {
		if column[i].Status != status {
			continue
		}
		if exact && column[i].PointsAwarded != points {
			continue
		}
		return &column[i]
	}
	return nil
}
