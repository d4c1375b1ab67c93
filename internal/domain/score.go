package domain

import "time"

type ScoreStatus string

const (
	StatusScored      ScoreStatus = "scored"
	StatusNA          ScoreStatus = "na"
	StatusFatalFailed ScoreStatus = "fatal_failed"
)

// PointsNA is the sentinel stored in PointsAwarded when a parameter is not
// applicable. NA parameters contribute nothing to either side of the
// percentage calculation.
const PointsNA = -1

// Evidence is a transcript-traceable quote backing an awarded score. Every
// non-NA, non-zero parameter score must carry at least one evidence item that
// the validator could locate in the transcript.
type Evidence struct {
	Quote     string  `json:"quote"`
	Speaker   Speaker `json:"speaker,omitempty"`
	StartTime float64 `json:"start_time,omitempty"`
	EndTime   float64 `json:"end_time,omitempty"`
}

// KnowledgeClaim is a factual statement the evaluator attributed to the
// agent, named by the knowledge-base key it must be checked against.
type KnowledgeClaim struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// ParameterScore is the validated outcome for a single rubric parameter.
type ParameterScore struct {
	ParameterID     string           `json:"parameter_id"`
	Status          ScoreStatus      `json:"status"`
	PointsAwarded   int              `json:"points_awarded"`
	Rationale       string           `json:"rationale"`
	Evidence        []Evidence       `json:"evidence"`
	Claims          []KnowledgeClaim `json:"claims,omitempty"`
	ValidationNotes string           `json:"validation_notes,omitempty"`
}

// CriterionScore is the report-facing view of one parameter, joined with its
// rubric definition.
type CriterionScore struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Category        string     `json:"category"`
	MaxPoints       int        `json:"max_points"`
	PointsAwarded   int        `json:"points_awarded"`
	Status          ScoreStatus `json:"status"`
	IsFatal         bool       `json:"is_fatal"`
	Rationale       string     `json:"rationale"`
	Evidence        []Evidence `json:"evidence"`
	ValidationNotes string     `json:"validation_notes,omitempty"`
}

// ScoreReport is the canonical result of one scoring invocation. It is
// assembled once and never mutated; a re-score produces a new report.
type ScoreReport struct {
	ID          string `json:"report_id"`
	CallID      string `json:"call_id"`
	RubricID    string `json:"rubric_id"`
	RubricTitle string `json:"rubric_title"`

	TotalPoints          int     `json:"total_points"`
	EffectiveTotalPoints int     `json:"effective_total_points"`
	TotalScore           int     `json:"total_score"`
	Percentage           float64 `json:"percentage"`
	Passed               bool    `json:"passed"`

	FatalTriggered          bool     `json:"fatal_triggered"`
	FatalReason             string   `json:"fatal_reason,omitempty"`
	FailedFatalParameterIDs []string `json:"failed_fatal_parameters,omitempty"`

	CriteriaScores []CriterionScore `json:"criteria_scores"`

	ConsensusCount     int                `json:"consensus_count"`
	AttemptAgreement   map[string]float64 `json:"attempt_agreement,omitempty"`
	EvaluatorModel     string             `json:"evaluator_model,omitempty"`
	CreatedAt          time.Time          `json:"created_at"`
}
