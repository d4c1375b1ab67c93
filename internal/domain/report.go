package domain

import "time"

// AgentSummary mirrors the coaching view shown on the review dashboard.
type AgentSummary struct {
	WellPerformed      []string `json:"well_performed"`
	AreasOfImprovement []string `json:"areas_of_improvement"`
}

// Summaries holds the narrative output of the summary service. Best-effort:
// a nil Summaries on FinalReport means generation failed or was skipped.
type Summaries struct {
	OverallSummary string       `json:"overall_summary"`
	AgentSummary   AgentSummary `json:"agent_summary"`
	ClientSummary  string       `json:"client_summary"`
}

// FinalReport is the full deliverable for one scored call: the immutable
// score report plus advisory emotion metadata and narrative summaries.
type FinalReport struct {
	Score     *ScoreReport        `json:"score"`
	Emotion   *CallEmotionSummary `json:"emotion,omitempty"`
	Summaries *Summaries          `json:"summaries,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
}
