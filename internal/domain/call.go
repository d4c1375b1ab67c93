package domain

import (
	"strings"
	"time"
)

type Speaker string

const (
	SpeakerAgent    Speaker = "agent"
	SpeakerCustomer Speaker = "customer"
	SpeakerUnknown  Speaker = "unknown"
)

type CallStatus string

const (
	CallStatusPending     CallStatus = "pending"
	CallStatusTranscribed CallStatus = "transcribed"
	CallStatusScored      CallStatus = "scored"
	CallStatusFailed      CallStatus = "failed"
)

// SpeakerSegment is one diarized turn of the call. Segments arrive from the
// transcriber time-ordered and non-overlapping; the core treats them as
// read-only input.
type SpeakerSegment struct {
	Speaker   Speaker `json:"speaker"`
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
	Text      string  `json:"text"`
}

func (s SpeakerSegment) Duration() float64 {
	return s.EndTime - s.StartTime
}

// WordCount counts whitespace-separated tokens, used for pace metrics.
func (s SpeakerSegment) WordCount() int {
	return len(strings.Fields(s.Text))
}

// Transcript is the complete speech-to-text output for one call.
type Transcript struct {
	Text         string           `json:"transcription"`
	Segments     []SpeakerSegment `json:"speaker_segments"`
	Duration     float64          `json:"duration"`
	LanguageCode string           `json:"language_code,omitempty"`
	SpeakerCount int              `json:"speaker_count,omitempty"`
}

// FullText returns the transcript text, falling back to joining segments
// when the transcriber supplied none.
func (t *Transcript) FullText() string {
	if strings.TrimSpace(t.Text) != "" {
		return t.Text
	}
	parts := make([]string, 0, len(t.Segments))
	for _, seg := range t.Segments {
		parts = append(parts, seg.Text)
	}
	return strings.Join(parts, " ")
}

// Call is one recorded sales call under review.
type Call struct {
	ID            string      `json:"call_id"`
	Project       string      `json:"project"`
	RubricVersion string      `json:"rubric_version,omitempty"`
	AgentName     string      `json:"agent_name,omitempty"`
	AudioFileName string      `json:"audio_file_name,omitempty"`
	Transcript    *Transcript `json:"transcript,omitempty"`
	Status        CallStatus  `json:"status"`
	CreatedAt     time.Time   `json:"created_at,omitempty"`
	ScoredAt      *time.Time  `json:"scored_at,omitempty"`
}
