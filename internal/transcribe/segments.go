package transcribe

import (
	"strings"

	"github.com/PUGALARASANL2004/inpersonSales-ReviewSys-FATAL/internal/domain"
)

// Token is one word-level unit from the speech-to-text service.
type Token struct {
	Text       string  `json:"text"`
	StartMs    int     `json:"start_ms"`
	EndMs      int     `json:"end_ms"`
	Confidence float64 `json:"confidence"`
	Speaker    string  `json:"speaker"`
}

// mergeGapSeconds is the largest silence inside one speaker turn. Tokens from
// the same speaker separated by more than this start a new segment.
const mergeGapSeconds = 0.5

// BuildTranscript folds diarized tokens into speaker segments. Consecutive
// same-speaker tokens merge into one segment unless split by a long gap.
// The first two distinct diarization labels map to agent and customer in
// order of appearance; later labels become unknown.
func BuildTranscript(tokens []Token) *domain.Transcript {
	t := &domain.Transcript{}
	if len(tokens) == 0 {
		return t
	}

	roles := make(map[string]domain.Speaker)
	speakerFor := func(label string) domain.Speaker {
		if role, ok := roles[label]; ok {
			return role
		}
		var role domain.Speaker
		switch len(roles) {
		case 0:
			role = domain.SpeakerAgent
		case 1:
			role = domain.SpeakerCustomer
		default:
			role = domain.SpeakerUnknown
		}
		roles[label] = role
		return role
	}

	var segments []domain.SpeakerSegment
	var current *domain.SpeakerSegment
	var words []string

	flush := func() {
		if current == nil {
			return
		}
		current.Text = strings.Join(words, " ")
		segments = append(segments, *current)
		current = nil
		words = nil
	}

	for _, tok := range tokens {
		text := strings.TrimSpace(tok.Text)
		if text == "" {
			continue
		}
		start := float64(tok.StartMs) / 1000
		end := float64(tok.EndMs) / 1000
		speaker := speakerFor(tok.Speaker)

		if current != nil && (current.Speaker != speaker || start-current.EndTime > mergeGapSeconds) {
			flush()
		}
		if current == nil {
			current = &domain.SpeakerSegment{Speaker: speaker, StartTime: start}
		}
		current.EndTime = end
		words = append(words, text)
	}
	flush()

	t.Segments = segments
	t.SpeakerCount = len(roles)
	if n := len(segments); n > 0 {
		t.Duration = segments[n-1].EndTime
	}
	t.Text = t.FullText()
	return t
}
