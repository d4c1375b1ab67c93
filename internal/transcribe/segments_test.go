package transcribe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PUGALARASANL2004/inpersonSales-ReviewSys-FATAL/internal/domain"
)

func tok(text string, startMs, endMs int, speaker string) Token {
	return Token{Text: text, StartMs: startMs, EndMs: endMs, Speaker: speaker}
}

func TestBuildTranscriptMergesSameSpeakerTokens(t *testing.T) {
	transcript := BuildTranscript([]Token{
		tok("good", 0, 300, "1"),
		tok("morning", 350, 700, "1"),
		tok("sir", 750, 1000, "1"),
	})

	require.Len(t, transcript.Segments, 1)
	seg := transcript.Segments[0]
	assert.Equal(t, "good morning sir", seg.Text)
	assert.Equal(t, domain.SpeakerAgent, seg.Speaker)
	assert.Equal(t, 0.0, seg.StartTime)
	assert.Equal(t, 1.0, seg.EndTime)
}

func TestBuildTranscriptSplitsOnSpeakerChange(t *testing.T) {
	transcript := BuildTranscript([]Token{
		tok("hello", 0, 500, "1"),
		tok("hi", 600, 900, "2"),
		tok("there", 950, 1200, "2"),
	})

	require.Len(t, transcript.Segments, 2)
	assert.Equal(t, domain.SpeakerAgent, transcript.Segments[0].Speaker)
	assert.Equal(t, domain.SpeakerCustomer, transcript.Segments[1].Speaker)
	assert.Equal(t, "hi there", transcript.Segments[1].Text)
	assert.Equal(t, 2, transcript.SpeakerCount)
}

func TestBuildTranscriptSplitsOnLongGap(t *testing.T) {
	transcript := BuildTranscript([]Token{
		tok("one", 0, 400, "1"),
		// 600ms of silence exceeds the intra-turn merge gap.
		tok("two", 1000, 1400, "1"),
	})

	require.Len(t, transcript.Segments, 2)
	assert.Equal(t, "one", transcript.Segments[0].Text)
	assert.Equal(t, "two", transcript.Segments[1].Text)
}

func TestBuildTranscriptThirdSpeakerIsUnknown(t *testing.T) {
	transcript := BuildTranscript([]Token{
		tok("a", 0, 100, "1"),
		tok("b", 200, 300, "2"),
		tok("c", 400, 500, "3"),
	})

	require.Len(t, transcript.Segments, 3)
	assert.Equal(t, domain.SpeakerUnknown, transcript.Segments[2].Speaker)
}

func TestBuildTranscriptSkipsEmptyTokensAndSetsDuration(t *testing.T) {
	transcript := BuildTranscript([]Token{
		tok("  ", 0, 100, "1"),
		tok("hello", 150, 600, "1"),
	})

	require.Len(t, transcript.Segments, 1)
	assert.Equal(t, "hello", transcript.Segments[0].Text)
	assert.Equal(t, 0.6, transcript.Duration)
	assert.Equal(t, "hello", transcript.FullText())
}

func TestBuildTranscriptEmptyInput(t *testing.T) {
	transcript := BuildTranscript(nil)
	assert.Empty(t, transcript.Segments)
	assert.Equal(t, 0.0, transcript.Duration)
}
