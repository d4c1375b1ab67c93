package emotion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PUGALARASANL2004/inpersonSales-ReviewSys-FATAL/internal/config"
	"github.com/PUGALARASANL2004/inpersonSales-ReviewSys-FATAL/internal/domain"
)

func testFuser() *Fuser {
	return NewFuser(config.EmotionConfig{
		DisagreementPenalty: 0.75,
		PoorLabels:          []string{"anger", "frustration"},
		PoorConfidence:      0.6,
		SilenceThreshold:    2.5,
	})
}

func segments() []domain.SpeakerSegment {
	return []domain.SpeakerSegment{
		{Speaker: domain.SpeakerAgent, StartTime: 0, EndTime: 10, Text: "hello there how are you doing today sir"},
		{Speaker: domain.SpeakerCustomer, StartTime: 13, EndTime: 18, Text: "not great honestly"},
		{Speaker: domain.SpeakerAgent, StartTime: 18.5, EndTime: 28, Text: "let me see what I can do for you right now"},
	}
}

func sig(source domain.EmotionSource, ref int, label string, conf float64) domain.EmotionSignal {
	return domain.EmotionSignal{Source: source, SegmentRef: ref, Label: label, Confidence: conf}
}

func TestFuseAgreementTakesMaxConfidence(t *testing.T) {
	f := testFuser()

	fused := f.Fuse(
		[]domain.EmotionSignal{sig(domain.EmotionSourceText, 0, "joy", 0.7)},
		[]domain.EmotionSignal{sig(domain.EmotionSourceAudio, 0, "joy", 0.9)},
		segments(),
	)

	require.Len(t, fused, 1)
	assert.Equal(t, "joy", fused[0].Label)
	assert.Equal(t, 0.9, fused[0].Confidence)
	assert.True(t, fused[0].Agreement)
	assert.Len(t, fused[0].Sources, 2)
}

func TestFuseDisagreementPenalizesWinner(t *testing.T) {
	f := testFuser()

	fused := f.Fuse(
		[]domain.EmotionSignal{sig(domain.EmotionSourceText, 1, "neutral", 0.5)},
		[]domain.EmotionSignal{sig(domain.EmotionSourceAudio, 1, "anger", 0.8)},
		segments(),
	)

	require.Len(t, fused, 1)
	assert.Equal(t, "anger", fused[0].Label)
	assert.InDelta(t, 0.6, fused[0].Confidence, 1e-9)
	assert.False(t, fused[0].Agreement)
}

func TestFuseSingleSourcePassesThrough(t *testing.T) {
	f := testFuser()

	fused := f.Fuse(
		[]domain.EmotionSignal{sig(domain.EmotionSourceText, 2, "neutral", 0.55)},
		nil,
		segments(),
	)

	require.Len(t, fused, 1)
	assert.Equal(t, 2, fused[0].SegmentRef)
	assert.Equal(t, "neutral", fused[0].Label)
	assert.Equal(t, 0.55, fused[0].Confidence)
	assert.Equal(t, []domain.EmotionSource{domain.EmotionSourceText}, fused[0].Sources)
}

func TestFusePoorFlagRequiresConfidence(t *testing.T) {
	f := testFuser()

	fused := f.Fuse(
		[]domain.EmotionSignal{
			sig(domain.EmotionSourceText, 0, "frustration", 0.9),
			sig(domain.EmotionSourceText, 1, "frustration", 0.4),
		},
		nil,
		segments(),
	)

	require.Len(t, fused, 2)
	assert.True(t, fused[0].Poor)
	assert.False(t, fused[1].Poor)
}

func TestSummarizeAggregates(t *testing.T) {
	f := testFuser()
	segs := segments()

	fused := f.Fuse(
		[]domain.EmotionSignal{sig(domain.EmotionSourceText, 1, "anger", 0.9)},
		nil,
		segs,
	)
	summary := f.Summarize(fused, segs)

	// Agent talks 19.5s of the 28s call; the 3.5s of silence counts toward
	// neither speaker, so the shares do not sum to 1.
	assert.InDelta(t, 19.5/28.0, summary.TalkTimeShare[domain.SpeakerAgent], 1e-9)
	assert.InDelta(t, 5.0/28.0, summary.TalkTimeShare[domain.SpeakerCustomer], 1e-9)
	assert.InDelta(t, 24.5/28.0, summary.TalkTimeShare[domain.SpeakerAgent]+summary.TalkTimeShare[domain.SpeakerCustomer], 1e-9)

	// One gap of 3s between segments 0 and 1 exceeds the 2.5s threshold.
	assert.Equal(t, 1, summary.PauseCount)

	agentPace := summary.Pace[domain.SpeakerAgent]
	assert.Equal(t, 19, agentPace.Words)
	assert.InDelta(t, 19.0/(19.5/60), agentPace.WordsPerMinute, 1e-9)

	assert.Equal(t, []int{1}, summary.PoorSegments)
}
