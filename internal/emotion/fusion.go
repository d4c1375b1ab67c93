// Package emotion fuses text- and audio-derived emotion signals per speaker
// segment and derives call-level speech aggregates. Everything here is
// advisory metadata for the report; it never changes the call score.
package emotion

import (
	"math"
	"strings"

	"github.com/PUGALARASANL2004/inpersonSales-ReviewSys-FATAL/internal/config"
	"github.com/PUGALARASANL2004/inpersonSales-ReviewSys-FATAL/internal/domain"
)

type Fuser struct {
	disagreementPenalty float64
	poorLabels          map[string]bool
	poorConfidence      float64
	silenceThreshold    float64
}

func NewFuser(cfg config.EmotionConfig) *Fuser {
	penalty := cfg.DisagreementPenalty
	if penalty <= 0 || penalty >= 1 {
		penalty = 0.75
	}
	poor := make(map[string]bool, len(cfg.PoorLabels))
	for _, l := range cfg.PoorLabels {
		poor[strings.ToLower(l)] = true
	}
	silence := cfg.SilenceThreshold
	if silence <= 0 {
		silence = 2.5
	}
	return &Fuser{
		disagreementPenalty: penalty,
		poorLabels:          poor,
		poorConfidence:      cfg.PoorConfidence,
		silenceThreshold:    silence,
	}
}

// Fuse merges per-segment signals. Agreeing sources reinforce each other
// (max confidence); disagreeing sources fall back to the higher-confidence
// label with its confidence discounted. Single-source segments pass through.
func (f *Fuser) Fuse(textSignals, audioSignals []domain.EmotionSignal, segments []domain.SpeakerSegment) []domain.FusedEmotion {
	textByRef := indexByRef(textSignals)
	audioByRef := indexByRef(audioSignals)

	var fused []domain.FusedEmotion
	for ref, seg := range segments {
		text, hasText := textByRef[ref]
		audio, hasAudio := audioByRef[ref]

		var fe domain.FusedEmotion
		switch {
		case hasText && hasAudio:
			fe = f.fusePair(text, audio)
		case hasText:
			fe = passThrough(text)
		case hasAudio:
			fe = passThrough(audio)
		default:
			continue
		}

		fe.SegmentRef = ref
		fe.Speaker = seg.Speaker
		fe.Poor = f.poorLabels[strings.ToLower(fe.Label)] && fe.Confidence >= f.poorConfidence
		fused = append(fused, fe)
	}
	return fused
}

func (f *Fuser) fusePair(text, audio domain.EmotionSignal) domain.FusedEmotion {
	fe := domain.FusedEmotion{
		Sources: []domain.EmotionSource{domain.EmotionSourceText, domain.EmotionSourceAudio},
	}

	if strings.EqualFold(text.Label, audio.Label) {
		fe.Label = text.Label
		fe.Confidence = math.Max(text.Confidence, audio.Confidence)
		fe.Agreement = true
		return fe
	}

	winner := text
	if audio.Confidence > text.Confidence {
		winner = audio
	}
	fe.Label = winner.Label
	fe.Confidence = winner.Confidence * f.disagreementPenalty
	return fe
}

func passThrough(sig domain.EmotionSignal) domain.FusedEmotion {
	return domain.FusedEmotion{
		Label:      sig.Label,
		Confidence: sig.Confidence,
		Sources:    []domain.EmotionSource{sig.Source},
		Agreement:  true,
	}
}

// Summarize derives the call-level aggregates: talk-time share, pause count,
// per-speaker pace and the poor-segment index list.
func (f *Fuser) Summarize(fused []domain.FusedEmotion, segments []domain.SpeakerSegment) *domain.CallEmotionSummary {
	summary := &domain.CallEmotionSummary{
		Segments:      fused,
		TalkTimeShare: make(map[domain.Speaker]float64),
		Pace:          make(map[domain.Speaker]domain.SpeakerPace),
	}

	var callDuration float64
	for i, seg := range segments {
		d := seg.Duration()
		if d < 0 {
			d = 0
		}
		summary.TalkTimeShare[seg.Speaker] += d
		if seg.EndTime > callDuration {
			callDuration = seg.EndTime
		}

		pace := summary.Pace[seg.Speaker]
		pace.Words += seg.WordCount()
		pace.TalkTime += d
		summary.Pace[seg.Speaker] = pace

		if i > 0 && seg.StartTime-segments[i-1].EndTime >= f.silenceThreshold {
			summary.PauseCount++
		}
	}

	// Shares are against the whole call, silences included, so they do not
	// have to sum to 1.
	if callDuration > 0 {
		for sp, t := range summary.TalkTimeShare {
			summary.TalkTimeShare[sp] = t / callDuration
		}
	}
	for sp, pace := range summary.Pace {
		if pace.TalkTime > 0 {
			pace.WordsPerMinute = float64(pace.Words) / (pace.TalkTime / 60)
		}
		summary.Pace[sp] = pace
	}

	for _, fe := range fused {
		if fe.Poor {
			summary.PoorSegments = append(summary.PoorSegments, fe.SegmentRef)
		}
	}

	return summary
}

func indexByRef(signals []domain.EmotionSignal) map[int]domain.EmotionSignal {
	m := make(map[int]domain.EmotionSignal, len(signals))
	for _, s := range signals {
		if _, seen := m[s.SegmentRef]; seen {
			continue
		}
		m[s.SegmentRef] = s
	}
	return m
}
