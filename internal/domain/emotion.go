package domain

type EmotionSource string

const (
	EmotionSourceText  EmotionSource = "text"
	EmotionSourceAudio EmotionSource = "audio"
)

// EmotionSignal is one source's estimate for one speaker segment.
type EmotionSignal struct {
	Source     EmotionSource `json:"source"`
	SegmentRef int           `json:"segment_ref"`
	Label      string        `json:"label"`
	Confidence float64       `json:"confidence"`
}

// FusedEmotion is the merged per-segment estimate. Sources records which
// inputs contributed; Poor marks segments whose fused label falls in the
// configured negative set with sufficient confidence.
type FusedEmotion struct {
	SegmentRef int             `json:"segment_ref"`
	Speaker    Speaker         `json:"speaker"`
	Label      string          `json:"label"`
	Confidence float64         `json:"confidence"`
	Sources    []EmotionSource `json:"sources"`
	Agreement  bool            `json:"agreement"`
	Poor       bool            `json:"poor"`
}

// SpeakerPace is words-per-minute for one speaker over their talk time.
type SpeakerPace struct {
	Words          int     `json:"words"`
	TalkTime       float64 `json:"talk_time_seconds"`
	WordsPerMinute float64 `json:"words_per_minute"`
}

// CallEmotionSummary carries the call-level aggregates. Advisory metadata
// only: nothing here ever feeds the numeric score.
type CallEmotionSummary struct {
	Segments      []FusedEmotion          `json:"segments"`
	TalkTimeShare map[Speaker]float64     `json:"talk_time_share"`
	Pace          map[Speaker]SpeakerPace `json:"pace"`
	PauseCount    int                     `json:"pause_count"`
	PoorSegments  []int                   `json:"poor_segments,omitempty"`
}
