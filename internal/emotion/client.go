package emotion

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/PUGALARASANL2004/inpersonSales-ReviewSys-FATAL/internal/domain"
)

// Client talks to the emotion services: a text model behind POST /detect and
// an audio model behind POST /classify. Either URL may be empty, in which
// case that source contributes no signals.
type Client struct {
	textURL    string
	audioURL   string
	httpClient *http.Client
}

func NewClient(textURL, audioURL string) *Client {
	return &Client{
		textURL:  textURL,
		audioURL: audioURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

type detectRequest struct {
	Text string `json:"text"`
}

type detectResponse struct {
	Emotions []struct {
		Label string  `json:"label"`
		Score float64 `json:"score"`
	} `json:"emotions"`
	DominantEmotion string `json:"dominant_emotion"`
}

// DetectText classifies one segment's text. Returns the dominant label with
// its score.
func (c *Client) DetectText(ctx context.Context, segmentRef int, text string) (*domain.EmotionSignal, error) {
	if c.textURL == "" {
		return nil, nil
	}

	var out detectResponse
	if err := c.post(ctx, c.textURL+"/detect", detectRequest{Text: text}, &out); err != nil {
		return nil, err
	}

	label := out.DominantEmotion
	confidence := 0.0
	for _, e := range out.Emotions {
		if e.Label == label || (label == "" && e.Score > confidence) {
			if label == "" {
				label = e.Label
			}
			if e.Score > confidence {
				confidence = e.Score
			}
		}
	}
	if label == "" {
		return nil, nil
	}

	return &domain.EmotionSignal{
		Source:     domain.EmotionSourceText,
		SegmentRef: segmentRef,
		Label:      label,
		Confidence: confidence,
	}, nil
}

type classifyRequest struct {
	AudioBase64 string  `json:"audio_base64"`
	StartTime   float64 `json:"start_time"`
	EndTime     float64 `json:"end_time"`
}

type classifyResponse struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// ClassifyAudio classifies one segment's audio slice.
func (c *Client) ClassifyAudio(ctx context.Context, segmentRef int, audio []byte, start, end float64) (*domain.EmotionSignal, error) {
	if c.audioURL == "" {
		return nil, nil
	}

	req := classifyRequest{
		AudioBase64: base64.StdEncoding.EncodeToString(audio),
		StartTime:   start,
		EndTime:     end,
	}
	var out classifyResponse
	if err := c.post(ctx, c.audioURL+"/classify", req, &out); err != nil {
		return nil, err
	}
	if out.Label == "" {
		return nil, nil
	}

	return &domain.EmotionSignal{
		Source:     domain.EmotionSourceAudio,
		SegmentRef: segmentRef,
		Label:      out.Label,
		Confidence: out.Confidence,
	}, nil
}

func (c *Client) post(ctx context.Context, url string, in, out interface{}) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &domain.UpstreamError{Service: "emotion", Retryable: true, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return &domain.UpstreamError{
			Service:   "emotion",
			Retryable: resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500,
			Err:       fmt.Errorf("api error %d: %s", resp.StatusCode, string(respBody)),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
