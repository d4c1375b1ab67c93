// Package transcribe wraps the async speech-to-text service: upload the
// audio, start a transcription, poll until done, fetch the tokens and fold
// them into diarized speaker segments.
package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/PUGALARASANL2004/inpersonSales-ReviewSys-FATAL/internal/config"
	"github.com/PUGALARASANL2004/inpersonSales-ReviewSys-FATAL/internal/domain"
)

type Client struct {
	baseURL      string
	apiKey       string
	model        string
	pollInterval time.Duration
	timeout      time.Duration
	httpClient   *http.Client
	log          *logrus.Logger
}

func NewClient(cfg config.TranscriberConfig, log *logrus.Logger) *Client {
	if log == nil {
		log = logrus.StandardLogger()
	}
	pollInterval := cfg.PollInterval
	if pollInterval <= 0 {
		pollInterval = time.Second
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	return &Client{
		baseURL:      cfg.BaseURL,
		apiKey:       cfg.APIKey,
		model:        cfg.Model,
		pollInterval: pollInterval,
		timeout:      timeout,
		httpClient:   &http.Client{Timeout: 2 * time.Minute},
		log:          log,
	}
}

// Transcribe runs the full async flow for one audio file and returns the
// diarized transcript.
func (c *Client) Transcribe(ctx context.Context, fileName string, audio io.Reader) (*domain.Transcript, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	fileID, err := c.uploadFile(ctx, fileName, audio)
	if err != nil {
		return nil, err
	}

	transcriptionID, err := c.createTranscription(ctx, fileID)
	if err != nil {
		return nil, err
	}

	if err := c.waitForCompletion(ctx, transcriptionID); err != nil {
		return nil, err
	}

	tokens, err := c.fetchTokens(ctx, transcriptionID)
	if err != nil {
		return nil, err
	}

	transcript := BuildTranscript(tokens)
	if len(transcript.Segments) == 0 {
		return nil, domain.NewInputError("audio %s produced no speech segments", fileName)
	}
	c.log.WithFields(logrus.Fields{
		"file":     fileName,
		"segments": len(transcript.Segments),
		"duration": transcript.Duration,
	}).Info("transcription complete")
	return transcript, nil
}

func (c *Client) uploadFile(ctx context.Context, fileName string, audio io.Reader) (string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", fileName)
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, audio); err != nil {
		return "", fmt.Errorf("copy audio: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("close multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/files", &buf)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", w.FormDataContentType())

	var out struct {
		ID string `json:"id"`
	}
	if err := c.do(req, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

func (c *Client) createTranscription(ctx context.Context, fileID string) (string, error) {
	payload := map[string]interface{}{
		"file_id":                    fileID,
		"model":                      c.model,
		"enable_speaker_diarization": true,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/transcriptions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	var out struct {
		ID string `json:"id"`
	}
	if err := c.do(req, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

func (c *Client) waitForCompletion(ctx context.Context, transcriptionID string) error {
	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/transcriptions/"+transcriptionID, nil)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		var out struct {
			Status       string `json:"status"`
			ErrorMessage string `json:"error_message"`
		}
		if err := c.do(req, &out); err != nil {
			return err
		}

		switch out.Status {
		case "completed":
			return nil
		case "error":
			return &domain.UpstreamError{
				Service: "transcriber",
				Err:     fmt.Errorf("transcription failed: %s", out.ErrorMessage),
			}
		}

		select {
		case <-ctx.Done():
			return &domain.UpstreamError{Service: "transcriber", Retryable: true, Err: ctx.Err()}
		case <-time.After(c.pollInterval):
		}
	}
}

func (c *Client) fetchTokens(ctx context.Context, transcriptionID string) ([]Token, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/transcriptions/"+transcriptionID+"/transcript", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	var out struct {
		Tokens []Token `json:"tokens"`
	}
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return out.Tokens, nil
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &domain.UpstreamError{Service: "transcriber", Retryable: true, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return &domain.UpstreamError{
			Service:   "transcriber",
			Retryable: resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500,
			Err:       fmt.Errorf("api error %d: %s", resp.StatusCode, string(body)),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
