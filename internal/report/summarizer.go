// Package report assembles the final deliverable for a scored call and
// generates the narrative summaries shown to reviewers.
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PUGALARASANL2004/inpersonSales-ReviewSys-FATAL/internal/domain"
	"github.com/PUGALARASANL2004/inpersonSales-ReviewSys-FATAL/internal/llm"
)

// Completer is the slice of the LLM client the summarizer uses.
type Completer interface {
	Complete(ctx context.Context, req *llm.CompletionRequest) (*llm.CompletionResponse, error)
}

// Summarizer produces the narrative summaries for a scored call. Summaries
// are best-effort: any failure here leaves the score report untouched.
type Summarizer struct {
	client Completer
	model  string
}

func NewSummarizer(client Completer, model string) *Summarizer {
	return &Summarizer{client: client, model: model}
}

// Summarize generates the overall, agent and client narratives from the
// transcript and the scored criteria.
func (s *Summarizer) Summarize(ctx context.Context, transcript *domain.Transcript, score *domain.ScoreReport) (*domain.Summaries, error) {
	prompt := s.buildPrompt(transcript, score)

	resp, err := s.client.Complete(ctx, &llm.CompletionRequest{
		Model: s.model,
		Messages: []llm.Message{
			{Role: "system", Content: "You are a sales coaching assistant. Summarize calls factually, without inventing events. Always respond with valid JSON."},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   1024,
		Temperature: 0.3,
		JSONMode:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("llm completion: %w", err)
	}

	return s.parseResponse(resp.Content)
}

func (s *Summarizer) buildPrompt(transcript *domain.Transcript, score *domain.ScoreReport) string {
	var sb strings.Builder

	sb.WriteString("Summarize this scored sales call.\n\nTranscript:\n")
	sb.WriteString(transcript.FullText())
	sb.WriteString("\n\nScoring outcome:\n")
	sb.WriteString(fmt.Sprintf("- Overall: %d/%d points (%.2f%%), passed=%v\n",
		score.TotalScore, score.EffectiveTotalPoints, score.Percentage, score.Passed))
	if score.FatalTriggered {
		sb.WriteString(fmt.Sprintf("- %s\n", score.FatalReason))
	}
	for _, cs := range score.CriteriaScores {
		if cs.Status == domain.StatusNA {
			sb.WriteString(fmt.Sprintf("- %s: not applicable\n", cs.Name))
			continue
		}
		sb.WriteString(fmt.Sprintf("- %s: %d/%d. %s\n", cs.Name, cs.PointsAwarded, cs.MaxPoints, cs.Rationale))
	}

	sb.WriteString(`
Respond with JSON:
{
  "overall_summary": "<two or three sentences on how the call went>",
  "agent_summary": {
    "well_performed": ["<thing the agent did well>"],
    "areas_of_improvement": ["<specific coaching point>"]
  },
  "client_summary": "<one or two sentences on the customer's needs and mood>"
}`)

	return sb.String()
}

func (s *Summarizer) parseResponse(content string) (*domain.Summaries, error) {
	var result domain.Summaries
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}
	if strings.TrimSpace(result.OverallSummary) == "" {
		return nil, fmt.Errorf("empty overall summary")
	}
	return &result, nil
}
