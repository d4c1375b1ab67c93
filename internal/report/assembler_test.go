package report

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PUGALARASANL2004/inpersonSales-ReviewSys-FATAL/internal/domain"
	"github.com/PUGALARASANL2004/inpersonSales-ReviewSys-FATAL/internal/llm"
)

type stubCompleter struct {
	content string
	err     error
}

func (s *stubCompleter) Complete(ctx context.Context, req *llm.CompletionRequest) (*llm.CompletionResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &llm.CompletionResponse{Content: s.content}, nil
}

func scoredCall() (*domain.Call, *domain.ScoreReport) {
	call := &domain.Call{
		ID: "call-1",
		Transcript: &domain.Transcript{
			Text: "Good morning sir, welcome to our showroom.",
		},
	}
	score := &domain.ScoreReport{
		CallID:               "call-1",
		TotalPoints:          15,
		EffectiveTotalPoints: 15,
		TotalScore:           12,
		Percentage:           80,
		Passed:               true,
		CriteriaScores: []domain.CriterionScore{
			{ID: "greeting", Name: "Greeting", MaxPoints: 10, PointsAwarded: 8, Status: domain.StatusScored},
		},
	}
	return call, score
}

func TestAssembleAttachesSummaries(t *testing.T) {
	stub := &stubCompleter{content: `{
		"overall_summary": "Solid call with a warm opening.",
		"agent_summary": {"well_performed": ["greeting"], "areas_of_improvement": ["closing"]},
		"client_summary": "Customer was curious about pricing."
	}`}
	assembler := NewAssembler(NewSummarizer(stub, "m"), nil)

	call, score := scoredCall()
	final := assembler.Assemble(context.Background(), call, score, nil)

	require.NotNil(t, final.Summaries)
	assert.Equal(t, "Solid call with a warm opening.", final.Summaries.OverallSummary)
	assert.Equal(t, []string{"greeting"}, final.Summaries.AgentSummary.WellPerformed)
	assert.Same(t, score, final.Score)
}

func TestAssembleSurvivesSummarizerFailure(t *testing.T) {
	assembler := NewAssembler(NewSummarizer(&stubCompleter{err: errors.New("backend down")}, "m"), nil)

	call, score := scoredCall()
	final := assembler.Assemble(context.Background(), call, score, nil)

	assert.Nil(t, final.Summaries)
	require.NotNil(t, final.Score)
	assert.Equal(t, 12, final.Score.TotalScore)
}

func TestAssembleRejectsEmptySummaryBody(t *testing.T) {
	assembler := NewAssembler(NewSummarizer(&stubCompleter{content: `{"overall_summary": "  "}`}, "m"), nil)

	call, score := scoredCall()
	final := assembler.Assemble(context.Background(), call, score, nil)
	assert.Nil(t, final.Summaries)
}

func TestAssembleWithoutSummarizer(t *testing.T) {
	assembler := NewAssembler(nil, nil)

	call, score := scoredCall()
	emotion := &domain.CallEmotionSummary{PauseCount: 2}
	final := assembler.Assemble(context.Background(), call, score, emotion)

	assert.Nil(t, final.Summaries)
	assert.Equal(t, 2, final.Emotion.PauseCount)
	assert.False(t, final.CreatedAt.IsZero())
}
