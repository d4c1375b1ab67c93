package scoring

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PUGALARASANL2004/inpersonSales-ReviewSys-FATAL/internal/config"
	"github.com/PUGALARASANL2004/inpersonSales-ReviewSys-FATAL/internal/domain"
	"github.com/PUGALARASANL2004/inpersonSales-ReviewSys-FATAL/internal/llm"
)

// fakeClient returns canned responses in call order, cycling on exhaustion.
type fakeClient struct {
	mu        sync.Mutex
	responses []fakeResult
	calls     int
}

type fakeResult struct {
	content string
	err     error
}

func (f *fakeClient) Complete(ctx context.Context, req *llm.CompletionRequest) (*llm.CompletionResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r := f.responses[f.calls%len(f.responses)]
	f.calls++
	if r.err != nil {
		return nil, r.err
	}
	return &llm.CompletionResponse{Content: r.content}, nil
}

func responseJSON(t *testing.T, greetingPoints, closingPoints int) string {
	t.Helper()
	resp := EvaluatorResponse{Parameters: []ParameterResult{
		{
			ID: "greeting", Status: "scored", Points: greetingPoints, Rationale: "Warm opening.",
			Evidence: []domain.Evidence{{Quote: "Good morning sir, welcome to our showroom"}},
		},
		{
			ID: "closing", Status: "scored", Points: closingPoints, Rationale: "Priced correctly.",
			Evidence: []domain.Evidence{{Quote: "The plan costs 4999 per month"}},
			Claims:   []domain.KnowledgeClaim{{Key: "base_price", Value: "4999"}},
		},
	}}
	data, err := json.Marshal(resp)
	require.NoError(t, err)
	return string(data)
}

func testCall() *domain.Call {
	return &domain.Call{
		ID:         "call-1",
		Project:    "demo",
		Transcript: testTranscript(),
	}
}

func engineConfig(n int) config.ScoringConfig {
	return config.ScoringConfig{
		ConsensusCount:      n,
		AttemptParallelism:  2,
		AttemptTimeout:      time.Second,
		RetryMax:            1,
		RetryBaseDelay:      time.Millisecond,
		SimilarityThreshold: 0.8,
	}
}

func TestEngineScoresCallWithConsensus(t *testing.T) {
	client := &fakeClient{responses: []fakeResult{
		{content: responseJSON(t, 6, 3)},
		{content: responseJSON(t, 8, 5)},
		{content: responseJSON(t, 7, 4)},
	}}
	engine := NewEngine(client, testKnowledge(), engineConfig(3), "test-model", nil)

	report, err := engine.Score(context.Background(), testCall(), testRubric(t))
	require.NoError(t, err)

	assert.Equal(t, "call-1", report.CallID)
	assert.Equal(t, 3, report.ConsensusCount)
	assert.Equal(t, 11, report.TotalScore)
	assert.Equal(t, 73.33, report.Percentage)
	assert.True(t, report.Passed)
	assert.Equal(t, "test-model", report.EvaluatorModel)
	assert.NotEmpty(t, report.ID)
}

func TestEngineRetriesTransientUpstreamErrors(t *testing.T) {
	client := &fakeClient{responses: []fakeResult{
		{err: &domain.UpstreamError{Service: "evaluator", Retryable: true, Err: errors.New("429")}},
		{content: responseJSON(t, 8, 4)},
	}}
	engine := NewEngine(client, testKnowledge(), engineConfig(1), "test-model", nil)

	report, err := engine.Score(context.Background(), testCall(), testRubric(t))
	require.NoError(t, err)
	assert.Equal(t, 12, report.TotalScore)
	assert.Equal(t, 2, client.calls)
}

func TestEngineDropsFailedAttemptsFromConsensus(t *testing.T) {
	client := &fakeClient{responses: []fakeResult{
		{content: responseJSON(t, 8, 4)},
		{err: &domain.UpstreamError{Service: "evaluator", Err: errors.New("bad request")}},
		{content: responseJSON(t, 8, 4)},
	}}
	engine := NewEngine(client, testKnowledge(), engineConfig(3), "test-model", nil)

	report, err := engine.Score(context.Background(), testCall(), testRubric(t))
	require.NoError(t, err)
	assert.Equal(t, 2, report.ConsensusCount)
}

func TestEngineFailsWhenAllAttemptsFail(t *testing.T) {
	client := &fakeClient{responses: []fakeResult{
		{err: &domain.UpstreamError{Service: "evaluator", Err: errors.New("boom")}},
	}}
	engine := NewEngine(client, testKnowledge(), engineConfig(2), "test-model", nil)

	_, err := engine.Score(context.Background(), testCall(), testRubric(t))
	var ue *domain.UpstreamUnavailableError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, 2, ue.Attempts)
}

func TestEngineRejectsEmptyTranscript(t *testing.T) {
	engine := NewEngine(&fakeClient{responses: []fakeResult{{content: "{}"}}}, nil, engineConfig(1), "m", nil)

	call := &domain.Call{ID: "call-2", Project: "demo", Transcript: &domain.Transcript{}}
	_, err := engine.Score(context.Background(), call, testRubric(t))
	var ie *domain.InputError
	require.ErrorAs(t, err, &ie)
}

func TestEngineSurfacesSchemaErrorWhenNothingSucceeds(t *testing.T) {
	client := &fakeClient{responses: []fakeResult{{content: "not json at all"}}}
	engine := NewEngine(client, testKnowledge(), engineConfig(1), "m", nil)

	_, err := engine.Score(context.Background(), testCall(), testRubric(t))
	var se *domain.SchemaError
	require.ErrorAs(t, err, &se)
}
