// Package scoring turns a diarized transcript into a validated, consensus
// score report for one call.
package scoring

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/PUGALARASANL2004/inpersonSales-ReviewSys-FATAL/internal/config"
	"github.com/PUGALARASANL2004/inpersonSales-ReviewSys-FATAL/internal/domain"
	"github.com/PUGALARASANL2004/inpersonSales-ReviewSys-FATAL/internal/knowledge"
	"github.com/PUGALARASANL2004/inpersonSales-ReviewSys-FATAL/internal/llm"
)

// CompletionClient is the slice of the LLM client the engine depends on.
type CompletionClient interface {
	Complete(ctx context.Context, req *llm.CompletionRequest) (*llm.CompletionResponse, error)
}

// Engine runs the full scoring pipeline for one call: prompt, N independent
// evaluator attempts, validation, consensus, policy.
type Engine struct {
	client    CompletionClient
	prompts   *PromptBuilder
	validator *Validator
	consensus *ConsensusAggregator
	policy    *PolicyEngine
	cfg       config.ScoringConfig
	model     string
	log       *logrus.Logger
}

func NewEngine(client CompletionClient, kb *knowledge.Store, cfg config.ScoringConfig, model string, log *logrus.Logger) *Engine {
	if cfg.ConsensusCount < 1 {
		cfg.ConsensusCount = 1
	}
	if cfg.AttemptParallelism < 1 {
		cfg.AttemptParallelism = 1
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Engine{
		client:    client,
		prompts:   NewPromptBuilder(kb, cfg.SilenceThreshold),
		validator: NewValidator(kb, cfg.SimilarityThreshold),
		consensus: NewConsensusAggregator(),
		policy:    NewPolicyEngine(),
		cfg:       cfg,
		model:     model,
		log:       log,
	}
}

// Score produces the canonical report for one call. Attempts that fail are
// dropped from consensus; if none succeed the whole invocation fails.
func (e *Engine) Score(ctx context.Context, call *domain.Call, rubric *domain.Rubric) (*domain.ScoreReport, error) {
	if call.Transcript == nil || strings.TrimSpace(call.Transcript.FullText()) == "" {
		return nil, domain.NewInputError("call %s has no transcript", call.ID)
	}

	prompt := e.prompts.Build(rubric, call.Transcript)

	var (
		mu       sync.Mutex
		attempts [][]domain.ParameterScore
		lastErr  error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.AttemptParallelism)

	for i := 0; i < e.cfg.ConsensusCount; i++ {
		attemptNo := i + 1
		g.Go(func() error {
			scores, err := e.runAttempt(gctx, prompt, rubric, call.Transcript)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				lastErr = err
				e.log.WithFields(logrus.Fields{
					"call_id": call.ID,
					"attempt": attemptNo,
				}).WithError(err).Warn("scoring attempt failed")
				return nil
			}
			attempts = append(attempts, scores)
			return nil
		})
	}

	// Goroutines never return errors, so Wait only surfaces ctx problems.
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if len(attempts) == 0 {
		if lastErr != nil && !isUpstreamFailure(lastErr) {
			return nil, lastErr
		}
		return nil, &domain.UpstreamUnavailableError{
			Service:  "evaluator",
			Attempts: e.cfg.ConsensusCount,
			LastErr:  lastErr,
		}
	}

	scores, agreement, err := e.consensus.Aggregate(rubric, attempts)
	if err != nil {
		return nil, err
	}

	report, err := e.policy.Apply(rubric, scores)
	if err != nil {
		return nil, err
	}

	report.ID = uuid.New().String()
	report.CallID = call.ID
	report.ConsensusCount = len(attempts)
	report.AttemptAgreement = agreement
	report.EvaluatorModel = e.model
	report.CreatedAt = time.Now().UTC()

	e.log.WithFields(logrus.Fields{
		"call_id":    call.ID,
		"rubric":     rubric.Key(),
		"attempts":   len(attempts),
		"percentage": report.Percentage,
		"fatal":      report.FatalTriggered,
	}).Info("call scored")

	return report, nil
}

// runAttempt performs one evaluator round trip with retries on transient
// upstream errors, then validates the result.
func (e *Engine) runAttempt(ctx context.Context, prompt string, rubric *domain.Rubric, transcript *domain.Transcript) ([]domain.ParameterScore, error) {
	var lastErr error

	for try := 0; try <= e.cfg.RetryMax; try++ {
		if try > 0 {
			delay := e.cfg.RetryBaseDelay * time.Duration(1<<(try-1))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		resp, err := e.complete(ctx, prompt)
		if err != nil {
			lastErr = err
			if domain.IsRetryableUpstream(err) {
				continue
			}
			return nil, err
		}

		parsed, err := e.validator.Parse(resp.Content)
		if err != nil {
			return nil, err
		}
		return e.validator.Validate(rubric, transcript, parsed)
	}

	return nil, lastErr
}

func (e *Engine) complete(ctx context.Context, prompt string) (*llm.CompletionResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.AttemptTimeout)
	defer cancel()

	return e.client.Complete(ctx, &llm.CompletionRequest{
		Model: e.model,
		Messages: []llm.Message{
			{Role: "system", Content: e.prompts.SystemPrompt()},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   8192,
		Temperature: 0.1,
		JSONMode:    true,
	})
}

func isUpstreamFailure(err error) bool {
	var ue *domain.UpstreamError
	if errors.As(err, &ue) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
