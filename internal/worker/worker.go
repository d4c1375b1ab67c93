// Package worker consumes scoring jobs from the Redis stream and runs the
// full pipeline for each call: score, emotion aggregates, narratives,
// persistence.
package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/PUGALARASANL2004/inpersonSales-ReviewSys-FATAL/internal/domain"
	"github.com/PUGALARASANL2004/inpersonSales-ReviewSys-FATAL/internal/emotion"
	"github.com/PUGALARASANL2004/inpersonSales-ReviewSys-FATAL/internal/queue"
	"github.com/PUGALARASANL2004/inpersonSales-ReviewSys-FATAL/internal/report"
	"github.com/PUGALARASANL2004/inpersonSales-ReviewSys-FATAL/internal/rubric"
)

// maxJobRetries caps how often a transiently failed job is re-published
// before the call is marked failed.
const maxJobRetries = 3

// jobQueue is the slice of the Redis queue the worker uses. Re-publishing is
// part of it: consumer groups only deliver never-seen entries, so a failed
// job must go back on the stream as a new entry to be retried.
type jobQueue interface {
	Consume(ctx context.Context, count int64, block time.Duration) ([]queue.Message, error)
	Ack(ctx context.Context, messageIDs ...string) error
	Publish(ctx context.Context, job *queue.ScoringJob) error
}

type callStore interface {
	GetByID(ctx context.Context, id string) (*domain.Call, error)
	UpdateStatus(ctx context.Context, id string, status domain.CallStatus) error
}

type reportStore interface {
	Create(ctx context.Context, callID string, report *domain.FinalReport) error
}

type callScorer interface {
	Score(ctx context.Context, call *domain.Call, rubric *domain.Rubric) (*domain.ScoreReport, error)
}

type Worker struct {
	queue          jobQueue
	callRepo       callStore
	reportRepo     reportStore
	rubrics        *rubric.Store
	engine         callScorer
	emotionClient  *emotion.Client
	fuser          *emotion.Fuser
	assembler      *report.Assembler
	defaultVersion string
	concurrency    int
	batchSize      int
	log            *logrus.Logger
}

func New(
	q jobQueue,
	callRepo callStore,
	reportRepo reportStore,
	rubrics *rubric.Store,
	engine callScorer,
	emotionClient *emotion.Client,
	fuser *emotion.Fuser,
	assembler *report.Assembler,
	defaultVersion string,
	concurrency int,
	batchSize int,
	log *logrus.Logger,
) *Worker {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if concurrency < 1 {
		concurrency = 1
	}
	if batchSize < 1 {
		batchSize = 1
	}
	return &Worker{
		queue:          q,
		callRepo:       callRepo,
		reportRepo:     reportRepo,
		rubrics:        rubrics,
		engine:         engine,
		emotionClient:  emotionClient,
		fuser:          fuser,
		assembler:      assembler,
		defaultVersion: defaultVersion,
		concurrency:    concurrency,
		batchSize:      batchSize,
		log:            log,
	}
}

func (w *Worker) Start(ctx context.Context) error {
	w.log.WithFields(logrus.Fields{
		"concurrency": w.concurrency,
		"batch_size":  w.batchSize,
	}).Info("starting scoring worker")

	jobs := make(chan queue.Message, w.concurrency*2)
	var wg sync.WaitGroup

	for i := 0; i < w.concurrency; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			w.processJobs(ctx, workerID, jobs)
		}(i)
	}

	go func() {
		defer close(jobs)
		for {
			select {
			case <-ctx.Done():
				return
			default:
				messages, err := w.queue.Consume(ctx, int64(w.batchSize), 5*time.Second)
				if err != nil {
					w.log.WithError(err).Error("consume failed")
					time.Sleep(time.Second)
					continue
				}

				for _, msg := range messages {
					select {
					case jobs <- msg:
					case <-ctx.Done():
						return
					}
				}
			}
		}
	}()

	wg.Wait()
	return nil
}

func (w *Worker) processJobs(ctx context.Context, workerID int, jobs <-chan queue.Message) {
	for msg := range jobs {
		err := w.ProcessJob(ctx, msg.Job)
		switch {
		case err == nil:
		case domain.IsRetryableUpstream(err) && msg.Job.Retry < maxJobRetries:
			// Re-publish as a fresh entry with a bumped counter. A pending
			// entry would never be redelivered to any consumer.
			retry := *msg.Job
			retry.Retry++
			if pubErr := w.queue.Publish(ctx, &retry); pubErr != nil {
				// Keep the message pending rather than lose the job.
				w.log.WithField("worker", workerID).WithError(pubErr).Error("requeue failed, not acking")
				continue
			}
			w.log.WithFields(logrus.Fields{
				"worker":  workerID,
				"call_id": msg.Job.CallID,
				"retry":   retry.Retry,
			}).WithError(err).Warn("transient failure, job requeued")
		default:
			w.log.WithFields(logrus.Fields{
				"worker":  workerID,
				"call_id": msg.Job.CallID,
				"retry":   msg.Job.Retry,
			}).WithError(err).Error("scoring job failed")
			if markErr := w.callRepo.UpdateStatus(ctx, msg.Job.CallID, domain.CallStatusFailed); markErr != nil {
				w.log.WithError(markErr).Error("failed to mark call failed")
			}
		}

		if err := w.queue.Ack(ctx, msg.ID); err != nil {
			w.log.WithField("worker", workerID).WithError(err).Error("ack failed")
		}
	}
}

// ProcessJob runs the scoring pipeline for one job.
func (w *Worker) ProcessJob(ctx context.Context, job *queue.ScoringJob) error {
	call, err := w.callRepo.GetByID(ctx, job.CallID)
	if err != nil {
		return err
	}
	if call == nil {
		return domain.NewInputError("call %s not found", job.CallID)
	}
	if call.Status == domain.CallStatusScored && !job.Force {
		w.log.WithField("call_id", call.ID).Info("call already scored, skipping")
		return nil
	}

	version := job.RubricVersion
	if version == "" {
		version = call.RubricVersion
	}
	if version == "" {
		version = w.defaultVersion
	}
	rb, err := w.rubrics.Get(call.Project, version)
	if err != nil {
		return err
	}

	score, err := w.engine.Score(ctx, call, rb)
	if err != nil {
		return err
	}

	emotionSummary := w.buildEmotionSummary(ctx, call)
	final := w.assembler.Assemble(ctx, call, score, emotionSummary)

	if err := w.reportRepo.Create(ctx, call.ID, final); err != nil {
		return err
	}
	return w.callRepo.UpdateStatus(ctx, call.ID, domain.CallStatusScored)
}

// buildEmotionSummary gathers text emotion signals per segment and fuses
// them. Advisory only, so every failure degrades to fewer signals.
func (w *Worker) buildEmotionSummary(ctx context.Context, call *domain.Call) *domain.CallEmotionSummary {
	if w.fuser == nil || call.Transcript == nil || len(call.Transcript.Segments) == 0 {
		return nil
	}

	var textSignals []domain.EmotionSignal
	if w.emotionClient != nil {
		for ref, seg := range call.Transcript.Segments {
			sig, err := w.emotionClient.DetectText(ctx, ref, seg.Text)
			if err != nil {
				if !errors.Is(err, context.Canceled) {
					w.log.WithField("call_id", call.ID).WithError(err).Debug("text emotion failed for segment")
				}
				continue
			}
			if sig != nil {
				textSignals = append(textSignals, *sig)
			}
		}
	}

	fused := w.fuser.Fuse(textSignals, nil, call.Transcript.Segments)
	return w.fuser.Summarize(fused, call.Transcript.Segments)
}
