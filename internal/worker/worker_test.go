package worker

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PUGALARASANL2004/inpersonSales-ReviewSys-FATAL/internal/config"
	"github.com/PUGALARASANL2004/inpersonSales-ReviewSys-FATAL/internal/domain"
	"github.com/PUGALARASANL2004/inpersonSales-ReviewSys-FATAL/internal/emotion"
	"github.com/PUGALARASANL2004/inpersonSales-ReviewSys-FATAL/internal/queue"
	"github.com/PUGALARASANL2004/inpersonSales-ReviewSys-FATAL/internal/report"
	"github.com/PUGALARASANL2004/inpersonSales-ReviewSys-FATAL/internal/rubric"
)

type fakeQueue struct {
	published []*queue.ScoringJob
	acked     []string
	pubErr    error
}

func (q *fakeQueue) Consume(ctx context.Context, count int64, block time.Duration) ([]queue.Message, error) {
	return nil, nil
}

func (q *fakeQueue) Ack(ctx context.Context, messageIDs ...string) error {
	q.acked = append(q.acked, messageIDs...)
	return nil
}

func (q *fakeQueue) Publish(ctx context.Context, job *queue.ScoringJob) error {
	if q.pubErr != nil {
		return q.pubErr
	}
	q.published = append(q.published, job)
	return nil
}

type fakeCallStore struct {
	calls    map[string]*domain.Call
	statuses map[string]domain.CallStatus
}

func (s *fakeCallStore) GetByID(ctx context.Context, id string) (*domain.Call, error) {
	return s.calls[id], nil
}

func (s *fakeCallStore) UpdateStatus(ctx context.Context, id string, status domain.CallStatus) error {
	s.statuses[id] = status
	return nil
}

type fakeReportStore struct {
	created []*domain.FinalReport
}

func (s *fakeReportStore) Create(ctx context.Context, callID string, rep *domain.FinalReport) error {
	s.created = append(s.created, rep)
	return nil
}

type fakeScorer struct {
	report *domain.ScoreReport
	err    error
	calls  int
}

func (f *fakeScorer) Score(ctx context.Context, call *domain.Call, r *domain.Rubric) (*domain.ScoreReport, error) {
	f.calls++
	return f.report, f.err
}

func testRubrics(t *testing.T) *rubric.Store {
	t.Helper()
	store := rubric.NewStore()
	require.NoError(t, store.Add(&domain.Rubric{
		ID: "demo-v2", Project: "demo", Version: "v2", Title: "Audit",
		TotalPoints: 10, PassThresholdPercent: 70,
		Categories: []domain.Category{{
			Name: "Opening", MaxPoints: 10,
			Parameters: []domain.Parameter{{ID: "greeting", Name: "Greeting", MaxPoints: 10}},
		}},
	}))
	return store
}

func testCall() *domain.Call {
	return &domain.Call{
		ID:      "call-1",
		Project: "demo",
		Status:  domain.CallStatusTranscribed,
		Transcript: &domain.Transcript{
			Segments: []domain.SpeakerSegment{
				{Speaker: domain.SpeakerAgent, StartTime: 0, EndTime: 3, Text: "Good morning sir"},
			},
		},
	}
}

type workerFixture struct {
	worker  *Worker
	queue   *fakeQueue
	calls   *fakeCallStore
	reports *fakeReportStore
	scorer  *fakeScorer
}

func newFixture(t *testing.T, scorer *fakeScorer) *workerFixture {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	f := &workerFixture{
		queue:   &fakeQueue{},
		calls:   &fakeCallStore{calls: map[string]*domain.Call{"call-1": testCall()}, statuses: map[string]domain.CallStatus{}},
		reports: &fakeReportStore{},
		scorer:  scorer,
	}
	f.worker = New(
		f.queue,
		f.calls,
		f.reports,
		testRubrics(t),
		scorer,
		nil,
		emotion.NewFuser(config.EmotionConfig{}),
		report.NewAssembler(nil, log),
		"v2",
		1,
		1,
		log,
	)
	return f
}

func runOne(f *workerFixture, job *queue.ScoringJob) {
	jobs := make(chan queue.Message, 1)
	jobs <- queue.Message{ID: "1-0", Job: job}
	close(jobs)
	f.worker.processJobs(context.Background(), 0, jobs)
}

func TestProcessJobPersistsReportAndMarksScored(t *testing.T) {
	f := newFixture(t, &fakeScorer{report: &domain.ScoreReport{CallID: "call-1", TotalScore: 8, Percentage: 80, Passed: true}})

	runOne(f, &queue.ScoringJob{CallID: "call-1", Project: "demo"})

	require.Len(t, f.reports.created, 1)
	assert.Equal(t, 8, f.reports.created[0].Score.TotalScore)
	assert.Equal(t, domain.CallStatusScored, f.calls.statuses["call-1"])
	assert.Equal(t, []string{"1-0"}, f.queue.acked)
	assert.Empty(t, f.queue.published)
}

func TestProcessJobSkipsAlreadyScoredCall(t *testing.T) {
	scorer := &fakeScorer{report: &domain.ScoreReport{}}
	f := newFixture(t, scorer)
	f.calls.calls["call-1"].Status = domain.CallStatusScored

	runOne(f, &queue.ScoringJob{CallID: "call-1"})

	assert.Equal(t, 0, scorer.calls)
	assert.Empty(t, f.reports.created)
	assert.Equal(t, []string{"1-0"}, f.queue.acked)
}

func TestTransientFailureRequeuesWithBumpedCounter(t *testing.T) {
	f := newFixture(t, &fakeScorer{err: &domain.UpstreamError{Service: "evaluator", Retryable: true, Err: context.DeadlineExceeded}})

	runOne(f, &queue.ScoringJob{CallID: "call-1", Project: "demo"})

	// The original message is acked and the job goes back on the stream as a
	// new entry; consumer groups never redeliver pending entries on their own.
	require.Len(t, f.queue.published, 1)
	assert.Equal(t, 1, f.queue.published[0].Retry)
	assert.Equal(t, "call-1", f.queue.published[0].CallID)
	assert.Equal(t, []string{"1-0"}, f.queue.acked)
	assert.NotEqual(t, domain.CallStatusFailed, f.calls.statuses["call-1"])
}

func TestTransientFailureExhaustsRetryBudget(t *testing.T) {
	f := newFixture(t, &fakeScorer{err: &domain.UpstreamError{Service: "evaluator", Retryable: true, Err: context.DeadlineExceeded}})

	runOne(f, &queue.ScoringJob{CallID: "call-1", Retry: maxJobRetries})

	assert.Empty(t, f.queue.published)
	assert.Equal(t, domain.CallStatusFailed, f.calls.statuses["call-1"])
	assert.Equal(t, []string{"1-0"}, f.queue.acked)
}

func TestPermanentFailureIsNotRequeued(t *testing.T) {
	f := newFixture(t, &fakeScorer{err: domain.NewSchemaError("evaluator response", "invalid JSON")})

	runOne(f, &queue.ScoringJob{CallID: "call-1"})

	assert.Empty(t, f.queue.published)
	assert.Equal(t, domain.CallStatusFailed, f.calls.statuses["call-1"])
	assert.Equal(t, []string{"1-0"}, f.queue.acked)
}

func TestRequeueFailureLeavesMessagePending(t *testing.T) {
	f := newFixture(t, &fakeScorer{err: &domain.UpstreamError{Service: "evaluator", Retryable: true, Err: context.DeadlineExceeded}})
	f.queue.pubErr = context.DeadlineExceeded

	runOne(f, &queue.ScoringJob{CallID: "call-1"})

	assert.Empty(t, f.queue.acked)
}
