package cycle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/manojdaspy/inspection-system/internal/domain"
	"github.com/manojdaspy/inspection-system/internal/ports"
)

// captureResult scripts one capture attempt of a fake source.
type captureResult struct {
	delay     time.Duration
	ignoreCtx bool
	err       error
}

// fakeSource plays back a scripted sequence of capture results. The last
// script entry repeats once the script is exhausted.
type fakeSource struct {
	id     string
	script []captureResult

	mu    sync.Mutex
	calls int
}

func (s *fakeSource) ID() string { return s.id }

func (s *fakeSource) Capture(ctx context.Context) (*domain.Frame, error) {
	s.mu.Lock()
	idx := s.calls
	s.calls++
	if idx >= len(s.script) {
		idx = len(s.script) - 1
	}
	r := s.script[idx]
	s.mu.Unlock()

	if r.delay > 0 {
		if r.ignoreCtx {
			// Simulates a source that cannot be interrupted mid-capture.
			time.Sleep(r.delay)
		} else {
			timer := time.NewTimer(r.delay)
			defer timer.Stop()
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-timer.C:
			}
		}
	}

	if r.err != nil {
		return nil, r.err
	}

	return &domain.Frame{
		ID:         fmt.Sprintf("%s-frame-%d", s.id, idx),
		SourceID:   s.id,
		CapturedAt: time.Now(),
		Resolution: domain.Resolution{Width: 1920, Height: 1080},
	}, nil
}

func (s *fakeSource) captureCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// fakePipeline records which sources were processed and returns canned
// results, optionally per source.
type fakePipeline struct {
	mu         sync.Mutex
	processed  []string
	delay      time.Duration
	err        error
	detections map[string][]domain.Detection
	scores     map[string]float64
}

func (p *fakePipeline) Process(ctx context.Context, frame *domain.Frame) ([]domain.Detection, float64, error) {
	p.mu.Lock()
	p.processed = append(p.processed, frame.SourceID)
	delay, err := p.delay, p.err
	detections := p.detections[frame.SourceID]
	score, ok := p.scores[frame.SourceID]
	p.mu.Unlock()

	if !ok {
		score = 1.0
	}

	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, 0, ctx.Err()
		case <-timer.C:
		}
	}

	if err != nil {
		return nil, 0, err
	}
	return detections, score, nil
}

func (p *fakePipeline) processedSources() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.processed))
	copy(out, p.processed)
	return out
}

// sinkStub collects emitted events.
type sinkStub struct {
	mu     sync.Mutex
	events []domain.Event
}

func (s *sinkStub) Emit(e domain.Event) {
	s.mu.Lock()
	s.events = append(s.events, e)
	s.mu.Unlock()
}

func (s *sinkStub) Close() error { return nil }

func (s *sinkStub) byType(t domain.EventType) []domain.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Event
	for _, e := range s.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// metricsStub satisfies ports.MetricsCollector.
type metricsStub struct {
	mu       sync.Mutex
	outcomes map[domain.SourceStatus]int
}

func newMetricsStub() *metricsStub {
	return &metricsStub{outcomes: make(map[domain.SourceStatus]int)}
}

func (m *metricsStub) RecordCaptureAttempt(string, domain.AttemptOutcome, time.Duration) {}

func (m *metricsStub) RecordSourceOutcome(_ string, status domain.SourceStatus, _ time.Duration) {
	m.mu.Lock()
	m.outcomes[status]++
	m.mu.Unlock()
}

func (m *metricsStub) RecordCycle(domain.CycleStatus, domain.Verdict, int, time.Duration) {}
func (m *metricsStub) SetPassRate(float64)                                               {}
func (m *metricsStub) SetActiveTracks(int)                                               {}

var _ ports.CaptureSource = (*fakeSource)(nil)
var _ ports.Pipeline = (*fakePipeline)(nil)
var _ ports.EventSink = (*sinkStub)(nil)
var _ ports.MetricsCollector = (*metricsStub)(nil)

func testOptions() Options {
	return Options{
		Deadline:       2 * time.Second,
		Grace:          100 * time.Millisecond,
		MaxAttempts:    3,
		RetryDelay:     time.Millisecond,
		AttemptTimeout: time.Second,
	}
}

func newTestOrchestrator(t *testing.T, sources []ports.CaptureSource, pipeline ports.Pipeline, opts Options) (*Orchestrator, *sinkStub, *metricsStub) {
	t.Helper()

	sink := &sinkStub{}
	metrics := newMetricsStub()

	orch, err := NewOrchestrator(sources, pipeline, sink, metrics, zap.NewNop(), opts)
	require.NoError(t, err)

	return orch, sink, metrics
}

func transientErr() error {
	return fmt.Errorf("sensor timeout: %w", domain.ErrCaptureTransient)
}

func TestNewOrchestratorRequiresSources(t *testing.T) {
	_, err := NewOrchestrator(nil, &fakePipeline{}, &sinkStub{}, newMetricsStub(), zap.NewNop(), testOptions())
	require.ErrorIs(t, err, domain.ErrNoSources)
}

func TestNewOrchestratorRejectsDuplicateIDs(t *testing.T) {
	sources := []ports.CaptureSource{
		&fakeSource{id: "CAM_01", script: []captureResult{{}}},
		&fakeSource{id: "CAM_01", script: []captureResult{{}}},
	}
	_, err := NewOrchestrator(sources, &fakePipeline{}, &sinkStub{}, newMetricsStub(), zap.NewNop(), testOptions())
	require.Error(t, err)
}

func TestRunCycleAllSourcesSucceed(t *testing.T) {
	sources := []ports.CaptureSource{
		&fakeSource{id: "CAM_01", script: []captureResult{{delay: 5 * time.Millisecond}}},
		&fakeSource{id: "CAM_02", script: []captureResult{{delay: 5 * time.Millisecond}}},
	}
	pipe := &fakePipeline{}

	orch, _, _ := newTestOrchestrator(t, sources, pipe, testOptions())
	result := orch.RunCycle(context.Background(), 1)

	require.Equal(t, domain.CycleCompleted, result.Status)
	require.Len(t, result.Outcomes, 2)
	for _, outcome := range result.Outcomes {
		assert.Equal(t, domain.SourceCaptured, outcome.Status)
		assert.Equal(t, 1, outcome.Attempts)
	}
	assert.Equal(t, StateIdle, orch.State())
}

func TestRunCycleOneOutcomePerSource(t *testing.T) {
	var sources []ports.CaptureSource
	for i := 1; i <= 5; i++ {
		sources = append(sources, &fakeSource{
			id:     fmt.Sprintf("CAM_%02d", i),
			script: []captureResult{{}},
		})
	}

	orch, _, _ := newTestOrchestrator(t, sources, &fakePipeline{}, testOptions())
	result := orch.RunCycle(context.Background(), 1)

	require.Len(t, result.Outcomes, 5)
	seen := make(map[string]int)
	for _, outcome := range result.Outcomes {
		seen[outcome.SourceID]++
	}
	for id, n := range seen {
		assert.Equal(t, 1, n, "source %s", id)
	}
}

func TestRetryTransientThenSuccess(t *testing.T) {
	// Fails twice, succeeds on the third attempt.
	src := &fakeSource{id: "CAM_01", script: []captureResult{
		{err: transientErr()},
		{err: transientErr()},
		{},
	}}

	orch, sink, _ := newTestOrchestrator(t, []ports.CaptureSource{src}, &fakePipeline{}, testOptions())
	result := orch.RunCycle(context.Background(), 1)

	require.Equal(t, domain.CycleCompleted, result.Status)
	outcome, ok := result.Outcome("CAM_01")
	require.True(t, ok)
	assert.Equal(t, domain.SourceCaptured, outcome.Status)
	assert.Equal(t, 3, outcome.Attempts)

	attempts := sink.byType(domain.EventCaptureAttempt)
	require.Len(t, attempts, 3)
	assert.Equal(t, domain.AttemptFailed, attempts[0].AttemptOutcome)
	assert.Equal(t, domain.AttemptFailed, attempts[1].AttemptOutcome)
	assert.Equal(t, domain.AttemptSucceeded, attempts[2].AttemptOutcome)
	for i, e := range attempts {
		assert.Equal(t, i+1, e.Attempt)
	}
}

func TestCaptureExhaustedSkipsPipeline(t *testing.T) {
	src := &fakeSource{id: "CAM_01", script: []captureResult{{err: transientErr()}}}
	pipe := &fakePipeline{}

	orch, sink, _ := newTestOrchestrator(t, []ports.CaptureSource{src}, pipe, testOptions())
	result := orch.RunCycle(context.Background(), 1)

	require.Equal(t, domain.CycleCompletedWithFailures, result.Status)
	outcome, ok := result.Outcome("CAM_01")
	require.True(t, ok)
	assert.Equal(t, domain.SourceCaptureExhausted, outcome.Status)
	assert.Equal(t, 3, outcome.Attempts)
	assert.Equal(t, 3, src.captureCalls())
	assert.Empty(t, pipe.processedSources(), "pipeline must not run after exhaustion")
	assert.Len(t, sink.byType(domain.EventCaptureAttempt), 3)
}

func TestFatalCaptureShortCircuitsRetries(t *testing.T) {
	src := &fakeSource{id: "CAM_01", script: []captureResult{
		{err: fmt.Errorf("source unregistered: %w", domain.ErrCaptureFatal)},
	}}

	orch, sink, _ := newTestOrchestrator(t, []ports.CaptureSource{src}, &fakePipeline{}, testOptions())
	result := orch.RunCycle(context.Background(), 1)

	outcome, ok := result.Outcome("CAM_01")
	require.True(t, ok)
	assert.Equal(t, domain.SourceCaptureExhausted, outcome.Status)
	assert.Equal(t, 1, outcome.Attempts)
	assert.Equal(t, 1, src.captureCalls())

	attempts := sink.byType(domain.EventCaptureAttempt)
	require.Len(t, attempts, 1)
	assert.Equal(t, domain.AttemptFatal, attempts[0].AttemptOutcome)
}

func TestProcessingFailureRecordedPerSource(t *testing.T) {
	sources := []ports.CaptureSource{
		&fakeSource{id: "CAM_01", script: []captureResult{{}}},
	}
	pipe := &fakePipeline{err: errors.New("model crashed")}

	orch, _, _ := newTestOrchestrator(t, sources, pipe, testOptions())
	result := orch.RunCycle(context.Background(), 1)

	require.Equal(t, domain.CycleCompletedWithFailures, result.Status)
	outcome, ok := result.Outcome("CAM_01")
	require.True(t, ok)
	assert.Equal(t, domain.SourceProcessingFailed, outcome.Status)
	assert.Empty(t, outcome.Detections)
}

func TestDeadlineForcesTimedOutWithoutAbortingFastSource(t *testing.T) {
	// Mirrors the 50ms vs 5s sources under a 200ms deadline scenario.
	opts := testOptions()
	opts.Deadline = 200 * time.Millisecond
	opts.Grace = 50 * time.Millisecond

	sources := []ports.CaptureSource{
		&fakeSource{id: "CAM_A", script: []captureResult{{delay: 20 * time.Millisecond}}},
		&fakeSource{id: "CAM_B", script: []captureResult{{delay: 5 * time.Second}}},
	}

	orch, _, _ := newTestOrchestrator(t, sources, &fakePipeline{}, opts)
	start := time.Now()
	result := orch.RunCycle(context.Background(), 1)
	elapsed := time.Since(start)

	require.Equal(t, domain.CycleTimedOut, result.Status)
	require.Len(t, result.Outcomes, 2)

	a, ok := result.Outcome("CAM_A")
	require.True(t, ok)
	assert.Equal(t, domain.SourceCaptured, a.Status)

	b, ok := result.Outcome("CAM_B")
	require.True(t, ok)
	assert.Equal(t, domain.SourceTimedOut, b.Status)

	assert.Less(t, elapsed, opts.Deadline+opts.Grace+300*time.Millisecond,
		"cycle must finalize within deadline plus grace")
}

func TestLateResultCannotMutateFinalizedResult(t *testing.T) {
	opts := testOptions()
	opts.Deadline = 100 * time.Millisecond
	opts.Grace = 30 * time.Millisecond

	// CAM_B ignores cancellation and reports well after finalization.
	sources := []ports.CaptureSource{
		&fakeSource{id: "CAM_A", script: []captureResult{{delay: 10 * time.Millisecond}}},
		&fakeSource{id: "CAM_B", script: []captureResult{{delay: 400 * time.Millisecond, ignoreCtx: true}}},
	}

	orch, sink, metrics := newTestOrchestrator(t, sources, &fakePipeline{}, opts)
	result := orch.RunCycle(context.Background(), 1)

	require.Equal(t, domain.CycleTimedOut, result.Status)
	b, ok := result.Outcome("CAM_B")
	require.True(t, ok)
	require.Equal(t, domain.SourceTimedOut, b.Status)

	// Let the stuck track finish and try to report late.
	time.Sleep(500 * time.Millisecond)

	b, ok = result.Outcome("CAM_B")
	require.True(t, ok)
	assert.Equal(t, domain.SourceTimedOut, b.Status, "late result must not mutate the finalized cycle")

	// Exactly one outcome event per source: the late record is discarded.
	outcomeEvents := sink.byType(domain.EventSourceOutcome)
	perSource := make(map[string]int)
	for _, e := range outcomeEvents {
		perSource[e.SourceID]++
	}
	assert.Equal(t, 1, perSource["CAM_A"])
	assert.Equal(t, 1, perSource["CAM_B"])

	metrics.mu.Lock()
	timedOut := metrics.outcomes[domain.SourceTimedOut]
	metrics.mu.Unlock()
	assert.Equal(t, 1, timedOut)
}

func TestOutcomesOrderedBySourceIDNotCompletion(t *testing.T) {
	// Completion order is deliberately reversed from id order.
	sources := []ports.CaptureSource{
		&fakeSource{id: "CAM_01", script: []captureResult{{delay: 80 * time.Millisecond}}},
		&fakeSource{id: "CAM_02", script: []captureResult{{delay: 40 * time.Millisecond}}},
		&fakeSource{id: "CAM_03", script: []captureResult{{delay: 5 * time.Millisecond}}},
	}

	orch, _, _ := newTestOrchestrator(t, sources, &fakePipeline{}, testOptions())
	result := orch.RunCycle(context.Background(), 1)

	require.Len(t, result.Outcomes, 3)
	assert.Equal(t, "CAM_01", result.Outcomes[0].SourceID)
	assert.Equal(t, "CAM_02", result.Outcomes[1].SourceID)
	assert.Equal(t, "CAM_03", result.Outcomes[2].SourceID)
}

func TestWallClockBoundedUnderFullExhaustion(t *testing.T) {
	// Worst case: every source retries to exhaustion with slow attempts.
	opts := testOptions()
	opts.Deadline = 300 * time.Millisecond
	opts.Grace = 50 * time.Millisecond
	opts.RetryDelay = 20 * time.Millisecond

	var sources []ports.CaptureSource
	for i := 1; i <= 3; i++ {
		sources = append(sources, &fakeSource{
			id:     fmt.Sprintf("CAM_%02d", i),
			script: []captureResult{{delay: 150 * time.Millisecond, err: transientErr()}},
		})
	}

	orch, _, _ := newTestOrchestrator(t, sources, &fakePipeline{}, opts)
	start := time.Now()
	result := orch.RunCycle(context.Background(), 1)
	elapsed := time.Since(start)

	require.Len(t, result.Outcomes, 3)
	assert.Less(t, elapsed, opts.Deadline+opts.Grace+300*time.Millisecond)
}

func TestSpecTwoSourceScenario(t *testing.T) {
	// Source A succeeds immediately with one minor defect; source B fails
	// twice then succeeds clean. The cycle completes with A before B in
	// the output.
	sources := []ports.CaptureSource{
		&fakeSource{id: "CAM_A", script: []captureResult{{delay: 5 * time.Millisecond}}},
		&fakeSource{id: "CAM_B", script: []captureResult{
			{err: transientErr()},
			{err: transientErr()},
			{delay: 5 * time.Millisecond},
		}},
	}
	pipe := &fakePipeline{
		detections: map[string][]domain.Detection{
			"CAM_A": {{Class: domain.DefectScratch, Confidence: 0.75, Severity: domain.SeverityMinor}},
		},
		scores: map[string]float64{"CAM_A": 0.9, "CAM_B": 1.0},
	}

	orch, _, _ := newTestOrchestrator(t, sources, pipe, testOptions())
	result := orch.RunCycle(context.Background(), 1)

	require.Equal(t, domain.CycleCompleted, result.Status)
	require.Len(t, result.Outcomes, 2)

	a := result.Outcomes[0]
	assert.Equal(t, "CAM_A", a.SourceID)
	assert.Equal(t, domain.SourceCaptured, a.Status)
	assert.Equal(t, 1, a.Attempts)
	assert.Len(t, a.Detections, 1)

	b := result.Outcomes[1]
	assert.Equal(t, "CAM_B", b.SourceID)
	assert.Equal(t, domain.SourceCaptured, b.Status)
	assert.Equal(t, 3, b.Attempts)
	assert.Empty(t, b.Detections)
}

func TestParentCancellationFinalizesCycle(t *testing.T) {
	opts := testOptions()
	opts.Grace = 30 * time.Millisecond

	sources := []ports.CaptureSource{
		&fakeSource{id: "CAM_01", script: []captureResult{{delay: time.Second}}},
	}

	orch, _, _ := newTestOrchestrator(t, sources, &fakePipeline{}, opts)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	result := orch.RunCycle(ctx, 1)

	require.Len(t, result.Outcomes, 1)
	assert.Equal(t, domain.SourceTimedOut, result.Outcomes[0].Status)
	assert.Equal(t, domain.CycleTimedOut, result.Status)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}
