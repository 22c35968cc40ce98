package cycle

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/manojdaspy/inspection-system/internal/domain"
	"github.com/manojdaspy/inspection-system/internal/ports"
)

// State names the orchestrator's position in the cycle lifecycle.
type State string

const (
	StateIdle           State = "idle"
	StateTriggering     State = "triggering"
	StateAwaitingTracks State = "awaiting_tracks"
	StateFinalizing     State = "finalizing"
)

// Options holds the orchestrator's timing and retry policy.
type Options struct {
	// Deadline bounds one whole cycle.
	Deadline time.Duration

	// Grace bounds how long finalization waits for tracks to stop
	// cooperatively after the deadline fires.
	Grace time.Duration

	// MaxAttempts bounds capture retries per source per cycle.
	MaxAttempts int

	// RetryDelay is the backoff between capture attempts.
	RetryDelay time.Duration

	// AttemptTimeout is the per-attempt sub-budget of the cycle deadline.
	AttemptTimeout time.Duration
}

// Orchestrator coordinates one inspection cycle across all sources.
type Orchestrator struct {
	sources   []ports.CaptureSource
	sourceIDs []string
	pipeline  ports.Pipeline
	events    ports.EventSink
	metrics   ports.MetricsCollector
	logger    *zap.Logger
	opts      Options

	mu    sync.RWMutex
	state State
}

// NewOrchestrator creates an orchestrator over the registered sources.
// Sources are held sorted by id so result ordering never depends on
// completion order.
func NewOrchestrator(
	sources []ports.CaptureSource,
	pipeline ports.Pipeline,
	events ports.EventSink,
	metrics ports.MetricsCollector,
	logger *zap.Logger,
	opts Options,
) (*Orchestrator, error) {
	if len(sources) == 0 {
		return nil, domain.ErrNoSources
	}

	sorted := make([]ports.CaptureSource, len(sources))
	copy(sorted, sources)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].ID() < sorted[j].ID()
	})

	ids := make([]string, 0, len(sorted))
	seen := make(map[string]bool, len(sorted))
	for _, src := range sorted {
		if seen[src.ID()] {
			return nil, fmt.Errorf("duplicate source id: %s", src.ID())
		}
		seen[src.ID()] = true
		ids = append(ids, src.ID())
	}

	return &Orchestrator{
		sources:   sorted,
		sourceIDs: ids,
		pipeline:  pipeline,
		events:    events,
		metrics:   metrics,
		logger:    logger,
		opts:      opts,
		state:     StateIdle,
	}, nil
}

// SourceIDs returns the registered source ids, sorted.
func (o *Orchestrator) SourceIDs() []string {
	ids := make([]string, len(o.sourceIDs))
	copy(ids, o.sourceIDs)
	return ids
}

// State returns the orchestrator's current lifecycle state.
func (o *Orchestrator) State() State {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.state
}

func (o *Orchestrator) setState(s State) {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()
}

// RunCycle executes one complete inspection cycle and returns the finalized
// result. The result always contains exactly one outcome per registered
// source, ordered by source id. RunCycle never returns an error: every
// per-source failure terminates in a recorded outcome, and deadline expiry
// produces a timed-out but complete result.
//
// Cancelling ctx (for example on driver shutdown) finalizes the in-flight
// cycle under the same rule as deadline expiry.
func (o *Orchestrator) RunCycle(ctx context.Context, seq uint64) *domain.CycleResult {
	start := time.Now()
	o.setState(StateTriggering)

	o.logger.Info("cycle starting",
		zap.Uint64("cycle", seq),
		zap.Int("sources", len(o.sources)))

	col := newCollector(o.sourceIDs)

	cycleCtx, cancel := context.WithTimeout(ctx, o.opts.Deadline)
	defer cancel()

	o.metrics.SetActiveTracks(len(o.sources))

	var wg sync.WaitGroup
	for _, src := range o.sources {
		wg.Add(1)
		go func(src ports.CaptureSource) {
			defer wg.Done()
			o.runTrack(cycleCtx, seq, src, col)
		}(src)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	o.setState(StateAwaitingTracks)

	deadlineFired := false
	select {
	case <-done:
	case <-cycleCtx.Done():
		deadlineFired = true
		o.logger.Warn("cycle deadline fired",
			zap.Uint64("cycle", seq),
			zap.Strings("pending_sources", col.pending()))

		// Tracks saw the cancellation; give them the grace period to
		// stop cooperatively, then finalize without them.
		graceTimer := time.NewTimer(o.opts.Grace)
		select {
		case <-done:
			graceTimer.Stop()
		case <-graceTimer.C:
		}
	}

	o.setState(StateFinalizing)
	o.metrics.SetActiveTracks(0)

	elapsed := time.Since(start)
	outcomes, synthesized := col.finalize(elapsed)

	for _, id := range synthesized {
		outcome := domain.SourceOutcome{
			SourceID: id,
			Status:   domain.SourceTimedOut,
			Elapsed:  elapsed,
		}
		o.emitOutcome(seq, outcome, "track did not report before finalization")
		o.metrics.RecordSourceOutcome(id, domain.SourceTimedOut, elapsed)
	}

	result := &domain.CycleResult{
		Seq:       seq,
		StartedAt: start,
		Elapsed:   elapsed,
		Status:    cycleStatus(deadlineFired, outcomes),
		Outcomes:  outcomes,
	}

	o.logger.Info("cycle finalized",
		zap.Uint64("cycle", seq),
		zap.String("status", string(result.Status)),
		zap.Duration("elapsed", elapsed))

	o.setState(StateIdle)
	return result
}

// cycleStatus derives the cycle-level status from how the wait ended and
// what the tracks reported.
func cycleStatus(deadlineFired bool, outcomes []domain.SourceOutcome) domain.CycleStatus {
	if deadlineFired {
		return domain.CycleTimedOut
	}
	for _, o := range outcomes {
		if !o.Succeeded() {
			return domain.CycleCompletedWithFailures
		}
	}
	return domain.CycleCompleted
}
