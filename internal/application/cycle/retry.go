package cycle

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/manojdaspy/inspection-system/internal/domain"
	"github.com/manojdaspy/inspection-system/internal/ports"
)

// captureWithRetry runs the retry-capture controller for one source. It
// returns the captured frame, the number of attempts actually made, and the
// terminal error when no frame was captured.
//
// Transient failures are retried up to MaxAttempts with the configured
// backoff between attempts. Fatal failures short-circuit immediately. Each
// attempt runs under its own sub-budget timeout layered beneath the cycle
// deadline; when the cycle deadline fires mid-retry the controller abandons
// further attempts and returns the context error so the track reports a
// timeout rather than exhaustion.
func (o *Orchestrator) captureWithRetry(ctx context.Context, cycleSeq uint64, src ports.CaptureSource) (*domain.Frame, int, error) {
	schedule := o.newSchedule()

	var lastErr error
	for attempt := 1; attempt <= o.opts.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, attempt - 1, err
		}

		attemptCtx, cancel := context.WithTimeout(ctx, o.opts.AttemptTimeout)
		attemptStart := time.Now()
		frame, err := src.Capture(attemptCtx)
		cancel()
		latency := time.Since(attemptStart)

		outcome := classifyAttempt(ctx, err)
		o.emitAttempt(cycleSeq, src.ID(), attempt, outcome, latency, err)
		o.metrics.RecordCaptureAttempt(src.ID(), outcome, latency)

		if err == nil {
			return frame, attempt, nil
		}
		lastErr = err

		// Cycle deadline reached mid-retry: report timeout, not exhaustion.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, attempt, ctxErr
		}

		if errors.Is(err, domain.ErrCaptureFatal) {
			return nil, attempt, err
		}

		if attempt < o.opts.MaxAttempts {
			if err := waitBackoff(ctx, schedule); err != nil {
				return nil, attempt, err
			}
		}
	}

	return nil, o.opts.MaxAttempts, lastErr
}

// newSchedule builds the backoff schedule for one source in one cycle.
func (o *Orchestrator) newSchedule() backoff.BackOff {
	if o.opts.RetryDelay <= 0 {
		return &backoff.ZeroBackOff{}
	}
	return backoff.NewConstantBackOff(o.opts.RetryDelay)
}

// waitBackoff sleeps for the schedule's next interval, honoring ctx.
func waitBackoff(ctx context.Context, schedule backoff.BackOff) error {
	wait := schedule.NextBackOff()
	if wait == backoff.Stop || wait <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// classifyAttempt maps a capture attempt error to its event outcome.
func classifyAttempt(ctx context.Context, err error) domain.AttemptOutcome {
	switch {
	case err == nil:
		return domain.AttemptSucceeded
	case ctx.Err() != nil:
		return domain.AttemptTimedOut
	case errors.Is(err, domain.ErrCaptureFatal):
		return domain.AttemptFatal
	default:
		return domain.AttemptFailed
	}
}

// emitAttempt publishes one capture-attempt event to the sink.
func (o *Orchestrator) emitAttempt(cycleSeq uint64, sourceID string, attempt int, outcome domain.AttemptOutcome, latency time.Duration, err error) {
	event := domain.Event{
		Type:           domain.EventCaptureAttempt,
		Timestamp:      time.Now().UTC(),
		CycleSeq:       cycleSeq,
		SourceID:       sourceID,
		Attempt:        attempt,
		AttemptOutcome: outcome,
		Latency:        latency,
	}
	if err != nil {
		event.Err = err.Error()
	}
	o.events.Emit(event)
}
