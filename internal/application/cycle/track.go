package cycle

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/manojdaspy/inspection-system/internal/domain"
	"github.com/manojdaspy/inspection-system/internal/ports"
)

// runTrack handles one source for one cycle: capture with retry, then the
// processing pipeline, ending in exactly one recorded outcome. No failure
// path escapes the track boundary; even a panic is converted into a
// processing-failed outcome.
func (o *Orchestrator) runTrack(ctx context.Context, cycleSeq uint64, src ports.CaptureSource, col *collector) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("track panicked",
				zap.Uint64("cycle", cycleSeq),
				zap.String("source_id", src.ID()),
				zap.Any("panic", r))
			o.record(col, cycleSeq, domain.SourceOutcome{
				SourceID: src.ID(),
				Status:   domain.SourceProcessingFailed,
				Elapsed:  time.Since(start),
			}, fmt.Sprintf("panic: %v", r))
		}
	}()

	frame, attempts, err := o.captureWithRetry(ctx, cycleSeq, src)
	if err != nil {
		status := domain.SourceCaptureExhausted
		if ctx.Err() != nil {
			status = domain.SourceTimedOut
		}
		o.record(col, cycleSeq, domain.SourceOutcome{
			SourceID: src.ID(),
			Status:   status,
			Attempts: attempts,
			Elapsed:  time.Since(start),
		}, err.Error())
		return
	}

	detections, score, err := o.pipeline.Process(ctx, frame)
	if err != nil {
		status := domain.SourceProcessingFailed
		if ctx.Err() != nil {
			status = domain.SourceTimedOut
		}
		// Frame is discarded with the failure.
		o.record(col, cycleSeq, domain.SourceOutcome{
			SourceID: src.ID(),
			Status:   status,
			Attempts: attempts,
			Elapsed:  time.Since(start),
		}, err.Error())
		return
	}

	o.record(col, cycleSeq, domain.SourceOutcome{
		SourceID:     src.ID(),
		Status:       domain.SourceCaptured,
		Attempts:     attempts,
		Detections:   detections,
		QualityScore: score,
		Elapsed:      time.Since(start),
	}, "")
}

// record writes a track outcome into the collector. Events and metrics are
// only emitted when the write is accepted; a rejected write means the cycle
// was already finalized and the result must be discarded.
func (o *Orchestrator) record(col *collector, cycleSeq uint64, outcome domain.SourceOutcome, errMsg string) {
	if !col.record(outcome) {
		o.logger.Warn("discarding late track result",
			zap.Uint64("cycle", cycleSeq),
			zap.String("source_id", outcome.SourceID),
			zap.String("status", string(outcome.Status)))
		return
	}

	o.emitOutcome(cycleSeq, outcome, errMsg)
	o.metrics.RecordSourceOutcome(outcome.SourceID, outcome.Status, outcome.Elapsed)
}

// emitOutcome publishes one source-outcome event to the sink.
func (o *Orchestrator) emitOutcome(cycleSeq uint64, outcome domain.SourceOutcome, errMsg string) {
	o.events.Emit(domain.Event{
		Type:         domain.EventSourceOutcome,
		Timestamp:    time.Now().UTC(),
		CycleSeq:     cycleSeq,
		SourceID:     outcome.SourceID,
		SourceStatus: outcome.Status,
		Attempt:      outcome.Attempts,
		Defects:      len(outcome.Detections),
		Elapsed:      outcome.Elapsed,
		Err:          errMsg,
	})
}
