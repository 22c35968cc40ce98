package ports

import (
	"context"
	"time"

	"github.com/manojdaspy/inspection-system/internal/domain"
)

// CaptureSource is one capture device, for example a camera.
//
// Capture returns the next frame or an error. Errors must wrap either
// domain.ErrCaptureTransient or domain.ErrCaptureFatal so the retry
// controller can classify them. Capture must honor ctx cancellation.
type CaptureSource interface {
	ID() string
	Capture(ctx context.Context) (*domain.Frame, error)
}

// Pipeline processes one frame into a detection list.
//
// Process is deterministic given the same frame and must honor ctx
// cancellation between stages.
type Pipeline interface {
	Process(ctx context.Context, frame *domain.Frame) ([]domain.Detection, float64, error)
}

// Aggregator turns a finalized cycle result into a verdict and report.
// The orchestrator does not interpret the verdict.
type Aggregator interface {
	Aggregate(result *domain.CycleResult) *domain.Report
}

// EventSink receives structured events from concurrent tracks.
//
// Emit must not block the caller significantly; implementations buffer and
// may drop under sustained pressure. Close drains buffered events.
type EventSink interface {
	Emit(event domain.Event)
	Close() error
}

// MetricsCollector receives operational metrics from the orchestrator and
// driver.
type MetricsCollector interface {
	RecordCaptureAttempt(sourceID string, outcome domain.AttemptOutcome, latency time.Duration)
	RecordSourceOutcome(sourceID string, status domain.SourceStatus, elapsed time.Duration)
	RecordCycle(status domain.CycleStatus, verdict domain.Verdict, defects int, elapsed time.Duration)
	SetPassRate(rate float64)
	SetActiveTracks(count int)
}
