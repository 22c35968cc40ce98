package domain

import "time"

// SourceStatus is the terminal status recorded for one source in one cycle.
type SourceStatus string

const (
	// SourceCaptured means capture and processing both succeeded.
	SourceCaptured SourceStatus = "captured"

	// SourceCaptureExhausted means every capture attempt failed.
	SourceCaptureExhausted SourceStatus = "capture_exhausted"

	// SourceProcessingFailed means capture succeeded but the pipeline failed.
	SourceProcessingFailed SourceStatus = "processing_failed"

	// SourceTimedOut means the source did not report before the cycle deadline.
	SourceTimedOut SourceStatus = "timed_out"
)

// SourceOutcome is the record produced for one source in one cycle.
// Exactly one outcome exists per registered source per cycle, and it is
// immutable once recorded.
type SourceOutcome struct {
	SourceID     string
	Status       SourceStatus
	Attempts     int
	Detections   []Detection
	QualityScore float64
	Elapsed      time.Duration
}

// Succeeded reports whether the source produced a usable result.
func (o SourceOutcome) Succeeded() bool {
	return o.Status == SourceCaptured
}

// CycleStatus summarizes how a whole cycle ended.
type CycleStatus string

const (
	// CycleCompleted means every source reported a successful outcome.
	CycleCompleted CycleStatus = "completed"

	// CycleCompletedWithFailures means all sources reported in time but at
	// least one failed capture or processing.
	CycleCompletedWithFailures CycleStatus = "completed_with_failures"

	// CycleTimedOut means the cycle deadline fired before every source
	// reported.
	CycleTimedOut CycleStatus = "cycle_timed_out"
)

// CycleResult is the complete result set for one inspection cycle.
// Outcomes are ordered by source id, never by completion order.
// After finalization the result is read-only and owned by the aggregator.
type CycleResult struct {
	Seq       uint64
	StartedAt time.Time
	Elapsed   time.Duration
	Status    CycleStatus
	Outcomes  []SourceOutcome
}

// Outcome returns the outcome for a source id, if present.
func (r *CycleResult) Outcome(sourceID string) (SourceOutcome, bool) {
	for _, o := range r.Outcomes {
		if o.SourceID == sourceID {
			return o, true
		}
	}
	return SourceOutcome{}, false
}
