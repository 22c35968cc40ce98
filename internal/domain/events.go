package domain

import "time"

// EventType identifies the kind of a structured event.
type EventType string

const (
	// EventCaptureAttempt is emitted once per capture attempt.
	EventCaptureAttempt EventType = "capture.attempt"

	// EventSourceOutcome is emitted once per source per cycle.
	EventSourceOutcome EventType = "source.outcome"

	// EventCycleSummary is emitted once per finalized cycle.
	EventCycleSummary EventType = "cycle.summary"
)

// AttemptOutcome is the result of a single capture attempt.
type AttemptOutcome string

const (
	AttemptSucceeded AttemptOutcome = "succeeded"
	AttemptFailed    AttemptOutcome = "failed"
	AttemptFatal     AttemptOutcome = "fatal"
	AttemptTimedOut  AttemptOutcome = "timed_out"
)

// Event is one structured record handed to the event sink. The sink assigns
// Seq monotonically at write time so events from concurrent tracks stay
// totally ordered on output.
type Event struct {
	Seq       uint64
	Type      EventType
	Timestamp time.Time
	CycleSeq  uint64
	SourceID  string

	// Capture attempt fields.
	Attempt        int
	AttemptOutcome AttemptOutcome
	Latency        time.Duration

	// Source outcome fields.
	SourceStatus SourceStatus

	// Cycle summary fields.
	CycleStatus CycleStatus
	Verdict     Verdict
	Score       float64
	Defects     int
	Elapsed     time.Duration

	// Err holds a failure description when the event records a failure.
	Err string
}
