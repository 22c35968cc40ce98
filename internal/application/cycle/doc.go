// Package cycle implements the core inspection cycle orchestration.
//
// The orchestrator drives one concurrent track per capture source through
// capture-with-retry and the processing pipeline, collects per-source
// outcomes under a cycle-wide deadline, and finalizes a CycleResult:
//   - every registered source gets exactly one outcome per cycle
//   - a source that misses the deadline gets a synthetic timed-out outcome
//   - late results after finalization are discarded, never merged
//   - outcomes are ordered by source id, never by completion order
//
// The retry controller bounds capture attempts and backs off between them;
// the whole cycle is bounded by the configured deadline plus a short grace
// period for cooperative cancellation.
package cycle
