// Package driver runs the inspection loop: a configured number of cycles
// (or indefinitely), each executed by the cycle orchestrator and forwarded
// to aggregation.
//
// The driver owns all cross-cycle mutable state: the monotonic cycle
// sequence number and the cumulative run statistics. Cancelling the run
// context stops the loop cleanly; an in-flight cycle still finalizes under
// its own deadline rule before the driver returns.
package driver
