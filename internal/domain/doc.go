// Package domain defines the core types of the inspection system.
//
// The central types are:
//   - Frame: raw capture output from one source
//   - Detection: one defect found in a frame, with severity and confidence
//   - SourceOutcome: the terminal per-source record for one cycle
//   - CycleResult: the complete, ordered result set for one cycle
//   - Report: the aggregated pass/fail verdict with defect detail
//
// All types are plain data; behavior that needs collaborators lives in the
// application and adapter layers.
package domain
