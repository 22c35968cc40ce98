// Package ports defines the interfaces between the cycle orchestrator and
// its collaborators.
//
// Consumed ports:
//   - CaptureSource: produces a frame or fails
//   - Pipeline: turns a frame into a detection list
//
// Produced-to ports:
//   - Aggregator: receives finalized cycle results
//   - EventSink: receives structured events from concurrent tracks
//   - MetricsCollector: receives operational metrics
//
// Adapter implementations live under pkg/adapters.
package ports
