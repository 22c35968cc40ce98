// Package events provides event sink implementations.
//
// Implementations:
//   - zaplog: structured log output through a bounded async writer
//   - memory: in-memory ring buffer backing the observability API
//
// Tee composes sinks so one event stream can feed several of them.
package events
