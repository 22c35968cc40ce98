// Package http provides the observability HTTP server.
//
// The server exposes:
//   - Health checks
//   - Run status and cumulative statistics
//   - Retained cycle reports and recent events
//   - Prometheus metrics
package http
