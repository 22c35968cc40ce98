package domain

import "errors"

// Capture failure kinds. Adapters wrap these so callers can classify
// failures with errors.Is without depending on adapter error types.
var (
	// ErrCaptureTransient marks a capture failure worth retrying.
	ErrCaptureTransient = errors.New("transient capture failure")

	// ErrCaptureFatal marks a capture failure that retries cannot fix,
	// for example an unregistered or disconnected source.
	ErrCaptureFatal = errors.New("fatal capture failure")
)

// ErrNoSources is returned at startup when no capture sources are configured.
var ErrNoSources = errors.New("no capture sources configured")
