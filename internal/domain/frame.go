package domain

import "time"

// Resolution is a frame size in pixels.
type Resolution struct {
	Width  int
	Height int
}

// FrameMeta carries sensor readings recorded at capture time.
type FrameMeta struct {
	ExposureMS   float64
	Gain         float64
	TemperatureC float64
}

// Frame is the raw output of a single capture from one source.
// Frames are immutable after capture.
type Frame struct {
	ID         string
	SourceID   string
	Number     uint64
	CapturedAt time.Time
	Resolution Resolution
	Meta       FrameMeta
}
