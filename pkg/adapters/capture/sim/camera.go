// Package sim implements ports.CaptureSource with simulated cameras.
//
// Latency and failure injection are pluggable through the Profile strategy,
// so tests can drive a camera deterministically while the default profile
// models realistic sensor behavior.
package sim

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/manojdaspy/inspection-system/internal/domain"
)

// Profile injects latency and failures into a simulated camera.
type Profile interface {
	// Latency returns how long the next capture attempt takes.
	Latency() time.Duration

	// Fail returns a non-nil error when the next capture attempt should
	// fail. The error must wrap domain.ErrCaptureTransient or
	// domain.ErrCaptureFatal.
	Fail() error
}

// RandomProfile is the default profile: uniform latency in [Min, Max] and a
// fixed transient failure rate.
type RandomProfile struct {
	Min         time.Duration
	Max         time.Duration
	FailureRate float64

	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomProfile creates a randomized profile with its own seeded source.
func NewRandomProfile(min, max time.Duration, failureRate float64) *RandomProfile {
	return &RandomProfile{
		Min:         min,
		Max:         max,
		FailureRate: failureRate,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Latency returns a uniform random duration in [Min, Max].
func (p *RandomProfile) Latency() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.Max <= p.Min {
		return p.Min
	}
	return p.Min + time.Duration(p.rng.Int63n(int64(p.Max-p.Min)))
}

// Fail fails transiently at the configured rate.
func (p *RandomProfile) Fail() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.rng.Float64() < p.FailureRate {
		return fmt.Errorf("sensor timeout: %w", domain.ErrCaptureTransient)
	}
	return nil
}

// Camera is a simulated capture source.
type Camera struct {
	id         string
	resolution domain.Resolution
	profile    Profile
	logger     *zap.Logger

	mu         sync.Mutex
	frameCount uint64
	rng        *rand.Rand
}

// NewCamera creates a simulated camera with the given profile.
func NewCamera(id string, resolution domain.Resolution, profile Profile, logger *zap.Logger) *Camera {
	return &Camera{
		id:         id,
		resolution: resolution,
		profile:    profile,
		logger:     logger.With(zap.String("source_id", id)),
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// ID returns the camera identifier.
func (c *Camera) ID() string {
	return c.id
}

// Capture simulates one frame capture. It waits for the profile's latency,
// honoring ctx cancellation, then either fails per the profile or returns a
// new frame.
func (c *Camera) Capture(ctx context.Context) (*domain.Frame, error) {
	latency := c.profile.Latency()
	start := time.Now()

	if latency > 0 {
		timer := time.NewTimer(latency)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if err := c.profile.Fail(); err != nil {
		return nil, fmt.Errorf("%s: %w", c.id, err)
	}

	frame := c.newFrame()

	c.logger.Debug("captured frame",
		zap.Uint64("frame_number", frame.Number),
		zap.Duration("latency", time.Since(start)))

	return frame, nil
}

// newFrame builds the next mock frame for this camera.
func (c *Camera) newFrame() *domain.Frame {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.frameCount++

	return &domain.Frame{
		ID:         uuid.New().String(),
		SourceID:   c.id,
		Number:     c.frameCount,
		CapturedAt: time.Now().UTC(),
		Resolution: c.resolution,
		Meta: domain.FrameMeta{
			ExposureMS:   8 + c.rng.Float64()*4,
			Gain:         1 + c.rng.Float64(),
			TemperatureC: 35 + c.rng.Float64()*10,
		},
	}
}

// FrameCount returns how many frames this camera has produced.
func (c *Camera) FrameCount() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frameCount
}
