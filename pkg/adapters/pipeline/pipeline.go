package pipeline

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/manojdaspy/inspection-system/internal/domain"
)

// Config holds pipeline construction options.
type Config struct {
	// Seed makes the mock stages deterministic when non-zero.
	Seed int64
}

// Pipeline chains the three processing stages for one frame.
type Pipeline struct {
	pre    *Preprocessor
	engine *InferenceEngine
	post   *Postprocessor
	logger *zap.Logger
}

// New assembles a pipeline from its stages.
func New(cfg Config, logger *zap.Logger) *Pipeline {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	return &Pipeline{
		pre:    NewPreprocessor(rng, logger),
		engine: NewInferenceEngine(rng, logger),
		post:   NewPostprocessor(logger),
		logger: logger,
	}
}

// Process runs a frame through preprocess, inference, and postprocess.
// Cancellation is checked between stages; a cancelled context surfaces as
// an error so the track records the right outcome.
func (p *Pipeline) Process(ctx context.Context, frame *domain.Frame) ([]domain.Detection, float64, error) {
	start := time.Now()

	prepped, err := p.pre.Process(ctx, frame)
	if err != nil {
		return nil, 0, fmt.Errorf("preprocess: %w", err)
	}

	raw, err := p.engine.Infer(ctx, prepped)
	if err != nil {
		return nil, 0, fmt.Errorf("inference: %w", err)
	}

	detections, score := p.post.Process(raw)

	p.logger.Debug("pipeline complete",
		zap.String("source_id", frame.SourceID),
		zap.Int("detections", len(detections)),
		zap.Float64("quality_score", score),
		zap.Duration("elapsed", time.Since(start)))

	return detections, score, nil
}

// simulateWork waits for d or until ctx is cancelled.
func simulateWork(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
