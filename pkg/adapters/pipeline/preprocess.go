package pipeline

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/manojdaspy/inspection-system/internal/domain"
)

// PreprocessedFrame is the output of the preprocess stage.
type PreprocessedFrame struct {
	Frame   *domain.Frame
	Applied []string
}

// Preprocessor simulates image normalization and enhancement.
type Preprocessor struct {
	logger *zap.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// Simulated preprocessing cost, 20-40ms per frame.
const (
	preprocessMin = 20 * time.Millisecond
	preprocessMax = 40 * time.Millisecond
)

// NewPreprocessor creates the preprocess stage.
func NewPreprocessor(rng *rand.Rand, logger *zap.Logger) *Preprocessor {
	return &Preprocessor{
		logger: logger,
		rng:    rng,
	}
}

// Process normalizes and enhances a frame.
func (p *Preprocessor) Process(ctx context.Context, frame *domain.Frame) (*PreprocessedFrame, error) {
	start := time.Now()

	p.mu.Lock()
	cost := preprocessMin + time.Duration(p.rng.Int63n(int64(preprocessMax-preprocessMin)))
	p.mu.Unlock()

	if err := simulateWork(ctx, cost); err != nil {
		return nil, err
	}

	p.logger.Debug("preprocessed frame",
		zap.String("source_id", frame.SourceID),
		zap.Duration("elapsed", time.Since(start)))

	return &PreprocessedFrame{
		Frame:   frame,
		Applied: []string{"normalization", "noise_reduction", "contrast_enhancement"},
	}, nil
}
