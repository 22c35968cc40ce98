package pipeline

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/manojdaspy/inspection-system/internal/domain"
)

// ModelVersion identifies the mock detector model.
const ModelVersion = "defect_detector_v2.1"

// Simulated inference cost, 100-200ms per frame.
const (
	inferenceMin = 100 * time.Millisecond
	inferenceMax = 200 * time.Millisecond
)

// detectionCountWeights weights the number of detections per frame (0-4),
// skewed towards fewer defects.
var detectionCountWeights = []int{30, 35, 20, 10, 5}

// InferenceEngine mocks ML defect detection on a preprocessed frame.
type InferenceEngine struct {
	logger *zap.Logger

	mu       sync.Mutex
	rng      *rand.Rand
	inferred uint64
}

// NewInferenceEngine creates the inference stage.
func NewInferenceEngine(rng *rand.Rand, logger *zap.Logger) *InferenceEngine {
	return &InferenceEngine{
		logger: logger,
		rng:    rng,
	}
}

// Infer runs mock detection and returns unfiltered detections.
func (e *InferenceEngine) Infer(ctx context.Context, prepped *PreprocessedFrame) ([]domain.Detection, error) {
	start := time.Now()

	e.mu.Lock()
	cost := inferenceMin + time.Duration(e.rng.Int63n(int64(inferenceMax-inferenceMin)))
	e.mu.Unlock()

	if err := simulateWork(ctx, cost); err != nil {
		return nil, err
	}

	detections := e.generate(prepped.Frame.Resolution)

	e.logger.Debug("inference complete",
		zap.String("source_id", prepped.Frame.SourceID),
		zap.Int("detections", len(detections)),
		zap.Duration("elapsed", time.Since(start)))

	return detections, nil
}

// generate produces mock detections for a frame of the given resolution.
func (e *InferenceEngine) generate(res domain.Resolution) []domain.Detection {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.inferred++

	count := weightedCount(e.rng, detectionCountWeights)
	if count == 0 {
		return nil
	}

	maxX := res.Width
	if maxX < 400 {
		maxX = 400
	}
	maxY := res.Height
	if maxY < 400 {
		maxY = 400
	}

	detections := make([]domain.Detection, 0, count)
	for i := 0; i < count; i++ {
		detections = append(detections, domain.Detection{
			ID:    uuid.New().String(),
			Class: domain.DefectClasses[e.rng.Intn(len(domain.DefectClasses))],
			BBox: domain.BBox{
				X:      100 + e.rng.Intn(maxX-300),
				Y:      100 + e.rng.Intn(maxY-300),
				Width:  50 + e.rng.Intn(150),
				Height: 50 + e.rng.Intn(150),
			},
			Confidence: 0.5 + e.rng.Float64()*0.49,
			RawScore:   0.4 + e.rng.Float64()*0.6,
		})
	}

	return detections
}

// weightedCount draws an index from weights proportional to their values.
func weightedCount(rng *rand.Rand, weights []int) int {
	total := 0
	for _, w := range weights {
		total += w
	}

	r := rng.Intn(total)
	for i, w := range weights {
		if r < w {
			return i
		}
		r -= w
	}
	return 0
}
