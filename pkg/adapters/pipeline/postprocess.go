package pipeline

import (
	"go.uber.org/zap"

	"github.com/manojdaspy/inspection-system/internal/domain"
)

// Postprocessor filters raw detections, classifies severity, and scores the
// frame. It is pure: same input, same output.
type Postprocessor struct {
	logger *zap.Logger
}

// NewPostprocessor creates the postprocess stage.
func NewPostprocessor(logger *zap.Logger) *Postprocessor {
	return &Postprocessor{logger: logger}
}

// Process filters out low-confidence detections, assigns severities, and
// returns the kept detections with the frame quality score.
func (p *Postprocessor) Process(raw []domain.Detection) ([]domain.Detection, float64) {
	kept := make([]domain.Detection, 0, len(raw))
	for _, d := range raw {
		if d.Confidence < domain.ConfidenceThreshold {
			continue
		}
		d.Severity = domain.SeverityFor(d.Confidence)
		kept = append(kept, d)
	}

	score := Score(kept)

	p.logger.Debug("postprocess complete",
		zap.Int("raw", len(raw)),
		zap.Int("kept", len(kept)),
		zap.Float64("quality_score", score))

	return kept, score
}

// Score computes a frame quality score in [0,1] from classified detections.
// A clean frame scores 1.0; each defect subtracts its severity penalty.
func Score(detections []domain.Detection) float64 {
	if len(detections) == 0 {
		return 1.0
	}

	penalty := 0.0
	for _, d := range detections {
		penalty += domain.ScorePenalty(d.Severity)
	}

	score := 1.0 - penalty
	if score < 0 {
		score = 0
	}
	return score
}
