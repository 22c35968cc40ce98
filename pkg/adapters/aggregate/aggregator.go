// Package aggregate turns finalized cycle results into pass/fail reports.
//
// The aggregation strategy is the strictest one: the cycle score is the
// minimum per-source quality score, and any source that failed to produce a
// usable result contributes a zero. The verdict compares that score against
// the configured pass threshold.
package aggregate

import (
	"time"

	"go.uber.org/zap"

	"github.com/manojdaspy/inspection-system/internal/domain"
)

// Aggregator implements ports.Aggregator with a min-score strategy.
type Aggregator struct {
	passThreshold float64
	logger        *zap.Logger
}

// New creates an aggregator with the given pass threshold.
func New(passThreshold float64, logger *zap.Logger) *Aggregator {
	return &Aggregator{
		passThreshold: passThreshold,
		logger:        logger,
	}
}

// Aggregate builds the report for one cycle. It never fails: a cycle with
// no usable outcomes simply scores zero and fails the threshold.
func (a *Aggregator) Aggregate(result *domain.CycleResult) *domain.Report {
	report := &domain.Report{
		CycleSeq:    result.Seq,
		Timestamp:   time.Now().UTC(),
		CycleStatus: result.Status,
		Score:       a.score(result),
		Elapsed:     result.Elapsed,
	}

	for _, outcome := range result.Outcomes {
		report.Sources = append(report.Sources, domain.SourceReport{
			SourceID:     outcome.SourceID,
			Status:       outcome.Status,
			QualityScore: outcome.QualityScore,
			Defects:      outcome.Detections,
			Elapsed:      outcome.Elapsed,
		})

		report.Defects += len(outcome.Detections)
		for _, d := range outcome.Detections {
			report.Severities.Add(d.Severity)
		}
	}

	report.Verdict = domain.VerdictFail
	if report.Score >= a.passThreshold {
		report.Verdict = domain.VerdictPass
	}

	a.logger.Debug("aggregated cycle",
		zap.Uint64("cycle", result.Seq),
		zap.String("verdict", string(report.Verdict)),
		zap.Float64("score", report.Score),
		zap.Int("defects", report.Defects))

	return report
}

// score applies the min-score strategy across all outcomes.
func (a *Aggregator) score(result *domain.CycleResult) float64 {
	if len(result.Outcomes) == 0 {
		return 0
	}

	min := 1.0
	for _, outcome := range result.Outcomes {
		score := outcome.QualityScore
		if !outcome.Succeeded() {
			score = 0
		}
		if score < min {
			min = score
		}
	}
	return min
}
