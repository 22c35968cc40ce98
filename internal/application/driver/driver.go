package driver

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/manojdaspy/inspection-system/internal/application/cycle"
	"github.com/manojdaspy/inspection-system/internal/domain"
	"github.com/manojdaspy/inspection-system/internal/ports"
)

// Driver runs inspection cycles in a loop and forwards each result to
// aggregation.
type Driver struct {
	orchestrator *cycle.Orchestrator
	aggregator   ports.Aggregator
	events       ports.EventSink
	metrics      ports.MetricsCollector
	logger       *zap.Logger

	interval time.Duration
	stats    *Stats
	seq      atomic.Uint64

	// OnReport, when set, is called with each cycle's report. Used by the
	// CLI for console output; must not block for long.
	OnReport func(*domain.Report)
}

// New creates a driver.
func New(
	orchestrator *cycle.Orchestrator,
	aggregator ports.Aggregator,
	events ports.EventSink,
	metrics ports.MetricsCollector,
	logger *zap.Logger,
	interval time.Duration,
) *Driver {
	return &Driver{
		orchestrator: orchestrator,
		aggregator:   aggregator,
		events:       events,
		metrics:      metrics,
		logger:       logger,
		interval:     interval,
		stats:        NewStats(),
	}
}

// Stats returns the driver's cumulative statistics.
func (d *Driver) Stats() *Stats {
	return d.stats
}

// Orchestrator returns the underlying cycle orchestrator.
func (d *Driver) Orchestrator() *cycle.Orchestrator {
	return d.orchestrator
}

// Run executes cycles until the count is reached or ctx is cancelled.
// A count of 0 runs until cancellation. An in-flight cycle always
// finalizes; cancellation is observed between cycles and by the
// orchestrator's own deadline handling within a cycle.
func (d *Driver) Run(ctx context.Context, cycles int) error {
	d.logger.Info("inspection run starting",
		zap.Int("cycles", cycles),
		zap.Duration("interval", d.interval))

	for i := 0; cycles == 0 || i < cycles; i++ {
		if ctx.Err() != nil {
			d.logger.Info("inspection run cancelled",
				zap.Int("completed_cycles", i))
			break
		}

		seq := d.seq.Add(1)
		result := d.orchestrator.RunCycle(ctx, seq)
		report := d.aggregator.Aggregate(result)

		d.finishCycle(result, report)

		last := cycles != 0 && i == cycles-1
		if !last && d.interval > 0 {
			if err := sleep(ctx, d.interval); err != nil {
				d.logger.Info("inspection run cancelled",
					zap.Int("completed_cycles", i+1))
				break
			}
		}
	}

	d.logSummary()
	return nil
}

// finishCycle records one completed cycle everywhere it needs to go.
func (d *Driver) finishCycle(result *domain.CycleResult, report *domain.Report) {
	d.stats.Record(result, report)

	d.metrics.RecordCycle(result.Status, report.Verdict, report.Defects, result.Elapsed)
	d.metrics.SetPassRate(d.stats.PassRate())

	d.events.Emit(domain.Event{
		Type:        domain.EventCycleSummary,
		Timestamp:   time.Now().UTC(),
		CycleSeq:    result.Seq,
		CycleStatus: result.Status,
		Verdict:     report.Verdict,
		Score:       report.Score,
		Defects:     report.Defects,
		Elapsed:     result.Elapsed,
	})

	d.logger.Info("cycle complete",
		zap.Uint64("cycle", result.Seq),
		zap.String("status", string(result.Status)),
		zap.String("verdict", string(report.Verdict)),
		zap.Float64("score", report.Score),
		zap.Int("defects", report.Defects),
		zap.Duration("elapsed", result.Elapsed))

	if d.OnReport != nil {
		d.OnReport(report)
	}
}

// logSummary logs the cumulative run statistics.
func (d *Driver) logSummary() {
	summary := d.stats.Summary()

	d.logger.Info("inspection run complete",
		zap.Int("total_cycles", summary.TotalCycles),
		zap.Int("passed", summary.Passed),
		zap.Int("failed", summary.Failed),
		zap.Float64("pass_rate", summary.PassRate),
		zap.Int("total_defects", summary.TotalDefects),
		zap.Int64("avg_cycle_ms", summary.AvgCycleMS))
}

// sleep waits for d or until ctx is cancelled.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
