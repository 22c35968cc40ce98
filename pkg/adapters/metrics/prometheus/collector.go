// Package prometheus implements ports.MetricsCollector using Prometheus.
package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/manojdaspy/inspection-system/internal/domain"
)

// Collector implements MetricsCollector using Prometheus
type Collector struct {
	captureAttempts *prometheus.CounterVec
	captureLatency  *prometheus.HistogramVec
	sourceOutcomes  *prometheus.CounterVec
	sourceElapsed   *prometheus.HistogramVec
	cycles          *prometheus.CounterVec
	verdicts        *prometheus.CounterVec
	defectsFound    prometheus.Counter
	cycleDuration   prometheus.Histogram
	passRate        prometheus.Gauge
	activeTracks    prometheus.Gauge
}

// NewCollector creates a new Prometheus metrics collector
func NewCollector() *Collector {
	return &Collector{
		captureAttempts: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "inspection_capture_attempts_total",
				Help: "Total number of capture attempts",
			},
			[]string{"source_id", "outcome"},
		),
		captureLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "inspection_capture_latency_seconds",
				Help:    "Capture attempt latency in seconds",
				Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.15, 0.25, 0.5, 1, 2},
			},
			[]string{"source_id"},
		),
		sourceOutcomes: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "inspection_source_outcomes_total",
				Help: "Total number of per-source outcomes by status",
			},
			[]string{"source_id", "status"},
		),
		sourceElapsed: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "inspection_source_track_duration_seconds",
				Help:    "Per-source track duration in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"source_id"},
		),
		cycles: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "inspection_cycles_total",
				Help: "Total number of inspection cycles by status",
			},
			[]string{"status"},
		),
		verdicts: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "inspection_verdicts_total",
				Help: "Total number of cycle verdicts",
			},
			[]string{"verdict"},
		),
		defectsFound: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "inspection_defects_found_total",
				Help: "Total number of defects found across all cycles",
			},
		),
		cycleDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "inspection_cycle_duration_seconds",
				Help:    "Inspection cycle duration in seconds",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
		),
		passRate: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "inspection_pass_rate",
				Help: "Cumulative pass rate across completed cycles",
			},
		),
		activeTracks: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "inspection_active_tracks",
				Help: "Number of currently running per-source tracks",
			},
		),
	}
}

// RecordCaptureAttempt records one capture attempt and its latency
func (c *Collector) RecordCaptureAttempt(sourceID string, outcome domain.AttemptOutcome, latency time.Duration) {
	c.captureAttempts.WithLabelValues(sourceID, string(outcome)).Inc()
	c.captureLatency.WithLabelValues(sourceID).Observe(latency.Seconds())
}

// RecordSourceOutcome records the terminal outcome of one source track
func (c *Collector) RecordSourceOutcome(sourceID string, status domain.SourceStatus, elapsed time.Duration) {
	c.sourceOutcomes.WithLabelValues(sourceID, string(status)).Inc()
	c.sourceElapsed.WithLabelValues(sourceID).Observe(elapsed.Seconds())
}

// RecordCycle records one finalized cycle
func (c *Collector) RecordCycle(status domain.CycleStatus, verdict domain.Verdict, defects int, elapsed time.Duration) {
	c.cycles.WithLabelValues(string(status)).Inc()
	c.verdicts.WithLabelValues(string(verdict)).Inc()
	c.defectsFound.Add(float64(defects))
	c.cycleDuration.Observe(elapsed.Seconds())
}

// SetPassRate sets the cumulative pass rate gauge
func (c *Collector) SetPassRate(rate float64) {
	c.passRate.Set(rate)
}

// SetActiveTracks sets the number of running tracks
func (c *Collector) SetActiveTracks(count int) {
	c.activeTracks.Set(float64(count))
}
