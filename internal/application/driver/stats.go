package driver

import (
	"sync"
	"time"

	"github.com/manojdaspy/inspection-system/internal/domain"
)

// Stats accumulates run statistics across cycles. Safe for concurrent use;
// the driver writes and the observability server reads.
type Stats struct {
	mu sync.Mutex

	total    int
	passed   int
	failed   int
	byStatus map[domain.CycleStatus]int

	captureFailures map[string]int
	defects         int

	totalTime time.Duration
	minTime   time.Duration
	maxTime   time.Duration

	lastReport *domain.Report
}

// Summary is a point-in-time snapshot of the run statistics.
type Summary struct {
	TotalCycles     int            `json:"total_cycles"`
	Passed          int            `json:"passed"`
	Failed          int            `json:"failed"`
	PassRate        float64        `json:"pass_rate"`
	CyclesByStatus  map[string]int `json:"cycles_by_status"`
	TotalDefects    int            `json:"total_defects"`
	CaptureFailures map[string]int `json:"capture_failures"`
	AvgCycleMS      int64          `json:"avg_cycle_ms"`
	MinCycleMS      int64          `json:"min_cycle_ms"`
	MaxCycleMS      int64          `json:"max_cycle_ms"`
}

// NewStats creates an empty statistics accumulator.
func NewStats() *Stats {
	return &Stats{
		byStatus:        make(map[domain.CycleStatus]int),
		captureFailures: make(map[string]int),
	}
}

// Record folds one finalized cycle into the running totals.
func (s *Stats) Record(result *domain.CycleResult, report *domain.Report) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.total++
	s.byStatus[result.Status]++
	if report.Verdict == domain.VerdictPass {
		s.passed++
	} else {
		s.failed++
	}
	s.defects += report.Defects

	for _, outcome := range result.Outcomes {
		if outcome.Status == domain.SourceCaptureExhausted || outcome.Status == domain.SourceTimedOut {
			s.captureFailures[outcome.SourceID]++
		}
	}

	s.totalTime += result.Elapsed
	if s.minTime == 0 || result.Elapsed < s.minTime {
		s.minTime = result.Elapsed
	}
	if result.Elapsed > s.maxTime {
		s.maxTime = result.Elapsed
	}

	s.lastReport = report
}

// PassRate returns the fraction of cycles that passed, in [0,1].
func (s *Stats) PassRate() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.total == 0 {
		return 0
	}
	return float64(s.passed) / float64(s.total)
}

// LastReport returns the most recent cycle report, or nil before the first
// cycle completes.
func (s *Stats) LastReport() *domain.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastReport
}

// Summary snapshots the accumulated statistics.
func (s *Stats) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	summary := Summary{
		TotalCycles:     s.total,
		Passed:          s.passed,
		Failed:          s.failed,
		CyclesByStatus:  make(map[string]int, len(s.byStatus)),
		TotalDefects:    s.defects,
		CaptureFailures: make(map[string]int, len(s.captureFailures)),
		MinCycleMS:      s.minTime.Milliseconds(),
		MaxCycleMS:      s.maxTime.Milliseconds(),
	}

	for status, n := range s.byStatus {
		summary.CyclesByStatus[string(status)] = n
	}
	for id, n := range s.captureFailures {
		summary.CaptureFailures[id] = n
	}

	if s.total > 0 {
		summary.PassRate = float64(s.passed) / float64(s.total)
		summary.AvgCycleMS = (s.totalTime / time.Duration(s.total)).Milliseconds()
	}

	return summary
}
