package domain

import (
	"fmt"
	"strings"
	"time"
)

// Verdict is the pass/fail decision for one cycle.
type Verdict string

const (
	VerdictPass Verdict = "PASS"
	VerdictFail Verdict = "FAIL"
)

// SourceReport is the per-source detail section of a report.
type SourceReport struct {
	SourceID     string
	Status       SourceStatus
	QualityScore float64
	Defects      []Detection
	Elapsed      time.Duration
}

// Report is the aggregated assessment of one cycle.
type Report struct {
	CycleSeq    uint64
	Timestamp   time.Time
	Verdict     Verdict
	Score       float64
	CycleStatus CycleStatus
	Sources     []SourceReport
	Defects     int
	Severities  SeverityCounts
	Elapsed     time.Duration
}

// FormatText renders the report as a human-readable block.
func (r *Report) FormatText() string {
	var b strings.Builder

	rule := strings.Repeat("=", 45)
	fmt.Fprintf(&b, "%s\n", rule)
	fmt.Fprintf(&b, "  INSPECTION REPORT - Cycle #%d\n", r.CycleSeq)
	fmt.Fprintf(&b, "%s\n", rule)
	fmt.Fprintf(&b, "Timestamp:     %s\n", r.Timestamp.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "Verdict:       %s\n", r.Verdict)
	fmt.Fprintf(&b, "Score:         %.2f\n", r.Score)
	fmt.Fprintf(&b, "Cycle Status:  %s\n", r.CycleStatus)
	fmt.Fprintf(&b, "Total Time:    %dms\n", r.Elapsed.Milliseconds())
	fmt.Fprintf(&b, "\nDefects Found: %d\n", r.Defects)

	if r.Defects > 0 {
		fmt.Fprintf(&b, "  - Critical:  %d\n", r.Severities.Critical)
		fmt.Fprintf(&b, "  - Major:     %d\n", r.Severities.Major)
		fmt.Fprintf(&b, "  - Minor:     %d\n", r.Severities.Minor)
	}

	fmt.Fprintf(&b, "\nSource Results:\n")
	for _, s := range r.Sources {
		fmt.Fprintf(&b, "  %s:\n", s.SourceID)
		fmt.Fprintf(&b, "    Status:  %s\n", s.Status)
		fmt.Fprintf(&b, "    Score:   %.2f\n", s.QualityScore)
		fmt.Fprintf(&b, "    Defects: %d\n", len(s.Defects))
		fmt.Fprintf(&b, "    Time:    %dms\n", s.Elapsed.Milliseconds())
	}
	fmt.Fprintf(&b, "%s\n", rule)

	return b.String()
}
