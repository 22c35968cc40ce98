package domain

// DefectClass identifies the kind of defect a detection represents.
type DefectClass string

// Known defect classes produced by the detector model.
const (
	DefectScratch       DefectClass = "scratch"
	DefectDent          DefectClass = "dent"
	DefectDiscoloration DefectClass = "discoloration"
	DefectCrack         DefectClass = "crack"
	DefectContamination DefectClass = "contamination"
)

// DefectClasses lists all known defect classes.
var DefectClasses = []DefectClass{
	DefectScratch,
	DefectDent,
	DefectDiscoloration,
	DefectCrack,
	DefectContamination,
}

// Severity classifies how serious a defect is.
type Severity string

const (
	SeverityMinor    Severity = "minor"
	SeverityMajor    Severity = "major"
	SeverityCritical Severity = "critical"
)

// ConfidenceThreshold is the minimum confidence for a detection to be kept.
const ConfidenceThreshold = 0.7

// SeverityFor maps a detection confidence to a severity band.
// Confidences below the keep threshold have no severity and should have
// been filtered before classification.
func SeverityFor(confidence float64) Severity {
	switch {
	case confidence >= 0.9:
		return SeverityCritical
	case confidence >= 0.8:
		return SeverityMajor
	default:
		return SeverityMinor
	}
}

// ScorePenalty returns the quality score penalty for a severity.
func ScorePenalty(s Severity) float64 {
	switch s {
	case SeverityMinor:
		return 0.1
	case SeverityMajor:
		return 0.3
	case SeverityCritical:
		return 0.6
	default:
		return 0.2
	}
}

// BBox is a detection bounding box in frame pixel coordinates.
type BBox struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Detection is one defect found in a frame.
type Detection struct {
	ID         string
	Class      DefectClass
	BBox       BBox
	Confidence float64
	RawScore   float64
	Severity   Severity
}

// SeverityCounts tallies detections per severity level.
type SeverityCounts struct {
	Minor    int
	Major    int
	Critical int
}

// Total returns the number of detections counted.
func (c SeverityCounts) Total() int {
	return c.Minor + c.Major + c.Critical
}

// Add counts one detection of the given severity.
func (c *SeverityCounts) Add(s Severity) {
	switch s {
	case SeverityMinor:
		c.Minor++
	case SeverityMajor:
		c.Major++
	case SeverityCritical:
		c.Critical++
	}
}

// CountSeverities tallies a detection list by severity.
func CountSeverities(detections []Detection) SeverityCounts {
	var counts SeverityCounts
	for _, d := range detections {
		counts.Add(d.Severity)
	}
	return counts
}
