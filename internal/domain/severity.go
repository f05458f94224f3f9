package domain

import "strings"

// Severity is the ordinal bucket derived from an event's intensity.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// severityThresholds is evaluated top-down; the first inclusive lower bound
// the intensity reaches wins.
var severityThresholds = []struct {
	min      float64
	severity Severity
}{
	{0.8, SeverityCritical},
	{0.6, SeverityHigh},
	{0.4, SeverityMedium},
}

// Classify maps an intensity in [0,1] to its severity bucket. Values outside
// the range land in the nearest bucket; NaN is low.
func Classify(intensity float64) Severity {
	for _, th := range severityThresholds {
		if intensity >= th.min {
			return th.severity
		}
	}
	return SeverityLow
}

// Severities lists every bucket from most to least severe.
func Severities() []Severity {
	return []Severity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow}
}

// Rank orders buckets: low 0 through critical 3. Unknown values rank -1.
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 0
	case SeverityMedium:
		return 1
	case SeverityHigh:
		return 2
	case SeverityCritical:
		return 3
	default:
		return -1
	}
}

// ParseSeverity accepts a bucket name in any case.
func ParseSeverity(s string) (Severity, bool) {
	sev := Severity(strings.ToLower(strings.TrimSpace(s)))
	if sev.Rank() < 0 {
		return "", false
	}
	return sev, true
}
