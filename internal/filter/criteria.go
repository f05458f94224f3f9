// Package filter evaluates compound criteria against a canonical event
// collection and restricts results to a moving time window.
package filter

import (
	"slices"
	"strings"

	"github.com/couchcryptid/conflict-dashboard/internal/domain"
)

// Criteria is the set of constraints the filter controls produce. Zero-valued
// fields impose no constraint. Dates are numeric calendar days (YYYY-MM-DD,
// DD/MM/YYYY, ...); both bounds are inclusive.
type Criteria struct {
	StartDate  string            `json:"start_date,omitempty"`
	EndDate    string            `json:"end_date,omitempty"`
	Type       string            `json:"type,omitempty"`
	ActorCode  string            `json:"actor_code,omitempty"`
	SearchText string            `json:"q,omitempty"`
	Severities []domain.Severity `json:"severities,omitempty"`
}

// IsZero reports whether c constrains nothing.
func (c Criteria) IsZero() bool {
	return strings.TrimSpace(c.StartDate) == "" &&
		strings.TrimSpace(c.EndDate) == "" &&
		c.Type == "" &&
		c.ActorCode == "" &&
		normalizeSearch(c.SearchText) == "" &&
		len(c.Severities) == 0
}

// Key returns a canonical string for c. Criteria that select the same events
// by construction (severity order, duplicate severities, search case and
// padding) share a key.
func (c Criteria) Key() string {
	sev := make([]string, 0, len(c.Severities))
	for _, s := range sortedSeverities(c.Severities) {
		sev = append(sev, string(s))
	}
	return strings.Join([]string{
		"from=" + strings.TrimSpace(c.StartDate),
		"to=" + strings.TrimSpace(c.EndDate),
		"type=" + c.Type,
		"actor=" + c.ActorCode,
		"q=" + normalizeSearch(c.SearchText),
		"sev=" + strings.Join(sev, ","),
	}, "\x1f")
}

func normalizeSearch(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// sortedSeverities deduplicates and orders severities from critical to low;
// unknown values sort last by name.
func sortedSeverities(in []domain.Severity) []domain.Severity {
	out := slices.Clone(in)
	slices.SortFunc(out, func(a, b domain.Severity) int {
		if ra, rb := a.Rank(), b.Rank(); ra != rb {
			return rb - ra
		}
		return strings.Compare(string(a), string(b))
	})
	return slices.Compact(out)
}
