// Package views holds the view models the dashboard page renderers consume.
// Each view implements Render over the published subset and keeps the last
// result; none of them filter, only shape and cap.
package views

import (
	"slices"
	"strings"

	"github.com/couchcryptid/conflict-dashboard/internal/domain"
)

// Palette colors markers and legends by severity.
var Palette = map[domain.Severity]string{
	domain.SeverityCritical: "#b71c1c",
	domain.SeverityHigh:     "#f57c00",
	domain.SeverityMedium:   "#fbc02d",
	domain.SeverityLow:      "#546e7a",
}

// DefaultIcon is used when no keyword in the event type matches.
const DefaultIcon = "fa-crosshairs"

type iconRule struct {
	keyword string
	icon    string
}

// iconRules are checked in order against the lower-cased event type; the
// first keyword contained in it wins.
var iconRules = []iconRule{
	{"drone", "fa-plane-up"},
	{"missile", "fa-rocket"},
	{"rocket", "fa-rocket"},
	{"artillery", "fa-bomb"},
	{"shelling", "fa-bomb"},
	{"airstrike", "fa-jet-fighter"},
	{"air", "fa-jet-fighter"},
	{"sabotage", "fa-user-secret"},
	{"partisan", "fa-user-secret"},
	{"naval", "fa-anchor"},
	{"ship", "fa-anchor"},
	{"sea", "fa-anchor"},
	{"energy", "fa-bolt"},
	{"infrastructure", "fa-industry"},
	{"refinery", "fa-industry"},
	{"plant", "fa-industry"},
	{"fire", "fa-fire"},
	{"explosion", "fa-fire"},
	{"cyber", "fa-network-wired"},
}

// Color returns the palette color for a severity.
func Color(s domain.Severity) string {
	if c, ok := Palette[s]; ok {
		return c
	}
	return Palette[domain.SeverityLow]
}

// Icon picks the marker icon for an event type.
func Icon(eventType string) string {
	t := strings.ToLower(eventType)
	if t == "" {
		return DefaultIcon
	}
	for _, r := range iconRules {
		if strings.Contains(t, r.keyword) {
			return r.icon
		}
	}
	return DefaultIcon
}

// Border returns the CSS class kanban cards use for a severity.
func Border(s domain.Severity) string {
	return "bd-" + string(s)
}

// newestFirst returns up to limit events ordered by descending timestamp.
// Events with equal timestamps keep their input order.
func newestFirst(events []domain.Event, limit int) []domain.Event {
	out := slices.Clone(events)
	slices.SortStableFunc(out, func(a, b domain.Event) int {
		switch {
		case a.Timestamp > b.Timestamp:
			return -1
		case a.Timestamp < b.Timestamp:
			return 1
		default:
			return 0
		}
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
