package filter

import (
	"strings"

	"github.com/couchcryptid/conflict-dashboard/internal/domain"
)

// Predicate reports whether an event satisfies compiled criteria.
type Predicate func(domain.Event) bool

// Engine compiles criteria using a date parser for the day bounds and a
// synonym resolver for search expansion.
type Engine struct {
	dates    domain.DateParser
	synonyms domain.SynonymResolver
}

// NewEngine creates an Engine. A nil resolver falls back to the default
// place-name dictionary.
func NewEngine(dates domain.DateParser, synonyms domain.SynonymResolver) *Engine {
	if synonyms == nil {
		synonyms = domain.DefaultDictionary()
	}
	return &Engine{dates: dates, synonyms: synonyms}
}

// Apply filters events with c using UTC day bounds and the given resolver.
func Apply(events []domain.Event, c Criteria, synonyms domain.SynonymResolver) []domain.Event {
	return NewEngine(domain.DateParser{}, synonyms).Apply(events, c)
}

// Apply returns a new slice with every event matching c, in input order.
// The input is never modified.
func (e *Engine) Apply(events []domain.Event, c Criteria) []domain.Event {
	match := e.Compile(c)
	out := make([]domain.Event, 0, len(events))
	for _, ev := range events {
		if match(ev) {
			out = append(out, ev)
		}
	}
	return out
}

// Compile resolves c into a single predicate. Dimensions are ANDed; search
// terms and severities are ORed within their dimension. Date bounds that do
// not parse impose no constraint.
func (e *Engine) Compile(c Criteria) Predicate {
	start, hasStart := e.dates.DayStart(c.StartDate)
	end, hasEnd := e.dates.DayEnd(c.EndDate)

	var terms []string
	if q := normalizeSearch(c.SearchText); q != "" {
		terms = e.synonyms.Expand(q)
	}

	var severities map[domain.Severity]struct{}
	if len(c.Severities) > 0 {
		severities = make(map[domain.Severity]struct{}, len(c.Severities))
		for _, s := range c.Severities {
			severities[s] = struct{}{}
		}
	}

	return func(ev domain.Event) bool {
		if hasStart && ev.Timestamp < start {
			return false
		}
		if hasEnd && ev.Timestamp > end {
			return false
		}
		if c.Type != "" && ev.Type != c.Type {
			return false
		}
		if c.ActorCode != "" && ev.ActorCode != c.ActorCode {
			return false
		}
		if terms != nil && !containsAny(ev.SearchBlob, terms) {
			return false
		}
		if severities != nil {
			if _, ok := severities[ev.Severity()]; !ok {
				return false
			}
		}
		return true
	}
}

func containsAny(blob string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(blob, t) {
			return true
		}
	}
	return false
}
