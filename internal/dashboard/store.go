package dashboard

import (
	"slices"
	"time"

	"github.com/couchcryptid/conflict-dashboard/internal/domain"
	"github.com/couchcryptid/conflict-dashboard/internal/filter"
	"github.com/couchcryptid/conflict-dashboard/internal/observability"
)

// Store holds the canonical event collection. It never changes after
// construction, so filter results can be memoized by criteria.
type Store struct {
	events  []domain.Event
	engine  *filter.Engine
	cache   *queryCache // nil when disabled
	metrics *observability.Metrics
}

// Options are the distinct values the filter dropdowns offer.
type Options struct {
	Types      []string `json:"types"`
	ActorCodes []string `json:"actor_codes"`
}

// NewStore wraps a canonical collection. cacheSize bounds the number of
// memoized filter results; zero disables memoization.
func NewStore(events []domain.Event, engine *filter.Engine, cacheSize int, metrics *observability.Metrics) *Store {
	s := &Store{
		events:  events,
		engine:  engine,
		metrics: metrics,
	}
	if cacheSize > 0 {
		s.cache = newQueryCache(cacheSize)
	}
	return s
}

// Len returns the number of canonical events.
func (s *Store) Len() int { return len(s.events) }

// Events returns a copy of the canonical collection.
func (s *Store) Events() []domain.Event { return slices.Clone(s.events) }

// Filter evaluates c against the canonical collection and returns a fresh
// slice the caller may modify.
func (s *Store) Filter(c filter.Criteria) []domain.Event {
	s.metrics.FilterRuns.Inc()

	if s.cache == nil {
		return s.evaluate(c)
	}

	key := c.Key()
	if cached, ok := s.cache.get(key); ok {
		s.metrics.QueryCache.WithLabelValues("hit").Inc()
		return slices.Clone(cached)
	}
	s.metrics.QueryCache.WithLabelValues("miss").Inc()

	result := s.evaluate(c)
	s.cache.put(key, slices.Clone(result))
	return result
}

func (s *Store) evaluate(c filter.Criteria) []domain.Event {
	start := time.Now()
	result := s.engine.Apply(s.events, c)
	s.metrics.FilterDuration.Observe(time.Since(start).Seconds())
	s.metrics.FilterResultSize.Observe(float64(len(result)))
	return result
}

// Options returns the sorted distinct event types and actor codes.
func (s *Store) Options() Options {
	types := make([]string, 0)
	actors := make([]string, 0)
	for _, e := range s.events {
		types = append(types, e.Type)
		actors = append(actors, e.ActorCode)
	}
	slices.Sort(types)
	slices.Sort(actors)
	return Options{
		Types:      slices.Compact(types),
		ActorCodes: slices.Compact(actors),
	}
}
