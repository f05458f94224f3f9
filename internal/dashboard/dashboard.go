// Package dashboard ties loading, filtering, playback and view publishing
// into one session. A Dashboard is driven by explicit commands (Load, Apply,
// Seek, ...) and is not safe for concurrent use.
package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/couchcryptid/conflict-dashboard/internal/domain"
	"github.com/couchcryptid/conflict-dashboard/internal/filter"
	"github.com/couchcryptid/conflict-dashboard/internal/observability"
	"github.com/couchcryptid/conflict-dashboard/internal/source"
	"github.com/google/uuid"
)

// DefaultQueryCacheSize is the number of memoized filter results per load.
const DefaultQueryCacheSize = 64

// Dashboard is one viewing session over a canonical event collection.
type Dashboard struct {
	id         string
	logger     *slog.Logger
	metrics    *observability.Metrics
	normalizer *domain.Normalizer
	engine     *filter.Engine
	sync       *Synchronizer
	player     *filter.Player
	cacheSize  int

	store     *Store
	criteria  filter.Criteria
	report    domain.Report
	published int
}

// Option customizes a Dashboard.
type Option func(*Dashboard)

// WithNormalizer sets the normalizer used on load. Its date parser and
// synonym resolver are also used for filtering.
func WithNormalizer(n *domain.Normalizer) Option {
	return func(d *Dashboard) { d.normalizer = n }
}

// WithQueryCacheSize bounds the filter result cache; zero disables it.
func WithQueryCacheSize(n int) Option {
	return func(d *Dashboard) { d.cacheSize = n }
}

// New creates an empty dashboard publishing to views.
func New(views Views, logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Dashboard {
	id := uuid.NewString()
	d := &Dashboard{
		id:        id,
		logger:    logger.With("session_id", id),
		metrics:   metrics,
		player:    filter.NewPlayer(),
		cacheSize: DefaultQueryCacheSize,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.normalizer == nil {
		d.normalizer = domain.NewNormalizer(d.logger)
	}
	d.engine = filter.NewEngine(d.normalizer.Dates(), d.normalizer.Synonyms())
	d.sync = NewSynchronizer(views, d.logger, metrics)
	d.store = NewStore(nil, d.engine, 0, metrics)
	return d
}

// ID returns the session identifier carried on every log line.
func (d *Dashboard) ID() string { return d.id }

// Load fetches every source, normalizes the records into a new canonical
// collection and publishes it unfiltered. Sources are merged in order; an
// event already supplied by an earlier source is counted as a duplicate and
// skipped. A source that fails is skipped and
// reported through the views' failure display; its *source.LoadError is part
// of the returned error. When every source fails the previous collection is
// kept.
func (d *Dashboard) Load(ctx context.Context, fetchers ...source.Fetcher) error {
	if len(fetchers) == 0 {
		return errors.New("load: no data sources")
	}

	var (
		records []domain.RawRecord
		offsets []int
		errs    []error
		loaded  int
	)
	for _, f := range fetchers {
		doc, err := source.Load(ctx, f)
		if err != nil {
			d.metrics.LoadFailures.Inc()
			d.logger.Warn("load failed", "source", f.Name(), "error", err)
			errs = append(errs, err)
			continue
		}
		if doc.Repaired {
			d.logger.Info("non-finite tokens rewritten to null", "source", doc.Source)
		}
		d.logger.Debug("source decoded", "source", doc.Source, "shape", doc.Shape, "records", len(doc.Records))
		offsets = append(offsets, len(records))
		records = append(records, doc.Records...)
		loaded++
	}

	loadErr := errors.Join(errs...)
	if loaded == 0 {
		d.sync.PublishFailure(ctx, loadErr)
		return loadErr
	}

	events, report := d.normalizer.NormalizeAll(records)
	events, repeats := dedupeAcrossSources(events, offsets, d.normalizer.Dates().Location)
	for _, e := range repeats {
		report.Duplicates++
		if e.DateUnknown {
			report.DateFallbacks--
		}
	}
	report.Kept = len(events)

	d.metrics.RecordsRead.Add(float64(report.Read))
	d.metrics.EventsNormalized.Add(float64(report.Kept))
	d.metrics.RecordsDropped.Add(float64(report.Dropped))
	d.metrics.DateFallbacks.Add(float64(report.DateFallbacks))
	d.metrics.DuplicateEvents.Add(float64(report.Duplicates))
	d.metrics.CanonicalEvents.Set(float64(report.Kept))

	d.store = NewStore(events, d.engine, d.cacheSize, d.metrics)
	d.report = report
	d.logger.Info("events loaded",
		"sources", loaded,
		"read", report.Read,
		"kept", report.Kept,
		"dropped", report.Dropped,
		"date_fallbacks", report.DateFallbacks,
		"duplicates", report.Duplicates,
	)

	if _, err := d.Apply(ctx, filter.Criteria{}); err != nil {
		return errors.Join(loadErr, err)
	}
	if loadErr != nil {
		d.sync.PublishFailure(ctx, loadErr)
	}
	return loadErr
}

// Apply filters the canonical collection with c, resets playback to live and
// publishes the result.
func (d *Dashboard) Apply(ctx context.Context, c filter.Criteria) (filter.Window, error) {
	d.criteria = c
	subset := d.store.Filter(c)
	w := d.player.Reset(subset)
	d.logger.Debug("filters applied", "criteria", c.Key(), "matched", len(subset))
	return w, d.publish(ctx)
}

// Reset clears all criteria.
func (d *Dashboard) Reset(ctx context.Context) (filter.Window, error) {
	return d.Apply(ctx, filter.Criteria{})
}

// Seek pauses playback at ts and publishes the events up to it.
func (d *Dashboard) Seek(ctx context.Context, ts int64) (filter.Window, error) {
	w := d.player.Seek(ts)
	return w, d.publish(ctx)
}

// Advance moves the playback cursor by step and publishes.
func (d *Dashboard) Advance(ctx context.Context, step time.Duration) (filter.Window, error) {
	w := d.player.Advance(step)
	return w, d.publish(ctx)
}

// GoLive shows the whole filtered subset again.
func (d *Dashboard) GoLive(ctx context.Context) (filter.Window, error) {
	w := d.player.GoLive()
	return w, d.publish(ctx)
}

func (d *Dashboard) publish(ctx context.Context) error {
	current := d.player.Current()
	d.published = len(current)
	return d.sync.Publish(ctx, current)
}

// Visible returns a copy of the events currently shown: the filtered subset
// cut at the playback cursor.
func (d *Dashboard) Visible() []domain.Event { return d.player.Current() }

// Options returns the filter dropdown values of the canonical collection.
func (d *Dashboard) Options() Options { return d.store.Options() }

// Count returns the number of events last published.
func (d *Dashboard) Count() int { return d.published }

// Window returns the playback window.
func (d *Dashboard) Window() filter.Window { return d.player.Bounds() }

// Criteria returns the criteria of the last Apply.
func (d *Dashboard) Criteria() filter.Criteria { return d.criteria }

// Report returns the normalization report of the last successful load.
func (d *Dashboard) Report() domain.Report { return d.report }

// Events returns a copy of the canonical collection.
func (d *Dashboard) Events() []domain.Event { return d.store.Events() }
