package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "conflict_dashboard"

// Metrics holds the Prometheus counters, histograms, and gauges for the dashboard core.
type Metrics struct {
	// Load metrics.
	RecordsRead      prometheus.Counter
	EventsNormalized prometheus.Counter
	RecordsDropped   prometheus.Counter
	DateFallbacks    prometheus.Counter
	DuplicateEvents  prometheus.Counter
	LoadFailures     prometheus.Counter
	CanonicalEvents  prometheus.Gauge

	// Filter metrics.
	FilterRuns       prometheus.Counter
	FilterDuration   prometheus.Histogram
	FilterResultSize prometheus.Histogram
	QueryCache       *prometheus.CounterVec // labels: result={hit,miss}

	// View metrics.
	ViewPublishes *prometheus.CounterVec // labels: view, outcome={ok,absent,error}
}

// NewMetrics creates and registers all dashboard metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, so tests
// can create as many as they need.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

// Register adds every metric to reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range m.collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func newMetrics() *Metrics {
	return &Metrics{
		RecordsRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_read_total",
			Help:      "Total raw records read from data sources.",
		}),
		EventsNormalized: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_normalized_total",
			Help:      "Total records kept as canonical events.",
		}),
		RecordsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_dropped_total",
			Help:      "Total records dropped for missing or invalid coordinates.",
		}),
		DateFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "date_fallbacks_total",
			Help:      "Total events whose date could not be parsed and fell back to now.",
		}),
		DuplicateEvents: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "duplicate_events_total",
			Help:      "Total events skipped because an earlier source already supplied them.",
		}),
		LoadFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "load_failures_total",
			Help:      "Total data source loads that failed.",
		}),
		CanonicalEvents: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "canonical_events",
			Help:      "Number of events in the canonical collection.",
		}),
		FilterRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "filter_runs_total",
			Help:      "Total filter evaluations, cached or not.",
		}),
		FilterDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "filter_duration_seconds",
			Help:      "Duration of a filter evaluation against the canonical collection.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}),
		FilterResultSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "filter_result_size",
			Help:      "Number of events matched per filter evaluation.",
			Buckets:   []float64{0, 1, 10, 50, 100, 500, 1000, 3000, 10000},
		}),
		QueryCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "query_cache_total",
			Help:      "Filter result cache lookups by result.",
		}, []string{"result"}),
		ViewPublishes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "view_publishes_total",
			Help:      "View renders by view and outcome.",
		}, []string{"view", "outcome"}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.RecordsRead,
		m.EventsNormalized,
		m.RecordsDropped,
		m.DateFallbacks,
		m.DuplicateEvents,
		m.LoadFailures,
		m.CanonicalEvents,
		m.FilterRuns,
		m.FilterDuration,
		m.FilterResultSize,
		m.QueryCache,
		m.ViewPublishes,
	}
}
