// Command validate loads the configured data sources through the dashboard
// core and checks the canonical collection: load health, normalization
// invariants, data quality and filter behavior. It then prints distributions
// and a preview of the events matching the given filters.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -events assets/data/events.geojson \
//	  -timeline assets/data/timeline.json \
//	  -from 2022-02-24 -to 2022-03-31 -severity critical,high -q kharkov
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/couchcryptid/conflict-dashboard/internal/config"
	"github.com/couchcryptid/conflict-dashboard/internal/dashboard"
	"github.com/couchcryptid/conflict-dashboard/internal/domain"
	"github.com/couchcryptid/conflict-dashboard/internal/filter"
	"github.com/couchcryptid/conflict-dashboard/internal/observability"
	"github.com/couchcryptid/conflict-dashboard/internal/source"
	"github.com/couchcryptid/conflict-dashboard/internal/views"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// phase tracks pass/fail for a validation phase. Advisory phases only fail
// the run under -strict.
type phase struct {
	name     string
	advisory bool
	errors   []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

type options struct {
	events    string
	timeline  string
	criteria  filter.Criteria
	severity  string
	show      int
	strict    bool
	metrics   bool
	maxDrop   float64
	headline  string
	useDotenv bool
}

func main() {
	var opts options
	flag.StringVar(&opts.events, "events", "", "events GeoJSON path or URL (default DATA_EVENTS_SOURCE)")
	flag.StringVar(&opts.timeline, "timeline", "", "timeline JSON path or URL (default DATA_TIMELINE_SOURCE)")
	flag.StringVar(&opts.criteria.StartDate, "from", "", "first calendar day to include (YYYY-MM-DD or DD/MM/YYYY)")
	flag.StringVar(&opts.criteria.EndDate, "to", "", "last calendar day to include")
	flag.StringVar(&opts.criteria.Type, "type", "", "exact event type")
	flag.StringVar(&opts.criteria.ActorCode, "actor", "", "exact actor code")
	flag.StringVar(&opts.criteria.SearchText, "q", "", "free-text search, place-name synonyms included")
	flag.StringVar(&opts.severity, "severity", "", "comma-separated severities (critical,high,medium,low)")
	flag.IntVar(&opts.show, "show", 10, "number of matching events to print")
	flag.BoolVar(&opts.strict, "strict", false, "fail on data quality findings")
	flag.BoolVar(&opts.metrics, "metrics", false, "print the collected metrics in exposition format")
	flag.Float64Var(&opts.maxDrop, "max-drop", 0.05, "largest acceptable share of dropped records")
	flag.StringVar(&opts.headline, "headline", "Conflict events", "timeline headline")
	flag.BoolVar(&opts.useDotenv, "dotenv", true, "load .env before reading the environment")
	flag.Parse()

	os.Exit(run(opts))
}

func run(opts options) int {
	if opts.useDotenv {
		// A missing .env is normal outside development.
		_ = godotenv.Load()
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load config: %v\n", err)
		return 1
	}
	if opts.events != "" {
		cfg.EventsSource = opts.events
	}
	if opts.timeline != "" {
		cfg.TimelineSource = opts.timeline
	}

	sevs, err := parseSeverities(opts.severity)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		return 1
	}
	opts.criteria.Severities = sevs

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	normalizer, err := buildNormalizer(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		return 1
	}

	count := &views.Count{}
	charts := views.NewCharts(cfg.Location)
	feed := &views.Feed{}
	kanban := &views.Kanban{}
	mapView := views.NewMap(cfg.HeatmapSampleThreshold)
	timeline := views.NewTimeline(opts.headline, cfg.Location)

	dash := dashboard.New(dashboard.Views{
		Counter:  count,
		Map:      mapView,
		Charts:   charts,
		Lists:    []dashboard.View{feed, kanban, &views.Gallery{}},
		Timeline: timeline,
	}, logger, metrics,
		dashboard.WithNormalizer(normalizer),
		dashboard.WithQueryCacheSize(cfg.QueryCacheSize),
	)

	fetchers := make([]source.Fetcher, 0, 2)
	for _, loc := range cfg.Sources() {
		fetchers = append(fetchers, source.ForLocation(loc, cfg.FetchTimeout, logger))
	}

	fmt.Println("=== Conflict Event Data Validation ===")
	fmt.Printf("Session %s, sources: %s\n\n", dash.ID(), strings.Join(cfg.Sources(), ", "))

	ctx := context.Background()
	loadErr := dash.Load(ctx, fetchers...)
	canonical := dash.Events()
	report := dash.Report()

	phases := []*phase{
		validateLoad(loadErr, report),
		validateCanonical(canonical),
		validateQuality(report, canonical, opts.maxDrop),
		validateFilter(ctx, dash, filter.NewEngine(normalizer.Dates(), normalizer.Synonyms()), canonical, opts.criteria),
	}

	fmt.Println()
	failed := false
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		switch {
		case p.passed():
		case p.advisory && !opts.strict:
			status = fmt.Sprintf("\033[33mWARN (%d findings)\033[0m", len(p.errors))
		default:
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			failed = true
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d read, %d kept, %d dropped, %d date fallbacks, %d duplicates\n",
		report.Read, report.Kept, report.Dropped, report.DateFallbacks, report.Duplicates)

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if len(canonical) > 0 {
		printDistributions(dash, charts, kanban)
		if err := printPreview(ctx, dash, opts.criteria, feed, mapView, timeline, opts.show, cfg.Location); err != nil {
			fmt.Fprintf(os.Stderr, "preview: %v\n", err)
			failed = true
		}
	}

	if opts.metrics {
		if err := printMetrics(); err != nil {
			fmt.Fprintf(os.Stderr, "metrics: %v\n", err)
		}
	}

	if failed {
		fmt.Println("\nValidation FAILED.")
		return 1
	}
	fmt.Println("\nAll validations passed.")
	return 0
}

func buildNormalizer(cfg *config.Config, logger *slog.Logger) (*domain.Normalizer, error) {
	var gz *config.Gazetteer
	if cfg.GazetteerPath != "" {
		var err error
		if gz, err = config.LoadGazetteer(cfg.GazetteerPath); err != nil {
			return nil, err
		}
	}

	nopts := []domain.NormalizerOption{
		domain.WithDateParser(domain.DateParser{Location: cfg.Location}),
		domain.WithSynonyms(gz.Dictionary()),
	}
	if cfg.ActorInference {
		classifier, err := gz.ActorClassifier()
		if err != nil {
			return nil, fmt.Errorf("actor rules: %w", err)
		}
		nopts = append(nopts, domain.WithActorClassifier(classifier))
	}
	return domain.NewNormalizer(logger, nopts...), nil
}

func parseSeverities(s string) ([]domain.Severity, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var out []domain.Severity
	for part := range strings.SplitSeq(s, ",") {
		sev, ok := domain.ParseSeverity(part)
		if !ok {
			return nil, fmt.Errorf("unknown severity %q", strings.TrimSpace(part))
		}
		out = append(out, sev)
	}
	return out, nil
}

// ── Phase 1: Load ──

func validateLoad(loadErr error, report domain.Report) *phase {
	p := &phase{name: "Phase 1: Load (fetch + decode)"}
	if loadErr != nil {
		p.errorf("%v", loadErr)
	}
	if report.Read == 0 && loadErr == nil {
		p.errorf("sources contain no records")
	}
	return p
}

// ── Phase 2: Canonical invariants ──
// Every kept event must be located, bounded and ordered.

func validateCanonical(events []domain.Event) *phase {
	p := &phase{name: "Phase 2: Canonical invariants"}

	ids := make(map[string]int, len(events))
	for i, e := range events {
		pf := func(format string, args ...any) {
			p.errorf("event %d (ID %s): "+format, append([]any{i, e.ID}, args...)...)
		}

		if prev, dup := ids[e.ID]; dup {
			pf("duplicate ID, first seen at %d", prev)
		}
		ids[e.ID] = i

		if !finite(e.Lat) || !finite(e.Lon) {
			pf("non-finite coordinates (%g, %g)", e.Lat, e.Lon)
		}
		if e.IntensityNorm < 0 || e.IntensityNorm > 1 || math.IsNaN(e.IntensityNorm) {
			pf("intensity %g outside [0,1]", e.IntensityNorm)
		}
		if !slices.Contains(domain.Severities(), e.Severity()) {
			pf("severity %q is not a known bucket", e.Severity())
		}
		if e.Title == "" || e.Type == "" {
			pf("missing title or type")
		}
		if e.ActorCode == "" || e.ActorCode != strings.ToUpper(e.ActorCode) {
			pf("actor code %q is not upper case", e.ActorCode)
		}
		if e.SearchBlob != strings.ToLower(e.SearchBlob) {
			pf("search blob is not lower case")
		}
		if i > 0 && e.Timestamp < events[i-1].Timestamp {
			pf("timestamp %d before previous event %d", e.Timestamp, events[i-1].Timestamp)
		}
	}
	return p
}

// ── Phase 3: Data quality ──
// Dropped records and date fallbacks are legal but worth knowing about.

func validateQuality(report domain.Report, events []domain.Event, maxDrop float64) *phase {
	p := &phase{name: "Phase 3: Data quality", advisory: true}

	if report.Read > 0 {
		share := float64(report.Dropped) / float64(report.Read)
		if share > maxDrop {
			p.errorf("%d of %d records (%.1f%%) dropped without coordinates", report.Dropped, report.Read, share*100)
		}
	}
	for _, e := range events {
		if e.DateUnknown {
			p.errorf("event %s (%q): date %q not parseable, placed at load time", e.ID, e.Title, e.Date)
		}
		if e.Lat == 0 && e.Lon == 0 {
			p.errorf("event %s (%q): located at 0,0", e.ID, e.Title)
		}
	}
	return p
}

// ── Phase 4: Filter behavior ──
// The requested criteria must select a subset of the canonical collection,
// and filtering that subset again must not change it.

func validateFilter(ctx context.Context, dash *dashboard.Dashboard, eng *filter.Engine, canonical []domain.Event, c filter.Criteria) *phase {
	p := &phase{name: "Phase 4: Filter (subset + idempotence)"}

	if _, err := dash.Apply(ctx, c); err != nil {
		p.errorf("apply: %v", err)
		return p
	}
	subset := dash.Visible()

	known := make(map[string]bool, len(canonical))
	for _, e := range canonical {
		known[e.ID] = true
	}
	for _, e := range subset {
		if !known[e.ID] {
			p.errorf("filtered event %s is not in the canonical collection", e.ID)
		}
	}

	again := eng.Apply(subset, c)
	if len(again) != len(subset) {
		p.errorf("filtering twice changed the result: %d then %d events", len(subset), len(again))
	}

	if _, err := dash.Reset(ctx); err != nil {
		p.errorf("reset: %v", err)
	}
	if dash.Count() != len(canonical) {
		p.errorf("reset published %d events, canonical collection has %d", dash.Count(), len(canonical))
	}
	return p
}

// ── Reports ──

func printDistributions(dash *dashboard.Dashboard, charts *views.Charts, kanban *views.Kanban) {
	events := dash.Events()

	fmt.Println("\n--- Severity ---")
	bySeverity := make(map[domain.Severity]int)
	for _, e := range events {
		bySeverity[e.Severity()]++
	}
	for _, s := range domain.Severities() {
		fmt.Printf("  %-10s %6d  %s\n", s, bySeverity[s], views.Color(s))
	}

	fmt.Println("\n--- Categories (mean intensity) ---")
	means := make(map[string]float64)
	for _, ci := range charts.Intensity() {
		means[ci.Category] = ci.Mean
	}
	for _, b := range charts.Categories() {
		fmt.Printf("  %-24s %6d  %.2f  %s\n", b.Label, b.Count, means[b.Label], views.Icon(b.Label))
	}

	fmt.Println("\n--- Actors ---")
	byActor := make(map[string]int)
	for _, e := range events {
		byActor[e.ActorCode]++
	}
	for _, code := range dash.Options().ActorCodes {
		fmt.Printf("  %-10s %6d\n", code, byActor[code])
	}

	fmt.Println("\n--- Months ---")
	for _, b := range charts.Monthly() {
		fmt.Printf("  %s %6d\n", b.Label, b.Count)
	}

	fmt.Println("\n--- Kanban (newest cards) ---")
	counts := kanban.Counts()
	for _, col := range views.KanbanColumns {
		fmt.Printf("  %-8s %6d\n", col, counts[col])
	}
}

func printPreview(ctx context.Context, dash *dashboard.Dashboard, c filter.Criteria, feed *views.Feed, m *views.Map, tl *views.Timeline, show int, loc *time.Location) error {
	w, err := dash.Apply(ctx, c)
	if err != nil {
		return err
	}

	fmt.Printf("\n--- Filter preview (%d matching, %d markers, %d heat points, %d slides) ---\n",
		dash.Count(), len(m.Markers()), len(m.Heat()), len(tl.Document().Events))
	if dash.Count() > 0 {
		fmt.Printf("  window %s .. %s\n", formatMillis(w.Min, loc), formatMillis(w.Max, loc))
	}
	for i, it := range feed.Items() {
		if i >= show {
			break
		}
		fmt.Printf("  %s  %-4s %-18s %s\n", formatMillis(it.Timestamp, loc), it.ActorCode, it.Type, it.Title)
	}
	return nil
}

func printMetrics() error {
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	fmt.Println("\n--- Metrics ---")
	for _, mf := range families {
		if !strings.HasPrefix(mf.GetName(), "conflict_dashboard_") {
			continue
		}
		if _, err := expfmt.MetricFamilyToText(os.Stdout, mf); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	return nil
}

// ── Helpers ──

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func formatMillis(ms int64, loc *time.Location) string {
	return time.UnixMilli(ms).In(loc).Format("2006-01-02")
}
