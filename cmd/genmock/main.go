// Command genmock generates deterministic mock data for the dashboard: a
// GeoJSON feature collection carrying the same untidiness as real exports
// (mixed date formats, comma decimals, missing coordinates, string
// intensities) and the TimelineJS document the dashboard would build from it.
// It runs the records through the real normalizer so the printed stats can
// be pasted into test assertions.
//
// Usage:
//
//	go run ./cmd/genmock -n 500 -seed 7 \
//	  -events-out assets/data/events.geojson \
//	  -timeline-out assets/data/timeline.json
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/conflict-dashboard/internal/domain"
	"github.com/couchcryptid/conflict-dashboard/internal/views"
	"github.com/jonboulle/clockwork"
)

var (
	baseDate  = time.Date(2022, time.February, 24, 0, 0, 0, 0, time.UTC)
	generated = time.Date(2024, time.May, 1, 6, 0, 0, 0, time.UTC)
)

// nanSentinel is swapped for a bare NaN token after marshaling.
const nanSentinel = "__nan__"

type place struct {
	name     string
	spelling string // spelling used in generated titles, often a historical one
	lat, lon float64
}

var places = []place{
	{"Kyiv", "Kiev", 50.4501, 30.5234},
	{"Kharkiv", "Kharkov", 49.9935, 36.2304},
	{"Odesa", "Odessa", 46.4825, 30.7233},
	{"Mykolaiv", "Nikolaev", 46.9750, 31.9946},
	{"Bakhmut", "Artemivsk", 48.5956, 38.0004},
	{"Dnipro", "Dnepropetrovsk", 48.4647, 35.0462},
	{"Lviv", "Lvov", 49.8397, 24.0297},
	{"Kherson", "Kherson", 46.6354, 32.6169},
	{"Zaporizhzhia", "Zaporizhzhia", 47.8388, 35.1396},
	{"Belgorod", "Belgorod", 50.5997, 36.5983},
}

var eventTypes = []string{
	"Missile strike", "Drone attack", "Air strike", "Artillery shelling",
	"Ground assault", "Civilian infrastructure", "Political event", "Naval incident",
}

var actors = []string{"ru", "UA", "RU", ""}

var dateFormats = []func(time.Time) string{
	func(t time.Time) string { return t.Format("2006-01-02") },
	func(t time.Time) string { return t.Format("02/01/2006") },
	func(t time.Time) string { return t.Format(time.RFC3339) },
	func(t time.Time) string { return t.Format("January 2, 2006") },
	func(t time.Time) string { return t.Format("2006-01-02 15:04") },
}

type featureCollection struct {
	Type     string    `json:"type"`
	Features []feature `json:"features"`
}

type feature struct {
	Type       string         `json:"type"`
	Geometry   *geometry      `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

type geometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	n := flag.Int("n", 300, "number of features to generate")
	seed := flag.Uint64("seed", 1, "random seed")
	eventsOut := flag.String("events-out", "", "output path for the GeoJSON fixture")
	timelineOut := flag.String("timeline-out", "", "output path for the timeline fixture")
	withNaN := flag.Bool("nan", false, "emit bare NaN intensities, as broken exports do")
	flag.Parse()

	if *eventsOut == "" || *timelineOut == "" || *n <= 0 {
		flag.Usage()
		return fmt.Errorf("missing required flags: -events-out, -timeline-out")
	}

	// Fixed clock so date fallbacks land on the same instant every run.
	domain.SetClock(clockwork.NewFakeClockAt(generated))
	defer domain.SetClock(nil)

	rng := rand.New(rand.NewPCG(*seed, *seed^0x9e3779b97f4a7c15))
	fc := generate(rng, *n, *withNaN)

	data, err := json.MarshalIndent(fc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal features: %w", err)
	}
	data = bytes.ReplaceAll(data, []byte(strconv.Quote(nanSentinel)), []byte("NaN"))
	if err := writeFile(*eventsOut, data); err != nil {
		return fmt.Errorf("writing events fixture: %w", err)
	}
	log.Printf("wrote %d features: %s", len(fc.Features), *eventsOut)

	normalizer := domain.NewNormalizer(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))
	events, report := normalizer.NormalizeAll(records(fc))

	doc := views.BuildTimeline("Conflict events", events, time.UTC)
	tl, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal timeline: %w", err)
	}
	if err := writeFile(*timelineOut, tl); err != nil {
		return fmt.Errorf("writing timeline fixture: %w", err)
	}
	log.Printf("wrote %d slides: %s", len(doc.Events), *timelineOut)

	printStats(events, report)
	return nil
}

func generate(rng *rand.Rand, n int, withNaN bool) featureCollection {
	fc := featureCollection{Type: "FeatureCollection", Features: make([]feature, 0, n)}
	for i := range n {
		p := places[rng.IntN(len(places))]
		typ := eventTypes[rng.IntN(len(eventTypes))]
		when := baseDate.Add(time.Duration(rng.IntN(800*24)) * time.Hour)
		lat := p.lat + (rng.Float64()-0.5)*0.2
		lon := p.lon + (rng.Float64()-0.5)*0.2

		props := map[string]any{
			"title":    fmt.Sprintf("%s near %s", typ, p.spelling),
			"type":     typ,
			"location": p.name,
			"date":     dateFormats[rng.IntN(len(dateFormats))](when),
		}
		if desc := rng.IntN(3); desc > 0 {
			props["description"] = fmt.Sprintf("Report %d from the %s area.", i, p.spelling)
		}
		if a := actors[rng.IntN(len(actors))]; a != "" {
			props["actor_code"] = a
		}

		switch r := rng.IntN(10); {
		case r < 5:
			props["intensity"] = round2(rng.Float64())
		case r < 8:
			props["intensity"] = strconv.FormatFloat(round2(rng.Float64()), 'f', 2, 64)
		case r < 9 && withNaN:
			props["intensity"] = nanSentinel
		}

		if rng.IntN(6) == 0 {
			props["video"] = fmt.Sprintf("https://video.example.org/%04d.mp4", i)
		}
		if rng.IntN(5) == 0 {
			props["before_img"] = fmt.Sprintf("https://img.example.org/%04d-before.jpg", i)
			props["after_img"] = fmt.Sprintf("https://img.example.org/%04d-after.jpg", i)
		}
		if rng.IntN(40) == 0 {
			props["date"] = "unknown"
		}

		f := feature{Type: "Feature", Properties: props}
		switch r := rng.IntN(20); {
		case r == 0:
			// Unlocated: dropped on load.
		case r < 3:
			props["lat"] = strings.Replace(strconv.FormatFloat(lat, 'f', 4, 64), ".", ",", 1)
			props["lon"] = strings.Replace(strconv.FormatFloat(lon, 'f', 4, 64), ".", ",", 1)
		default:
			f.Geometry = &geometry{Type: "Point", Coordinates: []float64{round4(lon), round4(lat)}}
		}
		fc.Features = append(fc.Features, f)
	}
	return fc
}

// records mirrors what the source decoder produces for fc.
func records(fc featureCollection) []domain.RawRecord {
	out := make([]domain.RawRecord, len(fc.Features))
	for i, f := range fc.Features {
		rec := domain.RawRecord{Properties: make(map[string]any, len(f.Properties))}
		for k, v := range f.Properties {
			if v == nanSentinel {
				v = nil
			}
			rec.Properties[k] = v
		}
		if g := f.Geometry; g != nil && len(g.Coordinates) == 2 {
			rec.Geometry = &domain.Point{Lat: g.Coordinates[1], Lon: g.Coordinates[0]}
		}
		out[i] = rec
	}
	return out
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

func printStats(events []domain.Event, report domain.Report) {
	bySeverity := map[domain.Severity]int{}
	byActor := map[string]int{}
	withVideo := 0
	for _, e := range events {
		bySeverity[e.Severity()]++
		byActor[e.ActorCode]++
		if e.Video != "" {
			withVideo++
		}
	}

	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Read: %d, kept: %d, dropped: %d, date fallbacks: %d\n",
		report.Read, report.Kept, report.Dropped, report.DateFallbacks)
	fmt.Printf("By severity: critical=%d, high=%d, medium=%d, low=%d\n",
		bySeverity[domain.SeverityCritical], bySeverity[domain.SeverityHigh],
		bySeverity[domain.SeverityMedium], bySeverity[domain.SeverityLow])
	fmt.Printf("By actor: RU=%d, UA=%d, UNK=%d\n", byActor["RU"], byActor["UA"], byActor[domain.DefaultActorCode])
	fmt.Printf("With video: %d\n", withVideo)
	if len(events) > 0 {
		fmt.Printf("Window: %s .. %s\n",
			events[0].Time().Format("2006-01-02"), events[len(events)-1].Time().Format("2006-01-02"))
	}
}

func round2(f float64) float64 { return float64(int(f*100+0.5)) / 100 }

func round4(f float64) float64 {
	if f < 0 {
		return -float64(int(-f*10000+0.5)) / 10000
	}
	return float64(int(f*10000+0.5)) / 10000
}
