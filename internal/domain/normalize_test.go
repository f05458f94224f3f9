package domain

import (
	"encoding/json"
	"io"
	"log/slog"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func props(kv ...any) map[string]any {
	m := make(map[string]any, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		m[kv[i].(string)] = kv[i+1]
	}
	return m
}

func TestNormalize_ConcreteScenario(t *testing.T) {
	now := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	freezeClock(t, now)
	n := NewNormalizer(discardLogger())

	records := []RawRecord{
		{Properties: props("lat", 50.0, "lon", 30.0, "date", "24/02/2022", "intensity", "0.9", "type", "missile")},
		{Properties: props("lat", nil, "lon", 30.0, "date", "2022-03-01")},
		{Properties: props("date", "not-a-date", "lat", 49.0, "lon", 31.0, "intensity", "0.5")},
	}

	events, report := n.NormalizeAll(records)
	require.Len(t, events, 2)
	assert.Equal(t, Report{Read: 3, Kept: 2, Dropped: 1, DateFallbacks: 1}, report)

	a, c := events[0], events[1]
	assert.Equal(t, "0", a.ID)
	assert.Equal(t, SeverityCritical, a.Severity())
	assert.Equal(t, "missile", a.Type)
	assert.Equal(t, time.Date(2022, 2, 24, 0, 0, 0, 0, time.UTC).UnixMilli(), a.Timestamp)
	assert.False(t, a.DateUnknown)

	assert.Equal(t, "2", c.ID)
	assert.Equal(t, now.UnixMilli(), c.Timestamp)
	assert.True(t, c.DateUnknown)
	assert.Equal(t, SeverityMedium, c.Severity())
	assert.Equal(t, DefaultType, c.Type)
	assert.Equal(t, DefaultTitle, c.Title)
	assert.Equal(t, DefaultActorCode, c.ActorCode)
}

func TestNormalize_DropsUnlocatedRecords(t *testing.T) {
	n := NewNormalizer(discardLogger())

	tests := []struct {
		name string
		raw  RawRecord
	}{
		{"no coordinates", RawRecord{Properties: props("title", "x")}},
		{"nil properties", RawRecord{}},
		{"null lat", RawRecord{Properties: props("lat", nil, "lon", 30.0)}},
		{"null string lon", RawRecord{Properties: props("lat", 50.0, "lon", "null")}},
		{"nan lat", RawRecord{Properties: props("lat", math.NaN(), "lon", 30.0)}},
		{"infinite lon", RawRecord{Properties: props("lat", 50.0, "lon", math.Inf(1))}},
		{"text lat", RawRecord{Properties: props("lat", "north", "lon", 30.0)}},
		{"nan geometry and no props", RawRecord{Geometry: &Point{Lat: math.NaN(), Lon: 1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := n.Normalize(tt.raw, 0)
			assert.False(t, ok)
		})
	}
}

func TestNormalize_Coordinates(t *testing.T) {
	n := NewNormalizer(discardLogger())

	t.Run("geometry wins over properties", func(t *testing.T) {
		e, ok := n.Normalize(RawRecord{Geometry: &Point{Lat: 48.5, Lon: 35.0}, Properties: props("lat", 1.0, "lon", 2.0)}, 0)
		require.True(t, ok)
		assert.Equal(t, 48.5, e.Lat)
		assert.Equal(t, 35.0, e.Lon)
	})

	t.Run("string coordinates with decimal comma", func(t *testing.T) {
		e, ok := n.Normalize(RawRecord{Properties: props("latitude", "50,45", "longitude", "30.52")}, 0)
		require.True(t, ok)
		assert.Equal(t, 50.45, e.Lat)
		assert.Equal(t, 30.52, e.Lon)
	})

	t.Run("json numbers", func(t *testing.T) {
		e, ok := n.Normalize(RawRecord{Properties: props("lat", json.Number("47.1"), "lon", json.Number("37.5"))}, 0)
		require.True(t, ok)
		assert.Equal(t, 47.1, e.Lat)
	})

	t.Run("zero is a coordinate", func(t *testing.T) {
		_, ok := n.Normalize(RawRecord{Geometry: &Point{Lat: 0, Lon: 0}}, 0)
		assert.True(t, ok)
	})
}

func TestNormalize_Intensity(t *testing.T) {
	n := NewNormalizer(discardLogger())

	tests := []struct {
		name     string
		value    any
		expected float64
	}{
		{"missing", nil, DefaultIntensity},
		{"number", 0.7, 0.7},
		{"string", "0.45", 0.45},
		{"decimal comma", "0,8", 0.8},
		{"leading number", "0.9 (estimate)", 0.9},
		{"zero string", "0", 0},
		{"garbage", "high", DefaultIntensity},
		{"null literal", "null", DefaultIntensity},
		{"above range", 3.0, 1},
		{"below range", -0.5, 0},
		{"nan", math.NaN(), DefaultIntensity},
		{"json number", json.Number("0.61"), 0.61},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, ok := n.Normalize(RawRecord{Geometry: &Point{Lat: 1, Lon: 1}, Properties: props("intensity", tt.value)}, 0)
			require.True(t, ok)
			assert.InDelta(t, tt.expected, e.IntensityNorm, 1e-9)
		})
	}
}

func TestNormalize_ActorCode(t *testing.T) {
	plain := NewNormalizer(discardLogger())
	inferring := NewNormalizer(discardLogger(), WithActorClassifier(NewKeywordActorClassifier(DefaultActorRules())))
	at := &Point{Lat: 1, Lon: 1}

	tests := []struct {
		name       string
		normalizer *Normalizer
		props      map[string]any
		expected   string
	}{
		{"explicit code upper-cased", plain, props("actor_code", "ukr"), "UKR"},
		{"alternate key", plain, props("actor", "rus "), "RUS"},
		{"missing", plain, props(), "UNK"},
		{"null literal", plain, props("actor_code", "null"), "UNK"},
		{"no inference without classifier", plain, props("title", "Shahed drones over the city"), "UNK"},
		{"inferred from weapon keyword", inferring, props("title", "Shahed drones over the city"), "RUS"},
		{"inferred from location", inferring, props("title", "Explosions", "location", "Belgorod"), "UKR"},
		{"explicit code wins over inference", inferring, props("actor_code", "UNK", "title", "HIMARS strike"), "UNK"},
		{"inference undecided", inferring, props("title", "Fire at depot"), "UNK"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, ok := tt.normalizer.Normalize(RawRecord{Geometry: at, Properties: tt.props}, 0)
			require.True(t, ok)
			assert.Equal(t, tt.expected, e.ActorCode)
		})
	}
}

func TestNormalize_PassThroughAndDefaults(t *testing.T) {
	n := NewNormalizer(discardLogger())

	e, ok := n.Normalize(RawRecord{
		Geometry: &Point{Lat: 46.6, Lon: 32.6},
		Properties: props(
			"id", "evt-42",
			"title", "  Strike on Kherson  ",
			"description", "Port area hit",
			"type", "artillery",
			"date", "2023-06-06",
			"video", "https://youtu.be/abc",
			"link", "https://example.org/src",
			"before_img", "null",
			"confidence", "high",
		),
	}, 7)
	require.True(t, ok)

	assert.Equal(t, "evt-42", e.ID)
	assert.Equal(t, 7, e.Index)
	assert.Equal(t, "Strike on Kherson", e.Title)
	assert.Equal(t, "Port area hit", e.Description)
	assert.Equal(t, "artillery", e.Type)
	assert.Equal(t, "2023-06-06", e.Date)
	assert.Equal(t, "https://youtu.be/abc", e.Video)
	assert.Equal(t, "https://example.org/src", e.Link)
	assert.Empty(t, e.BeforeImg)
	assert.Equal(t, "high", e.Confidence)
}

func TestNormalize_SearchBlob(t *testing.T) {
	n := NewNormalizer(discardLogger())

	t.Run("lower-cased scalar values", func(t *testing.T) {
		e, ok := n.Normalize(RawRecord{Properties: props(
			"lat", 50.45, "lon", 30.52, "title", "Drone Attack", "intensity", 0.7,
			"nested", map[string]any{"x": "HIDDEN"}, "flag", true,
		)}, 0)
		require.True(t, ok)
		assert.Contains(t, e.SearchBlob, "drone attack")
		assert.Contains(t, e.SearchBlob, "0.7")
		assert.Contains(t, e.SearchBlob, "50.45")
		assert.NotContains(t, e.SearchBlob, "hidden")
		assert.NotContains(t, e.SearchBlob, "true")
		assert.Equal(t, strings.ToLower(e.SearchBlob), e.SearchBlob)
	})

	t.Run("canonical place name appends aliases", func(t *testing.T) {
		e, ok := n.Normalize(RawRecord{Geometry: &Point{Lat: 50.45, Lon: 30.52}, Properties: props("title", "Missile strike on Kyiv")}, 0)
		require.True(t, ok)
		assert.Contains(t, e.SearchBlob, "kiev")
		assert.Contains(t, e.SearchBlob, "kiew")
	})

	t.Run("alias in title is not expanded at load", func(t *testing.T) {
		e, ok := n.Normalize(RawRecord{Geometry: &Point{Lat: 50.45, Lon: 30.52}, Properties: props("title", "Strike on Kiev")}, 0)
		require.True(t, ok)
		assert.NotContains(t, e.SearchBlob, "kyiv")
	})

	t.Run("deterministic", func(t *testing.T) {
		raw := RawRecord{Geometry: &Point{Lat: 1, Lon: 2}, Properties: props(
			"a", "one", "b", "two", "c", "three", "d", "four", "e", "five", "title", "Odesa port",
		)}
		first, _ := n.Normalize(raw, 0)
		for range 20 {
			again, _ := n.Normalize(raw, 0)
			assert.Equal(t, first.SearchBlob, again.SearchBlob)
		}
		assert.Contains(t, first.SearchBlob, "odessa")
	})
}

func TestNormalizeAll_StableSort(t *testing.T) {
	n := NewNormalizer(discardLogger())
	at := &Point{Lat: 1, Lon: 1}

	records := []RawRecord{
		{Geometry: at, Properties: props("id", "late", "date", "2022-05-01")},
		{Geometry: at, Properties: props("id", "tie-1", "date", "2022-03-01")},
		{Geometry: at, Properties: props("id", "early", "date", "2022-01-01")},
		{Geometry: at, Properties: props("id", "tie-2", "date", "01/03/2022")},
	}

	events, report := n.NormalizeAll(records)
	require.Len(t, events, 4)
	assert.Zero(t, report.Dropped)

	ids := make([]string, len(events))
	for i, e := range events {
		ids[i] = e.ID
	}
	assert.Equal(t, []string{"early", "tie-1", "tie-2", "late"}, ids)
}

func TestNormalize_TimelineShape(t *testing.T) {
	n := NewNormalizer(discardLogger())

	slide := TimelineEvent{
		StartDate: TimelineDate{Year: 2022, Month: 2, Day: 24},
		Text:      TimelineText{Headline: "Strikes on Kharkiv", Text: "Multiple impacts"},
		Group:     "missile",
		Media:     &TimelineMedia{URL: "https://youtu.be/x"},
		Lat:       json.Number("49.99"),
		Lon:       json.Number("36.23"),
		Intensity: "0.85",
	}

	e, ok := n.Normalize(slide.Record(), 3)
	require.True(t, ok)
	assert.Equal(t, "Strikes on Kharkiv", e.Title)
	assert.Equal(t, "Multiple impacts", e.Description)
	assert.Equal(t, "missile", e.Type)
	assert.Equal(t, "2022-02-24", e.Date)
	assert.Equal(t, "https://youtu.be/x", e.Video)
	assert.Equal(t, SeverityCritical, e.Severity())
	assert.Equal(t, time.Date(2022, 2, 24, 0, 0, 0, 0, time.UTC).UnixMilli(), e.Timestamp)
	assert.Contains(t, e.SearchBlob, "kharkov")

	_, ok = n.Normalize(TimelineEvent{Text: TimelineText{Headline: "no place"}}.Record(), 4)
	assert.False(t, ok)
}
