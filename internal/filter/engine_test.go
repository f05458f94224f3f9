package filter_test

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/conflict-dashboard/internal/domain"
	"github.com/couchcryptid/conflict-dashboard/internal/filter"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func normalize(t *testing.T, records ...map[string]any) []domain.Event {
	t.Helper()
	n := domain.NewNormalizer(slog.New(slog.NewTextHandler(io.Discard, nil)))
	raws := make([]domain.RawRecord, len(records))
	for i, p := range records {
		raws[i] = domain.RawRecord{Properties: p}
	}
	events, _ := n.NormalizeAll(raws)
	return events
}

func ids(events []domain.Event) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.ID
	}
	return out
}

func fixture(t *testing.T) []domain.Event {
	t.Helper()
	return normalize(t,
		map[string]any{"id": "kyiv-missile", "lat": 50.45, "lon": 30.52, "date": "2022-02-24", "type": "missile", "actor_code": "RUS", "intensity": 0.9, "title": "Missile strike on Kyiv"},
		map[string]any{"id": "kiev-drone", "lat": 50.4, "lon": 30.6, "date": "2022-03-10", "type": "drone", "actor_code": "RUS", "intensity": 0.65, "title": "Drone over Kiev outskirts"},
		map[string]any{"id": "belgorod", "lat": 50.6, "lon": 36.6, "date": "2022-04-02", "type": "sabotage", "actor_code": "UKR", "intensity": 0.45, "title": "Depot fire in Belgorod"},
		map[string]any{"id": "odesa-naval", "lat": 46.48, "lon": 30.72, "date": "2022-04-14", "type": "naval", "actor_code": "UKR", "intensity": 0.3, "title": "Cruiser hit off Odesa"},
		map[string]any{"id": "kharkiv-art", "lat": 49.99, "lon": 36.23, "date": "2022-05-20", "type": "artillery", "intensity": "0.8", "title": "Shelling of Kharkiv"},
	)
}

func TestApply_ConcreteScenario(t *testing.T) {
	domain.SetClock(clockwork.NewFakeClockAt(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)))
	t.Cleanup(func() { domain.SetClock(nil) })

	events := normalize(t,
		map[string]any{"id": "A", "lat": 50.0, "lon": 30.0, "date": "24/02/2022", "intensity": "0.9", "type": "missile"},
		map[string]any{"id": "B", "lat": nil, "lon": 30.0, "date": "2022-03-01"},
		map[string]any{"id": "C", "date": "not-a-date", "lat": 49.0, "lon": 31.0, "intensity": "0.5"},
	)
	require.Equal(t, []string{"A", "C"}, ids(events))

	critical := filter.Apply(events, filter.Criteria{Severities: []domain.Severity{domain.SeverityCritical}}, nil)
	assert.Equal(t, []string{"A"}, ids(critical))

	none := filter.Apply(events, filter.Criteria{Severities: []domain.Severity{}}, nil)
	assert.Equal(t, []string{"A", "C"}, ids(none))
}

func TestApply_Dimensions(t *testing.T) {
	events := fixture(t)

	tests := []struct {
		name     string
		criteria filter.Criteria
		expected []string
	}{
		{"zero criteria", filter.Criteria{}, []string{"kyiv-missile", "kiev-drone", "belgorod", "odesa-naval", "kharkiv-art"}},
		{"start inclusive", filter.Criteria{StartDate: "2022-04-14"}, []string{"odesa-naval", "kharkiv-art"}},
		{"end inclusive", filter.Criteria{EndDate: "2022-03-10"}, []string{"kyiv-missile", "kiev-drone"}},
		{"single day", filter.Criteria{StartDate: "2022-04-02", EndDate: "2022-04-02"}, []string{"belgorod"}},
		{"start after end", filter.Criteria{StartDate: "2022-05-01", EndDate: "2022-03-01"}, []string{}},
		{"mixed bound formats", filter.Criteria{StartDate: "10/03/2022", EndDate: "2022-04-02"}, []string{"kiev-drone", "belgorod"}},
		{"unparseable start ignored", filter.Criteria{StartDate: "someday", EndDate: "2022-02-24"}, []string{"kyiv-missile"}},
		{"type exact", filter.Criteria{Type: "drone"}, []string{"kiev-drone"}},
		{"type is case sensitive", filter.Criteria{Type: "Drone"}, []string{}},
		{"actor", filter.Criteria{ActorCode: "UKR"}, []string{"belgorod", "odesa-naval"}},
		{"defaulted actor", filter.Criteria{ActorCode: "UNK"}, []string{"kharkiv-art"}},
		{"severity or", filter.Criteria{Severities: []domain.Severity{domain.SeverityCritical, domain.SeverityLow}}, []string{"kyiv-missile", "odesa-naval", "kharkiv-art"}},
		{"unknown severity matches nothing", filter.Criteria{Severities: []domain.Severity{"extreme"}}, []string{}},
		{"search substring", filter.Criteria{SearchText: "depot"}, []string{"belgorod"}},
		{"search trimmed and lower-cased", filter.Criteria{SearchText: "  SHELLING "}, []string{"kharkiv-art"}},
		{"search alias finds canonical", filter.Criteria{SearchText: "kharkov"}, []string{"kharkiv-art"}},
		{"search matches coordinates", filter.Criteria{SearchText: "46.48"}, []string{"odesa-naval"}},
		{"dimensions and", filter.Criteria{ActorCode: "RUS", Severities: []domain.Severity{domain.SeverityHigh}}, []string{"kiev-drone"}},
		{"whitespace search is no constraint", filter.Criteria{SearchText: "   "}, []string{"kyiv-missile", "kiev-drone", "belgorod", "odesa-naval", "kharkiv-art"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ids(filter.Apply(events, tt.criteria, nil)))
		})
	}
}

func TestApply_SearchSymmetry(t *testing.T) {
	events := fixture(t)

	pairs := [][2]string{{"kiev", "kyiv"}, {"odessa", "odesa"}, {"kharkov", "kharkiv"}}
	for _, p := range pairs {
		t.Run(p[0]+"/"+p[1], func(t *testing.T) {
			alias := filter.Apply(events, filter.Criteria{SearchText: p[0]}, nil)
			canonical := filter.Apply(events, filter.Criteria{SearchText: p[1]}, nil)
			assert.Equal(t, ids(canonical), ids(alias))
			assert.NotEmpty(t, alias)
		})
	}

	both := filter.Apply(events, filter.Criteria{SearchText: "kiev"}, nil)
	assert.Equal(t, []string{"kyiv-missile", "kiev-drone"}, ids(both))
}

func TestApply_Idempotent(t *testing.T) {
	events := fixture(t)
	criteria := []filter.Criteria{
		{},
		{ActorCode: "RUS"},
		{SearchText: "kyiv", Severities: []domain.Severity{domain.SeverityCritical}},
		{StartDate: "2022-03-01", EndDate: "2022-04-30", Type: "sabotage"},
		{Severities: []domain.Severity{domain.SeverityMedium, domain.SeverityHigh}},
	}

	for _, c := range criteria {
		once := filter.Apply(events, c, nil)
		twice := filter.Apply(once, c, nil)
		assert.Equal(t, once, twice, "criteria %+v", c)
	}
}

func TestApply_EmptySeveritySetIsNoFilter(t *testing.T) {
	events := fixture(t)

	withNil := filter.Apply(events, filter.Criteria{ActorCode: "RUS"}, nil)
	withEmpty := filter.Apply(events, filter.Criteria{ActorCode: "RUS", Severities: []domain.Severity{}}, nil)
	assert.Equal(t, withNil, withEmpty)
}

func TestApply_ReturnsNewSlice(t *testing.T) {
	events := fixture(t)
	before := ids(events)

	out := filter.Apply(events, filter.Criteria{}, nil)
	require.Len(t, out, len(events))
	out[0].Title = "changed"
	assert.NotEqual(t, "changed", events[0].Title)
	assert.Equal(t, before, ids(events))

	empty := filter.Apply(events, filter.Criteria{Type: "none"}, nil)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	assert.NotNil(t, filter.Apply(nil, filter.Criteria{}, nil))
}

func TestApply_Totality(t *testing.T) {
	events := fixture(t)
	inputs := []filter.Criteria{
		{StartDate: "\x00", EndDate: "99/99/9999"},
		{SearchText: "(["},
		{SearchText: "ü", Severities: []domain.Severity{""}},
		{StartDate: "2022-02-30", EndDate: "0/0/0"},
	}
	for _, c := range inputs {
		assert.NotPanics(t, func() { filter.Apply(events, c, nil) }, "criteria %+v", c)
	}
}

func TestEngine_Location(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*3600)
	ev := domain.Event{ID: "late", Timestamp: time.Date(2022, 2, 24, 22, 0, 0, 0, time.UTC).UnixMilli()}

	utc := filter.NewEngine(domain.DateParser{}, nil)
	local := filter.NewEngine(domain.DateParser{Location: loc}, nil)

	c := filter.Criteria{StartDate: "2022-02-24", EndDate: "2022-02-24"}
	assert.Len(t, utc.Apply([]domain.Event{ev}, c), 1)
	// 22:00 UTC is already 25 Feb at UTC+3.
	assert.Empty(t, local.Apply([]domain.Event{ev}, c))
}

func TestEngine_CustomSynonyms(t *testing.T) {
	dict := domain.NewDictionary(map[string]string{"mariupol'": "mariupol"})
	e := filter.NewEngine(domain.DateParser{}, dict)

	events := []domain.Event{{ID: "m", SearchBlob: "siege of mariupol"}}
	assert.Len(t, e.Apply(events, filter.Criteria{SearchText: "Mariupol'"}), 1)
	assert.Empty(t, filter.Apply(events, filter.Criteria{SearchText: "Mariupol'"}, nil))
}
