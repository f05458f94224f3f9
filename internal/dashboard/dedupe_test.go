package dashboard

import (
	"testing"
	"time"

	"github.com/couchcryptid/conflict-dashboard/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestDedupeAcrossSources(t *testing.T) {
	morning := time.Date(2023, 6, 6, 8, 0, 0, 0, time.UTC).UnixMilli()
	midnight := time.Date(2023, 6, 6, 0, 0, 0, 0, time.UTC).UnixMilli()
	nextDay := time.Date(2023, 6, 7, 0, 0, 0, 0, time.UTC).UnixMilli()
	ev := func(id string, index int, ts int64, lat float64, title string) domain.Event {
		return domain.Event{ID: id, Index: index, Timestamp: ts, Lat: lat, Lon: 33.37, Title: title}
	}

	tests := []struct {
		name     string
		events   []domain.Event
		offsets  []int
		kept     []string
		repeated []string
	}{
		{
			name:    "single source keeps repeats",
			events:  []domain.Event{ev("a", 0, morning, 46.77, "Dam breach"), ev("b", 1, morning, 46.77, "Dam breach")},
			offsets: []int{0},
			kept:    []string{"a", "b"},
		},
		{
			name:     "same day in later source is dropped",
			events:   []domain.Event{ev("tl", 2, midnight, 46.77, "Dam breach"), ev("geo", 0, morning, 46.77, "Dam breach")},
			offsets:  []int{0, 2},
			kept:     []string{"geo"},
			repeated: []string{"tl"},
		},
		{
			name:    "different day is distinct",
			events:  []domain.Event{ev("geo", 0, morning, 46.77, "Dam breach"), ev("tl", 1, nextDay, 46.77, "Dam breach")},
			offsets: []int{0, 1},
			kept:    []string{"geo", "tl"},
		},
		{
			name:    "different place is distinct",
			events:  []domain.Event{ev("geo", 0, morning, 46.77, "Dam breach"), ev("tl", 1, morning, 46.78, "Dam breach")},
			offsets: []int{0, 1},
			kept:    []string{"geo", "tl"},
		},
		{
			name:    "different title is distinct",
			events:  []domain.Event{ev("geo", 0, morning, 46.77, "Dam breach"), ev("tl", 1, morning, 46.77, "Flooding")},
			offsets: []int{0, 1},
			kept:    []string{"geo", "tl"},
		},
		{
			name:     "empty middle source",
			events:   []domain.Event{ev("geo", 0, morning, 46.77, "Dam breach"), ev("tl", 1, morning, 46.77, "Dam breach")},
			offsets:  []int{0, 1, 1},
			kept:     []string{"geo"},
			repeated: []string{"tl"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kept, repeated := dedupeAcrossSources(tt.events, tt.offsets, nil)
			assert.Equal(t, tt.kept, storeIDs(kept))
			if tt.repeated == nil {
				assert.Empty(t, repeated)
				return
			}
			assert.Equal(t, tt.repeated, storeIDs(repeated))
		})
	}
}

func TestDedupeAcrossSources_DayUsesLocation(t *testing.T) {
	kyiv, err := time.LoadLocation("Europe/Kyiv")
	if err != nil {
		t.Skip("tzdata not available")
	}
	// 22:30 UTC on the 5th is already the 6th in Kyiv.
	late := time.Date(2023, 6, 5, 22, 30, 0, 0, time.UTC).UnixMilli()
	noon := time.Date(2023, 6, 6, 12, 0, 0, 0, time.UTC).UnixMilli()
	events := []domain.Event{
		{ID: "geo", Index: 0, Timestamp: late, Lat: 46.77, Lon: 33.37, Title: "Dam breach"},
		{ID: "tl", Index: 1, Timestamp: noon, Lat: 46.77, Lon: 33.37, Title: "Dam breach"},
	}

	kept, _ := dedupeAcrossSources(events, []int{0, 1}, kyiv)
	assert.Equal(t, []string{"geo"}, storeIDs(kept))

	kept, _ = dedupeAcrossSources(events, []int{0, 1}, time.UTC)
	assert.Equal(t, []string{"geo", "tl"}, storeIDs(kept))
}
