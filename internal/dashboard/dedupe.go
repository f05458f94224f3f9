package dashboard

import (
	"sort"
	"strconv"
	"time"

	"github.com/couchcryptid/conflict-dashboard/internal/domain"
)

// dedupeAcrossSources drops events that repeat an event from an earlier
// source: same calendar day in loc, same coordinates, same title. offsets
// holds the first record index of each source, ascending. Repeats inside a
// single source are kept. The returned slice preserves the input order.
func dedupeAcrossSources(events []domain.Event, offsets []int, loc *time.Location) ([]domain.Event, []domain.Event) {
	if len(offsets) < 2 {
		return events, nil
	}
	if loc == nil {
		loc = time.UTC
	}

	first := make(map[string]int, len(events))
	for _, e := range events {
		k, src := eventKey(e, loc), sourceOf(e.Index, offsets)
		if prev, ok := first[k]; !ok || src < prev {
			first[k] = src
		}
	}

	kept := make([]domain.Event, 0, len(events))
	var dropped []domain.Event
	for _, e := range events {
		if sourceOf(e.Index, offsets) > first[eventKey(e, loc)] {
			dropped = append(dropped, e)
			continue
		}
		kept = append(kept, e)
	}
	return kept, dropped
}

func eventKey(e domain.Event, loc *time.Location) string {
	return e.Time().In(loc).Format(time.DateOnly) + "|" +
		strconv.FormatFloat(e.Lat, 'f', -1, 64) + "|" +
		strconv.FormatFloat(e.Lon, 'f', -1, 64) + "|" +
		e.Title
}

func sourceOf(index int, offsets []int) int {
	return sort.SearchInts(offsets, index+1) - 1
}
