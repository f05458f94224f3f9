package views

import (
	"context"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/couchcryptid/conflict-dashboard/internal/domain"
)

// Bucket is one labelled count.
type Bucket struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// CategoryIntensity is the mean intensity of one event type.
type CategoryIntensity struct {
	Category string  `json:"category"`
	Mean     float64 `json:"mean"`
}

// Charts aggregates the subset for the analytics panel.
type Charts struct {
	location   *time.Location
	monthly    []Bucket
	categories []Bucket
	intensity  []CategoryIntensity
}

// NewCharts creates a charts view whose months are calendar months in loc
// (UTC when nil).
func NewCharts(loc *time.Location) *Charts {
	if loc == nil {
		loc = time.UTC
	}
	return &Charts{location: loc}
}

func (c *Charts) Name() string { return "charts" }

func (c *Charts) Render(_ context.Context, events []domain.Event) error {
	c.monthly = monthlyHistogram(events, c.location)
	c.categories, c.intensity = categoryStats(events)
	return nil
}

// Monthly returns event counts per YYYY-MM, ascending.
func (c *Charts) Monthly() []Bucket { return c.monthly }

// Categories returns event counts per type in first-seen order.
func (c *Charts) Categories() []Bucket { return c.categories }

// Intensity returns the mean intensity per type, rounded to two decimals,
// in first-seen order. It is empty for an empty subset.
func (c *Charts) Intensity() []CategoryIntensity { return c.intensity }

func monthlyHistogram(events []domain.Event, loc *time.Location) []Bucket {
	if loc == nil {
		loc = time.UTC
	}
	counts := make(map[string]int)
	for _, e := range events {
		counts[e.Time().In(loc).Format("2006-01")]++
	}
	out := make([]Bucket, 0, len(counts))
	for label, n := range counts {
		out = append(out, Bucket{Label: label, Count: n})
	}
	slices.SortFunc(out, func(a, b Bucket) int { return strings.Compare(a.Label, b.Label) })
	return out
}

func categoryStats(events []domain.Event) ([]Bucket, []CategoryIntensity) {
	type stat struct {
		count int
		sum   float64
	}
	var order []string
	stats := make(map[string]*stat)
	for _, e := range events {
		s, ok := stats[e.Type]
		if !ok {
			s = &stat{}
			stats[e.Type] = s
			order = append(order, e.Type)
		}
		s.count++
		s.sum += e.IntensityNorm
	}

	buckets := make([]Bucket, 0, len(order))
	means := make([]CategoryIntensity, 0, len(order))
	for _, t := range order {
		s := stats[t]
		buckets = append(buckets, Bucket{Label: t, Count: s.count})
		means = append(means, CategoryIntensity{Category: t, Mean: math.Round(s.sum/float64(s.count)*100) / 100})
	}
	return buckets, means
}
