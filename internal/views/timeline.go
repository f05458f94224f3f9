package views

import (
	"context"
	"strings"
	"time"

	"github.com/couchcryptid/conflict-dashboard/internal/domain"
)

// Timeline renders the subset as a TimelineJS document.
type Timeline struct {
	Headline string
	location *time.Location
	doc      domain.TimelineDocument
	failure  error
}

// NewTimeline creates a timeline view. Slide dates are calendar days in loc
// (UTC when nil).
func NewTimeline(headline string, loc *time.Location) *Timeline {
	if loc == nil {
		loc = time.UTC
	}
	return &Timeline{Headline: headline, location: loc}
}

func (t *Timeline) Name() string { return "timeline" }

func (t *Timeline) Render(_ context.Context, events []domain.Event) error {
	t.failure = nil
	t.doc = BuildTimeline(t.Headline, events, t.location)
	return nil
}

// ShowFailure keeps the load error so the page can show it in place of the
// timeline.
func (t *Timeline) ShowFailure(err error) { t.failure = err }

// Document returns the last rendered document.
func (t *Timeline) Document() domain.TimelineDocument { return t.doc }

// Failure returns the last load failure, cleared by the next render.
func (t *Timeline) Failure() error { return t.failure }

// Empty reports whether there is nothing to show.
func (t *Timeline) Empty() bool { return len(t.doc.Events) == 0 }

// BuildTimeline converts events into a TimelineJS document, one slide per
// event in input order. Coordinates, actor and intensity ride along so the
// document can be loaded back as a data source.
func BuildTimeline(headline string, events []domain.Event, loc *time.Location) domain.TimelineDocument {
	if loc == nil {
		loc = time.UTC
	}
	doc := domain.TimelineDocument{Events: make([]domain.TimelineEvent, 0, len(events))}
	if headline != "" {
		doc.Title = &domain.TimelineSlide{Text: domain.TimelineText{Headline: headline}}
	}
	for _, e := range events {
		day := e.Time().In(loc)
		slide := domain.TimelineEvent{
			StartDate: domain.TimelineDate{Year: day.Year(), Month: int(day.Month()), Day: day.Day()},
			Text: domain.TimelineText{
				Headline: e.Title,
				Text:     slideText(e),
			},
			Group:     e.Type,
			Lat:       e.Lat,
			Lon:       e.Lon,
			ActorCode: e.ActorCode,
			Intensity: e.IntensityNorm,
		}
		if e.Video != "" {
			slide.Media = &domain.TimelineMedia{URL: e.Video, Caption: e.Link}
		}
		doc.Events = append(doc.Events, slide)
	}
	return doc
}

func slideText(e domain.Event) string {
	parts := []string{"Type: " + e.Type, "Actor: " + e.ActorCode}
	if e.Location != "" {
		parts = append(parts, "Location: "+e.Location)
	}
	if e.Description != "" {
		parts = append(parts, e.Description)
	}
	return strings.Join(parts, "<br>")
}
