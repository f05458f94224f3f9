package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"slices"

	"github.com/couchcryptid/conflict-dashboard/internal/domain"
	"github.com/couchcryptid/conflict-dashboard/internal/observability"
)

// ErrViewAbsent is returned by a view whose target is not on the current
// page. Publishing treats it as a no-op.
var ErrViewAbsent = errors.New("view absent")

// View renders one published subset.
type View interface {
	Name() string
	Render(ctx context.Context, events []domain.Event) error
}

// Counter receives the size of each published subset.
type Counter interface {
	SetCount(n int)
}

// FailureView is implemented by views that can show a load failure.
type FailureView interface {
	ShowFailure(err error)
}

// Views is the set of registered views. Any of them may be nil.
type Views struct {
	Counter  Counter
	Map      View
	Charts   View
	Lists    []View // feed, kanban, gallery, ... in registration order
	Timeline View
}

// ordered returns the views in publish order, skipping nil entries.
func (v Views) ordered() []View {
	out := make([]View, 0, 3+len(v.Lists))
	for _, view := range append([]View{v.Map, v.Charts}, v.Lists...) {
		if view != nil {
			out = append(out, view)
		}
	}
	if v.Timeline != nil {
		out = append(out, v.Timeline)
	}
	return out
}

// Synchronizer fans a filtered subset out to every registered view in a fixed
// order: counter, map, charts, lists, timeline.
type Synchronizer struct {
	views   Views
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewSynchronizer creates a Synchronizer over views.
func NewSynchronizer(views Views, logger *slog.Logger, metrics *observability.Metrics) *Synchronizer {
	return &Synchronizer{views: views, logger: logger, metrics: metrics}
}

// Publish hands each view its own copy of subset. A failing view is logged
// and counted and does not stop the others. Publishing stops early only when
// ctx is done.
func (s *Synchronizer) Publish(ctx context.Context, subset []domain.Event) error {
	if s.views.Counter != nil {
		s.views.Counter.SetCount(len(subset))
	}

	for _, v := range s.views.ordered() {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := v.Render(ctx, slices.Clone(subset))
		switch {
		case err == nil:
			s.metrics.ViewPublishes.WithLabelValues(v.Name(), "ok").Inc()
		case errors.Is(err, ErrViewAbsent):
			s.metrics.ViewPublishes.WithLabelValues(v.Name(), "absent").Inc()
		default:
			s.metrics.ViewPublishes.WithLabelValues(v.Name(), "error").Inc()
			s.logger.Warn("view render failed, continuing",
				"view", v.Name(),
				"events", len(subset),
				"error", err,
			)
		}
	}
	return nil
}

// PublishFailure forwards a load failure to every view that can display it.
func (s *Synchronizer) PublishFailure(_ context.Context, err error) {
	if fv, ok := s.views.Counter.(FailureView); ok {
		fv.ShowFailure(err)
	}
	for _, v := range s.views.ordered() {
		if fv, ok := v.(FailureView); ok {
			fv.ShowFailure(err)
		}
	}
}
