package filter

import (
	"slices"
	"time"

	"github.com/couchcryptid/conflict-dashboard/internal/domain"
)

// Window describes the playback position over a filtered subset. Min and Max
// are the subset's timestamp bounds; Cursor is the current upper bound. When
// Live is set the cursor follows Max and the whole subset is visible.
type Window struct {
	Min    int64 `json:"min"`
	Max    int64 `json:"max"`
	Cursor int64 `json:"cursor"`
	Live   bool  `json:"live"`
}

// WindowAt returns the events of subset at or before cursor, in input order.
func WindowAt(subset []domain.Event, cursor int64) []domain.Event {
	out := make([]domain.Event, 0, len(subset))
	for _, ev := range subset {
		if ev.Timestamp <= cursor {
			out = append(out, ev)
		}
	}
	return out
}

// Player moves a time cursor over the current filtered subset.
type Player struct {
	subset []domain.Event
	win    Window
}

// NewPlayer returns an empty live player.
func NewPlayer() *Player {
	return &Player{win: Window{Live: true}}
}

// Reset replaces the subset, recomputes the bounds and returns to live.
func (p *Player) Reset(subset []domain.Event) Window {
	p.subset = subset
	p.win = Window{Live: true}
	for i, ev := range subset {
		if i == 0 || ev.Timestamp < p.win.Min {
			p.win.Min = ev.Timestamp
		}
		if i == 0 || ev.Timestamp > p.win.Max {
			p.win.Max = ev.Timestamp
		}
	}
	p.win.Cursor = p.win.Max
	return p.win
}

// Seek moves the cursor to ts, clamped to the subset bounds, and leaves live
// mode.
func (p *Player) Seek(ts int64) Window {
	p.win.Cursor = min(max(ts, p.win.Min), p.win.Max)
	p.win.Live = false
	return p.win
}

// Advance moves the cursor by step. Moving past the last event returns to
// live; moving before the first event clamps to it.
func (p *Player) Advance(step time.Duration) Window {
	next := p.win.Cursor + step.Milliseconds()
	if next > p.win.Max {
		return p.GoLive()
	}
	return p.Seek(next)
}

// GoLive shows the full subset again.
func (p *Player) GoLive() Window {
	p.win.Cursor = p.win.Max
	p.win.Live = true
	return p.win
}

// Bounds returns the current window.
func (p *Player) Bounds() Window {
	return p.win
}

// Current returns a copy of the visible events: the full subset when live,
// otherwise the events at or before the cursor.
func (p *Player) Current() []domain.Event {
	if p.win.Live {
		return slices.Clone(p.subset)
	}
	return WindowAt(p.subset, p.win.Cursor)
}
