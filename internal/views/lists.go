package views

import (
	"context"
	"strings"

	"github.com/couchcryptid/conflict-dashboard/internal/domain"
)

// List caps, newest events first.
const (
	KanbanLimit  = 100
	FeedLimit    = 100
	GalleryLimit = 50
)

// Kanban columns.
const (
	ColumnGround = "ground"
	ColumnAir    = "air"
	ColumnStrat  = "strat"
)

// KanbanColumns lists the columns in display order.
var KanbanColumns = []string{ColumnGround, ColumnAir, ColumnStrat}

// Card is a kanban card.
type Card struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Type      string          `json:"type"`
	ActorCode string          `json:"actor_code"`
	Timestamp int64           `json:"timestamp"`
	Severity  domain.Severity `json:"severity"`
	Border    string          `json:"border"`
}

// Kanban sorts the newest events into ground, air and strategic columns by
// keywords in their type.
type Kanban struct {
	columns map[string][]Card
}

func (k *Kanban) Name() string { return "kanban" }

func (k *Kanban) Render(_ context.Context, events []domain.Event) error {
	k.columns = make(map[string][]Card, len(KanbanColumns))
	for _, e := range newestFirst(events, KanbanLimit) {
		sev := e.Severity()
		col := KanbanColumn(e.Type)
		k.columns[col] = append(k.columns[col], Card{
			ID:        e.ID,
			Title:     e.Title,
			Type:      e.Type,
			ActorCode: e.ActorCode,
			Timestamp: e.Timestamp,
			Severity:  sev,
			Border:    Border(sev),
		})
	}
	return nil
}

// Column returns the cards of one column.
func (k *Kanban) Column(name string) []Card { return k.columns[name] }

// Counts returns the number of cards per column.
func (k *Kanban) Counts() map[string]int {
	out := make(map[string]int, len(KanbanColumns))
	for _, c := range KanbanColumns {
		out[c] = len(k.columns[c])
	}
	return out
}

// KanbanColumn classifies an event type: aerial keywords go to air, civil,
// infrastructure and political ones to strat, the rest to ground.
func KanbanColumn(eventType string) string {
	t := strings.ToLower(eventType)
	switch {
	case containsAny(t, "air", "drone", "missile", "strike"):
		return ColumnAir
	case containsAny(t, "civil", "infrastr", "politic"):
		return ColumnStrat
	default:
		return ColumnGround
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// FeedItem is one row of the intel feed.
type FeedItem struct {
	ID          string  `json:"id"`
	Timestamp   int64   `json:"timestamp"`
	ActorCode   string  `json:"actor_code"`
	Title       string  `json:"title"`
	Type        string  `json:"type"`
	Description string  `json:"description,omitempty"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	HasVideo    bool    `json:"has_video"`
}

// Feed is the intel list with a detail pane.
type Feed struct {
	items []FeedItem
}

func (f *Feed) Name() string { return "feed" }

func (f *Feed) Render(_ context.Context, events []domain.Event) error {
	recent := newestFirst(events, FeedLimit)
	f.items = make([]FeedItem, 0, len(recent))
	for _, e := range recent {
		f.items = append(f.items, FeedItem{
			ID:          e.ID,
			Timestamp:   e.Timestamp,
			ActorCode:   e.ActorCode,
			Title:       e.Title,
			Type:        e.Type,
			Description: e.Description,
			Lat:         e.Lat,
			Lon:         e.Lon,
			HasVideo:    e.Video != "",
		})
	}
	return nil
}

// Items returns the feed rows, newest first.
func (f *Feed) Items() []FeedItem { return f.items }

// Detail returns the feed row with the given ID.
func (f *Feed) Detail(id string) (FeedItem, bool) {
	for _, it := range f.items {
		if it.ID == id {
			return it, true
		}
	}
	return FeedItem{}, false
}

// Tile is one gallery tile. Image is empty when the event has no before image.
type Tile struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Timestamp int64  `json:"timestamp"`
	Image     string `json:"image,omitempty"`
}

// Gallery shows the newest events as image tiles.
type Gallery struct {
	tiles []Tile
}

func (g *Gallery) Name() string { return "gallery" }

func (g *Gallery) Render(_ context.Context, events []domain.Event) error {
	recent := newestFirst(events, GalleryLimit)
	g.tiles = make([]Tile, 0, len(recent))
	for _, e := range recent {
		g.tiles = append(g.tiles, Tile{ID: e.ID, Title: e.Title, Timestamp: e.Timestamp, Image: e.BeforeImg})
	}
	return nil
}

// Tiles returns the gallery tiles, newest first.
func (g *Gallery) Tiles() []Tile { return g.tiles }
