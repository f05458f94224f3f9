package dashboard

import (
	"container/list"
	"sync"

	"github.com/couchcryptid/conflict-dashboard/internal/domain"
)

// queryCache is a bounded LRU of filter results keyed by Criteria.Key.
// Callers own the cloning; stored slices are never handed out directly.
type queryCache struct {
	mu    sync.Mutex
	limit int
	order *list.List               // most recent at front
	byKey map[string]*list.Element // criteria key -> element
}

type cachedResult struct {
	key    string
	events []domain.Event
}

func newQueryCache(limit int) *queryCache {
	return &queryCache{
		limit: limit,
		order: list.New(),
		byKey: make(map[string]*list.Element, limit),
	}
}

func (c *queryCache) get(key string) ([]domain.Event, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.byKey[key]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(el)
	return el.Value.(cachedResult).events, true
}

func (c *queryCache) put(key string, events []domain.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.byKey[key]; ok {
		el.Value = cachedResult{key: key, events: events}
		c.order.MoveToFront(el)
		return
	}

	c.byKey[key] = c.order.PushFront(cachedResult{key: key, events: events})
	for c.order.Len() > c.limit {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.byKey, oldest.Value.(cachedResult).key)
	}
}

func (c *queryCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
