package resolver

import (
	"context"
	"sync"

	"github.com/osa030/playline/internal/domain/item"
)

// Cached memoizes successful resolutions by item ID so replays skip the
// backend round trip. Failures are never cached.
type Cached struct {
	inner Resolver

	mu   sync.Mutex
	byID map[string]Resolution
}

// NewCached wraps a resolver with a memoization layer.
func NewCached(inner Resolver) *Cached {
	return &Cached{
		inner: inner,
		byID:  make(map[string]Resolution),
	}
}

// Resolve returns the cached resolution when available, otherwise defers
// to the wrapped resolver.
func (c *Cached) Resolve(ctx context.Context, it item.Item) (Resolution, error) {
	c.mu.Lock()
	if res, ok := c.byID[it.ID]; ok {
		c.mu.Unlock()
		return res, nil
	}
	c.mu.Unlock()

	res, err := c.inner.Resolve(ctx, it)
	if err != nil {
		return Resolution{}, err
	}

	c.mu.Lock()
	c.byID[it.ID] = res
	c.mu.Unlock()
	return res, nil
}

// Invalidate drops the cached resolution for an item.
func (c *Cached) Invalidate(id string) {
	c.mu.Lock()
	delete(c.byID, id)
	c.mu.Unlock()
}
