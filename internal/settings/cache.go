package settings

import (
	"context"
	"sync/atomic"

	"github.com/go-faster/errors"
)

// Cache caches the settings snapshot behind an atomic pointer. Reads take no
// lock; Invalidate drops the snapshot so the next read refetches. Callers
// must invalidate whenever the external configuration is edited.
type Cache struct {
	repo Repository
	cur  atomic.Pointer[Settings]
}

// NewCache creates a Cache over the given repository.
func NewCache(repo Repository) *Cache {
	return &Cache{repo: repo}
}

// Get returns the cached snapshot, fetching it from the repository on a
// cache miss. Concurrent misses may fetch more than once; the last write
// wins, which is harmless for an immutable snapshot.
func (c *Cache) Get(ctx context.Context) (*Settings, error) {
	if s := c.cur.Load(); s != nil {
		return s, nil
	}

	s, err := c.repo.Get(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "fetch shop settings")
	}
	c.cur.Store(s)
	return s, nil
}

// Invalidate drops the cached snapshot.
func (c *Cache) Invalidate() {
	c.cur.Store(nil)
}
