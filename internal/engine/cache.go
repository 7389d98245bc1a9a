package engine

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// DefaultCacheTTL is how long a snapshot is served before the next
// Snapshot call triggers a reload.
const DefaultCacheTTL = 5 * time.Minute

// Cache holds the last-loaded catalog snapshot and refreshes it through
// the injected Loader once it is older than TTL. The snapshot pointer is
// swapped atomically under the write lock, so readers never observe a
// half-updated item list.
type Cache struct {
	loader Loader
	ttl    time.Duration
	now    func() time.Time

	mu       sync.RWMutex
	snapshot *Snapshot
}

// NewCache creates a Cache around the given loader. A zero ttl means
// DefaultCacheTTL; now defaults to time.Now and is injectable for tests.
func NewCache(loader Loader, ttl time.Duration, now func() time.Time) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if now == nil {
		now = time.Now
	}
	return &Cache{loader: loader, ttl: ttl, now: now}
}

// Snapshot returns the current snapshot, reloading synchronously if it is
// stale or was never loaded. On loader failure the previous snapshot (nil
// if none) is returned together with the error; the cache does not retry.
// Concurrent stale readers are de-duplicated: only one reload runs, the
// rest block and reuse its result.
func (c *Cache) Snapshot(ctx context.Context) (*Snapshot, error) {
	c.mu.RLock()
	snap := c.snapshot
	c.mu.RUnlock()
	if c.fresh(snap) {
		return snap, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Another caller may have finished the reload while we waited.
	if c.fresh(c.snapshot) {
		return c.snapshot, nil
	}

	items, err := c.loader(ctx)
	if err != nil {
		return c.snapshot, fmt.Errorf("cache: reload catalog: %w", err)
	}
	for _, p := range items {
		if verr := p.Validate(); verr != nil {
			return c.snapshot, fmt.Errorf("cache: reload catalog: %w", verr)
		}
	}

	c.snapshot = &Snapshot{Items: items, LoadedAt: c.now()}
	return c.snapshot, nil
}

// Invalidate forces the next Snapshot call to reload regardless of age.
// Called when an upstream catalog-change notification arrives; the reload
// itself happens lazily, not inline.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.snapshot != nil {
		c.snapshot = &Snapshot{Items: c.snapshot.Items}
	}
}

func (c *Cache) fresh(s *Snapshot) bool {
	return s != nil && c.now().Sub(s.LoadedAt) < c.ttl
}
