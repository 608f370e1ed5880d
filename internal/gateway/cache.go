package gateway

import (
	"context"
	"sync"
	"time"
)

// memoryCache is the gateway's private freshness cache. Entries older
// than the freshness window are invisible to reads; a periodic sweep
// removes them so memory stays bounded even for keys never re-requested.
type memoryCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]cacheEntry
	now     func() time.Time
}

type cacheEntry struct {
	payload  any
	storedAt time.Time
}

func newMemoryCache(ttl time.Duration) *memoryCache {
	return &memoryCache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

func (c *memoryCache) get(key string) (any, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || c.now().Sub(e.storedAt) >= c.ttl {
		return nil, false
	}
	return e.payload, true
}

func (c *memoryCache) set(key string, payload any) {
	c.mu.Lock()
	c.entries[key] = cacheEntry{payload: payload, storedAt: c.now()}
	c.mu.Unlock()
}

func (c *memoryCache) sweep() int {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for k, e := range c.entries {
		if now.Sub(e.storedAt) >= c.ttl {
			delete(c.entries, k)
			removed++
		}
	}
	return removed
}

// StartSweeper runs the expired-entry sweep on a fixed interval until the
// context is cancelled.
func (g *Gateway) StartSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		for {
			select {
			case <-ctx.Done():
				ticker.Stop()
				return
			case <-ticker.C:
				if n := g.cache.sweep(); n > 0 {
					g.logger.Debug("cache sweep", "removed", n)
				}
			}
		}
	}()
}
