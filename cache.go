package prefs

import (
	"time"

	"github.com/lightningnetwork/lnd/clock"
	"github.com/puzpuzpuz/xsync/v3"
)

// Cache is an explicit, injectable read cache for field values, keyed by
// field key + store identity. Attach it to fields via WithCache; every write
// path through a field or a batch invalidates the touched entries. There is
// no ambient global cache.
//
// A non-positive TTL means entries never expire and are dropped only by
// invalidation.
type Cache struct {
	ttl time.Duration
	clk clock.Clock
	m   *xsync.MapOf[cacheKey, cacheEntry]
}

type cacheKey struct {
	store any
	key   string
}

type cacheEntry struct {
	value   any
	expires time.Time
}

func NewCache(ttl time.Duration) *Cache {
	return NewCacheWithClock(ttl, clock.NewDefaultClock())
}

// NewCacheWithClock is NewCache with an injectable time source for tests.
func NewCacheWithClock(ttl time.Duration, clk clock.Clock) *Cache {
	return &Cache{
		ttl: ttl,
		clk: clk,
		m:   xsync.NewMapOf[cacheKey, cacheEntry](),
	}
}

// Invalidate drops the entry for one field of one store.
func (c *Cache) Invalidate(store any, key string) {
	c.m.Delete(cacheKey{store, key})
}

// InvalidateStore drops all entries belonging to one store.
func (c *Cache) InvalidateStore(store any) {
	c.m.Range(func(k cacheKey, _ cacheEntry) bool {
		if k.store == store {
			c.m.Delete(k)
		}
		return true
	})
}

// InvalidateAll drops every entry.
func (c *Cache) InvalidateAll() {
	c.m.Clear()
}

func (c *Cache) Len() int {
	return c.m.Size()
}

func cacheGet[F any](c *Cache, store any, key string) (F, bool) {
	var zero F
	e, ok := c.m.Load(cacheKey{store, key})
	if !ok {
		return zero, false
	}
	if c.ttl > 0 && c.clk.Now().After(e.expires) {
		c.m.Delete(cacheKey{store, key})
		return zero, false
	}
	v, ok := e.value.(F)
	return v, ok
}

func cachePut[F any](c *Cache, store any, key string, value F) {
	var expires time.Time
	if c.ttl > 0 {
		expires = c.clk.Now().Add(c.ttl)
	}
	c.m.Store(cacheKey{store, key}, cacheEntry{value, expires})
}
