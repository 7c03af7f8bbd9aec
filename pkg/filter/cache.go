package filter

import (
	"sync"
	"time"

	"github.com/dhatukala/dhatukala/pkg/models"
)

// DefaultTTL is how long a cached result stays valid.
const DefaultTTL = 5 * time.Minute

type cacheEntry struct {
	products []models.Product
	storedAt time.Time
}

// ResultCache memoizes filtered product lists by canonical cache key so an
// unchanged filter state never triggers a recomputation or refetch within
// the TTL. Expiry is lazy: stale entries are evicted when Get encounters
// them, not by a background sweep. The cache is session-scoped and held in
// memory only; key growth is bounded by the enumerations and the TTL.
type ResultCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	ttl     time.Duration
	now     func() time.Time
}

// CacheOption configures a ResultCache.
type CacheOption func(*ResultCache)

// WithTTL overrides the entry time-to-live.
func WithTTL(ttl time.Duration) CacheOption {
	return func(c *ResultCache) { c.ttl = ttl }
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) CacheOption {
	return func(c *ResultCache) { c.now = now }
}

// NewResultCache creates an empty cache with the default 5 minute TTL.
func NewResultCache(opts ...CacheOption) *ResultCache {
	c := &ResultCache{
		entries: make(map[string]cacheEntry),
		ttl:     DefaultTTL,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the stored result for the state, if one exists and has not
// expired. An expired entry is evicted on the way out.
func (c *ResultCache) Get(s State) ([]models.Product, bool) {
	key := Key(s)

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if !c.fresh(entry) {
		delete(c.entries, key)
		return nil, false
	}

	cp := make([]models.Product, len(entry.products))
	copy(cp, entry.products)
	return cp, true
}

// Set stores the results for the state, overwriting any prior entry and
// restarting its TTL.
func (c *ResultCache) Set(s State, products []models.Product) {
	cp := make([]models.Product, len(products))
	copy(cp, products)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[Key(s)] = cacheEntry{products: cp, storedAt: c.now()}
}

// Has reports whether a non-expired entry exists for the state, without
// extending or evicting it.
func (c *ResultCache) Has(s State) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[Key(s)]
	return ok && c.fresh(entry)
}

// Clear evicts everything unconditionally.
func (c *ResultCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}

func (c *ResultCache) fresh(entry cacheEntry) bool {
	return c.now().Sub(entry.storedAt) < c.ttl
}
