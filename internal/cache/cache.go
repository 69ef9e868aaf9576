package cache

import (
	"sync"
	"time"

	"github.com/spinspot/server/internal/models"
)

const (
	// DefaultTTL is how long a stored search result stays servable.
	DefaultTTL = 10 * time.Minute
	// DefaultMaxEntries bounds the cache for long-running processes.
	DefaultMaxEntries = 512
)

// SearchKey is the fingerprint of an event search. The caller's location is
// intentionally not part of the key: a cached payload is shared across
// callers and distances are recomputed per request.
type SearchKey struct {
	Name      string
	Category  string
	Timeframe string
	Scope     string
}

type entry struct {
	events   []models.Event
	storedAt time.Time
}

// ResultCache is a TTL-bounded map of search results. Reads of logically
// expired entries behave as misses; the entry is dropped lazily at that
// point rather than by a background sweep.
type ResultCache struct {
	mu         sync.Mutex
	entries    map[SearchKey]entry
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
}

// Option configures a ResultCache.
type Option func(*ResultCache)

// WithTTL overrides the default freshness window.
func WithTTL(ttl time.Duration) Option {
	return func(c *ResultCache) { c.ttl = ttl }
}

// WithMaxEntries overrides the eviction bound.
func WithMaxEntries(n int) Option {
	return func(c *ResultCache) { c.maxEntries = n }
}

// WithClock overrides the time source. Tests only.
func WithClock(now func() time.Time) Option {
	return func(c *ResultCache) { c.now = now }
}

// New creates an empty ResultCache.
func New(opts ...Option) *ResultCache {
	c := &ResultCache{
		entries:    make(map[SearchKey]entry),
		ttl:        DefaultTTL,
		maxEntries: DefaultMaxEntries,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the stored payload for key if it is still fresh.
func (c *ResultCache) Get(key SearchKey) ([]models.Event, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().Sub(e.storedAt) > c.ttl {
		delete(c.entries, key)
		return nil, false
	}
	return e.events, true
}

// Put stores events under key, unconditionally replacing any prior entry.
// When the cache is at capacity the oldest entry is evicted first.
func (c *ResultCache) Put(key SearchKey, events []models.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxEntries {
		c.evictOldestLocked()
	}
	c.entries[key] = entry{events: events, storedAt: c.now()}
}

// Clear drops every entry. Intended for test isolation.
func (c *ResultCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[SearchKey]entry)
}

// Len returns the number of stored entries, expired or not.
func (c *ResultCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *ResultCache) evictOldestLocked() {
	var oldestKey SearchKey
	var oldestAt time.Time
	first := true
	for k, e := range c.entries {
		if first || e.storedAt.Before(oldestAt) {
			oldestKey = k
			oldestAt = e.storedAt
			first = false
		}
	}
	if !first {
		delete(c.entries, oldestKey)
	}
}
