// Package ttlcache provides a generic, time-bounded key/value cache with
// expiration on read. Expired entries are never evicted implicitly: they are
// reported as absent and stay in the underlying store until overwritten,
// cleared or explicitly pruned.
package ttlcache

import (
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/moodflix/moodflix/internal/metrics"
)

// Entry is a cached value with the time it was stored.
type Entry[V any] struct {
	Value      V         `json:"value"`
	InsertedAt time.Time `json:"inserted_at"`
}

// Store is the physical storage behind a Cache. Implementations must be safe
// for concurrent use; they know nothing about expiry.
type Store[V any] interface {
	Load(key string) (Entry[V], bool, error)
	Save(key string, entry Entry[V]) error
	Delete(key string) error
	Clear() error
	Keys() ([]string, error)
}

// pruner is implemented by stores that can drop old entries in bulk.
type pruner interface {
	PruneBefore(cutoff time.Time) (int64, error)
}

// Stats describes the physical contents of a cache, expired entries included.
type Stats struct {
	Size int      `json:"size"`
	Keys []string `json:"keys"`
}

// Cache maps string keys to values that are visible for ttl after insertion.
type Cache[V any] struct {
	name    string
	ttl     time.Duration
	store   Store[V]
	now     func() time.Time
	log     *slog.Logger
	metrics *metrics.Metrics
}

// Option configures a Cache.
type Option[V any] func(*Cache[V])

// WithStore replaces the default in-memory store.
func WithStore[V any](s Store[V]) Option[V] {
	return func(c *Cache[V]) {
		c.store = s
	}
}

// WithClock sets the time source (for testing).
func WithClock[V any](now func() time.Time) Option[V] {
	return func(c *Cache[V]) {
		c.now = now
	}
}

// WithLogger sets a logger for store failures and debug output.
func WithLogger[V any](log *slog.Logger) Option[V] {
	return func(c *Cache[V]) {
		if log != nil {
			c.log = log.With("cache", c.name)
		}
	}
}

// WithMetrics records hits, misses and writes.
func WithMetrics[V any](m *metrics.Metrics) Option[V] {
	return func(c *Cache[V]) {
		c.metrics = m
	}
}

// New creates a cache named name whose entries live for ttl.
func New[V any](name string, ttl time.Duration, opts ...Option[V]) *Cache[V] {
	c := &Cache[V]{
		name:  name,
		ttl:   ttl,
		store: NewMemoryStore[V](),
		now:   time.Now,
		log:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns the cache name.
func (c *Cache[V]) Name() string {
	return c.name
}

// TTL returns the configured time-to-live.
func (c *Cache[V]) TTL() time.Duration {
	return c.ttl
}

// Get returns the value for key if it was set less than ttl ago.
func (c *Cache[V]) Get(key string) (V, bool) {
	var zero V

	entry, ok, err := c.store.Load(key)
	if err != nil {
		c.log.Warn("cache load failed", "key", key, "error", err)
		c.metrics.CacheLookup(c.name, false)
		return zero, false
	}
	if !ok || c.expired(entry) {
		c.metrics.CacheLookup(c.name, false)
		return zero, false
	}

	c.metrics.CacheLookup(c.name, true)
	return entry.Value, true
}

// Set stores value under key, replacing any previous entry. Last writer wins.
func (c *Cache[V]) Set(key string, value V) {
	err := c.store.Save(key, Entry[V]{Value: value, InsertedAt: c.now()})
	if err != nil {
		// A failed write only costs a future upstream call.
		c.log.Warn("cache save failed", "key", key, "error", err)
		return
	}
	c.metrics.CacheWrite(c.name)
}

// Clear removes every entry.
func (c *Cache[V]) Clear() {
	if err := c.store.Clear(); err != nil {
		c.log.Warn("cache clear failed", "error", err)
	}
}

// Stats reports the stored keys, sorted, including expired ones.
func (c *Cache[V]) Stats() Stats {
	keys, err := c.store.Keys()
	if err != nil {
		c.log.Warn("cache keys failed", "error", err)
		return Stats{Keys: []string{}}
	}
	if keys == nil {
		keys = []string{}
	}
	sort.Strings(keys)
	return Stats{Size: len(keys), Keys: keys}
}

// Prune physically removes expired entries and returns how many were dropped.
// It is only ever called explicitly.
func (c *Cache[V]) Prune() (int, error) {
	if p, ok := c.store.(pruner); ok {
		n, err := p.PruneBefore(c.now().Add(-c.ttl))
		return int(n), err
	}

	keys, err := c.store.Keys()
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, key := range keys {
		entry, ok, err := c.store.Load(key)
		if err != nil {
			return removed, err
		}
		if !ok || !c.expired(entry) {
			continue
		}
		if err := c.store.Delete(key); err != nil {
			return removed, err
		}
		removed++
	}
	if removed > 0 {
		c.log.Debug("pruned expired entries", "removed", removed)
	}
	return removed, nil
}

func (c *Cache[V]) expired(e Entry[V]) bool {
	return c.now().Sub(e.InsertedAt) >= c.ttl
}
