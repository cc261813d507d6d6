package ttlcache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestCache_GetSet(t *testing.T) {
	c := New[string]("test", time.Hour)

	// Miss
	_, ok := c.Get("tt0133093_short")
	assert.False(t, ok, "empty cache should miss")

	// Set and hit
	c.Set("tt0133093_short", "The Matrix")
	got, ok := c.Get("tt0133093_short")
	require.True(t, ok, "should hit after set")
	assert.Equal(t, "The Matrix", got)

	// Different key should miss
	_, ok = c.Get("tt0133093_full")
	assert.False(t, ok, "different plot variant should miss")
}

func TestCache_Expiry(t *testing.T) {
	clock := newFakeClock()
	c := New[string]("test", 5*time.Minute, WithClock[string](clock.Now))

	c.Set("k", "v")

	clock.Advance(5*time.Minute - time.Nanosecond)
	got, ok := c.Get("k")
	require.True(t, ok, "should hit just before TTL")
	assert.Equal(t, "v", got)

	clock.Advance(time.Nanosecond)
	_, ok = c.Get("k")
	assert.False(t, ok, "should miss once age reaches TTL")

	// Expired entries stay in the store until overwritten or pruned.
	stats := c.Stats()
	assert.Equal(t, 1, stats.Size)
	assert.Equal(t, []string{"k"}, stats.Keys)
}

func TestCache_SetOverwritesExpired(t *testing.T) {
	clock := newFakeClock()
	c := New[int]("test", time.Minute, WithClock[int](clock.Now))

	c.Set("k", 1)
	clock.Advance(2 * time.Minute)
	_, ok := c.Get("k")
	require.False(t, ok)

	c.Set("k", 2)
	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, 2, got)
	assert.Equal(t, 1, c.Stats().Size)
}

func TestCache_ClearAndStats(t *testing.T) {
	c := New[string]("test", time.Hour)
	c.Set("b", "2")
	c.Set("a", "1")

	stats := c.Stats()
	assert.Equal(t, 2, stats.Size)
	assert.Equal(t, []string{"a", "b"}, stats.Keys, "keys are sorted")

	c.Clear()
	stats = c.Stats()
	assert.Equal(t, 0, stats.Size)
	assert.Empty(t, stats.Keys)
	_, ok := c.Get("a")
	assert.False(t, ok)
}

func TestCache_Prune(t *testing.T) {
	clock := newFakeClock()
	c := New[string]("test", time.Minute, WithClock[string](clock.Now))

	c.Set("old", "x")
	clock.Advance(2 * time.Minute)
	c.Set("fresh", "y")

	removed, err := c.Prune()
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.Equal(t, []string{"fresh"}, c.Stats().Keys)
}

func TestCache_ConcurrentAccess(t *testing.T) {
	c := New[int]("test", time.Hour)

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := fmt.Sprintf("k%d", n%10)
			c.Set(key, n)
			_, _ = c.Get(key)
			_ = c.Stats()
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 10, c.Stats().Size)
}

func TestCache_LRUStoreBoundsSize(t *testing.T) {
	store, err := NewLRUStore[string](2)
	require.NoError(t, err)
	c := New[string]("test", time.Hour, WithStore[string](store))

	c.Set("a", "1")
	c.Set("b", "2")
	_, _ = c.Get("a") // a is now most recently used
	c.Set("c", "3")

	_, ok := c.Get("b")
	assert.False(t, ok, "least recently used entry should be evicted")
	_, ok = c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 2, c.Stats().Size)
}

func TestNewLRUStore_InvalidSize(t *testing.T) {
	_, err := NewLRUStore[string](0)
	assert.Error(t, err)
}
