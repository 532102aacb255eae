package cache

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCacheSetGet(t *testing.T) {
	c := New()
	_, found := c.Get("missing")
	assert.False(t, found)
	c.SetDefault("k", "value")
	v, found := c.Get("k")
	assert.True(t, found)
	assert.Equal(t, "value", v)
}

func TestCacheExpiry(t *testing.T) {
	c := New()
	c.Set("k", "v", 100*time.Millisecond, 50*time.Millisecond)
	_, found := c.Get("k")
	assert.True(t, found)
	time.Sleep(150 * time.Millisecond)
	_, found = c.Get("k")
	assert.False(t, found)
	// Lazy expiry removed the entry on that read.
	assert.Equal(t, 0, c.Len())
}

func TestCacheExpiryWithClock(t *testing.T) {
	now := time.Now()
	c := New(WithClock(func() time.Time { return now }))
	c.Set("k", "v", time.Minute, 30*time.Second)

	_, found := c.Get("k")
	assert.True(t, found)
	assert.False(t, c.IsStale("k"))

	now = now.Add(31 * time.Second)
	_, found = c.Get("k")
	assert.True(t, found, "stale-but-unexpired entries are hits")
	assert.True(t, c.IsStale("k"))

	now = now.Add(30 * time.Second)
	_, found = c.Get("k")
	assert.False(t, found)
}

func TestCacheIsStaleOnMissingKey(t *testing.T) {
	c := New()
	assert.True(t, c.IsStale("missing"))
}

func TestCacheStaleTimeClampedToTTL(t *testing.T) {
	now := time.Now()
	c := New(WithClock(func() time.Time { return now }))
	c.Set("k", "v", time.Minute, time.Hour)
	e, ok := Lookup[string](c, "k")
	assert.True(t, ok)
	assert.Equal(t, e.ExpiresAt, e.StaleAt)
}

func TestCacheDefaults(t *testing.T) {
	now := time.Now()
	c := New(WithClock(func() time.Time { return now }))
	c.SetDefault("k", "v")
	e, ok := Lookup[string](c, "k")
	assert.True(t, ok)
	assert.Equal(t, now.Add(DefaultTTL), e.ExpiresAt)
	assert.Equal(t, now.Add(DefaultStaleTime), e.StaleAt)
	assert.Equal(t, now, e.CreatedAt)
}

func TestCacheLookupTypeMismatch(t *testing.T) {
	c := New()
	c.SetDefault("k", "a string")
	_, ok := Lookup[int](c, "k")
	assert.False(t, ok)
	_, ok = Lookup[string](c, "k")
	assert.True(t, ok)
}

func TestCacheCapacity(t *testing.T) {
	c := New(WithMaxEntries(3))
	c.SetDefault("a", 1)
	c.SetDefault("b", 2)
	c.SetDefault("c", 3)
	_, _ = c.Get("a")
	c.SetDefault("d", 4)
	c.SetDefault("e", 5)
	assert.Equal(t, 3, c.Len())
	_, found := c.Get("a")
	assert.True(t, found, "recently read key must outlive untouched keys")
	_, found = c.Get("b")
	assert.False(t, found)
}

func TestCacheInvalidate(t *testing.T) {
	c := New()
	c.SetDefault("k", "v")
	assert.True(t, c.Invalidate("k"))
	assert.False(t, c.Invalidate("k"))
	_, found := c.Get("k")
	assert.False(t, found)
}

func TestCacheInvalidatePrefix(t *testing.T) {
	c := New()
	c.SetDefault("health:vitals:1", "v")
	c.SetDefault("health:vitals:2", "v")
	c.SetDefault("health:meds:1", "v2")
	removed := c.InvalidatePrefix("health:vitals")
	assert.Equal(t, 2, removed)
	_, found := c.Get("health:vitals:1")
	assert.False(t, found)
	_, found = c.Get("health:meds:1")
	assert.True(t, found)
}

func TestCacheInvalidateMatch(t *testing.T) {
	c := New()
	c.SetDefault("health:vitals:1", "v")
	c.SetDefault("health:vitals:2", "v")
	c.SetDefault("health:meds:1", "v2")
	removed := c.InvalidateMatch(regexp.MustCompile(`:1$`))
	assert.Equal(t, 2, removed)
	assert.Equal(t, 1, c.Len())
	_, found := c.Get("health:vitals:2")
	assert.True(t, found)
}

func TestCacheClear(t *testing.T) {
	c := New()
	c.SetDefault("a", 1)
	c.SetDefault("b", 2)
	c.Clear()
	assert.Equal(t, 0, c.Len())
	assert.Empty(t, c.Keys())
}

func TestCacheKeysOrder(t *testing.T) {
	c := New()
	c.SetDefault("a", 1)
	c.SetDefault("b", 2)
	c.SetDefault("c", 3)
	assert.Equal(t, []string{"c", "b", "a"}, c.Keys())
}

func TestCacheKeyDelegation(t *testing.T) {
	c := New(WithKeyPrefix("api"))
	key := c.Key("patients/vitals", map[string]string{"id": "1"})
	assert.Contains(t, key, "api:patients/vitals:")
	assert.Equal(t, key, c.Key("patients/vitals", map[string]string{"id": "1"}))
}

func TestNewProfiledCapacity(t *testing.T) {
	c := NewProfiled()
	assert.Equal(t, DefaultProfiledMaxEntries, c.cfg.maxEntries)
	c2 := NewProfiled(WithMaxEntries(10))
	assert.Equal(t, 10, c2.cfg.maxEntries)
}

func TestCacheEntryReplacedWholesale(t *testing.T) {
	now := time.Now()
	c := New(WithClock(func() time.Time { return now }))
	c.SetDefault("k", "v1")
	first, _ := Lookup[string](c, "k")
	now = now.Add(time.Second)
	c.SetDefault("k", "v2")
	second, _ := Lookup[string](c, "k")
	assert.Equal(t, "v2", second.Value)
	assert.True(t, second.CreatedAt.After(first.CreatedAt))
	assert.Equal(t, 1, c.Len())
}
