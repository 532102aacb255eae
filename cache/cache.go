package cache

import (
	"regexp"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/singleflight"

	"github.com/vitalsync/go-common/logger"
)

const (
	// DefaultTTL is the absolute expiry applied when Set is called with a
	// zero ttl and no profile override is in play.
	DefaultTTL = 5 * time.Minute

	// DefaultStaleTime is how long an entry is served without triggering a
	// background refresh, when no override is in play.
	DefaultStaleTime = 2 * time.Minute

	// DefaultMaxEntries bounds the store for New.
	DefaultMaxEntries = 100

	// DefaultProfiledMaxEntries bounds the store for NewProfiled. Profiled
	// caches front a wider endpoint surface, so they get more headroom.
	DefaultProfiledMaxEntries = 200
)

// config holds the resolved configuration for a Cache.
type config struct {
	maxEntries    int
	ttl           time.Duration
	staleTime     time.Duration
	keyPrefix     string
	log           logger.Logger
	meterProvider metric.MeterProvider
	now           func() time.Time
	profiles      map[Profile]ProfileConfig
}

// Option configures a Cache.
type Option func(*config)

func defaultCacheConfig() config {
	return config{
		maxEntries: DefaultMaxEntries,
		ttl:        DefaultTTL,
		staleTime:  DefaultStaleTime,
		now:        time.Now,
	}
}

// WithMaxEntries sets the LRU capacity. Defaults to DefaultMaxEntries.
func WithMaxEntries(n int) Option {
	return func(c *config) { c.maxEntries = n }
}

// WithTTL sets the default absolute expiry for stored values.
// Defaults to DefaultTTL (5 minutes).
func WithTTL(d time.Duration) Option {
	return func(c *config) { c.ttl = d }
}

// WithStaleTime sets the default staleness threshold for stored values.
// Defaults to DefaultStaleTime (2 minutes). Values larger than the ttl are
// clamped to it at store time.
func WithStaleTime(d time.Duration) Option {
	return func(c *config) { c.staleTime = d }
}

// WithKeyPrefix sets the namespace prefix used by the cache's key builder.
// Defaults to a random short prefix so independent caches never collide.
func WithKeyPrefix(p string) Option {
	return func(c *config) { c.keyPrefix = p }
}

// WithLogger sets the logger used for background revalidation failures.
// Defaults to a console logger at warn level.
func WithLogger(l logger.Logger) Option {
	return func(c *config) { c.log = l }
}

// WithMeterProvider enables hit/miss/eviction/revalidation counters on the
// given OpenTelemetry meter provider. Metrics are off by default.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(c *config) { c.meterProvider = mp }
}

// WithClock replaces the time source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(c *config) { c.now = now }
}

// WithProfileOverrides replaces the built-in ttl/staleTime pairs for the
// given profiles. Profiles not present keep their built-in values.
func WithProfileOverrides(m map[Profile]ProfileConfig) Option {
	return func(c *config) { c.profiles = m }
}

// Cache is a bounded in-memory response cache with TTL expiry, staleness
// tracking, request coalescing and stale-while-revalidate background
// refresh. It is safe for concurrent use; all store mutation happens under
// one mutex, and supplier deduplication goes through one singleflight
// group shared by foreground and background fetches.
//
// Cache is single-process and loses everything on restart by design.
type Cache struct {
	mu    sync.Mutex
	store *lruStore[string, *entry]

	keys    *KeyBuilder
	cfg     config
	log     logger.Logger
	metrics *metrics

	flightMu sync.Mutex
	flights  singleflight.Group
	inFlight map[string]struct{}
}

// New returns a Cache configured by opts.
func New(opts ...Option) *Cache {
	cfg := defaultCacheConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.log == nil {
		cfg.log = logger.NewConsole(logger.LevelWarn)
	}
	c := &Cache{
		store:    newLRUStore[string, *entry](cfg.maxEntries),
		keys:     NewKeyBuilder(cfg.keyPrefix),
		cfg:      cfg,
		log:      cfg.log,
		metrics:  newMetrics(cfg.meterProvider),
		inFlight: make(map[string]struct{}),
	}
	c.store.onEvict = func(string, *entry) { c.metrics.eviction() }
	return c
}

// NewProfiled returns a Cache sized for the profiled read path
// (DefaultProfiledMaxEntries). Explicit options still win.
func NewProfiled(opts ...Option) *Cache {
	return New(append([]Option{WithMaxEntries(DefaultProfiledMaxEntries)}, opts...)...)
}

// Key derives the cache key for (endpoint, params). Pure; see KeyBuilder.
func (c *Cache) Key(endpoint string, params map[string]string) string {
	return c.keys.Key(endpoint, params)
}

// EndpointPrefix returns the prefix shared by every key for endpoint,
// suitable for InvalidatePrefix.
func (c *Cache) EndpointPrefix(endpoint string) string {
	return c.keys.EndpointPrefix(endpoint)
}

// lookup returns the live entry for key, promoting it to most recently
// used. Expired entries are deleted here as a side effect — expiry is lazy,
// there is no background sweep.
func (c *Cache) lookup(key string) (*entry, bool) {
	now := c.cfg.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.store.get(key)
	if !ok {
		return nil, false
	}
	if e.expired(now) {
		c.store.delete(key)
		return nil, false
	}
	return e, true
}

// Get returns the raw cached value for key. Stale-but-unexpired entries are
// hits; expired entries are misses and are removed.
func (c *Cache) Get(key string) (any, bool) {
	e, ok := c.lookup(key)
	if !ok {
		c.metrics.miss()
		return nil, false
	}
	c.metrics.hit(e.stale(c.cfg.now()))
	return e.value, true
}

// Lookup returns the typed envelope for key, or false on a miss, an expired
// entry, or a value of a different type.
func Lookup[T any](c *Cache, key string) (Entry[T], bool) {
	e, ok := c.lookup(key)
	if !ok {
		return Entry[T]{}, false
	}
	v, ok := e.value.(T)
	if !ok {
		return Entry[T]{}, false
	}
	return Entry[T]{
		Value:     v,
		CreatedAt: e.createdAt,
		StaleAt:   e.staleAt,
		ExpiresAt: e.expiresAt,
	}, true
}

// Set stores value under key with the given ttl and staleness threshold.
// Zero or negative durations fall back to the cache-wide defaults. The
// entry is replaced wholesale; inserting a new key at capacity evicts the
// least recently used entry.
func (c *Cache) Set(key string, value any, ttl, staleTime time.Duration) {
	if ttl <= 0 {
		ttl = c.cfg.ttl
	}
	if staleTime <= 0 {
		staleTime = c.cfg.staleTime
	}
	e := newEntry(value, c.cfg.now(), ttl, staleTime)
	c.mu.Lock()
	c.store.set(key, e)
	c.mu.Unlock()
}

// SetDefault stores value under key with the cache-wide ttl and staleTime.
func (c *Cache) SetDefault(key string, value any) {
	c.Set(key, value, 0, 0)
}

// IsStale reports whether key is absent, expired, or past its staleness
// threshold.
func (c *Cache) IsStale(key string) bool {
	e, ok := c.lookup(key)
	return !ok || e.stale(c.cfg.now())
}

// Invalidate removes key and reports whether it was present.
func (c *Cache) Invalidate(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.delete(key)
}

// InvalidatePrefix removes every key starting with prefix and returns how
// many entries were removed.
func (c *Cache) InvalidatePrefix(prefix string) int {
	return c.invalidateFunc(func(key string) bool {
		return strings.HasPrefix(key, prefix)
	})
}

// InvalidateMatch removes every key matching re and returns how many
// entries were removed.
func (c *Cache) InvalidateMatch(re *regexp.Regexp) int {
	return c.invalidateFunc(re.MatchString)
}

func (c *Cache) invalidateFunc(match func(key string) bool) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for _, key := range c.store.keys() {
		if match(key) && c.store.delete(key) {
			removed++
		}
	}
	return removed
}

// Clear empties the store and forgets all tracked in-flight fetches.
// Suppliers already running complete and resolve to their waiters, but
// their keys accept fresh fetches immediately.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.store.clear()
	c.mu.Unlock()

	c.flightMu.Lock()
	for key := range c.inFlight {
		c.flights.Forget(key)
	}
	clear(c.inFlight)
	c.flightMu.Unlock()
}

// Len returns the number of stored entries, counting entries that have
// expired but not yet been touched.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.len()
}

// Keys returns all keys in most-recently-used to least-recently-used order.
func (c *Cache) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.keys()
}
