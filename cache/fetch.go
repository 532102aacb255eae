package cache

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/singleflight"
)

// Supplier produces the value for a cache key, typically by calling a
// remote API. Timeout and retry policy belong to the supplier; the cache
// only guarantees it never runs two suppliers for one key at a time.
type Supplier[T any] func(ctx context.Context) (T, error)

type fetchConfig struct {
	ttl       time.Duration
	staleTime time.Duration
}

// FetchOption overrides ttl/staleTime for a single Fetch call. The profile
// layer is built on these.
type FetchOption func(*fetchConfig)

// WithFetchTTL overrides the stored entry's absolute expiry for this fetch.
func WithFetchTTL(d time.Duration) FetchOption {
	return func(fc *fetchConfig) { fc.ttl = d }
}

// WithFetchStaleTime overrides the stored entry's staleness threshold for
// this fetch.
func WithFetchStaleTime(d time.Duration) FetchOption {
	return func(fc *fetchConfig) { fc.staleTime = d }
}

// Fetch is the full read path:
//
//   - fresh hit: return the cached value, no supplier call
//   - stale hit: return the cached value immediately and kick off at most
//     one background revalidation for the key
//   - miss or expired: run the supplier, coalesced with every other caller
//     for the same key, store the result, return it
//
// Concurrent Fetch calls for one key run the supplier exactly once and all
// receive the same value or error. Supplier errors propagate to every
// coalesced waiter and nothing is cached for them. Cancelling ctx stops
// this caller's wait only; the shared supplier call keeps running for the
// other waiters and the store.
func Fetch[T any](ctx context.Context, c *Cache, key string, supplier Supplier[T], opts ...FetchOption) (T, error) {
	fc := fetchConfig{ttl: c.cfg.ttl, staleTime: c.cfg.staleTime}
	for _, opt := range opts {
		opt(&fc)
	}

	if e, ok := c.lookup(key); ok {
		v, ok := e.value.(T)
		if !ok {
			var zero T
			return zero, errors.Wrapf(ErrWrongType, "key %q", key)
		}
		if e.stale(c.cfg.now()) {
			c.metrics.hit(true)
			revalidate(c, key, fc, supplier)
		} else {
			c.metrics.hit(false)
		}
		return v, nil
	}
	c.metrics.miss()

	ch := startFlight(c, key, fc, supplier)
	select {
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			var zero T
			return zero, res.Err
		}
		v, ok := res.Val.(T)
		if !ok {
			var zero T
			return zero, errors.Wrapf(ErrWrongType, "key %q", key)
		}
		return v, nil
	}
}

// startFlight joins or starts the single in-flight supplier call for key.
// The supplier runs on a context detached from any one caller, so a
// cancelled foreground caller cannot abort work other waiters still need.
// On success the value is stored before the flight resolves, so every
// waiter observes a populated cache. On failure nothing is stored.
func startFlight[T any](c *Cache, key string, fc fetchConfig, supplier Supplier[T]) <-chan singleflight.Result {
	return c.flights.DoChan(key, func() (any, error) {
		c.trackFlight(key)
		defer c.untrackFlight(key)

		val, err := supplier(context.Background())
		if err != nil {
			return nil, errors.Wrapf(err, "cache: fetch %q", key)
		}
		c.Set(key, val, fc.ttl, fc.staleTime)
		return val, nil
	})
}

// revalidate starts at most one background refresh for key. It shares the
// in-flight registry with foreground misses, so a stale-triggered refresh
// and a concurrent miss-triggered fetch never duplicate supplier work. The
// caller is never blocked; failures are logged and counted, not surfaced.
func revalidate[T any](c *Cache, key string, fc fetchConfig, supplier Supplier[T]) {
	if c.flightRunning(key) {
		return
	}
	ch := startFlight(c, key, fc, supplier)
	go func() {
		res := <-ch
		if res.Err != nil {
			c.log.Warn("background revalidation failed for %q: %s", key, res.Err)
			c.metrics.revalidation(false)
			return
		}
		c.metrics.revalidation(true)
	}()
}

// trackFlight and untrackFlight are called from inside the executing
// flight only, so an entry in the registry always corresponds to a supplier
// that is actually running.
func (c *Cache) trackFlight(key string) {
	c.flightMu.Lock()
	c.inFlight[key] = struct{}{}
	c.flightMu.Unlock()
}

func (c *Cache) untrackFlight(key string) {
	c.flightMu.Lock()
	delete(c.inFlight, key)
	c.flightMu.Unlock()
}

func (c *Cache) flightRunning(key string) bool {
	c.flightMu.Lock()
	defer c.flightMu.Unlock()
	_, ok := c.inFlight[key]
	return ok
}
