// Package cache provides a bounded in-memory response cache with request
// coalescing and stale-while-revalidate background refresh. It sits between
// application code and a remote data source: callers hand it a stable key
// and a supplier function, and the cache decides whether to serve a stored
// response, refresh one in the background, or fetch one for real.
//
// # Read path
//
// [Fetch] composes the whole flow in one call:
//
//	val, err := cache.Fetch(ctx, c, key, func(ctx context.Context) (User, error) {
//	    return client.GetUser(ctx, id)
//	})
//
// A fresh hit returns the cached value without running the supplier. A
// stale hit returns the cached value immediately and starts one background
// refresh for the key (if none is running). A miss or an expired entry runs
// the supplier, deduplicated against every other concurrent caller for the
// same key, and stores the result.
//
// For N concurrent fetches of one key arriving before the first settles,
// the supplier executes exactly once and all N callers receive the same
// value or error. Supplier errors are never cached; the next fetch tries
// again. Background refresh failures are logged and counted but never
// surfaced — the caller already has a usable (stale) value.
//
// # Entries and time
//
// Every stored value carries three timestamps: createdAt, staleAt and
// expiresAt, with createdAt <= staleAt <= expiresAt. Between staleAt and
// expiresAt the entry is served but considered aging; past expiresAt it is
// treated as absent and removed lazily on the read that discovers it. There
// is no background sweeper goroutine and nothing to close.
//
// # Bounding
//
// The store is LRU-bounded ([WithMaxEntries], default 100). Both reads and
// writes count as use. Inserting a new key at capacity evicts exactly the
// least recently used entry.
//
// # Keys
//
// [Cache.Key] derives deterministic keys from an endpoint identifier and a
// parameter map. Parameters are canonicalized before hashing, so two calls
// with the same parameters in different order produce the same key. Keys
// are namespaced by a per-cache prefix ([WithKeyPrefix]) and keep the
// endpoint in the clear, so [Cache.InvalidatePrefix] can drop one
// endpoint's entries wholesale. [Cache.InvalidateMatch] covers anything a
// prefix cannot express.
//
// # Profiles
//
// The [Profile] enumeration names data categories (realtime, frequent,
// semi-static, static) and maps each to a ttl/staleTime pair, so call sites
// say what kind of data they fetch instead of repeating duration literals:
//
//	vitals, err := cache.FetchProfile(ctx, c, cache.ProfileRealtime, key, supplier)
//
// [NewProfiled] sizes the store for a wider endpoint surface (200 entries).
// Deployments can retune categories from YAML via [LoadProfileOverrides]
// and [WithProfileOverrides] without touching call sites.
//
// # Observability
//
// With [WithMeterProvider], the cache reports OpenTelemetry counters for
// hits (fresh vs stale), misses, evictions and background revalidation
// outcomes. Without it, metric calls are no-ops. Revalidation failures are
// additionally logged through the [WithLogger] logger.
//
// # Scope
//
// The cache is single-process and purely in-memory: nothing persists across
// restarts, and there is no cross-process coordination. Retry and timeout
// policy belong to the supplier; the cache's only promise about failures is
// that it will not duplicate work or cache an error.
package cache
