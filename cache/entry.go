package cache

import "time"

// entry wraps a cached value with its freshness window. Entries are
// immutable once stored: a refresh replaces the whole entry, it never
// mutates fields in place while readers can observe it.
//
// Invariant: createdAt <= staleAt <= expiresAt, enforced by newEntry.
type entry struct {
	value     any
	createdAt time.Time
	staleAt   time.Time
	expiresAt time.Time
}

func newEntry(value any, now time.Time, ttl, staleTime time.Duration) *entry {
	if staleTime > ttl {
		staleTime = ttl
	}
	return &entry{
		value:     value,
		createdAt: now,
		staleAt:   now.Add(staleTime),
		expiresAt: now.Add(ttl),
	}
}

// expired reports whether the entry must no longer be served at all.
func (e *entry) expired(now time.Time) bool {
	return now.After(e.expiresAt)
}

// stale reports whether the entry may still be served but should trigger
// a background refresh.
func (e *entry) stale(now time.Time) bool {
	return now.After(e.staleAt)
}

// Entry is the typed envelope returned by Lookup. It is a snapshot; holding
// one does not pin the underlying cache slot.
type Entry[T any] struct {
	Value     T
	CreatedAt time.Time
	StaleAt   time.Time
	ExpiresAt time.Time
}

// Stale reports whether the snapshot was past its staleness threshold at now.
func (e Entry[T]) Stale(now time.Time) bool {
	return now.After(e.StaleAt)
}
