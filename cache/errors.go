package cache

import "github.com/cockroachdb/errors"

// ErrWrongType is returned when a cached value cannot be asserted to the
// type a caller asked for. This indicates two callers sharing one key with
// different types, which is a bug at the call site, not a cache miss.
var ErrWrongType = errors.New("cache: cached value has a different type than requested")
