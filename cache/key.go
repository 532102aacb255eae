package cache

import (
	"fmt"
	"sort"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
)

// KeyBuilder derives deterministic cache keys from an endpoint identifier
// and a parameter set. Parameters are canonicalized (sorted by name) before
// encoding, so semantically identical calls with differently-ordered
// parameters collide to the same key.
//
// Keys have the shape "<prefix>:<endpoint>:<xxhash64 hex>". The endpoint
// segment stays in the clear so that Cache.InvalidatePrefix can drop every
// cached response for one endpoint without knowing parameter values.
type KeyBuilder struct {
	prefix string
}

// NewKeyBuilder returns a KeyBuilder namespaced by prefix. An empty prefix
// gets a random short namespace so two independent cache instances in the
// same process never collide by accident.
func NewKeyBuilder(prefix string) *KeyBuilder {
	if prefix == "" {
		prefix = "cache-" + uuid.NewString()[:8]
	}
	return &KeyBuilder{prefix: prefix}
}

// keyPayload is the canonical form that gets digested. Params is a flat
// list of name/value pairs in sorted-name order; msgpack encodes it
// deterministically because the ordering is fixed before encoding.
type keyPayload struct {
	Endpoint string      `msgpack:"e"`
	Params   [][2]string `msgpack:"p"`
}

// Key returns the cache key for (endpoint, params). Pure function: no side
// effects, stable across calls and across param map iteration order. Nil and
// empty params produce the same key.
func (b *KeyBuilder) Key(endpoint string, params map[string]string) string {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	pairs := make([][2]string, 0, len(names))
	for _, name := range names {
		pairs = append(pairs, [2]string{name, params[name]})
	}

	// Marshaling a struct of strings cannot fail.
	payload, _ := msgpack.Marshal(keyPayload{Endpoint: endpoint, Params: pairs})
	return fmt.Sprintf("%s:%s:%016x", b.prefix, endpoint, xxhash.Sum64(payload))
}

// EndpointPrefix returns the key prefix shared by every key this builder
// produces for endpoint, suitable for Cache.InvalidatePrefix.
func (b *KeyBuilder) EndpointPrefix(endpoint string) string {
	return b.prefix + ":" + endpoint + ":"
}

// Prefix returns the builder's namespace prefix.
func (b *KeyBuilder) Prefix() string {
	return b.prefix
}
