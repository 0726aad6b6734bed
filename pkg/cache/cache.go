// Package cache stores rendered map documents keyed by their input graph
// and render options.
//
// # Backends
//
//   - [NullCache]: no-op, used when caching is disabled
//   - [FileCache]: one JSON file per entry under a directory, for the CLI
//   - [RedisCache]: go-redis backed, for multi-instance servers
//
// # Keys
//
// A [Keyer] derives keys from content hashes, so identical inputs rendered
// with identical options share an entry:
//
//	keyer := cache.NewDefaultKeyer()
//	key := keyer.MapKey(cache.Hash(graphJSON), cache.MapKeyOpts{Seed: 42, Colors: 4})
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the value for key. A miss is reported as (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// DefaultTTL is the expiry applied to cached maps.
const DefaultTTL = 7 * 24 * time.Hour

// NullCache misses on every Get and drops every Set.
type NullCache struct{}

// NewNullCache returns a cache that stores nothing.
func NewNullCache() Cache { return &NullCache{} }

func (*NullCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (*NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (*NullCache) Delete(context.Context, string) error                     { return nil }
func (*NullCache) Close() error                                             { return nil }

var _ Cache = (*NullCache)(nil)
