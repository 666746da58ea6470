// Package cache stores routing results keyed by their inputs.
//
// Routing a large grid can take the whole search budget, so results are
// cached by a hash of the input file plus the router options that shape
// the result. Three backends implement [Cache]:
//
//   - [FileCache]: one JSON file per entry under a directory, for the CLI
//   - [RedisCache]: a shared Redis instance, for the HTTP service
//   - [NullCache]: stores nothing, for --no-cache and tests
//
// Keys come from a [Keyer], so callers never build key strings by hand:
//
//	k := cache.NewDefaultKeyer()
//	key := k.RouteKey(cache.Hash(input), cache.RouteKeyOpts{Budget: budget})
//	data, hit, err := c.Get(ctx, key)
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry TTLs.
type Cache interface {
	// Get returns the value stored at key. A missing or expired entry is a
	// miss (hit false, err nil), not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data at key. A ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Default TTLs per entry kind.
const (
	TTLRoute  = 7 * 24 * time.Hour
	TTLRender = 7 * 24 * time.Hour
)
