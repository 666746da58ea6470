package cache

import (
	"context"
	"time"
)

// ttlCache overrides the TTL of every Set.
type ttlCache struct {
	Cache
	ttl time.Duration
}

// WithTTL returns a view of c that stores entries for ttl regardless of the
// TTL callers pass. A non-positive ttl returns c unchanged.
func WithTTL(c Cache, ttl time.Duration) Cache {
	if ttl <= 0 {
		return c
	}
	return &ttlCache{Cache: c, ttl: ttl}
}

func (c *ttlCache) Set(ctx context.Context, key string, data []byte, _ time.Duration) error {
	return c.Cache.Set(ctx, key, data, c.ttl)
}
