package reports

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/skylens/flightpulse/internal/pkg/logger"
)

const cachePrefix = "flightpulse:report:"

// Cache is a thin Redis wrapper for serialized reports. A nil *Cache is a
// valid no-op cache, so callers never branch on whether Redis is enabled.
type Cache struct {
	client *redis.Client
}

// NewCache wraps an existing Redis client.
func NewCache(client *redis.Client) *Cache {
	return &Cache{client: client}
}

// Get returns the cached report bytes if present. Redis errors degrade to
// a cache miss; the file store remains the source of truth.
func (c *Cache) Get(ctx context.Context, name string) ([]byte, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	data, err := c.client.Get(ctx, cachePrefix+name).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		logger.Warn("report cache read failed", "report", name, "error", err)
		return nil, false
	}
	return data, true
}

// Set stores report bytes with the given TTL. Errors are logged, not
// returned; the cache is best-effort.
func (c *Cache) Set(ctx context.Context, name string, data []byte, ttl time.Duration) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Set(ctx, cachePrefix+name, data, ttl).Err(); err != nil {
		logger.Warn("report cache write failed", "report", name, "error", err)
	}
}
