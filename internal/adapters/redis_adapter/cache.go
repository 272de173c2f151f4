// internal/adapters/redis_adapter/cache.go
package redis_adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/ammerola/fieldstock-be/internal/core/ports"
)

// scanBatch is the COUNT hint used while invalidating a prefix
const scanBatch = 500

// Cache stores JSON-encoded report views in Redis. Concurrent misses on one
// key share a single fetch.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	group  singleflight.Group
	logger *slog.Logger
}

var _ ports.CacheRepository = (*Cache)(nil)

func NewCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *Cache {
	return &Cache{
		client: client,
		ttl:    ttl,
		logger: logger.With(slog.String("component", "cache")),
	}
}

func (c *Cache) setRaw(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set error: %w", err)
	}
	c.logger.DebugContext(ctx, "cache set",
		slog.String("key", key),
		slog.Duration("ttl", ttl))
	return nil
}

// Get decodes the cached value into dest. A missing key yields
// ports.ErrCacheMiss.
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ports.ErrCacheMiss
		}
		return fmt.Errorf("redis get error: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("unmarshal error: %w", err)
	}
	return nil
}

// DeletePattern unlinks every key matching pattern, one scan page at a time
func (c *Cache) DeletePattern(ctx context.Context, pattern string) error {
	var (
		cursor  uint64
		removed int64
	)
	for {
		keys, next, err := c.client.Scan(ctx, cursor, pattern, scanBatch).Result()
		if err != nil {
			return fmt.Errorf("redis scan error: %w", err)
		}
		if len(keys) > 0 {
			n, err := c.client.Unlink(ctx, keys...).Result()
			if err != nil {
				return fmt.Errorf("redis unlink error: %w", err)
			}
			removed += n
		}
		if next == 0 {
			break
		}
		cursor = next
	}

	c.logger.DebugContext(ctx, "cache invalidated",
		slog.String("pattern", pattern),
		slog.Int64("keys", removed))
	return nil
}

// GetOrSet fills dest from cache, or from fetch on a miss and stores the
// result for ttl, or the cache default when ttl is not positive. Redis
// failures degrade to calling fetch.
func (c *Cache) GetOrSet(ctx context.Context, key string, dest interface{},
	fetch func() (interface{}, error), ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.ttl
	}

	err := c.Get(ctx, key, dest)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ports.ErrCacheMiss) {
		c.logger.WarnContext(ctx, "cache read failed, falling back to source",
			slog.String("key", key),
			slog.String("error", err.Error()))
	}

	v, err, shared := c.group.Do(key, func() (interface{}, error) {
		value, err := fetch()
		if err != nil {
			return nil, err
		}
		data, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("marshal error: %w", err)
		}
		if err := c.setRaw(ctx, key, data, ttl); err != nil {
			c.logger.WarnContext(ctx, "failed to cache value after fetch",
				slog.String("key", key),
				slog.String("error", err.Error()))
		}
		return data, nil
	})
	if err != nil {
		return err
	}
	if shared {
		c.logger.DebugContext(ctx, "cache fill shared", slog.String("key", key))
	}

	if err := json.Unmarshal(v.([]byte), dest); err != nil {
		return fmt.Errorf("unmarshal error: %w", err)
	}
	return nil
}
