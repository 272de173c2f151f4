// internal/core/ports/cache.go
package ports

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrCacheMiss is returned by Get when the key is absent.
var ErrCacheMiss = errors.New("cache miss")

// CacheKeyPrefix namespaces cache keys by view.
type CacheKeyPrefix string

const (
	PrefixRepairDashboard CacheKeyPrefix = "repair_dash"
	PrefixUnderRepair     CacheKeyPrefix = "under_repair"
	PrefixExport          CacheKeyPrefix = "export"
)

// BuildCacheKey joins prefix and parts with ':'.
func BuildCacheKey(prefix CacheKeyPrefix, parts ...string) string {
	return strings.Join(append([]string{string(prefix)}, parts...), ":")
}

// CacheRepository holds computed report views. Writers invalidate whole
// prefixes after commit.
type CacheRepository interface {
	// GetOrSet loads dest from cache or fills it from fetch
	GetOrSet(ctx context.Context, key string, dest interface{},
		fetch func() (interface{}, error), ttl time.Duration) error
	DeletePattern(ctx context.Context, pattern string) error
}

// Lock is a held distributed lock
type Lock interface {
	Release(ctx context.Context) error
}

// Locker serializes work on one stock key across API replicas
type Locker interface {
	Obtain(ctx context.Context, key string) (Lock, error)
}
