// internal/adapters/redis_adapter/locker.go
package redis_adapter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"

	"github.com/ammerola/fieldstock-be/internal/core/domain"
	"github.com/ammerola/fieldstock-be/internal/core/ports"
)

const lockKeyPrefix = "lock:stock:"

// LedgerLocker serializes mutations of one stock key across API replicas.
// It waits up to roughly the lock TTL for a competing holder before giving up.
type LedgerLocker struct {
	client *redislock.Client
	ttl    time.Duration
	retry  redislock.RetryStrategy
	logger *slog.Logger
}

var _ ports.Locker = (*LedgerLocker)(nil)

func NewLedgerLocker(rdb *redis.Client, ttl time.Duration, logger *slog.Logger) *LedgerLocker {
	backoff := 50 * time.Millisecond
	attempts := int(ttl / backoff)
	if attempts < 1 {
		attempts = 1
	}
	return &LedgerLocker{
		client: redislock.New(rdb),
		ttl:    ttl,
		retry:  redislock.LimitRetry(redislock.LinearBackoff(backoff), attempts),
		logger: logger.With(slog.String("component", "ledger_locker")),
	}
}

// Obtain acquires the lock for key. A lock held elsewhere for the whole
// retry window is reported as a domain conflict.
func (l *LedgerLocker) Obtain(ctx context.Context, key string) (ports.Lock, error) {
	lock, err := l.client.Obtain(ctx, lockKeyPrefix+key, l.ttl, &redislock.Options{RetryStrategy: l.retry})
	if errors.Is(err, redislock.ErrNotObtained) {
		l.logger.WarnContext(ctx, "stock lock busy", slog.String("key", key))
		return nil, domain.NewConflict("stock %s is being modified by another request, retry", key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to obtain stock lock: %w", err)
	}
	return &heldLock{lock: lock, key: key, logger: l.logger}, nil
}

type heldLock struct {
	lock   *redislock.Lock
	key    string
	logger *slog.Logger
}

// Release frees the lock. An expired lock is not an error; the
// transaction's version check already guards the write.
func (h *heldLock) Release(ctx context.Context) error {
	err := h.lock.Release(ctx)
	if errors.Is(err, redislock.ErrLockNotHeld) {
		h.logger.WarnContext(ctx, "stock lock expired before release", slog.String("key", h.key))
		return nil
	}
	return err
}
