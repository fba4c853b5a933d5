package lock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

// RedisLocker holds locks in Redis so punch writes serialize across API replicas.
type RedisLocker struct {
	client  *redislock.Client
	prefix  string
	ttl     time.Duration
	backoff time.Duration
}

func NewRedisLocker(rdb *redis.Client, prefix string, ttl time.Duration) *RedisLocker {
	return &RedisLocker{
		client:  redislock.New(rdb),
		prefix:  prefix,
		ttl:     ttl,
		backoff: 50 * time.Millisecond,
	}
}

func (l *RedisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	lockKey := fmt.Sprintf("%s:%s", l.prefix, key)

	// Retry with linear backoff for at most one TTL, or until ctx is done.
	retries := int(l.ttl / l.backoff)
	lk, err := l.client.Obtain(ctx, lockKey, l.ttl, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(l.backoff), retries),
	})
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, ErrNotObtained
	}
	if err != nil {
		return nil, fmt.Errorf("obtain lock %s: %w", lockKey, err)
	}

	return func() {
		// Release with a fresh context so a cancelled request still frees the key.
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := lk.Release(releaseCtx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			slog.Warn("failed to release redis lock", "key", lockKey, "error", err)
		}
	}, nil
}
