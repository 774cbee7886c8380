// internal/domain/checkout/lock.go
package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// SubmitLocker guards against re-entrant submissions: while one attempt
// for a subject is running, further attempts are rejected instead of
// queued.
type SubmitLocker interface {
	Acquire(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

// RedisSubmitLocker takes the in-flight lock with SET NX. The TTL is a
// safety net so a crashed attempt cannot wedge the subject forever.
type RedisSubmitLocker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSubmitLocker creates a Redis-backed submit locker
func NewRedisSubmitLocker(client *redis.Client, ttl time.Duration) *RedisSubmitLocker {
	return &RedisSubmitLocker{client: client, ttl: ttl}
}

// Acquire takes the lock; false means another attempt holds it
func (l *RedisSubmitLocker) Acquire(ctx context.Context, key string) (bool, error) {
	ok, err := l.client.SetNX(ctx, submitLockKey(key), "1", l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire submit lock: %w", err)
	}
	return ok, nil
}

// Release frees the lock once the attempt has settled
func (l *RedisSubmitLocker) Release(ctx context.Context, key string) error {
	return l.client.Del(ctx, submitLockKey(key)).Err()
}

func submitLockKey(key string) string {
	return fmt.Sprintf("checkout:submit:%s", key)
}
