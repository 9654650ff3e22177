package recommendation

import (
	"context"
	"errors"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"

	"github.com/osse101/CropCycle_Go/internal/logger"
)

// ErrLockNotObtained is returned when another instance holds the generation lock past the wait budget
var ErrLockNotObtained = errors.New("generation lock not obtained")

// Locker serializes generation for a key across instances
type Locker interface {
	Obtain(ctx context.Context, key string) (release func(), err error)
}

// NopLocker is used when only one instance runs
type NopLocker struct{}

// Obtain always succeeds
func (NopLocker) Obtain(context.Context, string) (func(), error) {
	return func() {}, nil
}

// RedisLocker holds a redislock lease per key while generation runs
type RedisLocker struct {
	client *redislock.Client
	ttl    time.Duration
	retry  redislock.RetryStrategy
}

// NewRedisLocker creates a locker over an existing client; ttl bounds how long a crashed holder blocks others
func NewRedisLocker(client redis.UniversalClient, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = DefaultLockTTL
	}
	return &RedisLocker{
		client: redislock.New(client),
		ttl:    ttl,
		retry:  redislock.LinearBackoff(100 * time.Millisecond),
	}
}

// Obtain waits for the lock until ctx is done
func (l *RedisLocker) Obtain(ctx context.Context, key string) (func(), error) {
	lock, err := l.client.Obtain(ctx, "lock:"+key, l.ttl, &redislock.Options{RetryStrategy: l.retry})
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, ErrLockNotObtained
	}
	if err != nil {
		return nil, err
	}
	return func() {
		// The request context may already be cancelled; release on a fresh one
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
		defer cancel()
		if err := lock.Release(releaseCtx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			logger.FromContext(ctx).Warn(LogMsgLockReleaseFailed, "key", key, "error", err)
		}
	}, nil
}
