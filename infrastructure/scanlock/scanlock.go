package scanlock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
)

// ErrBusy is returned when another scan for the same key holds the lock.
var ErrBusy = errors.New("scan lock busy")

// Locker serializes quick-scan work per operator across processes.
type Locker interface {
	// Acquire blocks up to the configured wait and returns a release func.
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// RedisLocker obtains short-lived redislock keys.
type RedisLocker struct {
	client *redislock.Client
	ttl    time.Duration
	wait   time.Duration
}

func NewRedisLocker(client redislock.RedisClient, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	return &RedisLocker{client: redislock.New(client), ttl: ttl, wait: ttl}
}

func (l *RedisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	lock, err := l.client.Obtain(ctx, "quickscan:"+key, l.ttl, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(50*time.Millisecond), int(l.wait/(50*time.Millisecond))),
	})
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, ErrBusy
	}
	if err != nil {
		return nil, fmt.Errorf("obtain scan lock: %w", err)
	}
	return func() {
		// Release with a fresh context; the request context may be done.
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = lock.Release(ctx)
	}, nil
}

// Noop grants every lock immediately. The single SQLite writer already
// serializes scans inside one process.
type Noop struct{}

func (Noop) Acquire(context.Context, string) (func(), error) {
	return func() {}, nil
}
