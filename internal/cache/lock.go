package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

var ErrLockNotObtained = errors.New("lock not obtained")

// RedisLocker hands out short-lived distributed locks so several server replicas
// writing to one ledger take turns on read-then-write sequences. A held lock is refreshed
// every half TTL until released, so a slow backend cannot outlive it.
type RedisLocker struct {
	locker *redislock.Client
	ttl    time.Duration
	wait   time.Duration
}

func NewRedisLocker(client *redis.Client, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &RedisLocker{locker: redislock.New(client), ttl: ttl, wait: 5 * time.Second}
}

// Lock blocks until the key is held or the wait window passes. The returned func releases it.
func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	waitCtx, cancel := context.WithTimeout(ctx, l.wait)
	defer cancel()

	lock, err := l.locker.Obtain(waitCtx, "vyapar:lock:"+key, l.ttl, &redislock.Options{
		RetryStrategy: redislock.LinearBackoff(100 * time.Millisecond),
	})
	if errors.Is(err, redislock.ErrNotObtained) || errors.Is(err, context.DeadlineExceeded) {
		return nil, fmt.Errorf("%w: %s", ErrLockNotObtained, key)
	}
	if err != nil {
		return nil, err
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	go l.keepAlive(lock, key, stop, done)

	return func() {
		close(stop)
		<-done
		if err := lock.Release(context.Background()); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			log.Warn().Err(err).Str("key", key).Msg("failed to release redis lock")
		}
	}, nil
}

func (l *RedisLocker) keepAlive(lock *redislock.Lock, key string, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(l.ttl / 2)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := lock.Refresh(context.Background(), l.ttl, nil); err != nil {
				log.Warn().Err(err).Str("key", key).Msg("failed to refresh redis lock")
				return
			}
		}
	}
}
