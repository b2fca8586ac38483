package lock

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock key only when it still carries the
// caller's owner token, so a lock that expired and was re-acquired by
// someone else is never deleted by the late releaser.
var releaseScript = redis.NewScript(`
    if redis.call('GET', KEYS[1]) == ARGV[1] then
        return redis.call('DEL', KEYS[1])
    end
    return 0
`)

// RedisLocker is the cross-process Locker used in production. Each
// key maps to a Redis string written with SET NX PX; the value is a
// random owner token so release cannot free someone else's lock. The
// TTL bounds how long a crashed holder can strand a key.
type RedisLocker struct {
	client *redis.Client
	wait   time.Duration // how long Acquire keeps retrying
	ttl    time.Duration // lock key TTL in Redis
	retry  time.Duration // pause between SET NX attempts
	prefix string
}

// NewRedisLocker returns a RedisLocker with the given wait bound and
// key TTL. Non-positive values fall back to 3s wait and 10s TTL. The
// client must be non-nil; callers that failed to reach Redis should
// fall back to a MemoryLocker instead.
func NewRedisLocker(client *redis.Client, wait, ttl time.Duration) *RedisLocker {
	if wait <= 0 {
		wait = 3 * time.Second
	}
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &RedisLocker{
		client: client,
		wait:   wait,
		ttl:    ttl,
		retry:  25 * time.Millisecond,
		prefix: "booklock:",
	}
}

// Acquire polls SET NX until it wins the key, the wait bound elapses
// or ctx is cancelled. The release function is idempotent and only
// deletes the key while it still holds this call's owner token.
func (l *RedisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	redisKey := l.prefix + key
	token := uuid.NewString()
	deadline := time.Now().Add(l.wait)
	for {
		ok, err := l.client.SetNX(ctx, redisKey, token, l.ttl).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			var once sync.Once
			release := func() {
				once.Do(func() {
					// Release must succeed even when the request context
					// is already done, hence the detached context.
					rctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
					defer cancel()
					_ = releaseScript.Run(rctx, l.client, []string{redisKey}, token).Err()
				})
			}
			return release, nil
		}
		if time.Now().After(deadline) {
			return nil, ErrTimeout
		}
		select {
		case <-time.After(l.retry):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}
