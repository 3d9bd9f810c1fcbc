// Package lock guards a booking's (practitioner, start) and (patient, start) keys across service instances.
package lock

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLockNotAcquired is returned when another holder owns one of the keys.
var ErrLockNotAcquired = errors.New("lock: key is held by another booking")

// RedisLocker takes SET NX locks with a random token and releases them with a compare-and-delete script.
type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisLocker creates a locker whose keys expire after ttl.
func NewRedisLocker(client *redis.Client, ttl time.Duration) *RedisLocker {
	return &RedisLocker{client: client, ttl: ttl, prefix: "lock:booking:"}
}

// WithLock runs fn while holding every key. Keys are taken in sorted order and
// the ones already taken are released if any key is busy.
func (l *RedisLocker) WithLock(ctx context.Context, keys []string, fn func(ctx context.Context) error) error {
	sorted := slices.Clone(keys)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	token := uuid.NewString()
	var held []string
	defer func() {
		for _, key := range held {
			_ = l.release(context.WithoutCancel(ctx), key, token)
		}
	}()

	for _, key := range sorted {
		ok, err := l.client.SetNX(ctx, l.prefix+key, token, l.ttl).Result()
		if err != nil {
			return fmt.Errorf("acquire lock %s: %w", key, err)
		}
		if !ok {
			return fmt.Errorf("%w: %s", ErrLockNotAcquired, key)
		}
		held = append(held, l.prefix+key)
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, l.ttl)
	defer cancel()

	return fn(ctxWithTimeout)
}

var unlockScript = redis.NewScript(`
local val = redis.call("GET", KEYS[1])
if val == ARGV[1] then
  return redis.call("DEL", KEYS[1])
else
  return 0
end
`)

func (l *RedisLocker) release(ctx context.Context, key, token string) error {
	_, err := unlockScript.Run(ctx, l.client, []string{key}, token).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release lock %s: %w", key, err)
	}
	return nil
}

// NoopLocker runs fn without locking. Used when Redis is disabled; the storage
// transaction still rejects double bookings.
type NoopLocker struct{}

func (NoopLocker) WithLock(ctx context.Context, _ []string, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// SlotKey names the lock of one participant's session start.
func SlotKey(role string, id int64, start time.Time) string {
	return fmt.Sprintf("%s:%d:%d", role, id, start.UTC().Unix())
}
