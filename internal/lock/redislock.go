package lock

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrNotAcquired is returned when the lock stays held by someone else for
// longer than the locker is willing to wait.
var ErrNotAcquired = errors.New("lock: not acquired")

// unlock deletes the key only while it still carries our token, so an
// expired lock taken over by another holder is left alone.
var unlock = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

const (
	defaultTTL     = 30 * time.Second
	defaultBackoff = 50 * time.Millisecond
)

// Locker provides a Redis-backed distributed lock.
type Locker struct {
	R            *redis.Client
	RetryBackoff time.Duration
	// MaxWait bounds how long WithLock polls for a held lock. Zero waits until
	// the context is done.
	MaxWait time.Duration
}

// PropertyBookingKey is the lock guarding availability checks for a property.
func PropertyBookingKey(propertyID uuid.UUID) string {
	return "lock:booking:property:" + propertyID.String()
}

// WithLock runs fn while holding key. The lock is released when fn returns,
// whatever the outcome.
func (l Locker) WithLock(ctx context.Context, key string, ttl time.Duration, fn func(context.Context) error) error {
	switch {
	case l.R == nil:
		return errors.New("lock: redis client not configured")
	case fn == nil:
		return errors.New("lock: callback not provided")
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}

	token := uuid.NewString()
	if err := l.acquire(ctx, key, token, ttl); err != nil {
		return err
	}
	defer func() {
		_ = unlock.Run(context.WithoutCancel(ctx), l.R, []string{key}, token).Err()
	}()
	return fn(ctx)
}

func (l Locker) acquire(ctx context.Context, key, token string, ttl time.Duration) error {
	backoff := l.RetryBackoff
	if backoff <= 0 {
		backoff = defaultBackoff
	}
	waitCtx := ctx
	if l.MaxWait > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, l.MaxWait)
		defer cancel()
	}

	ticker := time.NewTicker(backoff)
	defer ticker.Stop()
	for {
		ok, err := l.R.SetNX(ctx, key, token, ttl).Result()
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		select {
		case <-waitCtx.Done():
			if err := ctx.Err(); err != nil {
				return err
			}
			return ErrNotAcquired
		case <-ticker.C:
		}
	}
}
