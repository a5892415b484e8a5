package ratelimit

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	limiter "github.com/ulule/limiter/v3"
	limiterredis "github.com/ulule/limiter/v3/drivers/store/redis"
)

// Decision is the outcome of counting one request against a key.
type Decision struct {
	Limit     int64
	Remaining int64
	Reset     time.Time
	Reached   bool
}

// Limiter counts requests per key in fixed periods stored in Redis.
type Limiter struct {
	inner *limiter.Limiter
}

// NewLimiter builds a Redis-backed limiter allowing max requests per period.
func NewLimiter(client *redis.Client, prefix string, max int64, period time.Duration) (*Limiter, error) {
	if client == nil {
		return nil, errors.New("ratelimit: redis client not configured")
	}
	if max <= 0 || period <= 0 {
		return nil, errors.New("ratelimit: limit and period must be positive")
	}
	store, err := limiterredis.NewStoreWithOptions(client, limiter.StoreOptions{Prefix: prefix})
	if err != nil {
		return nil, err
	}
	return &Limiter{inner: limiter.New(store, limiter.Rate{Period: period, Limit: max}, limiter.WithTrustForwardHeader(true))}, nil
}

// Take records a request for key and reports whether the limit was reached.
func (l *Limiter) Take(ctx context.Context, key string) (Decision, error) {
	res, err := l.inner.Get(ctx, key)
	if err != nil {
		return Decision{}, err
	}
	return Decision{
		Limit:     res.Limit,
		Remaining: res.Remaining,
		Reset:     time.Unix(res.Reset, 0),
		Reached:   res.Reached,
	}, nil
}

// ClientKey identifies the caller by IP, honouring X-Forwarded-For and
// X-Real-IP before the connection address.
func (l *Limiter) ClientKey(r *http.Request) string {
	return "ip:" + l.inner.GetIPKey(r)
}
