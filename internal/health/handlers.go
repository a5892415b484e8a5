package health

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/backend-travel/internal/common"
)

var ready atomic.Bool

func init() {
	ready.Store(true)
}

// SetReady toggles the readiness flag. The API clears it when shutdown begins
// so load balancers stop routing new traffic.
func SetReady(v bool) {
	ready.Store(v)
}

// IsReady reports the readiness flag.
func IsReady() bool {
	return ready.Load()
}

// Checker represents dependencies that can be probed for readiness.
type Checker interface {
	PingDB(ctx context.Context, timeout time.Duration) error
	PingRedis(ctx context.Context, timeout time.Duration) error
}

// Deps probes the Postgres pool and Redis client.
type Deps struct {
	DB    *pgxpool.Pool
	Redis *redis.Client
}

// PingDB implements Checker.
func (d Deps) PingDB(ctx context.Context, timeout time.Duration) error {
	if d.DB == nil {
		return errors.New("db not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return d.DB.Ping(ctx)
}

// PingRedis implements Checker.
func (d Deps) PingRedis(ctx context.Context, timeout time.Duration) error {
	if d.Redis == nil {
		return errors.New("redis not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return d.Redis.Ping(ctx).Err()
}

// Handler exposes HTTP handlers for health endpoints.
type Handler struct {
	Checker      Checker
	DBTimeout    time.Duration
	RedisTimeout time.Duration
}

// Live reports liveness status.
func (h Handler) Live(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Ready reports readiness. It fails while shutting down or when either
// dependency probe fails; both probes run concurrently.
func (h Handler) Ready(w http.ResponseWriter, r *http.Request) {
	switch {
	case !IsReady():
		common.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "shutting down"})
		return
	case h.Checker == nil:
		common.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "dependencies unavailable"})
		return
	}

	var dbErr, redisErr error
	var g errgroup.Group
	g.Go(func() error {
		dbErr = h.Checker.PingDB(r.Context(), h.dbTimeout())
		return nil
	})
	g.Go(func() error {
		redisErr = h.Checker.PingRedis(r.Context(), h.redisTimeout())
		return nil
	})
	_ = g.Wait()

	code := http.StatusOK
	if dbErr != nil || redisErr != nil {
		code = http.StatusServiceUnavailable
	}
	common.JSON(w, code, map[string]string{
		"db":    probeStatus(dbErr),
		"redis": probeStatus(redisErr),
	})
}

func probeStatus(err error) string {
	if err != nil {
		return err.Error()
	}
	return "ok"
}

func (h Handler) dbTimeout() time.Duration {
	if h.DBTimeout <= 0 {
		return 500 * time.Millisecond
	}
	return h.DBTimeout
}

func (h Handler) redisTimeout() time.Duration {
	if h.RedisTimeout <= 0 {
		return 300 * time.Millisecond
	}
	return h.RedisTimeout
}
