package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-travel/internal/booking"
	"github.com/noah-isme/backend-travel/internal/common"
	"github.com/noah-isme/backend-travel/internal/config"
	"github.com/noah-isme/backend-travel/internal/db"
	"github.com/noah-isme/backend-travel/internal/health"
	"github.com/noah-isme/backend-travel/internal/lock"
	"github.com/noah-isme/backend-travel/internal/obs"
	"github.com/noah-isme/backend-travel/internal/pricing"
	"github.com/noah-isme/backend-travel/internal/property"
	"github.com/noah-isme/backend-travel/internal/queue"
	"github.com/noah-isme/backend-travel/internal/ratelimit"
	"github.com/noah-isme/backend-travel/internal/resilience"
	"github.com/noah-isme/backend-travel/internal/security"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logFormat := envOrDefault("OBS_LOG_FORMAT", "json")
	logLevel := envOrDefault("OBS_LOG_LEVEL", "info")
	logger := obs.NewLogger(logFormat, logLevel).With().Str("env", cfg.AppEnv).Logger()

	metricsNamespace := envOrDefault("OBS_METRICS_NAMESPACE", "travel")
	metricsEnabled := envBool("OBS_ENABLE_PROMETHEUS", true)
	obs.MustRegisterDomainMetrics(metricsNamespace, nil)
	resilience.MustRegisterMetrics(metricsNamespace, nil)

	tracingEnabled := envBool("OBS_ENABLE_TRACING", true)
	if tracingEnabled {
		shutdown, err := obs.InitTracer(context.Background(), obs.TracingConfig{
			ServiceName:    "travel-api",
			ServiceVersion: envOrDefault("APP_VERSION", "dev"),
			Endpoint:       envOrDefault("OBS_OTLP_ENDPOINT", ""),
			Exporter:       envOrDefault("OBS_TRACING_EXPORTER", "otlp"),
			SamplingRatio:  envFloat("OBS_TRACING_SAMPLING_RATIO", 1.0),
			Environment:    cfg.AppEnv,
		})
		if err != nil {
			logger.Error().Err(err).Msg("initialise tracing")
			tracingEnabled = false
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logger.Error().Err(err).Msg("shutdown tracer")
				}
			}()
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.MigrateOnStart {
		if err := db.Migrate(cfg.DatabaseURL); err != nil {
			logger.Fatal().Err(err).Msg("run migrations")
		}
		logger.Info().Msg("migrations applied")
	}

	connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pool, err := db.Connect(connectCtx, cfg.DatabaseURL, "travel-api")
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	defer pool.Close()

	redisClient := mustInitRedis(connectCtx, cfg, metricsEnabled, logger)
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("close redis")
		}
	}()

	redisConnOpt, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url for task queue")
	}
	taskClient := queue.NewClient(redisConnOpt).WithBreaker(resilience.NewBreaker(resilience.BreakerConfig{
		Target:       "booking_confirmations",
		MinRequests:  envInt("BREAKER_MIN_REQUESTS", 5),
		FailureRatio: envFloat("BREAKER_FAILURE_RATIO", 0.5),
		OpenFor:      envDurationMillis("BREAKER_OPEN_MS", 30000),
		Logger:       logger,
	}))
	defer func() {
		if err := taskClient.Close(); err != nil {
			logger.Error().Err(err).Msg("close task client")
		}
	}()

	propertyService, err := property.NewService(property.ServiceConfig{
		Store:  property.NewPostgresStore(pool),
		Cache:  property.NewCache(redisClient, cfg.PropertyCacheTTL),
		Logger: logger.With().Str("component", "property").Logger(),
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise property service")
	}
	propertyHandler := &property.Handler{Svc: propertyService, Logger: logger}

	bookingService, err := booking.NewService(booking.ServiceConfig{
		Properties: propertyService,
		Store:      booking.NewPostgresStore(pool),
		Locker: lock.Locker{
			R:            redisClient,
			RetryBackoff: cfg.LockRetryBackoff,
			MaxWait:      cfg.BookingLockTTL,
		},
		Enqueuer:   taskClient,
		Calculator: pricing.NewCalculator(bundlePolicy(cfg, logger)),
		Logger:     logger.With().Str("component", "booking").Logger(),
		LockTTL:    cfg.BookingLockTTL,
		Currency:   cfg.CurrencyCode,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise booking service")
	}
	bookingHandler := &booking.Handler{
		Svc:       bookingService,
		Validator: booking.NewRequestValidator(),
		Logger:    logger,
	}

	quoteLimiter, err := ratelimit.NewLimiter(redisClient, "ratelimit:quotes", int64(cfg.QuoteRateLimit), cfg.QuoteRatePeriod)
	if err != nil {
		logger.Warn().Err(err).Msg("quote rate limiting disabled")
	}
	quoteLimit := ratelimit.Handler{
		Limiter: quoteLimiter,
		OnError: func(err error) { logger.Warn().Err(err).Msg("rate limiter unavailable") },
	}

	idem := common.Idem{R: redisClient, TTL: cfg.IdempotencyTTL}

	var httpMetrics *obs.HTTPMetrics
	if metricsEnabled {
		buckets := obs.ParseBucketsCSV(envOrDefault("OBS_METRICS_BUCKETS_MS", ""))
		httpMetrics = obs.NewHTTPMetrics(metricsNamespace, buckets, nil)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if tracingEnabled {
		r.Use(obs.TracingMiddleware)
	}
	if httpMetrics != nil {
		r.Use(obs.HTTPObs{Metrics: httpMetrics}.Middleware)
	}
	r.Use(obs.RequestLogger{Logger: logger}.Middleware)
	r.Use(security.Headers{Enable: cfg.SecurityHeadersEnabled, EnableHSTS: cfg.HSTSEnabled}.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins(cfg),
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "Idempotency-Key", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After"},
		MaxAge:         300,
	}))
	r.Use(security.BodyLimit{Max: cfg.BodyLimitBytes}.Middleware)

	if metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	healthHandler := health.Handler{
		Checker:      health.Deps{DB: pool, Redis: redisClient},
		DBTimeout:    envDurationMillis("HEALTH_READY_DB_TIMEOUT_MS", 500),
		RedisTimeout: envDurationMillis("HEALTH_READY_REDIS_TIMEOUT_MS", 300),
	}
	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)

	r.Route("/api/v1", func(v chi.Router) {
		v.Get("/properties/{id}", propertyHandler.Get)
		v.Get("/properties/{id}/services", propertyHandler.Services)

		v.With(quoteLimit.Middleware).Post("/quotes", bookingHandler.Quote)

		v.With(idem.Middleware).Post("/bookings", bookingHandler.Create)
		v.Get("/bookings/{id}", bookingHandler.Get)
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			logger.Fatal().Err(err).Msg("server exited unexpectedly")
		}
	case <-ctx.Done():
	}

	health.SetReady(false)
	logger.Info().Msg("shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), envDurationMillis("SHUTDOWN_TIMEOUT_MS", 10000))
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown")
	}
}

func bundlePolicy(cfg *config.Config, logger zerolog.Logger) pricing.BundlePolicy {
	tiers, err := pricing.ParseTiers(cfg.PricingBundleTiers)
	if err == nil {
		policy, perr := pricing.NewBundlePolicy(tiers)
		if perr == nil {
			return policy
		}
		err = perr
	}
	logger.Error().Err(err).Str("tiers", cfg.PricingBundleTiers).Msg("invalid bundle tiers, using defaults")
	return pricing.DefaultBundlePolicy()
}

func mustInitRedis(ctx context.Context, cfg *config.Config, metricsEnabled bool, logger zerolog.Logger) *redis.Client {
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url")
	}
	client := redis.NewClient(redisOpts)
	if err := redisotel.InstrumentTracing(client); err != nil {
		logger.Error().Err(err).Msg("instrument redis tracing")
	}
	if metricsEnabled {
		if err := redisotel.InstrumentMetrics(client); err != nil {
			logger.Error().Err(err).Msg("instrument redis metrics")
		}
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Msg("ping redis")
	}
	return client
}

func allowedOrigins(cfg *config.Config) []string {
	if len(cfg.CORSAllowedOrigins) == 0 {
		return []string{"*"}
	}
	return cfg.CORSAllowedOrigins
}

func envOrDefault(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		trimmed := strings.TrimSpace(val)
		if trimmed != "" {
			return trimmed
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "1", "t", "true", "yes", "on":
			return true
		case "0", "f", "false", "no", "off":
			return false
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(strings.TrimSpace(val)); err == nil {
			return parsed
		}
	}
	return fallback
}

func envDurationMillis(key string, fallback int) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(strings.TrimSpace(val)); err == nil {
			return time.Duration(parsed) * time.Millisecond
		}
	}
	return time.Duration(fallback) * time.Millisecond
}
