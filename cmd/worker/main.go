package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/backend-travel/internal/config"
	"github.com/noah-isme/backend-travel/internal/notify"
	"github.com/noah-isme/backend-travel/internal/obs"
	"github.com/noah-isme/backend-travel/internal/queue"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logFormat := envOrDefault("OBS_LOG_FORMAT", "json")
	logLevel := envOrDefault("OBS_LOG_LEVEL", "info")
	logger := obs.NewLogger(logFormat, logLevel).With().Str("component", "worker").Logger()
	obs.MustRegisterDomainMetrics(envOrDefault("OBS_METRICS_NAMESPACE", "travel"), nil)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisConnOpt, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url")
	}

	notifier := notify.BookingNotifier{
		Mail:     notify.LogSender{From: cfg.NotifyEmailFrom, Logger: logger},
		Enabled:  cfg.NotifyEmailEnabled,
		Currency: cfg.CurrencyCode,
		Logger:   logger,
	}

	srv := queue.NewServer(redisConnOpt, queue.WorkerConfig{
		Concurrency: cfg.WorkerConcurrency,
		Logger:      logger,
	})
	if err := srv.Start(queue.NewServeMux(notifier, logger)); err != nil {
		logger.Fatal().Err(err).Msg("start worker")
	}

	metricsAddr := envOrDefault("WORKER_METRICS_ADDR", ":9091")
	metricsSrv := &http.Server{Addr: metricsAddr, Handler: promhttp.Handler(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics server stopped")
		}
	}()

	logger.Info().Int("concurrency", cfg.WorkerConcurrency).Msg("worker starting")
	<-ctx.Done()

	logger.Info().Msg("worker shutting down")
	srv.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown metrics server")
	}
	logger.Info().Msg("worker shutdown complete")
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
