package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// DefaultBundleTiers gives 5% off for one or two services and 10% from three.
const DefaultBundleTiers = "1:0.05,3:0.10"

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv             string
	Port               string
	DatabaseURL        string
	RedisURL           string
	CORSAllowedOrigins []string
	CurrencyCode       string

	PricingBundleTiers string

	PropertyCacheTTL time.Duration
	IdempotencyTTL   time.Duration
	BookingLockTTL   time.Duration
	LockRetryBackoff time.Duration

	QuoteRateLimit  int
	QuoteRatePeriod time.Duration
	BodyLimitBytes  int64

	MigrateOnStart    bool
	WorkerConcurrency int

	NotifyEmailEnabled bool
	NotifyEmailFrom    string

	SecurityHeadersEnabled bool
	HSTSEnabled            bool
}

// Load reads configuration from environment variables and an optional .env file.
func Load() (*Config, error) {
	return load(nil)
}

// LoadForTests loads like Load, then applies overrides on top of the
// environment without mutating it. An empty override value unsets the key.
func LoadForTests(overrides map[string]string) (*Config, error) {
	return load(overrides)
}

func load(overrides map[string]string) (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}
	for key, value := range overrides {
		if strings.TrimSpace(value) == "" {
			k.Delete(key)
			continue
		}
		if err := k.Set(key, value); err != nil {
			return nil, fmt.Errorf("override %s: %w", key, err)
		}
	}
	r := reader{k: k}

	cfg := &Config{
		AppEnv:             r.str("APP_ENV", "development"),
		Port:               r.str("PORT", "8080"),
		DatabaseURL:        r.str("DATABASE_URL", ""),
		RedisURL:           r.str("REDIS_URL", ""),
		CORSAllowedOrigins: r.list("CORS_ALLOWED_ORIGINS"),
		CurrencyCode:       strings.ToUpper(r.str("CURRENCY_CODE", "USD")),

		PricingBundleTiers: r.str("PRICING_BUNDLE_TIERS", DefaultBundleTiers),

		PropertyCacheTTL: r.duration("PROPERTY_CACHE_TTL", 5*time.Minute),
		IdempotencyTTL:   r.duration("IDEMPOTENCY_TTL", 24*time.Hour),
		BookingLockTTL:   r.duration("BOOKING_LOCK_TTL", 10*time.Second),
		LockRetryBackoff: r.duration("LOCK_RETRY_BACKOFF", 50*time.Millisecond),

		QuoteRateLimit:  r.integer("QUOTE_RATE_LIMIT", 120),
		QuoteRatePeriod: r.duration("QUOTE_RATE_PERIOD", time.Minute),
		BodyLimitBytes:  int64(r.integer("BODY_LIMIT_BYTES", 1<<20)),

		MigrateOnStart:    r.boolean("MIGRATE_ON_START", false),
		WorkerConcurrency: r.integer("WORKER_CONCURRENCY", 5),

		NotifyEmailEnabled: r.boolean("NOTIFY_EMAIL_ENABLED", false),
		NotifyEmailFrom:    r.str("NOTIFY_EMAIL_FROM", "bookings@travel.local"),

		SecurityHeadersEnabled: r.boolean("SECURITY_HEADERS_ENABLED", true),
		HSTSEnabled:            r.boolean("SECURITY_HSTS_ENABLED", false),
	}

	switch {
	case cfg.DatabaseURL == "":
		return nil, errors.New("DATABASE_URL is required")
	case cfg.RedisURL == "":
		return nil, errors.New("REDIS_URL is required")
	}
	return cfg, nil
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	switch {
	case port == "":
		return ":8080"
	case strings.HasPrefix(port, ":"):
		return port
	default:
		return ":" + port
	}
}

// reader reads typed values from koanf, falling back when a key is unset or
// does not parse.
type reader struct {
	k *koanf.Koanf
}

func (r reader) str(key, fallback string) string {
	if v := strings.TrimSpace(r.k.String(key)); v != "" {
		return v
	}
	return fallback
}

func (r reader) list(key string) []string {
	var out []string
	for _, part := range strings.Split(r.k.String(key), ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func (r reader) duration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(r.str(key, ""))
	if err != nil {
		return fallback
	}
	return d
}

func (r reader) integer(key string, fallback int) int {
	n, err := strconv.Atoi(r.str(key, ""))
	if err != nil {
		return fallback
	}
	return n
}

func (r reader) boolean(key string, fallback bool) bool {
	switch strings.ToLower(r.str(key, "")) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}
