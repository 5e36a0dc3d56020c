package config

import (
	"fmt"
	"os"
	"time"

	pkgconfig "github.com/shubhamchoudhary-2003/fullstack/pkg/config"
	"github.com/shubhamchoudhary-2003/fullstack/pkg/database"
)

// Config holds all configuration for the storefront backend.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"HTTP_PORT" envDefault:"9000"`

	// PostgreSQL. DATABASE_URL overrides the individual POSTGRES_* settings.
	DatabaseURL  string `env:"DATABASE_URL"`
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"fashion"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"fashion_secret"`
	PostgresDB   string `env:"POSTGRES_DB" envDefault:"fashion"`
	PostgresSSL  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	// Database pool
	DBMaxConns            int32 `env:"DB_MAX_CONNS" envDefault:"25"`
	DBMinConns            int32 `env:"DB_MIN_CONNS" envDefault:"5"`
	DBMaxConnLifetimeMins int   `env:"DB_MAX_CONN_LIFETIME_MINUTES" envDefault:"60"`
	DBMaxConnIdleTimeMins int   `env:"DB_MAX_CONN_IDLE_TIME_MINUTES" envDefault:"30"`

	// Redis region cache
	RedisURL       string        `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	RegionCacheTTL time.Duration `env:"REGION_CACHE_TTL" envDefault:"10m"`

	// Kafka
	KafkaBrokers       []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`
	KafkaConsumerGroup string   `env:"KAFKA_CONSUMER_GROUP" envDefault:"fashion-revalidate"`

	// Storefront revalidation
	StorefrontURL       string `env:"STOREFRONT_URL" envDefault:"http://localhost:8000"`
	RevalidateSecret    string `env:"REVALIDATE_SECRET"`
	DisableRevalidation bool   `env:"DISABLE_REVALIDATION" envDefault:"false"`

	// CORS origins, comma separated
	StoreCORS []string `env:"STORE_CORS" envDefault:"http://localhost:8000" envSeparator:","`
	AdminCORS []string `env:"ADMIN_CORS" envDefault:"http://localhost:7000,http://localhost:7001" envSeparator:","`

	// Admin authentication
	JWTSecret string `env:"JWT_SECRET" envDefault:"supersecret"`

	// Storefront rate limiting
	StoreRateLimitRPS   float64 `env:"STORE_RATE_LIMIT_RPS" envDefault:"20"`
	StoreRateLimitBurst int     `env:"STORE_RATE_LIMIT_BURST" envDefault:"40"`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	// Pprof debug endpoints (IP allowlist in CIDR notation)
	PprofAllowedCIDRs []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"10.0.0.0/8,172.16.0.0/12,192.168.0.0/16,127.0.0.0/8,::1/128" envSeparator:","`

	// Slow query logging
	SlowQueryThresholdMs int `env:"LOG_SLOW_QUERY_MS" envDefault:"500"`
}

// Load reads .env files from the working directory, then configuration from
// environment variables.
func Load() (*Config, error) {
	if err := pkgconfig.LoadDotEnv(".", envOrDefault()); err != nil {
		return nil, fmt.Errorf("load dotenv: %w", err)
	}

	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

const (
	defaultJWTSecret = "supersecret"
	minJWTSecretLen  = 32
)

func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.DatabaseURL == "" && c.PostgresHost == "" {
		return fmt.Errorf("DATABASE_URL or POSTGRES_HOST is required")
	}
	if len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	// Outside development the secret must be set explicitly and be strong.
	if c.Environment != "development" {
		if c.JWTSecret == defaultJWTSecret {
			return fmt.Errorf("JWT_SECRET must be explicitly set via environment variable in %q mode", c.Environment)
		}
		if len(c.JWTSecret) < minJWTSecretLen {
			return fmt.Errorf("JWT_SECRET must be at least %d characters long, got %d", minJWTSecretLen, len(c.JWTSecret))
		}
	}
	if c.StoreRateLimitRPS <= 0 || c.StoreRateLimitBurst < 1 {
		return fmt.Errorf("STORE_RATE_LIMIT_RPS and STORE_RATE_LIMIT_BURST must be positive")
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1.0 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %f", c.OTELSampleRate)
	}
	return nil
}

// RevalidationEnabled reports whether catalog events should be forwarded to
// the storefront.
func (c *Config) RevalidationEnabled() bool {
	return !c.DisableRevalidation && c.StorefrontURL != ""
}

// Postgres returns the pool configuration for database.Connect.
func (c *Config) Postgres() *database.PostgresConfig {
	return &database.PostgresConfig{
		URL:             c.DatabaseURL,
		Host:            c.PostgresHost,
		Port:            c.PostgresPort,
		User:            c.PostgresUser,
		Password:        c.PostgresPass,
		DBName:          c.PostgresDB,
		SSLMode:         c.PostgresSSL,
		MaxConns:        c.DBMaxConns,
		MinConns:        c.DBMinConns,
		MaxConnLifetime: time.Duration(c.DBMaxConnLifetimeMins) * time.Minute,
		MaxConnIdleTime: time.Duration(c.DBMaxConnIdleTimeMins) * time.Minute,
	}
}

// Redis returns the Redis client configuration.
func (c *Config) Redis() database.RedisConfig {
	return database.RedisConfig{URL: c.RedisURL}
}

func envOrDefault() string {
	if env := os.Getenv("ENVIRONMENT"); env != "" {
		return env
	}
	return "development"
}
