package config

import (
	"fmt"
	"time"

	"github.com/CarlosMilan/Challenge-BCI/pkg/config"
	"github.com/CarlosMilan/Challenge-BCI/pkg/database"
	"github.com/CarlosMilan/Challenge-BCI/pkg/logger"
)

const (
	defaultJWTSecret  = "change-this-to-a-secure-secret"
	minJWTSecretBytes = 32
)

// Config holds all configuration for the user service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"USER_HTTP_PORT" envDefault:"8080"`

	// PostgreSQL
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"bci"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"bci_secret"`
	PostgresDB   string `env:"USER_DB_NAME" envDefault:"user_db"`
	PostgresSSL  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	DBMaxConns               int32 `env:"DB_MAX_CONNS" envDefault:"25"`
	DBMinConns               int32 `env:"DB_MIN_CONNS" envDefault:"5"`
	DBMaxConnLifetimeMinutes int   `env:"DB_MAX_CONN_LIFETIME_MINS" envDefault:"60"`
	DBMaxConnIdleTimeMinutes int   `env:"DB_MAX_CONN_IDLE_TIME_MINS" envDefault:"30"`
	SlowQueryThresholdMs     int   `env:"SLOW_QUERY_THRESHOLD_MS" envDefault:"200"`

	// JWT
	JWTSecret      string        `env:"JWT_SECRET" envDefault:"change-this-to-a-secure-secret"`
	JWTTokenExpiry time.Duration `env:"JWT_TOKEN_EXPIRY" envDefault:"1h"`
	JWTIssuer      string        `env:"JWT_ISSUER" envDefault:"user-service"`

	// Kafka
	KafkaEnabled bool     `env:"KAFKA_ENABLED" envDefault:"false"`
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// Redis
	RedisEnabled         bool          `env:"REDIS_ENABLED" envDefault:"false"`
	RedisHost            string        `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort            int           `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword        string        `env:"REDIS_PASSWORD"`
	RedisDB              int           `env:"REDIS_DB" envDefault:"0"`
	EmailReservationTTL  time.Duration `env:"EMAIL_RESERVATION_TTL" envDefault:"10s"`
	EmailReservationWait time.Duration `env:"EMAIL_RESERVATION_WAIT" envDefault:"2s"`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	// CORS and pprof
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
	PprofAllowedCIDRs  []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"127.0.0.1/32,::1/128" envSeparator:","`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := config.Load(cfg); err != nil {
		return nil, fmt.Errorf("load user config: %w", err)
	}
	return cfg, nil
}

// Validate checks ranges and, outside development, the JWT secret strength.
func (c *Config) Validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.JWTTokenExpiry <= 0 {
		return fmt.Errorf("JWT_TOKEN_EXPIRY must be positive, got %s", c.JWTTokenExpiry)
	}
	if c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS (%d) exceeds DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
	}
	if c.RedisEnabled && c.EmailReservationTTL <= 0 {
		return fmt.Errorf("EMAIL_RESERVATION_TTL must be positive, got %s", c.EmailReservationTTL)
	}
	if c.RedisEnabled && c.EmailReservationWait < 0 {
		return fmt.Errorf("EMAIL_RESERVATION_WAIT must not be negative, got %s", c.EmailReservationWait)
	}

	if c.Environment != "development" {
		if c.JWTSecret == defaultJWTSecret {
			return fmt.Errorf("JWT_SECRET must be explicitly set via environment variable in %q mode", c.Environment)
		}
		if len(c.JWTSecret) < minJWTSecretBytes {
			return fmt.Errorf("JWT_SECRET must be at least %d characters long, got %d", minJWTSecretBytes, len(c.JWTSecret))
		}
	}
	return nil
}

// Postgres returns the pool configuration.
func (c *Config) Postgres() database.PostgresConfig {
	return database.PostgresConfig{
		Host:            c.PostgresHost,
		Port:            c.PostgresPort,
		User:            c.PostgresUser,
		Password:        c.PostgresPass,
		DBName:          c.PostgresDB,
		SSLMode:         c.PostgresSSL,
		MaxConns:        c.DBMaxConns,
		MinConns:        c.DBMinConns,
		MaxConnLifetime: time.Duration(c.DBMaxConnLifetimeMinutes) * time.Minute,
		MaxConnIdleTime: time.Duration(c.DBMaxConnIdleTimeMinutes) * time.Minute,
	}
}

// Redis returns the Redis client configuration.
func (c *Config) Redis() database.RedisConfig {
	return database.RedisConfig{
		Host:     c.RedisHost,
		Port:     c.RedisPort,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
	}
}

// SlowQueryThreshold is the duration after which queries are logged as slow.
func (c *Config) SlowQueryThreshold() time.Duration {
	return time.Duration(c.SlowQueryThresholdMs) * time.Millisecond
}
