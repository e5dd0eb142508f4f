// Package config provides configuration structures and validation for the ledger services.
// It handles environment-based configuration for the HTTP gateway, the event processor
// and the operator CLI, including database connections, messaging, the lock reaper and
// the invoice reconciliation policy.
package config

import (
	"errors"
	"strings"
	"time"
)

// Config holds the complete application configuration with settings for all components.
type Config struct {
	Application    ApplicationConfig
	Logging        LoggingConfig
	Server         ServerConfig
	Auth           AuthConfig
	CORS           CORSConfig
	RateLimit      RateLimitConfig
	Kafka          KafkaConfig
	Postgres       PostgresConfig
	MongoDB        MongoDBConfig
	Redis          RedisConfig
	Outbox         OutboxConfig
	WorkerPool     WorkerPoolConfig
	LockReaper     LockReaperConfig
	Reconciliation ReconciliationConfig
}

// ApplicationConfig contains general application configuration
type ApplicationConfig struct {
	Env      string
	Name     string
	Currency string // ISO 4217 code used when formatting report amounts
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level string
}

// ServerConfig contains HTTP server configuration settings
type ServerConfig struct {
	Port            int           // Port to listen on
	ShutdownTimeout time.Duration // Grace period for server shutdown
	ReadTimeout     time.Duration // Maximum duration for reading entire request
	WriteTimeout    time.Duration // Maximum duration for writing response
	IdleTimeout     time.Duration // Maximum duration to wait for next request
}

// AuthConfig contains bearer token validation settings
type AuthConfig struct {
	JWTSecret string
	Issuer    string // Optional; when set, tokens must carry this issuer
}

// CORSConfig lists the browser origins allowed to call the API
type CORSConfig struct {
	AllowedOrigins []string
	MaxAge         time.Duration
}

// RateLimitConfig uses the limiter formatted rate, e.g. "100-M" for 100 requests per minute
type RateLimitConfig struct {
	Enabled bool
	Rate    string
}

// KafkaConfig contains Kafka configuration
type KafkaConfig struct {
	Brokers           string
	EventsTopic       string // Topic receiving ledger mutation events from the outbox
	NumPartitions     int
	ReplicationFactor int
	ConsumerGroup     string
	MinBytes          int
	MaxBytes          int
	MaxWait           time.Duration
	DLQTopic          string
}

// PostgresConfig contains PostgreSQL configuration
type PostgresConfig struct {
	URL             string        // Database connection string
	MaxConns        int32         // Maximum number of open connections
	MinConns        int32         // Minimum number of idle connections
	ConnMaxLifetime time.Duration // Maximum lifetime of a connection
	ConnMaxIdleTime time.Duration // Maximum idle time of a connection
	MigrationsPath  string        // Path to migration files
}

// MongoDBConfig contains MongoDB configuration
type MongoDBConfig struct {
	URI             string
	Database        string
	Timeout         time.Duration
	MaxPoolSize     uint64
	MinPoolSize     uint64
	MaxConnIdleTime time.Duration
}

// RedisConfig contains Redis configuration used for reaper coordination
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// OutboxConfig contains outbox pattern configuration
type OutboxConfig struct {
	PollingInterval  time.Duration
	BatchSize        int
	MaxRetryAttempts int
}

// WorkerPoolConfig contains worker pool configuration
type WorkerPoolConfig struct {
	Size int
}

// LockReaperConfig controls the periodic stale lock sweep
type LockReaperConfig struct {
	Enabled   bool
	Interval  time.Duration
	MaxAge    time.Duration // Locks older than this are released
	LeaderKey string
	LeaderTTL time.Duration
}

// ReconciliationConfig is the default invoice matching policy
type ReconciliationConfig struct {
	WindowDays            int
	DefaultToleranceCents int64
	CandidateKinds        []string
	ExcludeInvoiceAccount bool
	PayerAccountTypes     []string // Empty means any account type
	MaxCandidates         int
}

// validate performs validation of all configuration values,
// ensuring they meet minimum requirements and logical constraints
func (c *Config) validate() error {
	var validationErrors []string

	// Server
	if c.Server.Port <= 0 {
		validationErrors = append(validationErrors, "SERVER_PORT must be greater than 0")
	}
	if c.Server.ShutdownTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_SHUTDOWN_TIMEOUT must be greater than 0")
	}
	if c.Server.ReadTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_READ_TIMEOUT must be greater than 0")
	}
	if c.Server.WriteTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_WRITE_TIMEOUT must be greater than 0")
	}
	if c.Server.IdleTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_IDLE_TIMEOUT must be greater than 0")
	}

	if c.Auth.JWTSecret == "" {
		validationErrors = append(validationErrors, "AUTH_JWT_SECRET is required")
	}
	if c.RateLimit.Enabled && c.RateLimit.Rate == "" {
		validationErrors = append(validationErrors, "RATE_LIMIT_RATE is required when rate limiting is enabled")
	}
	if len(c.Application.Currency) != 3 {
		validationErrors = append(validationErrors, "APP_CURRENCY must be a 3-letter code")
	}

	// Kafka
	if len(c.Kafka.Brokers) == 0 {
		validationErrors = append(validationErrors, "KAFKA_BROKERS is required")
	}
	if c.Kafka.EventsTopic == "" {
		validationErrors = append(validationErrors, "KAFKA_EVENTS_TOPIC is required")
	}
	if c.Kafka.ConsumerGroup == "" {
		validationErrors = append(validationErrors, "KAFKA_CONSUMER_GROUP is required")
	}
	if c.Kafka.MinBytes <= 0 {
		validationErrors = append(validationErrors, "KAFKA_CONSUMER_MIN_BYTES must be greater than 0")
	}
	if c.Kafka.MaxBytes <= 0 {
		validationErrors = append(validationErrors, "KAFKA_CONSUMER_MAX_BYTES must be greater than 0")
	}
	if c.Kafka.MaxWait <= 0 {
		validationErrors = append(validationErrors, "KAFKA_CONSUMER_MAX_WAIT must be greater than 0")
	}

	// PostgreSQL
	if c.Postgres.URL == "" {
		validationErrors = append(validationErrors, "POSTGRES_URL is required")
	}
	if c.Postgres.MaxConns <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MAX_CONNS must be greater than 0")
	}
	if c.Postgres.MinConns <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MIN_CONNS must be greater than 0")
	}
	if c.Postgres.ConnMaxLifetime <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MAX_CONN_LIFETIME must be greater than 0")
	}
	if c.Postgres.ConnMaxIdleTime <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MAX_CONN_IDLE_TIME must be greater than 0")
	}

	// MongoDB
	if c.MongoDB.URI == "" {
		validationErrors = append(validationErrors, "MONGO_URI is required")
	}
	if c.MongoDB.Database == "" {
		validationErrors = append(validationErrors, "MONGO_DATABASE is required")
	}
	if c.MongoDB.Timeout <= 0 {
		validationErrors = append(validationErrors, "MONGO_TIMEOUT must be greater than 0")
	}
	if c.MongoDB.MaxPoolSize <= 0 {
		validationErrors = append(validationErrors, "MONGO_MAX_POOL_SIZE must be greater than 0")
	}

	if c.Redis.Addr == "" {
		validationErrors = append(validationErrors, "REDIS_ADDR is required")
	}

	// Outbox
	if c.Outbox.PollingInterval <= 0 {
		validationErrors = append(validationErrors, "OUTBOX_POLLING_INTERVAL must be greater than 0")
	}
	if c.Outbox.BatchSize <= 0 {
		validationErrors = append(validationErrors, "OUTBOX_BATCH_SIZE must be greater than 0")
	}
	if c.Outbox.MaxRetryAttempts <= 0 {
		validationErrors = append(validationErrors, "OUTBOX_MAX_RETRY_ATTEMPTS must be greater than 0")
	}

	if c.WorkerPool.Size <= 0 {
		validationErrors = append(validationErrors, "WORKER_POOL_SIZE must be greater than 0")
	}

	// Lock reaper
	if c.LockReaper.Interval <= 0 {
		validationErrors = append(validationErrors, "LOCK_REAPER_INTERVAL must be greater than 0")
	}
	if c.LockReaper.MaxAge < time.Minute {
		validationErrors = append(validationErrors, "LOCK_REAPER_MAX_AGE must be at least 1m")
	}
	if c.LockReaper.LeaderTTL <= 0 {
		validationErrors = append(validationErrors, "LOCK_REAPER_LEADER_TTL must be greater than 0")
	}

	// Reconciliation policy
	if c.Reconciliation.WindowDays < 0 {
		validationErrors = append(validationErrors, "RECONCILIATION_WINDOW_DAYS must not be negative")
	}
	if c.Reconciliation.DefaultToleranceCents < 0 {
		validationErrors = append(validationErrors, "RECONCILIATION_TOLERANCE_CENTS must not be negative")
	}
	if len(c.Reconciliation.CandidateKinds) == 0 {
		validationErrors = append(validationErrors, "RECONCILIATION_CANDIDATE_KINDS is required")
	}
	if c.Reconciliation.MaxCandidates <= 0 {
		validationErrors = append(validationErrors, "RECONCILIATION_MAX_CANDIDATES must be greater than 0")
	}

	if len(validationErrors) > 0 {
		return errors.New(strings.Join(validationErrors, ", "))
	}

	return nil
}
