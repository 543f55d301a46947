// Package config provides configuration structures and validation for the payment services.
// A Config is built once at startup and handed to constructors; nothing reads it from
// package-level state afterwards.
package config

import (
	"errors"
	"strings"
	"time"
)

// Return modes for the synchronous browser return path.
const (
	ReturnModeReconcile = "reconcile" // both callback channels run the reconciler
	ReturnModeAdvisory  = "advisory"  // only the IPN channel mutates state
)

// Config holds the complete application configuration with settings for all components.
type Config struct {
	Application ApplicationConfig
	Logging     LoggingConfig
	Server      ServerConfig
	Kafka       KafkaConfig
	Postgres    PostgresConfig
	MongoDB     MongoDBConfig
	Outbox      OutboxConfig
	WorkerPool  WorkerPoolConfig
	VNPay       VNPayConfig
	Payment     PaymentConfig
	Reconciler  ReconcilerConfig
	Audit       AuditConfig
}

// ApplicationConfig contains general application configuration
type ApplicationConfig struct {
	Env  string
	Name string
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

// KafkaConfig contains Kafka configuration
type KafkaConfig struct {
	Brokers           string
	EnrollmentTopic   string // Topic carrying enrollment grant requests
	NumPartitions     int
	ReplicationFactor int
	ConsumerGroup     string
	MinBytes          int
	MaxBytes          int
	MaxWait           time.Duration
	StartOffset       int64
	DLQTopic          string // Topic for Dead Letter Queue
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

// OutboxConfig contains enrollment outbox relay configuration
type OutboxConfig struct {
	PollingInterval  time.Duration
	BatchSize        int
	MaxRetryAttempts int // Attempts before a message is parked as FAILED_TO_PUBLISH
}

// WorkerPoolConfig contains worker pool configuration
type WorkerPoolConfig struct {
	Size int // Maximum number of workers in the pool
}

// VNPayConfig holds the merchant settings issued by VNPay.
// Credentials are checked by the gateway binary only; see vnpay.MerchantConfig.Validate.
type VNPayConfig struct {
	TmnCode     string
	HashSecret  string
	PayURL      string
	ReturnURL   string
	IPNURL      string
	APIURL      string
	Version     string
	Command     string
	Currency    string
	Locale      string
	OrderType   string
	Timezone    string        // Business timezone for vnp_CreateDate / vnp_ExpireDate
	ExpireAfter time.Duration // Zero disables vnp_ExpireDate
}

// PaymentConfig contains settings for the merchant-facing payment flow
type PaymentConfig struct {
	StatusPageURL string // Where the browser lands after the synchronous return
	ReturnMode    string // ReturnModeReconcile or ReturnModeAdvisory
}

// ReconcilerConfig bounds the retry of transient store errors during a status transition
type ReconcilerConfig struct {
	MaxAttempts  int
	RetryBackoff time.Duration
}

// AuditConfig contains callback audit writer configuration
type AuditConfig struct {
	WriteTimeout time.Duration
	PoolSize     int
}

// validate checks every configuration value and reports all problems at once.
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

	// Kafka
	if c.Kafka.Brokers == "" {
		validationErrors = append(validationErrors, "KAFKA_BROKERS is required")
	}
	if c.Kafka.EnrollmentTopic == "" {
		validationErrors = append(validationErrors, "KAFKA_ENROLLMENT_TOPIC is required")
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
	if c.Kafka.DLQTopic == "" {
		validationErrors = append(validationErrors, "KAFKA_DLQ_TOPIC is required")
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

	// VNPay protocol constants; merchant credentials are checked where they are used
	if c.VNPay.Version == "" {
		validationErrors = append(validationErrors, "VNPAY_VERSION is required")
	}
	if c.VNPay.Command == "" {
		validationErrors = append(validationErrors, "VNPAY_COMMAND is required")
	}
	if c.VNPay.Currency == "" {
		validationErrors = append(validationErrors, "VNPAY_CURRENCY is required")
	}
	if c.VNPay.Timezone == "" {
		validationErrors = append(validationErrors, "VNPAY_TIMEZONE is required")
	}
	if c.VNPay.ExpireAfter < 0 {
		validationErrors = append(validationErrors, "VNPAY_EXPIRE_AFTER must not be negative")
	}

	// Payment
	if c.Payment.ReturnMode != ReturnModeReconcile && c.Payment.ReturnMode != ReturnModeAdvisory {
		validationErrors = append(validationErrors, "PAYMENT_RETURN_MODE must be one of: reconcile, advisory")
	}

	// Reconciler
	if c.Reconciler.MaxAttempts <= 0 {
		validationErrors = append(validationErrors, "RECONCILER_MAX_ATTEMPTS must be greater than 0")
	}
	if c.Reconciler.RetryBackoff < 0 {
		validationErrors = append(validationErrors, "RECONCILER_RETRY_BACKOFF must not be negative")
	}

	// Audit
	if c.Audit.WriteTimeout <= 0 {
		validationErrors = append(validationErrors, "AUDIT_WRITE_TIMEOUT must be greater than 0")
	}
	if c.Audit.PoolSize <= 0 {
		validationErrors = append(validationErrors, "AUDIT_POOL_SIZE must be greater than 0")
	}

	if len(validationErrors) > 0 {
		return errors.New(strings.Join(validationErrors, ", "))
	}

	return nil
}
