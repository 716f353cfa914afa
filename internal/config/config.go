// Package config holds the runtime settings of the wallet ledger binaries.
// Values come from defaults, an optional .env file and the process environment,
// in that order of precedence.
package config

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Config is the full configuration shared by the API gateway and the transaction processor.
type Config struct {
	Application  ApplicationConfig
	Logging      LoggingConfig
	Server       ServerConfig
	Kafka        KafkaConfig
	Postgres     PostgresConfig
	MongoDB      MongoDBConfig
	Redis        RedisConfig
	ExchangeRate ExchangeRateConfig
	Ledger       LedgerConfig
	Outbox       OutboxConfig
	WorkerPool   WorkerPoolConfig
	Metrics      MetricsConfig
}

type ApplicationConfig struct {
	Env  string
	Name string
}

type LoggingConfig struct {
	Level string
}

// ServerConfig configures the HTTP listener of the API gateway.
type ServerConfig struct {
	Port            int
	ShutdownTimeout time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
}

// KafkaConfig configures the asynchronous transaction intake.
type KafkaConfig struct {
	Brokers           string
	TransactionTopic  string
	NumPartitions     int
	ReplicationFactor int
	ConsumerGroup     string
	MinBytes          int
	MaxBytes          int
	MaxWait           time.Duration
	StartOffset       int64
	DLQTopic          string
}

// BrokerList splits the comma separated KAFKA_BROKERS value.
func (k KafkaConfig) BrokerList() []string {
	var brokers []string
	for _, b := range strings.Split(k.Brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

type PostgresConfig struct {
	URL             string
	MaxConns        int32
	MinConns        int32
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	MigrationsPath  string
}

// MongoDBConfig configures the audit archive.
type MongoDBConfig struct {
	URI             string
	Database        string
	Timeout         time.Duration
	MaxPoolSize     uint64
	MinPoolSize     uint64
	MaxConnIdleTime time.Duration
}

// RedisConfig configures the shared exchange rate cache.
type RedisConfig struct {
	URL string
}

// ExchangeRateConfig configures the upstream rate provider and its cache.
type ExchangeRateConfig struct {
	BaseURL        string
	APIKey         string
	Timeout        time.Duration
	MaxRetries     int
	CacheTTL       time.Duration
	LocalCacheSize int // 0 disables the in-process tier
	LocalCacheTTL  time.Duration
}

// LedgerConfig tunes the ledger engine.
type LedgerConfig struct {
	DefaultCurrency           string
	MaxRetries                int // compare-and-set attempts before ErrRetriesExhausted
	RetryInitialInterval      time.Duration
	RetryMaxInterval          time.Duration
	RecordConversionFailures  bool
	ReconvertOnCurrencyChange bool
}

type OutboxConfig struct {
	PollingInterval  time.Duration
	BatchSize        int
	MaxRetryAttempts int
}

type WorkerPoolConfig struct {
	Size int
}

// MetricsConfig configures the Prometheus endpoint. The gateway serves it on
// its own router; the processor starts a dedicated listener on Port.
type MetricsConfig struct {
	Port int
	Path string
}

var positive = []validation.Rule{validation.Required, validation.Min(1)}

// validate reports every invalid setting at once, keyed by its environment variable.
func (c *Config) validate() error {
	errs := validation.Errors{
		"SERVER_PORT":             validation.Validate(c.Server.Port, positive...),
		"SERVER_SHUTDOWN_TIMEOUT": validation.Validate(c.Server.ShutdownTimeout, positive...),
		"SERVER_READ_TIMEOUT":     validation.Validate(c.Server.ReadTimeout, positive...),
		"SERVER_WRITE_TIMEOUT":    validation.Validate(c.Server.WriteTimeout, positive...),
		"SERVER_IDLE_TIMEOUT":     validation.Validate(c.Server.IdleTimeout, positive...),

		"KAFKA_BROKERS":            validation.Validate(c.Kafka.Brokers, validation.Required),
		"KAFKA_TRANSACTION_TOPIC":  validation.Validate(c.Kafka.TransactionTopic, validation.Required),
		"KAFKA_CONSUMER_GROUP":     validation.Validate(c.Kafka.ConsumerGroup, validation.Required),
		"KAFKA_CONSUMER_MIN_BYTES": validation.Validate(c.Kafka.MinBytes, positive...),
		"KAFKA_CONSUMER_MAX_BYTES": validation.Validate(c.Kafka.MaxBytes, positive...),
		"KAFKA_CONSUMER_MAX_WAIT":  validation.Validate(c.Kafka.MaxWait, positive...),
		"KAFKA_DLQ_TOPIC":          validation.Validate(c.Kafka.DLQTopic, validation.Required),

		"POSTGRES_URL":                validation.Validate(c.Postgres.URL, validation.Required),
		"POSTGRES_MAX_CONNS":          validation.Validate(c.Postgres.MaxConns, positive...),
		"POSTGRES_MIN_CONNS":          validation.Validate(c.Postgres.MinConns, positive...),
		"POSTGRES_MAX_CONN_LIFETIME":  validation.Validate(c.Postgres.ConnMaxLifetime, positive...),
		"POSTGRES_MAX_CONN_IDLE_TIME": validation.Validate(c.Postgres.ConnMaxIdleTime, positive...),

		"MONGO_URI":                validation.Validate(c.MongoDB.URI, validation.Required),
		"MONGO_DATABASE":           validation.Validate(c.MongoDB.Database, validation.Required),
		"MONGO_TIMEOUT":            validation.Validate(c.MongoDB.Timeout, positive...),
		"MONGO_MAX_POOL_SIZE":      validation.Validate(c.MongoDB.MaxPoolSize, validation.Required),
		"MONGO_MIN_POOL_SIZE":      validation.Validate(c.MongoDB.MinPoolSize, validation.Required),
		"MONGO_MAX_CONN_IDLE_TIME": validation.Validate(c.MongoDB.MaxConnIdleTime, positive...),

		"REDIS_URL": validation.Validate(c.Redis.URL, validation.Required),

		"EXCHANGE_RATE_BASE_URL":    validation.Validate(c.ExchangeRate.BaseURL, validation.Required, is.URL),
		"EXCHANGE_RATE_TIMEOUT":     validation.Validate(c.ExchangeRate.Timeout, positive...),
		"EXCHANGE_RATE_MAX_RETRIES": validation.Validate(c.ExchangeRate.MaxRetries, validation.Min(0)),
		"EXCHANGE_RATE_CACHE_TTL":   validation.Validate(c.ExchangeRate.CacheTTL, positive...),

		"LEDGER_DEFAULT_CURRENCY":       validation.Validate(c.Ledger.DefaultCurrency, validation.Required, is.CurrencyCode, is.UpperCase),
		"LEDGER_MAX_RETRIES":            validation.Validate(c.Ledger.MaxRetries, positive...),
		"LEDGER_RETRY_INITIAL_INTERVAL": validation.Validate(c.Ledger.RetryInitialInterval, positive...),
		"LEDGER_RETRY_MAX_INTERVAL":     validation.Validate(c.Ledger.RetryMaxInterval, positive...),

		"OUTBOX_POLLING_INTERVAL":   validation.Validate(c.Outbox.PollingInterval, positive...),
		"OUTBOX_BATCH_SIZE":         validation.Validate(c.Outbox.BatchSize, positive...),
		"OUTBOX_MAX_RETRY_ATTEMPTS": validation.Validate(c.Outbox.MaxRetryAttempts, positive...),

		"WORKER_POOL_SIZE": validation.Validate(c.WorkerPool.Size, positive...),

		"METRICS_PORT": validation.Validate(c.Metrics.Port, positive...),
		"METRICS_PATH": validation.Validate(c.Metrics.Path, validation.Required),
	}

	return errs.Filter()
}
