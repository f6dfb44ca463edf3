package config

import (
	"fmt"
	"os"
	"parkgate/pkg/client"
	"parkgate/pkg/logger"
	"regexp"
	"strconv"
	"time"
)

const (
	StoreDriverMongo  = "mongo"
	StoreDriverMemory = "memory"
)

type Config struct {
	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	// StoreDriver selects the backing store: "mongo" for production,
	// "memory" for single-process deployments and local development.
	StoreDriver string

	Port string

	AllocationStrategy  string
	ClaimMaxAttempts    int
	SessionCloseRetries int
	VehicleLockTTL      time.Duration
	RateRefreshInterval time.Duration
	Currency            string

	KafkaEnabled       bool
	GateEventsTopic    string
	GateEventsGroupID  string
	GateEventsDLQTopic string
	ReceiptsTopic      string

	RateLimitRequests int
	RateLimitWindow   time.Duration

	RequestTimeout time.Duration
	IdempotencyTTL time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	Log    *logger.Logger
	Client *client.Client
}

func Load(serviceName string) *Config {
	cfg := &Config{
		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		StoreDriver: getEnvStr(EnvStoreDriver, DefaultStoreDriver),

		Port: getEnvStr(EnvPort, DefaultPort),

		AllocationStrategy:  getEnvStr(EnvAllocationStrategy, DefaultAllocationStrategy),
		ClaimMaxAttempts:    getEnvNum(EnvClaimMaxAttempts, DefaultClaimMaxAttempts),
		SessionCloseRetries: getEnvNum(EnvSessionCloseRetries, DefaultSessionCloseRetries),
		VehicleLockTTL:      getEnvDuration(EnvVehicleLockTTL, DefaultVehicleLockTTL),
		RateRefreshInterval: getEnvDuration(EnvRateRefreshInterval, DefaultRateRefreshInterval),
		Currency:            getEnvStr(EnvCurrency, DefaultCurrency),

		KafkaEnabled:       getEnvBool(EnvKafkaEnabled, DefaultKafkaEnabled),
		GateEventsTopic:    getEnvStr(EnvGateEventsTopic, DefaultGateEventsTopic),
		GateEventsGroupID:  getEnvStr(EnvGateEventsGroupID, DefaultGateEventsGroupID),
		GateEventsDLQTopic: getEnvStr(EnvGateEventsDLQTopic, DefaultGateEventsDLQTopic),
		ReceiptsTopic:      getEnvStr(EnvReceiptsTopic, DefaultReceiptsTopic),

		RateLimitRequests: getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   getEnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		IdempotencyTTL: getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
			Format:    logger.JSON,
			AddSource: true,
			Service:   serviceName,
		}),
		Client: client.NewClient(),
	}

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.StoreDriver != StoreDriverMongo && cfg.StoreDriver != StoreDriverMemory {
		errors = append(errors, fmt.Sprintf("StoreDriver must be %q or %q, got: %s", StoreDriverMongo, StoreDriverMemory, cfg.StoreDriver))
	}

	if cfg.StoreDriver == StoreDriverMongo {
		if cfg.MongoURI == "" {
			errors = append(errors, "MongoURI cannot be empty")
		} else if !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
			errors = append(errors, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", cfg.MongoURI))
		}
		if cfg.MongoDatabaseName == "" {
			errors = append(errors, "MongoDatabaseName cannot be empty")
		}
		if cfg.MongoConnTimeout <= 0 {
			errors = append(errors, fmt.Sprintf("MongoConnTimeout must be positive, got: %s", cfg.MongoConnTimeout))
		}
	}

	switch cfg.AllocationStrategy {
	case "nearest", "farthest", "roundrobin":
	default:
		errors = append(errors, fmt.Sprintf("AllocationStrategy must be one of [nearest, farthest, roundrobin], got: %s", cfg.AllocationStrategy))
	}

	if cfg.ClaimMaxAttempts <= 0 {
		errors = append(errors, fmt.Sprintf("ClaimMaxAttempts must be positive, got: %d", cfg.ClaimMaxAttempts))
	}
	if cfg.SessionCloseRetries <= 0 {
		errors = append(errors, fmt.Sprintf("SessionCloseRetries must be positive, got: %d", cfg.SessionCloseRetries))
	}
	if cfg.VehicleLockTTL <= 0 {
		errors = append(errors, fmt.Sprintf("VehicleLockTTL must be positive, got: %s", cfg.VehicleLockTTL))
	}
	if cfg.RateRefreshInterval <= 0 {
		errors = append(errors, fmt.Sprintf("RateRefreshInterval must be positive, got: %s", cfg.RateRefreshInterval))
	}
	if len(cfg.Currency) != 3 {
		errors = append(errors, fmt.Sprintf("Currency must be a 3-letter code, got: %s", cfg.Currency))
	}

	if cfg.KafkaEnabled {
		if cfg.GateEventsTopic == "" {
			errors = append(errors, "GateEventsTopic cannot be empty when Kafka is enabled")
		}
		if cfg.GateEventsGroupID == "" {
			errors = append(errors, "GateEventsGroupID cannot be empty when Kafka is enabled")
		}
		if cfg.ReceiptsTopic == "" {
			errors = append(errors, "ReceiptsTopic cannot be empty when Kafka is enabled")
		}
	}

	if cfg.RateLimitRequests <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitRequests must be positive, got: %d", cfg.RateLimitRequests))
	}
	if cfg.RateLimitWindow <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitWindow must be positive, got: %s", cfg.RateLimitWindow))
	}
	if cfg.RequestTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("RequestTimeout must be positive, got: %s", cfg.RequestTimeout))
	}
	if cfg.IdempotencyTTL <= 0 {
		errors = append(errors, fmt.Sprintf("IdempotencyTTL must be positive, got: %s", cfg.IdempotencyTTL))
	}
	if cfg.MaxRequestSize <= 0 {
		errors = append(errors, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}
	if cfg.ReadTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ReadTimeout must be positive, got: %s", cfg.ReadTimeout))
	}
	if cfg.WriteTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("WriteTimeout must be positive, got: %s", cfg.WriteTimeout))
	}
	if cfg.IdleTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("IdleTimeout must be positive, got: %s", cfg.IdleTimeout))
	}
	if cfg.ShutdownTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ShutdownTimeout must be positive, got: %s", cfg.ShutdownTimeout))
	}

	if len(errors) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"store_driver", cfg.StoreDriver,
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"port", cfg.Port,
		"allocation_strategy", cfg.AllocationStrategy,
		"claim_max_attempts", cfg.ClaimMaxAttempts,
		"session_close_retries", cfg.SessionCloseRetries,
		"vehicle_lock_ttl", cfg.VehicleLockTTL,
		"rate_refresh_interval", cfg.RateRefreshInterval,
		"currency", cfg.Currency,
		"kafka_enabled", cfg.KafkaEnabled,
		"gate_events_topic", cfg.GateEventsTopic,
		"receipts_topic", cfg.ReceiptsTopic,
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
	)
}

func redactMongoURI(uri string) string {
	credentialRegex := regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown()
}

func NormalizePaginationLimit(limit int) int {
	if limit <= 0 {
		limit = 10
	} else if limit > DefaultPaginationLimit {
		limit = DefaultPaginationLimit
	}
	return limit
}

func NormalizeOffset(offset int64) int64 {
	return max(0, offset)
}
