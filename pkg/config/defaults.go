package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "parkgate"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultStoreDriver = StoreDriverMongo

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultAllocationStrategy  = "nearest"
	DefaultClaimMaxAttempts    = 3
	DefaultSessionCloseRetries = 3
	DefaultVehicleLockTTL      = 10 * time.Second
	DefaultRateRefreshInterval = 1 * time.Minute
	DefaultCurrency            = "USD"

	DefaultKafkaEnabled       = false
	DefaultGateEventsTopic    = "parkgate.gate.events"
	DefaultGateEventsGroupID  = "parkgate-gateway"
	DefaultGateEventsDLQTopic = "parkgate.gate.events.dlq"
	DefaultReceiptsTopic      = "parkgate.receipts"

	DefaultRateLimitRequests = 30
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultPaginationLimit = 100
)
