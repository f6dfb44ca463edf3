package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvStoreDriver = "STORE_DRIVER"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvAllocationStrategy  = "ALLOCATION_STRATEGY"
	EnvClaimMaxAttempts    = "CLAIM_MAX_ATTEMPTS"
	EnvSessionCloseRetries = "SESSION_CLOSE_RETRIES"
	EnvVehicleLockTTL      = "VEHICLE_LOCK_TTL"
	EnvRateRefreshInterval = "RATE_REFRESH_INTERVAL"
	EnvCurrency            = "CURRENCY"

	EnvKafkaEnabled       = "KAFKA_ENABLED"
	EnvGateEventsTopic    = "GATE_EVENTS_TOPIC"
	EnvGateEventsGroupID  = "GATE_EVENTS_GROUP_ID"
	EnvGateEventsDLQTopic = "GATE_EVENTS_DLQ_TOPIC"
	EnvReceiptsTopic      = "RECEIPTS_TOPIC"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"
)
