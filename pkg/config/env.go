package config

const (
	EnvShopDomain = "SHOPIFY_STORE_DOMAIN"
	EnvAdminToken = "SHOPIFY_ADMIN_TOKEN"
	EnvAPIVersion = "SHOPIFY_API_VERSION"

	EnvWorkshopSKU  = "WORKSHOP_SKU"
	EnvSlotCapacity = "SLOT_CAPACITY"
	EnvWindowDays   = "BOOKING_WINDOW_DAYS"

	EnvPageSize        = "ORDERS_PAGE_SIZE"
	EnvUpstreamBackoff = "UPSTREAM_RETRY_BACKOFF"
	EnvUpstreamRPS     = "UPSTREAM_REQUESTS_PER_SECOND"
	EnvUpstreamTimeout = "UPSTREAM_REQUEST_TIMEOUT"

	EnvPort = "PORT"

	EnvAuthUsers  = "AUTH_USERS"
	EnvJWTSecret  = "JWT_SECRET"
	EnvSessionTTL = "SESSION_TTL"

	EnvRateLimitRPS   = "RATE_LIMIT_RPS"
	EnvRateLimitBurst = "RATE_LIMIT_BURST"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvKafkaBrokers         = "KAFKA_BROKERS"
	EnvKafkaAttendanceTopic = "KAFKA_ATTENDANCE_TOPIC"

	EnvLogLevel = "LOG_LEVEL"
)
