package config

import "time"

const (
	DefaultAPIVersion = "2025-04"

	DefaultWorkshopSKU  = "588000000204"
	DefaultSlotCapacity = 15
	DefaultWindowDays   = 30

	// Shopify caps order listings at 250 per page.
	DefaultPageSize = 250

	// Fixed wait before retrying the same page after a 429.
	DefaultUpstreamBackoff = 1 * time.Second

	// The REST admin API allows roughly two requests per second per store.
	DefaultUpstreamRPS     = 2
	DefaultUpstreamTimeout = 30 * time.Second

	DefaultPort = "8080"

	DefaultSessionTTL = 12 * time.Hour

	DefaultRateLimitRPS   = 5
	DefaultRateLimitBurst = 10

	DefaultRequestTimeout = 60 * time.Second
	DefaultMaxRequestSize = 1 << 20

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 75 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 10 * time.Second

	DefaultKafkaAttendanceTopic = "reservas.attendance"

	DefaultLogLevel = "info"
)
