package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"reservas/pkg/logger"
)

type Config struct {
	ShopDomain string
	AdminToken string
	APIVersion string

	WorkshopSKU  string
	SlotCapacity int
	WindowDays   int

	PageSize        int
	UpstreamBackoff time.Duration
	UpstreamRPS     int
	UpstreamTimeout time.Duration

	Port string

	AuthUsers  map[string]string
	JWTSecret  string
	SessionTTL time.Duration

	RateLimitRPS   int
	RateLimitBurst int

	RequestTimeout time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	KafkaBrokers         []string
	KafkaAttendanceTopic string

	Log *logger.Logger
}

func Load(serviceName string) *Config {
	// Best effort; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := &Config{
		ShopDomain: os.Getenv(EnvShopDomain),
		AdminToken: os.Getenv(EnvAdminToken),
		APIVersion: getEnvStr(EnvAPIVersion, DefaultAPIVersion),

		WorkshopSKU:  getEnvStr(EnvWorkshopSKU, DefaultWorkshopSKU),
		SlotCapacity: getEnvNum(EnvSlotCapacity, DefaultSlotCapacity),
		WindowDays:   getEnvNum(EnvWindowDays, DefaultWindowDays),

		PageSize:        getEnvNum(EnvPageSize, DefaultPageSize),
		UpstreamBackoff: getEnvDuration(EnvUpstreamBackoff, DefaultUpstreamBackoff),
		UpstreamRPS:     getEnvNum(EnvUpstreamRPS, DefaultUpstreamRPS),
		UpstreamTimeout: getEnvDuration(EnvUpstreamTimeout, DefaultUpstreamTimeout),

		Port: getEnvStr(EnvPort, DefaultPort),

		AuthUsers:  parseAuthUsers(os.Getenv(EnvAuthUsers)),
		JWTSecret:  os.Getenv(EnvJWTSecret),
		SessionTTL: getEnvDuration(EnvSessionTTL, DefaultSessionTTL),

		RateLimitRPS:   getEnvNum(EnvRateLimitRPS, DefaultRateLimitRPS),
		RateLimitBurst: getEnvNum(EnvRateLimitBurst, DefaultRateLimitBurst),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		KafkaBrokers:         parseBrokers(os.Getenv(EnvKafkaBrokers)),
		KafkaAttendanceTopic: getEnvStr(EnvKafkaAttendanceTopic, DefaultKafkaAttendanceTopic),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
			Format:    logger.JSON,
			AddSource: true,
			Service:   serviceName,
		}),
	}

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

func (cfg *Config) Validate() error {
	var errors []string

	if cfg.ShopDomain == "" {
		errors = append(errors, fmt.Sprintf("%s is required (e.g. mystore.myshopify.com)", EnvShopDomain))
	}
	if cfg.AdminToken == "" {
		errors = append(errors, fmt.Sprintf("%s is required", EnvAdminToken))
	}
	if cfg.WorkshopSKU == "" {
		errors = append(errors, "WorkshopSKU cannot be empty")
	}
	if cfg.SlotCapacity <= 0 {
		errors = append(errors, fmt.Sprintf("SlotCapacity must be positive, got: %d", cfg.SlotCapacity))
	}
	if cfg.WindowDays <= 0 {
		errors = append(errors, fmt.Sprintf("WindowDays must be positive, got: %d", cfg.WindowDays))
	}
	if cfg.PageSize < 1 || cfg.PageSize > 250 {
		errors = append(errors, fmt.Sprintf("PageSize must be between 1 and 250, got: %d", cfg.PageSize))
	}
	if cfg.UpstreamBackoff <= 0 {
		errors = append(errors, fmt.Sprintf("UpstreamBackoff must be positive, got: %s", cfg.UpstreamBackoff))
	}
	if cfg.UpstreamRPS <= 0 {
		errors = append(errors, fmt.Sprintf("UpstreamRPS must be positive, got: %d", cfg.UpstreamRPS))
	}
	if cfg.UpstreamTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("UpstreamTimeout must be positive, got: %s", cfg.UpstreamTimeout))
	}

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if len(cfg.AuthUsers) == 0 {
		errors = append(errors, fmt.Sprintf("%s must list at least one user:pass entry", EnvAuthUsers))
	}
	if cfg.JWTSecret == "" {
		errors = append(errors, fmt.Sprintf("%s is required", EnvJWTSecret))
	}
	if cfg.SessionTTL <= 0 {
		errors = append(errors, fmt.Sprintf("SessionTTL must be positive, got: %s", cfg.SessionTTL))
	}

	if cfg.RateLimitRPS <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitRPS must be positive, got: %d", cfg.RateLimitRPS))
	}
	if cfg.RateLimitBurst <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitBurst must be positive, got: %d", cfg.RateLimitBurst))
	}
	if cfg.RequestTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("RequestTimeout must be positive, got: %s", cfg.RequestTimeout))
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
		"shop_domain", cfg.ShopDomain,
		"admin_token_set", cfg.AdminToken != "",
		"api_version", cfg.APIVersion,
		"workshop_sku", cfg.WorkshopSKU,
		"slot_capacity", cfg.SlotCapacity,
		"window_days", cfg.WindowDays,
		"page_size", cfg.PageSize,
		"upstream_backoff", cfg.UpstreamBackoff,
		"upstream_rps", cfg.UpstreamRPS,
		"upstream_timeout", cfg.UpstreamTimeout,
		"port", cfg.Port,
		"auth_users", len(cfg.AuthUsers),
		"jwt_secret_set", cfg.JWTSecret != "",
		"session_ttl", cfg.SessionTTL,
		"rate_limit_rps", cfg.RateLimitRPS,
		"rate_limit_burst", cfg.RateLimitBurst,
		"request_timeout", cfg.RequestTimeout,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"kafka_brokers", len(cfg.KafkaBrokers),
		"kafka_attendance_topic", cfg.KafkaAttendanceTopic,
	)
}

// parseAuthUsers splits "alice:pw1,bob:pw2" into a user -> password map.
// Malformed entries are skipped; Validate catches an empty result.
func parseAuthUsers(raw string) map[string]string {
	users := make(map[string]string)
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		user, pass, ok := strings.Cut(entry, ":")
		if !ok || user == "" || pass == "" {
			continue
		}
		users[user] = pass
	}
	return users
}

func parseBrokers(raw string) []string {
	if raw == "" {
		return nil
	}
	var brokers []string
	for _, b := range strings.Split(raw, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
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

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
