package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Env      string
	HTTPAddr string
	BaseURL  string

	DBDSN         string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret string

	LogLevel string

	RateLimitRPM int

	InviteTTLDays      int
	PresenceTTLSeconds int

	CatalogBaseURL   string
	CatalogTimeoutMS int
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.Env = strings.TrimSpace(os.Getenv("RB_ENV"))
	if cfg.Env == "" {
		return nil, fmt.Errorf("RB_ENV is required")
	}
	if cfg.Env != "dev" && cfg.Env != "prod" {
		return nil, fmt.Errorf("RB_ENV must be one of: dev, prod (got: %s)", cfg.Env)
	}

	cfg.HTTPAddr = getEnvOrDefault("RB_HTTP_ADDR", ":8080")

	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(os.Getenv("RB_BASE_URL")), "/")
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("RB_BASE_URL is required")
	}

	cfg.DBDSN = strings.TrimSpace(os.Getenv("RB_DB_DSN"))
	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("RB_DB_DSN is required")
	}

	cfg.RedisAddr = strings.TrimSpace(os.Getenv("RB_REDIS_ADDR"))
	if cfg.RedisAddr == "" {
		return nil, fmt.Errorf("RB_REDIS_ADDR is required")
	}
	cfg.RedisPassword = os.Getenv("RB_REDIS_PASSWORD")

	var err error
	cfg.RedisDB, err = getEnvIntOrDefault("RB_REDIS_DB", 0)
	if err != nil {
		return nil, err
	}

	cfg.JWTSecret = os.Getenv("RB_JWT_SECRET")
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("RB_JWT_SECRET is required")
	}
	if cfg.Env == "prod" && len(cfg.JWTSecret) < 32 {
		return nil, fmt.Errorf("RB_JWT_SECRET must be at least 32 characters (currently %d)", len(cfg.JWTSecret))
	}

	cfg.LogLevel = getEnvOrDefault("RB_LOG_LEVEL", "info")
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("RB_LOG_LEVEL must be one of: debug, info, warn, error (got: %s)", cfg.LogLevel)
	}

	cfg.RateLimitRPM, err = getEnvIntOrDefault("RB_RATE_LIMIT_RPM", 120)
	if err != nil {
		return nil, err
	}
	if cfg.RateLimitRPM <= 0 {
		return nil, fmt.Errorf("RB_RATE_LIMIT_RPM must be positive (got: %d)", cfg.RateLimitRPM)
	}

	cfg.InviteTTLDays, err = getEnvIntOrDefault("RB_INVITE_TTL_DAYS", 7)
	if err != nil {
		return nil, err
	}
	if cfg.InviteTTLDays <= 0 || cfg.InviteTTLDays > 365 {
		return nil, fmt.Errorf("RB_INVITE_TTL_DAYS must be between 1 and 365 (got: %d)", cfg.InviteTTLDays)
	}

	cfg.PresenceTTLSeconds, err = getEnvIntOrDefault("RB_PRESENCE_TTL_SECONDS", 60)
	if err != nil {
		return nil, err
	}
	if cfg.PresenceTTLSeconds <= 0 || cfg.PresenceTTLSeconds > 3600 {
		return nil, fmt.Errorf("RB_PRESENCE_TTL_SECONDS must be between 1 and 3600 (got: %d)", cfg.PresenceTTLSeconds)
	}

	cfg.CatalogBaseURL = strings.TrimRight(strings.TrimSpace(os.Getenv("RB_CATALOG_BASE_URL")), "/")
	if cfg.CatalogBaseURL == "" {
		return nil, fmt.Errorf("RB_CATALOG_BASE_URL is required")
	}

	cfg.CatalogTimeoutMS, err = getEnvIntOrDefault("RB_CATALOG_TIMEOUT_MS", 2000)
	if err != nil {
		return nil, err
	}
	if cfg.CatalogTimeoutMS <= 0 || cfg.CatalogTimeoutMS > 30000 {
		return nil, fmt.Errorf("RB_CATALOG_TIMEOUT_MS must be between 1 and 30000 (got: %d)", cfg.CatalogTimeoutMS)
	}

	return cfg, nil
}

// IsDev returns true if running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "dev"
}

// InviteTTL returns the invite lifetime as a duration.
func (c *Config) InviteTTL() time.Duration {
	return time.Duration(c.InviteTTLDays) * 24 * time.Hour
}

// PresenceWindow returns the presence staleness window as a duration.
func (c *Config) PresenceWindow() time.Duration {
	return time.Duration(c.PresenceTTLSeconds) * time.Second
}

// CatalogTimeout returns the catalog client timeout as a duration.
func (c *Config) CatalogTimeout() time.Duration {
	return time.Duration(c.CatalogTimeoutMS) * time.Millisecond
}

// RedactedValues returns a map of config values with secrets redacted.
func (c *Config) RedactedValues() map[string]string {
	return map[string]string{
		"RB_ENV":                  c.Env,
		"RB_HTTP_ADDR":            c.HTTPAddr,
		"RB_BASE_URL":             c.BaseURL,
		"RB_DB_DSN":               redactDSN(c.DBDSN),
		"RB_REDIS_ADDR":           c.RedisAddr,
		"RB_REDIS_PASSWORD":       "[REDACTED]",
		"RB_REDIS_DB":             fmt.Sprintf("%d", c.RedisDB),
		"RB_JWT_SECRET":           "[REDACTED]",
		"RB_LOG_LEVEL":            c.LogLevel,
		"RB_RATE_LIMIT_RPM":       fmt.Sprintf("%d", c.RateLimitRPM),
		"RB_INVITE_TTL_DAYS":      fmt.Sprintf("%d", c.InviteTTLDays),
		"RB_PRESENCE_TTL_SECONDS": fmt.Sprintf("%d", c.PresenceTTLSeconds),
		"RB_CATALOG_BASE_URL":     c.CatalogBaseURL,
		"RB_CATALOG_TIMEOUT_MS":   fmt.Sprintf("%d", c.CatalogTimeoutMS),
	}
}

func redactDSN(dsn string) string {
	if start := strings.Index(dsn, "://"); start != -1 {
		if end := strings.Index(dsn[start+3:], "@"); end != -1 {
			return dsn[:start+3] + "[REDACTED]" + dsn[start+3+end:]
		}
	}
	return dsn
}

func getEnvOrDefault(key, defaultValue string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvIntOrDefault(key string, defaultValue int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer (got: %q)", key, value)
	}
	return parsed, nil
}
