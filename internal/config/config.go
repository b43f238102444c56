package config

import (
	"encoding/json"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

// Config holds all configuration for the cronpreview service.
// Values are loaded from environment variables; see the config command for
// the effective values.
type Config struct {
	HTTPAddr string `json:"http_addr"`

	HTTPShutdownTimeout    time.Duration `json:"-"`
	HTTPShutdownTimeoutStr string        `json:"http_shutdown_timeout"`

	// RequestTimeout bounds a single HTTP request, including cache I/O.
	RequestTimeout    time.Duration `json:"-"`
	RequestTimeoutStr string        `json:"request_timeout"`

	// Environment: "development" switches logging to the console writer.
	Environment string `json:"environment"`
	LogLevel    string `json:"log_level"`

	MetricsEnabled bool   `json:"metrics_enabled"`
	MetricsPath    string `json:"metrics_path"`
	MetricsPort    string `json:"metrics_port"`

	// RedisAddr empty disables the preview cache.
	RedisAddr     string `json:"redis_addr,omitempty"`
	RedisPassword string `json:"-"`

	CacheTTL    time.Duration `json:"-"`
	CacheTTLStr string        `json:"cache_ttl"`

	CircuitBreakerThreshold   int           `json:"circuit_breaker_threshold"`
	CircuitBreakerCooldown    time.Duration `json:"-"`
	CircuitBreakerCooldownStr string        `json:"circuit_breaker_cooldown"`

	// SearchHorizonYears bounds how far ahead the engine looks for a match.
	SearchHorizonYears int `json:"search_horizon_years"`
}

// Load reads configuration from environment variables with defaults.
func Load() Config {
	cfg := Config{
		HTTPAddr:                  os.Getenv("HTTP_ADDR"),
		HTTPShutdownTimeoutStr:    os.Getenv("HTTP_SHUTDOWN_TIMEOUT"),
		RequestTimeoutStr:         os.Getenv("REQUEST_TIMEOUT"),
		Environment:               os.Getenv("ENVIRONMENT"),
		LogLevel:                  os.Getenv("LOG_LEVEL"),
		MetricsEnabled:            os.Getenv("METRICS_ENABLED") == "true",
		MetricsPath:               os.Getenv("METRICS_PATH"),
		MetricsPort:               os.Getenv("METRICS_PORT"),
		RedisAddr:                 os.Getenv("REDIS_ADDR"),
		RedisPassword:             os.Getenv("REDIS_PASSWORD"),
		CacheTTLStr:               os.Getenv("CACHE_TTL"),
		CircuitBreakerCooldownStr: os.Getenv("CIRCUIT_BREAKER_COOLDOWN"),
	}

	if cbThreshStr := os.Getenv("CIRCUIT_BREAKER_THRESHOLD"); cbThreshStr != "" {
		if n, err := parseInt(cbThreshStr); err == nil {
			cfg.CircuitBreakerThreshold = n
		} else {
			log.Warn().Str("value", cbThreshStr).Msg("config: invalid CIRCUIT_BREAKER_THRESHOLD, using default 5")
		}
	}
	if cfg.CircuitBreakerThreshold == 0 && os.Getenv("CIRCUIT_BREAKER_THRESHOLD") == "" {
		cfg.CircuitBreakerThreshold = 5
	}

	if horizonStr := os.Getenv("SEARCH_HORIZON_YEARS"); horizonStr != "" {
		if n, err := parseInt(horizonStr); err == nil {
			cfg.SearchHorizonYears = n
		} else {
			log.Warn().Str("value", horizonStr).Msg("config: invalid SEARCH_HORIZON_YEARS (must be an integer), using default 8")
		}
	}
	if cfg.SearchHorizonYears == 0 && os.Getenv("SEARCH_HORIZON_YEARS") == "" {
		cfg.SearchHorizonYears = 8
	}

	// Support the platform PORT variable as fallback for HTTP_ADDR.
	if cfg.HTTPAddr == "" {
		if port := os.Getenv("PORT"); port != "" {
			cfg.HTTPAddr = ":" + port
		} else {
			cfg.HTTPAddr = ":8080"
		}
	}
	if cfg.HTTPShutdownTimeoutStr == "" {
		cfg.HTTPShutdownTimeoutStr = "10s"
	}
	if cfg.RequestTimeoutStr == "" {
		cfg.RequestTimeoutStr = "5s"
	}
	if cfg.Environment == "" {
		cfg.Environment = "production"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.MetricsPath == "" {
		cfg.MetricsPath = "/metrics"
	}
	if cfg.MetricsPort == "" {
		cfg.MetricsPort = "9090"
	}
	if cfg.CacheTTLStr == "" {
		cfg.CacheTTLStr = "1m"
	}
	if cfg.CircuitBreakerCooldownStr == "" {
		cfg.CircuitBreakerCooldownStr = "30s"
	}

	// Parse durations; validation is handled separately by Validate().
	if d, err := time.ParseDuration(cfg.HTTPShutdownTimeoutStr); err == nil {
		cfg.HTTPShutdownTimeout = d
	}
	if d, err := time.ParseDuration(cfg.RequestTimeoutStr); err == nil {
		cfg.RequestTimeout = d
	}
	if d, err := time.ParseDuration(cfg.CacheTTLStr); err == nil {
		cfg.CacheTTL = d
	}
	if d, err := time.ParseDuration(cfg.CircuitBreakerCooldownStr); err == nil {
		cfg.CircuitBreakerCooldown = d
	}

	return cfg
}

// parseInt parses a string of decimal digits as a non-negative integer.
// Values that overflow int are rejected.
func parseInt(s string) (int, error) {
	if s == "" {
		return 0, os.ErrInvalid
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, os.ErrInvalid
		}
	}
	return strconv.Atoi(s)
}

// MaskedJSON returns the configuration as JSON with secrets masked.
func (c Config) MaskedJSON() ([]byte, error) {
	masked := struct {
		HTTPAddr                string `json:"http_addr"`
		HTTPShutdownTimeout     string `json:"http_shutdown_timeout"`
		RequestTimeout          string `json:"request_timeout"`
		Environment             string `json:"environment"`
		LogLevel                string `json:"log_level"`
		MetricsEnabled          bool   `json:"metrics_enabled"`
		MetricsPath             string `json:"metrics_path"`
		MetricsPort             string `json:"metrics_port"`
		RedisAddr               string `json:"redis_addr,omitempty"`
		RedisPassword           string `json:"redis_password,omitempty"`
		CacheTTL                string `json:"cache_ttl"`
		CircuitBreakerThreshold int    `json:"circuit_breaker_threshold"`
		CircuitBreakerCooldown  string `json:"circuit_breaker_cooldown"`
		SearchHorizonYears      int    `json:"search_horizon_years"`
	}{
		HTTPAddr:                c.HTTPAddr,
		HTTPShutdownTimeout:     c.HTTPShutdownTimeoutStr,
		RequestTimeout:          c.RequestTimeoutStr,
		Environment:             c.Environment,
		LogLevel:                c.LogLevel,
		MetricsEnabled:          c.MetricsEnabled,
		MetricsPath:             c.MetricsPath,
		MetricsPort:             c.MetricsPort,
		RedisAddr:               c.RedisAddr,
		RedisPassword:           maskSecret(c.RedisPassword),
		CacheTTL:                c.CacheTTLStr,
		CircuitBreakerThreshold: c.CircuitBreakerThreshold,
		CircuitBreakerCooldown:  c.CircuitBreakerCooldownStr,
		SearchHorizonYears:      c.SearchHorizonYears,
	}
	return json.MarshalIndent(masked, "", "  ")
}

// maskSecret masks a secret value entirely.
func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	return "***"
}
