package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Horizon bounds for SEARCH_HORIZON_YEARS.
const (
	MinSearchHorizonYears = 1
	MaxSearchHorizonYears = 50
)

var (
	validEnvironments = []string{"development", "staging", "production"}
	validLogLevels    = []string{"trace", "debug", "info", "warn", "error", "fatal", "panic", "disabled"}
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}
	msg := fmt.Sprintf("%d validation errors:", len(e))
	for _, err := range e {
		msg += "\n  - " + err.Error()
	}
	return msg
}

// Validate checks the configuration for errors.
// Returns nil if valid, or ValidationErrors if invalid.
func Validate(cfg Config) error {
	var errs ValidationErrors

	errs = validateDuration(errs, "HTTP_SHUTDOWN_TIMEOUT", cfg.HTTPShutdownTimeoutStr)
	errs = validateDuration(errs, "REQUEST_TIMEOUT", cfg.RequestTimeoutStr)
	errs = validateDuration(errs, "CACHE_TTL", cfg.CacheTTLStr)
	errs = validateDuration(errs, "CIRCUIT_BREAKER_COOLDOWN", cfg.CircuitBreakerCooldownStr)

	if cfg.HTTPAddr == "" {
		errs = append(errs, ValidationError{Field: "HTTP_ADDR", Message: "required"})
	}

	if !contains(validEnvironments, cfg.Environment) {
		errs = append(errs, ValidationError{
			Field:   "ENVIRONMENT",
			Message: fmt.Sprintf("must be one of %s, got %q", strings.Join(validEnvironments, ", "), cfg.Environment),
		})
	}

	if !contains(validLogLevels, strings.ToLower(cfg.LogLevel)) {
		errs = append(errs, ValidationError{
			Field:   "LOG_LEVEL",
			Message: fmt.Sprintf("unknown level %q", cfg.LogLevel),
		})
	}

	if cfg.MetricsEnabled {
		if !strings.HasPrefix(cfg.MetricsPath, "/") {
			errs = append(errs, ValidationError{
				Field:   "METRICS_PATH",
				Message: "must start with '/'",
			})
		}
		if port, err := strconv.Atoi(cfg.MetricsPort); err != nil || port < 1 || port > 65535 {
			errs = append(errs, ValidationError{
				Field:   "METRICS_PORT",
				Message: fmt.Sprintf("must be a port number between 1 and 65535, got %q", cfg.MetricsPort),
			})
		}
	}

	if cfg.RedisAddr != "" && cfg.CircuitBreakerThreshold < 1 {
		errs = append(errs, ValidationError{
			Field:   "CIRCUIT_BREAKER_THRESHOLD",
			Message: "must be at least 1 when REDIS_ADDR is set",
		})
	}

	if cfg.SearchHorizonYears < MinSearchHorizonYears || cfg.SearchHorizonYears > MaxSearchHorizonYears {
		errs = append(errs, ValidationError{
			Field:   "SEARCH_HORIZON_YEARS",
			Message: fmt.Sprintf("must be between %d and %d, got %d", MinSearchHorizonYears, MaxSearchHorizonYears, cfg.SearchHorizonYears),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// validateDuration requires raw to be a positive duration.
func validateDuration(errs ValidationErrors, field, raw string) ValidationErrors {
	d, err := time.ParseDuration(raw)
	if err != nil {
		return append(errs, ValidationError{
			Field:   field,
			Message: fmt.Sprintf("invalid duration: %v", err),
		})
	}
	if d <= 0 {
		return append(errs, ValidationError{
			Field:   field,
			Message: "must be positive",
		})
	}
	return errs
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
