package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Validate checks Config for production-critical problems.
// It collects all errors into a single joined error.
func (c *Config) Validate() error {
	var errs []string

	// JWT secret shared with the identity service
	if len(c.JWT.AccessSecret) < 32 {
		errs = append(errs, "JWT_ACCESS_SECRET must be at least 32 characters")
	}

	// DB password
	if c.DB.Password == "" {
		errs = append(errs, "DB_PASSWORD is required")
	}

	// Port ranges
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT must be 1–65535, got %d", c.Server.Port))
	}
	if c.DB.Port < 1 || c.DB.Port > 65535 {
		errs = append(errs, fmt.Sprintf("DB_PORT must be 1–65535, got %d", c.DB.Port))
	}
	if c.Redis.Port < 1 || c.Redis.Port > 65535 {
		errs = append(errs, fmt.Sprintf("REDIS_PORT must be 1–65535, got %d", c.Redis.Port))
	}

	// Deposit limit defaults
	if c.Limits.DefaultDaily <= 0 {
		errs = append(errs, "LIMITS_DEFAULT_DAILY must be positive")
	}
	if c.Limits.DefaultWeekly <= 0 {
		errs = append(errs, "LIMITS_DEFAULT_WEEKLY must be positive")
	}
	if c.Limits.DefaultMonthly <= 0 {
		errs = append(errs, "LIMITS_DEFAULT_MONTHLY must be positive")
	}
	if _, err := c.Limits.Location(); err != nil {
		errs = append(errs, fmt.Sprintf("LIMITS_TIMEZONE is invalid: %v", err))
	}

	if c.RateLimit.APIRequests < 1 || c.RateLimit.APIWindowSec < 1 {
		errs = append(errs, "RATELIMIT_API_REQUESTS and RATELIMIT_API_WINDOW must be positive")
	}
	if c.RateLimit.WagerRequests < 1 || c.RateLimit.WagerWindowSec < 1 {
		errs = append(errs, "RATELIMIT_WAGER_REQUESTS and RATELIMIT_WAGER_WINDOW must be positive")
	}

	// NATS: warn only, the audit trail is optional
	if c.NATS.URL == "" {
		slog.Warn("NATS_URL is empty, audit events will not be published")
	}

	if len(errs) > 0 {
		return errors.New("config validation failed:\n  " + strings.Join(errs, "\n  "))
	}
	return nil
}
