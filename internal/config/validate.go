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

	// JWT secrets
	if len(c.JWT.AccessSecret) < 32 {
		errs = append(errs, "JWT_ACCESS_SECRET must be at least 32 characters")
	}
	if len(c.JWT.RefreshSecret) < 32 {
		errs = append(errs, "JWT_REFRESH_SECRET must be at least 32 characters")
	}
	if c.JWT.AccessSecret != "" && c.JWT.RefreshSecret != "" && c.JWT.AccessSecret == c.JWT.RefreshSecret {
		errs = append(errs, "JWT_ACCESS_SECRET and JWT_REFRESH_SECRET must differ")
	}

	// DB password
	if c.DB.Password == "" {
		errs = append(errs, "DB_PASSWORD is required")
	}

	// Language model
	switch c.LLM.Provider {
	case ProviderAnthropic:
		if c.LLM.AnthropicAPIKey == "" {
			errs = append(errs, "ANTHROPIC_API_KEY is required when LLM_PROVIDER=anthropic")
		}
	case ProviderGemini:
		if c.LLM.GeminiAPIKey == "" {
			errs = append(errs, "GEMINI_API_KEY is required when LLM_PROVIDER=gemini")
		}
	default:
		errs = append(errs, fmt.Sprintf("LLM_PROVIDER must be anthropic or gemini, got %q", c.LLM.Provider))
	}

	// Quota
	if c.Quota.MonthlyLimit < 1 {
		errs = append(errs, fmt.Sprintf("MAX_GENERATIONS_PER_USER_MONTH must be at least 1, got %d", c.Quota.MonthlyLimit))
	}

	if c.Audit.RetentionDays < 0 {
		errs = append(errs, fmt.Sprintf("AUDIT_RETENTION_DAYS must not be negative, got %d", c.Audit.RetentionDays))
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

	// NATS: warn only
	if c.NATS.URL == "" {
		slog.Warn("NATS_URL is empty, audit events will not be published")
	}

	if len(errs) > 0 {
		return errors.New("config validation failed:\n  " + strings.Join(errs, "\n  "))
	}
	return nil
}
