package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, ProviderAnthropic, cfg.LLM.Provider)
	assert.Equal(t, "claude-haiku-4-5-20251001", cfg.LLM.AnalysisModel)
	assert.Equal(t, 4, cfg.Quota.MonthlyLimit)
	assert.Equal(t, 24*time.Hour, cfg.Transcript.CacheTTL)
	assert.Equal(t, 15*time.Minute, cfg.JWT.AccessExpiry)
	assert.Equal(t, 90, cfg.Audit.RetentionDays)
	assert.Equal(t, "@daily", cfg.Audit.PruneSchedule)
	assert.Equal(t, 3, cfg.RateLimit.GenerationMaxRequests)
	assert.Equal(t, 60, cfg.RateLimit.GenerationWindowSec)
}

func TestLoad_ZeroDisablesOptionalJobs(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("RATELIMIT_GENERATION_MAX", "0")
	t.Setenv("AUDIT_RETENTION_DAYS", "0")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Zero(t, cfg.RateLimit.GenerationMaxRequests)
	assert.Zero(t, cfg.Audit.RetentionDays)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("MAX_GENERATIONS_PER_USER_MONTH", "10")
	t.Setenv("LLM_PROVIDER", "Gemini")
	t.Setenv("GEMINI_API_KEY", "g-key")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Quota.MonthlyLimit)
	assert.Equal(t, ProviderGemini, cfg.LLM.Provider)
	assert.Equal(t, "gemini-2.5-flash", cfg.LLM.GenerationModel)
	assert.Equal(t, "g-key", cfg.LLM.APIKey())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSAllowedOrigins)
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("LLM_TIMEOUT", "soon")

	_, err := Load()
	assert.Error(t, err)
}
