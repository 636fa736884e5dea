package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/dotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Server     ServerConfig
	DB         DBConfig
	Redis      RedisConfig
	NATS       NATSConfig
	JWT        JWTConfig
	LLM        LLMConfig
	Quota      QuotaConfig
	Transcript TranscriptConfig
	RateLimit  RateLimitConfig
	Audit      AuditConfig
	Log        LogConfig
}

type ServerConfig struct {
	Host               string
	Port               int
	CORSAllowedOrigins []string
	WriteTimeout       time.Duration
}

type DBConfig struct {
	Host           string
	Port           int
	User           string
	Password       string
	Name           string
	SSLMode        string
	MaxConns       int32
	MigrationsPath string
}

func (c DBConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode)
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// NATSConfig holds the JetStream connection used for audit events.
// An empty URL disables event publishing.
type NATSConfig struct {
	URL string
}

type JWTConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

// LLMConfig selects the language-model provider and the models used by each
// pipeline stage.
type LLMConfig struct {
	Provider        string
	AnthropicAPIKey string
	GeminiAPIKey    string
	AnalysisModel   string
	GenerationModel string
	Timeout         time.Duration
}

// APIKey returns the credential of the selected provider.
func (c LLMConfig) APIKey() string {
	if c.Provider == ProviderGemini {
		return c.GeminiAPIKey
	}
	return c.AnthropicAPIKey
}

const (
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

type QuotaConfig struct {
	MonthlyLimit int
}

type TranscriptConfig struct {
	Language string
	CacheTTL time.Duration
}

type RateLimitConfig struct {
	LoginMaxRequests      int
	LoginWindowSec        int
	GenerationMaxRequests int
	GenerationWindowSec   int
}

// AuditConfig controls pruning of persisted audit events. PruneSchedule is a
// cron expression; an empty RetentionDays keeps events forever.
type AuditConfig struct {
	RetentionDays int
	PruneSchedule string
}

type LogConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	k := koanf.New(".")

	// Load .env file if it exists (ignore error if missing)
	_ = k.Load(file.Provider(".env"), dotenv.Parser())

	// Load environment variables (override .env)
	err := k.Load(env.Provider("", ".", func(s string) string {
		return strings.ToLower(strings.ReplaceAll(s, "_", "."))
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:               k.String("server.host"),
			Port:               k.Int("server.port"),
			CORSAllowedOrigins: splitList(k.String("cors.allowed.origins")),
		},
		DB: DBConfig{
			Host:           k.String("db.host"),
			Port:           k.Int("db.port"),
			User:           k.String("db.user"),
			Password:       k.String("db.password"),
			Name:           k.String("db.name"),
			SSLMode:        k.String("db.sslmode"),
			MaxConns:       int32(k.Int("db.max.conns")),
			MigrationsPath: k.String("db.migrations.path"),
		},
		Redis: RedisConfig{
			Host:     k.String("redis.host"),
			Port:     k.Int("redis.port"),
			Password: k.String("redis.password"),
			DB:       k.Int("redis.db"),
		},
		NATS: NATSConfig{
			URL: k.String("nats.url"),
		},
		JWT: JWTConfig{
			AccessSecret:  k.String("jwt.access.secret"),
			RefreshSecret: k.String("jwt.refresh.secret"),
		},
		LLM: LLMConfig{
			Provider:        strings.ToLower(k.String("llm.provider")),
			AnthropicAPIKey: k.String("anthropic.api.key"),
			GeminiAPIKey:    k.String("gemini.api.key"),
			AnalysisModel:   k.String("llm.analysis.model"),
			GenerationModel: k.String("llm.generation.model"),
		},
		Quota: QuotaConfig{
			MonthlyLimit: k.Int("max.generations.per.user.month"),
		},
		Transcript: TranscriptConfig{
			Language: k.String("transcript.language"),
		},
		RateLimit: RateLimitConfig{
			LoginMaxRequests:      k.Int("ratelimit.login.max"),
			LoginWindowSec:        k.Int("ratelimit.login.window"),
			GenerationMaxRequests: k.Int("ratelimit.generation.max"),
			GenerationWindowSec:   k.Int("ratelimit.generation.window"),
		},
		Audit: AuditConfig{
			RetentionDays: k.Int("audit.retention.days"),
			PruneSchedule: k.String("audit.prune.schedule"),
		},
		Log: LogConfig{
			Level:  k.String("log.level"),
			Format: k.String("log.format"),
		},
	}

	// Apply defaults
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.DB.Host == "" {
		cfg.DB.Host = "localhost"
	}
	if cfg.DB.Port == 0 {
		cfg.DB.Port = 5432
	}
	if cfg.DB.User == "" {
		cfg.DB.User = "viralscript"
	}
	if cfg.DB.Name == "" {
		cfg.DB.Name = "viralscript"
	}
	if cfg.DB.SSLMode == "" {
		cfg.DB.SSLMode = "disable"
	}
	if cfg.DB.MaxConns == 0 {
		cfg.DB.MaxConns = 25
	}
	if cfg.DB.MigrationsPath == "" {
		cfg.DB.MigrationsPath = "migrations"
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = ProviderAnthropic
	}
	if cfg.LLM.AnalysisModel == "" {
		cfg.LLM.AnalysisModel = defaultModel(cfg.LLM.Provider)
	}
	if cfg.LLM.GenerationModel == "" {
		cfg.LLM.GenerationModel = defaultModel(cfg.LLM.Provider)
	}
	if !k.Exists("max.generations.per.user.month") {
		cfg.Quota.MonthlyLimit = 4
	}
	if cfg.Transcript.Language == "" {
		cfg.Transcript.Language = "pt"
	}
	if cfg.RateLimit.LoginMaxRequests == 0 {
		cfg.RateLimit.LoginMaxRequests = 10
	}
	if cfg.RateLimit.LoginWindowSec == 0 {
		cfg.RateLimit.LoginWindowSec = 60
	}
	if !k.Exists("ratelimit.generation.max") {
		cfg.RateLimit.GenerationMaxRequests = 3
	}
	if cfg.RateLimit.GenerationWindowSec == 0 {
		cfg.RateLimit.GenerationWindowSec = 60
	}
	if !k.Exists("audit.retention.days") {
		cfg.Audit.RetentionDays = 90
	}
	if cfg.Audit.PruneSchedule == "" {
		cfg.Audit.PruneSchedule = "@daily"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}

	// Parse durations
	if cfg.JWT.AccessExpiry, err = parseDuration(k, "jwt.access.expiry", "15m"); err != nil {
		return nil, err
	}
	if cfg.JWT.RefreshExpiry, err = parseDuration(k, "jwt.refresh.expiry", "168h"); err != nil {
		return nil, err
	}
	if cfg.LLM.Timeout, err = parseDuration(k, "llm.timeout", "90s"); err != nil {
		return nil, err
	}
	if cfg.Transcript.CacheTTL, err = parseDuration(k, "transcript.cache.ttl", "24h"); err != nil {
		return nil, err
	}
	// Generation runs two sequential model calls, so the write timeout has to
	// cover both plus transcript acquisition.
	if cfg.Server.WriteTimeout, err = parseDuration(k, "server.write.timeout", "240s"); err != nil {
		return nil, err
	}

	return cfg, nil
}

func defaultModel(provider string) string {
	if provider == ProviderGemini {
		return "gemini-2.5-flash"
	}
	return "claude-haiku-4-5-20251001"
}

func parseDuration(k *koanf.Koanf, key, fallback string) (time.Duration, error) {
	raw := k.String(key)
	if raw == "" {
		raw = fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", key, err)
	}
	return d, nil
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
