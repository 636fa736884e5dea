package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/viralscript/viralscript/internal/api"
	"github.com/viralscript/viralscript/internal/auth"
	"github.com/viralscript/viralscript/internal/config"
	"github.com/viralscript/viralscript/internal/database"
	"github.com/viralscript/viralscript/internal/generation"
	"github.com/viralscript/viralscript/internal/governance"
	"github.com/viralscript/viralscript/internal/governance/audit"
	"github.com/viralscript/viralscript/internal/governance/quota"
	"github.com/viralscript/viralscript/internal/llm"
	mw "github.com/viralscript/viralscript/internal/middleware"
	inats "github.com/viralscript/viralscript/internal/nats"
	"github.com/viralscript/viralscript/internal/patterns"
	iredis "github.com/viralscript/viralscript/internal/redis"
	"github.com/viralscript/viralscript/internal/server"
	"github.com/viralscript/viralscript/internal/transcript"
	"github.com/viralscript/viralscript/internal/users"
)

var errNATSDisconnected = errors.New("nats disconnected")

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.Log)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// PostgreSQL
	if err := database.RunMigrations(cfg.DB.DSN(), cfg.DB.MigrationsPath); err != nil {
		slog.Error("running migrations", "error", err)
		os.Exit(1)
	}
	pool, err := database.NewPostgresPool(ctx, cfg.DB)
	if err != nil {
		slog.Error("connecting to postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Redis
	redisClient, err := iredis.NewClient(ctx, cfg.Redis)
	if err != nil {
		slog.Error("connecting to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	auditRepo := audit.NewRepository(pool)
	go func() {
		if err := audit.NewRetention(auditRepo, cfg.Audit.RetentionDays, cfg.Audit.PruneSchedule).Start(ctx); err != nil {
			slog.Error("audit retention", "error", err)
		}
	}()

	// NATS (optional)
	var (
		natsClient *inats.Client
		events     generation.AuditPublisher
	)
	if cfg.NATS.URL != "" {
		natsClient, err = inats.NewClient(ctx, cfg.NATS)
		if err != nil {
			slog.Error("connecting to nats", "error", err)
			os.Exit(1)
		}
		defer natsClient.Close()

		events = inats.NewPublisher(natsClient.JetStream())
		consumer := audit.NewConsumer(auditRepo, inats.NewConsumerManager(natsClient.JetStream()))
		go func() {
			if err := consumer.Start(ctx); err != nil {
				slog.Error("audit consumer", "error", err)
			}
		}()
	} else {
		slog.Warn("NATS_URL not set, audit events disabled")
	}

	// Auth
	jwtManager := auth.NewJWTManager(
		cfg.JWT.AccessSecret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessExpiry,
		cfg.JWT.RefreshExpiry,
	)
	authSvc := auth.NewService(jwtManager, redisClient)
	userSvc := users.NewService(users.NewRepository(pool))
	quotaSvc := quota.NewService(quota.NewRepository(pool), cfg.Quota.MonthlyLimit)
	authHandler := auth.NewHandler(authSvc, userSvc, quotaSvc)

	// Saved patterns
	patternSvc := patterns.NewService(patterns.NewRepository(pool), events)
	patternHandler := patterns.NewHandler(patternSvc)

	// Generation pipeline
	model, err := llm.New(ctx, cfg.LLM)
	if err != nil {
		slog.Error("creating llm client", "error", err)
		os.Exit(1)
	}
	source := transcript.NewDefaultRouter(transcript.NewCachedSource(
		transcript.NewYouTubeSource(cfg.Transcript.Language),
		redisClient,
		cfg.Transcript.CacheTTL,
	))
	genSvc := generation.NewService(
		quotaSvc,
		transcript.NewAcquirer(source),
		generation.NewAnalyzer(model, cfg.LLM.AnalysisModel),
		generation.NewSynthesizer(model, cfg.LLM.GenerationModel),
		patternSvc,
		events,
	)
	var burst generation.BurstLimiter
	if cfg.RateLimit.GenerationMaxRequests > 0 {
		burst = quota.NewBurstLimiter(redisClient, cfg.RateLimit.GenerationMaxRequests,
			time.Duration(cfg.RateLimit.GenerationWindowSec)*time.Second)
	}
	genHandler := generation.NewHandler(genSvc, burst)

	govHandler := governance.NewHandler(quotaSvc, auditRepo)

	loginLimiter := mw.NewRateLimiter(redisClient, "login", cfg.RateLimit.LoginMaxRequests, cfg.RateLimit.LoginWindowSec)

	natsCheck := api.HealthCheck{Name: "nats"}
	if natsClient != nil {
		natsCheck.Check = func(context.Context) error {
			if !natsClient.Healthy() {
				return errNATSDisconnected
			}
			return nil
		}
	}

	router := api.NewRouter(api.RouterConfig{
		CORSAllowedOrigins: cfg.Server.CORSAllowedOrigins,
		LoginRateLimiter:   loginLimiter.Middleware,
		HealthChecks: []api.HealthCheck{
			{Name: "database", Check: func(ctx context.Context) error { return database.HealthCheck(ctx, pool) }},
			{Name: "redis", Check: func(ctx context.Context) error { return iredis.HealthCheck(ctx, redisClient) }},
			natsCheck,
		},
	}, api.HandlerSet{
		Login:   authHandler.Login,
		Refresh: authHandler.Refresh,
		Logout:  authHandler.Logout,
		Me:      authHandler.Me,

		Generate: genHandler.Generate,

		ListPatterns:     patternHandler.List,
		GetPattern:       patternHandler.Get,
		DeletePattern:    patternHandler.Delete,
		PatternOwnership: patternHandler.OwnershipMiddleware,
		ListPatternAudit: govHandler.ListPatternAuditLogs,

		GetQuota:      govHandler.GetQuota,
		ListAuditLogs: govHandler.ListAuditLogs,

		AuthMiddleware: auth.Middleware(authSvc),
	})

	srv := server.New(cfg.Server, router)
	if err := srv.Start(ctx); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func setupLogger(cfg config.LogConfig) {
	var handler slog.Handler

	opts := &slog.HandlerOptions{}
	switch cfg.Level {
	case "debug":
		opts.Level = slog.LevelDebug
	case "warn":
		opts.Level = slog.LevelWarn
	case "error":
		opts.Level = slog.LevelError
	default:
		opts.Level = slog.LevelInfo
	}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
