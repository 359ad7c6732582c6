package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"golang.org/x/sync/errgroup"

	"github.com/predmarket/platform/internal/api"
	"github.com/predmarket/platform/internal/assessment"
	"github.com/predmarket/platform/internal/audit"
	"github.com/predmarket/platform/internal/auth"
	"github.com/predmarket/platform/internal/clock"
	"github.com/predmarket/platform/internal/config"
	"github.com/predmarket/platform/internal/cooloff"
	"github.com/predmarket/platform/internal/database"
	"github.com/predmarket/platform/internal/limits"
	mw "github.com/predmarket/platform/internal/middleware"
	inats "github.com/predmarket/platform/internal/nats"
	iredis "github.com/predmarket/platform/internal/redis"
	"github.com/predmarket/platform/internal/server"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	setupLogger(cfg.Log)

	if err := cfg.Validate(); err != nil {
		return err
	}

	loc, err := cfg.Limits.Location()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// PostgreSQL
	pool, err := database.NewPostgresPool(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer pool.Close()

	if cfg.Migrations.Auto {
		if err := database.RunMigrations(cfg.DB.DSN(), cfg.Migrations.Path); err != nil {
			return err
		}
	}

	// Redis
	redisClient, err := iredis.NewClient(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	// NATS (optional)
	var (
		natsClient *inats.Client
		recorder   *audit.Recorder
	)
	natsCheck := api.HealthCheck{Name: "nats"}
	if cfg.NATS.URL != "" {
		natsClient, err = inats.NewClient(ctx, cfg.NATS)
		if err != nil {
			return err
		}
		defer natsClient.Close()

		recorder = audit.NewRecorder(inats.NewPublisher(natsClient.JetStream()))
		natsCheck.Check = func(context.Context) error {
			if !natsClient.Healthy() {
				return errors.New("nats disconnected")
			}
			return nil
		}
	}

	clk := clock.NewSystem(loc)

	// Deposit limits
	tracker := limits.NewTracker(limits.NewRepository(pool), clk, limits.Defaults{
		Daily:   cfg.Limits.DefaultDaily,
		Weekly:  cfg.Limits.DefaultWeekly,
		Monthly: cfg.Limits.DefaultMonthly,
	}, recorder)
	limitsHandler := limits.NewHandler(tracker)

	// Self-assessment
	engine := assessment.NewEngine(assessment.NewRepository(pool), clk, recorder)
	assessmentHandler := assessment.NewHandler(engine)

	// Time-outs
	coolOff := cooloff.NewService(cooloff.NewRepository(pool), clk, recorder)
	coolOffHandler := cooloff.NewHandler(coolOff)

	// Audit
	auditRepo := audit.NewRepository(pool)
	auditHandler := audit.NewHandler(auditRepo)

	jwtManager := auth.NewJWTManager(cfg.JWT.AccessSecret, cfg.JWT.AccessExpiry)

	apiLimiter := mw.NewRateLimiter(redisClient, "api", mw.KeyByIP,
		cfg.RateLimit.APIRequests, cfg.RateLimit.APIWindowSec)
	wagerLimiter := mw.NewRateLimiter(redisClient, "wager", auth.RateLimitKey,
		cfg.RateLimit.WagerRequests, cfg.RateLimit.WagerWindowSec)

	router := api.NewRouter(api.RouterConfig{
		CORSAllowedOrigins: cfg.CORS.AllowedOrigins,
		APIRateLimiter:     apiLimiter.Middleware,
		WagerRateLimiter:   wagerLimiter.Middleware,
		HealthChecks: []api.HealthCheck{
			{Name: "database", Check: func(ctx context.Context) error { return database.HealthCheck(ctx, pool) }},
			{Name: "redis", Check: iredis.HealthCheck(redisClient)},
			natsCheck,
		},
	}, api.HandlerSet{
		GetDepositLimits: limitsHandler.GetStatus,
		SetDepositLimits: limitsHandler.SetLimits,
		RecordBet:        limitsHandler.RecordBet,

		AssessmentQuestions: assessmentHandler.Questions,
		SubmitAssessment:    assessmentHandler.Submit,
		AssessmentHistory:   assessmentHandler.History,

		StartTimeOut:     coolOffHandler.Start,
		GetActiveTimeOut: coolOffHandler.Active,
		CancelTimeOut:    coolOffHandler.Cancel,

		ListAuditLogs: auditHandler.List,

		AuthMiddleware: auth.Middleware(jwtManager),
	})

	g, gctx := errgroup.WithContext(ctx)

	srv := server.New(cfg.Server, router)
	g.Go(func() error { return srv.Run(gctx) })

	if natsClient != nil {
		consumer := audit.NewConsumer(auditRepo, natsClient)
		g.Go(func() error { return consumer.Start(gctx) })
	}

	return g.Wait()
}

func setupLogger(cfg config.LogConfig) {
	var handler slog.Handler

	opts := &slog.HandlerOptions{}
	switch cfg.Level {
	case "debug":
		opts.Level = slog.LevelDebug
	case "info":
		opts.Level = slog.LevelInfo
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
