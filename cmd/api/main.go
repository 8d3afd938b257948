// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/carterperez-dev/ascend-api/internal/admin"
	"github.com/carterperez-dev/ascend-api/internal/auth"
	"github.com/carterperez-dev/ascend-api/internal/config"
	"github.com/carterperez-dev/ascend-api/internal/core"
	"github.com/carterperez-dev/ascend-api/internal/health"
	"github.com/carterperez-dev/ascend-api/internal/identity"
	"github.com/carterperez-dev/ascend-api/internal/middleware"
	"github.com/carterperez-dev/ascend-api/internal/profile"
	"github.com/carterperez-dev/ascend-api/internal/promo"
	"github.com/carterperez-dev/ascend-api/internal/server"
)

const (
	drainDelay = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen // bootstrap code is inherently verbose
func run(configPath string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	telemetry, err := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
	if err != nil {
		return err
	}
	if cfg.Otel.Enabled {
		logger.Info("OpenTelemetry tracer initialized",
			"endpoint", cfg.Otel.Endpoint,
		)
	}

	db, err := core.NewDatabase(ctx, cfg.Mongo)
	if err != nil {
		return err
	}
	logger.Info("mongo connected",
		"database", cfg.Mongo.Database,
		"max_pool_size", cfg.Mongo.MaxPoolSize,
	)

	profileRepo := profile.NewRepository(
		db.Collection(profile.CollectionName),
		db.QueryTimeout,
	)
	promoRepo := promo.NewRepository(
		db.Collection(promo.CollectionName),
		db.QueryTimeout,
	)

	if err := profileRepo.EnsureIndexes(ctx); err != nil {
		return err
	}
	if err := promoRepo.EnsureIndexes(ctx); err != nil {
		return err
	}

	redis, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	logger.Info("redis connected",
		"pool_size", cfg.Redis.PoolSize,
	)

	keys, err := identity.NewRemoteKeySource(ctx, cfg.Identity.JWKSURL)
	if err != nil {
		return err
	}
	verifier := identity.NewVerifier(keys, cfg.Identity)

	sessions, err := auth.NewSessionCodec(cfg.Session)
	if err != nil {
		return err
	}
	logger.Info("session codec initialized",
		"algorithm", sessions.Algorithm(),
		"expiry", sessions.Expiry(),
	)

	profileSvc := profile.NewService(profileRepo)
	profileHandler := profile.NewHandler(profileSvc)

	authSvc := auth.NewService(verifier, profileSvc, sessions)
	authHandler := auth.NewHandler(authSvc)

	promoHandler := promo.NewHandler(promo.NewEngine(profileSvc, promoRepo))

	healthHandler := health.NewHandler(health.Config{
		DB:      db,
		Redis:   redis,
		Name:    cfg.App.Name,
		Version: cfg.App.Version,
	})

	adminHandler := admin.NewHandler(admin.HandlerConfig{
		DBPing:     db.Ping,
		DBSessions: db.NumberOfSessionsInProgress,
		RedisPing:  redis.Ping,
		RedisStats: redis.PoolStats,
		RateLimitKeys: func(ctx context.Context) (int64, error) {
			return redis.CountKeys(ctx, core.RateLimitKeyPattern)
		},
		Promos: promoRepo,
	})

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.Tracing(telemetry.Tracer))
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recoverer(logger))
	router.Use(
		middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
			Limit: middleware.PerWindow(
				cfg.RateLimit.Requests,
				cfg.RateLimit.Burst,
				cfg.RateLimit.Window,
			),
			FailOpen: true,
		}).Handler,
	)
	router.Use(chimw.RequestSize(cfg.Server.MaxBodyBytes))
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(cfg.CORS))

	healthHandler.RegisterRoutes(router)

	authenticator := middleware.Authenticator(sessions)
	adminOnly := middleware.RequireSubject(cfg.Admin.Subjects...)
	redeemLimit := middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
		Limit: middleware.PerMinute(
			cfg.RateLimit.RedeemRequests,
			cfg.RateLimit.RedeemBurst,
		),
		KeyFunc:  middleware.KeyBySubject,
		FailOpen: true,
	}).Handler

	router.Route("/api", func(r chi.Router) {
		r.Get("/", healthHandler.Root)

		authHandler.RegisterRoutes(r)
		profileHandler.RegisterRoutes(r, authenticator)
		promoHandler.RegisterRoutes(r, authenticator, redeemLimit)
		adminHandler.RegisterRoutes(r, authenticator, adminOnly)
	})

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if err := telemetry.Shutdown(shutdownCtx); err != nil {
		logger.Error("telemetry shutdown error", "error", err)
	}

	if err := redis.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}

	if err := db.Close(shutdownCtx); err != nil {
		logger.Error("mongo close error", "error", err)
	}

	logger.Info("application stopped")
	return nil
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var handler slog.Handler

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
