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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/carterperez-dev/tagback/internal/admin"
	"github.com/carterperez-dev/tagback/internal/auth"
	"github.com/carterperez-dev/tagback/internal/config"
	"github.com/carterperez-dev/tagback/internal/contact"
	"github.com/carterperez-dev/tagback/internal/core"
	"github.com/carterperez-dev/tagback/internal/health"
	"github.com/carterperez-dev/tagback/internal/lookup"
	"github.com/carterperez-dev/tagback/internal/metrics"
	"github.com/carterperez-dev/tagback/internal/middleware"
	"github.com/carterperez-dev/tagback/internal/owner"
	"github.com/carterperez-dev/tagback/internal/server"
	"github.com/carterperez-dev/tagback/internal/tag"
	"github.com/carterperez-dev/tagback/internal/token"
)

const (
	drainDelay = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
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
		logger.Warn("failed to initialize telemetry", "error", err)
	} else if cfg.Otel.Enabled {
		logger.Info("OpenTelemetry exporter initialized",
			"endpoint", cfg.Otel.Endpoint,
		)
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	redis, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	logger.Info("redis connected",
		"pool_size", cfg.Redis.PoolSize,
	)

	jwtManager, err := auth.NewJWTManager(cfg.JWT)
	if err != nil {
		return err
	}
	logger.Info("JWT manager initialized",
		"algorithm", "ES256",
		"key_id", jwtManager.GetKeyID(),
	)

	decoys, err := token.NewDecoyDeriver([]byte(cfg.Lookup.DecoySecret))
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	appMetrics := metrics.New(registry)

	tagRepo := tag.NewRepository(db.DB)
	allocator := tag.NewAllocator(
		tag.WithMaxAttempts(cfg.Allocation.MaxAttempts),
		tag.WithMetrics(appMetrics),
	)
	tagSvc := tag.NewService(tagRepo, tag.NewTxRunner(db.DB), allocator, appMetrics)
	tagHandler := tag.NewHandler(tagSvc)

	resolver := lookup.NewResolver(lookup.Config{
		Records:    tagRepo,
		Owners:     owner.NewRepository(db.DB),
		Decoys:     decoys,
		Metrics:    appMetrics,
		Logger:     logger,
		MinLatency: cfg.Lookup.MinLatency,
	})
	lookupHandler := lookup.NewHandler(resolver)

	contactSvc := contact.NewService(
		resolver,
		contact.NewRedisNotifier(redis.Client, cfg.Contact.QueueKey),
		appMetrics,
		logger,
		cfg.Contact.MaxMessageLength,
	)
	contactHandler := contact.NewHandler(contactSvc)

	if stats, statsErr := tagSvc.KeyspaceStats(ctx); statsErr != nil {
		logger.Warn("keyspace stats unavailable", "error", statsErr)
	} else {
		logger.Info("identifier keyspace",
			"allocated", stats.Allocated,
			"capacity", stats.Capacity,
		)
	}

	healthHandler := health.NewHandler(
		health.Dependency{Name: "database", Checker: db},
		health.Dependency{Name: "redis", Checker: redis},
	)

	adminHandler := admin.NewHandler(admin.HandlerConfig{
		DBStats:    db.Stats,
		RedisStats: redis.PoolStats,
		DBPing:     db.Ping,
		RedisPing:  redis.Ping,
		Keyspace:   tagSvc,
		Metrics:    appMetrics.Handler(),
		Logger:     logger,
	})

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(logger))
	router.Use(
		middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
			Scope: middleware.ScopeGlobal,
			Limit: middleware.Per(
				cfg.RateLimit.Requests,
				cfg.RateLimit.Burst,
				cfg.RateLimit.Window,
			),
			Observer: appMetrics,
			Logger:   logger,
		}).Handler,
	)
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(cfg.CORS))

	healthHandler.RegisterRoutes(router)

	router.Get("/.well-known/jwks.json", jwtManager.GetJWKSHandler())

	authenticator := middleware.Authenticator(jwtManager)
	adminOnly := middleware.RequireAdmin

	finderLimit := middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
		Limit: middleware.PerMinute(
			cfg.RateLimit.LookupRequests,
			cfg.RateLimit.LookupBurst,
		),
		Scope:    middleware.ScopeFinder,
		Observer: appMetrics,
		Logger:   logger,
	}).Handler

	router.Route("/v1", func(r chi.Router) {
		lookupHandler.RegisterRoutes(r, finderLimit)
		contactHandler.RegisterRoutes(r, finderLimit)

		tagHandler.RegisterRoutes(r, authenticator)
		tagHandler.RegisterAdminRoutes(r, authenticator, adminOnly)
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

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}

	if err := redis.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}

	if err := db.Close(); err != nil {
		logger.Error("database close error", "error", err)
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
