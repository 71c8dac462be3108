package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"concierge/config"
	"concierge/database"
	"concierge/llmclient"
	"concierge/pipeline"
	"concierge/session"
	"concierge/tenant"
	"concierge/web"
	"concierge/web/handlers"
	"concierge/web/middleware"
	"concierge/web/services"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Initialize logger with default level to load config
	tempLogger, err := config.InitLogger("info")
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	cfg := config.Load(tempLogger)

	// Re-initialize logger with configured level
	logger, err := config.InitLogger(cfg.LogLevel)
	if err != nil {
		fmt.Printf("Failed to re-initialize logger with configured level: %v\n", err)
		os.Exit(1)
	}
	defer config.Cleanup()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	store, err := newSessionStore(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize session store", zap.String("store", cfg.SessionStore), zap.Error(err))
	}
	defer store.Close()

	loader := tenant.NewFileLoader(cfg.TenantDir, cfg.DefaultModel, logger)
	registry, err := tenant.NewRegistry(loader, cfg.TenantCacheSize, logger)
	if err != nil {
		logger.Fatal("Failed to initialize tenant registry", zap.Error(err))
	}

	client := llmclient.New(cfg, logger)
	engine := pipeline.NewEngine(client, cfg.LLMRequestTimeout, logger)
	turns := services.NewTurnService(registry, session.NewMemory(store), session.NewLocker(), engine, logger)

	// Lead capture is only exposed when a database is configured.
	var leads handlers.LeadCapturer
	if cfg.DatabaseURL != "" {
		leadStore, err := database.NewLeadStore(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer leadStore.Close()

		if err := leadStore.EnsureSchema(ctx); err != nil {
			logger.Fatal("Failed to ensure database schema", zap.Error(err))
		}
		leads = services.NewLeadService(registry, leadStore, logger)
	}

	limiter := middleware.NewVisitorRateLimiter(middleware.RateLimiterConfig{
		MessagesPerMinute: cfg.RateLimitMessagesPerMin,
		BurstSize:         cfg.RateLimitBurstSize,
	}, logger)
	defer limiter.Stop()

	webServer := web.NewServer(turns, leads, limiter, logger, cfg)

	g, gctx := errgroup.WithContext(ctx)
	if cfg.TenantWatch {
		watcher, err := tenant.NewWatcher(cfg.TenantDir, registry, logger)
		if err != nil {
			logger.Fatal("Failed to initialize tenant watcher", zap.Error(err))
		}
		g.Go(func() error { return watcher.Start(gctx) })
	}

	port := fmt.Sprintf(":%d", cfg.WebPort)
	logger.Info("Starting concierge web server",
		zap.String("port", port),
		zap.String("tenant_dir", cfg.TenantDir),
		zap.String("session_store", cfg.SessionStore))
	g.Go(func() error { return webServer.Start(gctx, port) })

	if err := g.Wait(); err != nil {
		logger.Error("Server stopped with error", zap.Error(err))
		os.Exit(1)
	}
}

func newSessionStore(cfg *config.Config) (session.Store, error) {
	opts := []session.StoreOption{
		session.WithTTL(cfg.SessionTTL),
		session.WithCapacity(cfg.SessionCacheSize),
	}
	if cfg.SessionStore == string(session.StoreTypeRedis) {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		opts = append(opts, session.WithRedisClient(client))
		return session.NewStore(session.StoreTypeRedis, opts...)
	}
	return session.NewStore(session.StoreTypeMemory, opts...)
}
