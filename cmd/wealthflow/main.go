package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"wealthflow/internal/advisor"
	"wealthflow/internal/cache"
	"wealthflow/internal/cli"
	"wealthflow/internal/core"
	apphttp "wealthflow/internal/http"
	applog "wealthflow/internal/log"
	"wealthflow/internal/services"
	"wealthflow/internal/storage"
	"wealthflow/internal/worker"
)

const (
	categoryCacheSize = 512
	categoryCacheTTL  = 24 * time.Hour
	insightCacheSize  = 64
	cacheSweepEvery   = 5 * time.Minute
)

func main() {
	cli.LoadEnvFile()

	boot := cli.SetupLogger("info", "text", applog.ComponentApp)
	cfg := cli.LoadAndValidateConfig(boot)
	logger := cli.SetupLogger(cfg.LogLevel, cfg.LogFormat, applog.ComponentApp)

	startCtx := context.Background()
	res := cli.InitBackend(startCtx, logger, cfg)

	finance := services.NewFinanceService(storage.NewStateStore(res.Store), res.Publisher)

	adv, err := advisor.New(startCtx, advisor.Config{
		APIKey:  cfg.GeminiAPIKey,
		Model:   cfg.GeminiModel,
		Timeout: cfg.AITimeout,
		Logger:  logger.WithComponent(applog.ComponentAdvisor).Logger,
	})
	if err != nil {
		cli.Fatal(logger, "Failed to initialize advisor", err)
	}
	if !adv.Enabled() {
		logger.Warn("GEMINI_API_KEY not set, advisor answers with fallbacks")
	}

	insightCache := cache.NewLRUCache[core.Insight](insightCacheSize, cfg.InsightCacheTTL)
	categoryCache := cache.NewLRUCache[string](categoryCacheSize, categoryCacheTTL)
	caches := cache.NewManager()
	caches.Register("insight", insightCache)
	caches.Register("category", categoryCache)
	caches.StartCleanup(cacheSweepEvery)

	insights := services.NewInsightService(adv, finance, insightCache)
	finance.SetStaleNotifier(insights)
	if err := finance.Load(startCtx); err != nil {
		cli.Fatal(logger, "Failed to load state", err)
	}

	srv, err := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Finance:            finance,
		Insights:           insights,
		Categories:         services.NewCategoryService(adv, categoryCache),
		Caches:             caches,
		Store:              res.Store,
		Logger:             logger,
		AIEnabled:          adv.Enabled(),
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	})
	if err != nil {
		cli.Fatal(logger, "Failed to create HTTP server", err)
	}

	ctx, done := cli.GracefulShutdown(logger, cfg.ShutdownTimeout, func(shutdownCtx context.Context) {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
		caches.Stop()
		if res.Cleanup != nil {
			if err := res.Cleanup(); err != nil {
				logger.Error("Backend cleanup error", applog.FieldError, err)
			}
		}
	})

	go func() {
		if err := insights.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Insight refresher stopped", applog.FieldError, err)
		}
	}()

	scheduler := worker.NewScheduler()
	if err := scheduler.Add(ctx, "insight-refresh", cfg.InsightRefreshSchedule, func(context.Context) {
		insights.MarkStale()
	}); err != nil {
		cli.Fatal(logger, "Failed to schedule insight refresh", err)
	}
	if scheduler.Jobs() > 0 {
		go func() { _ = scheduler.Run(ctx) }()
	}

	logger.Info("Starting wealthflow server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"ai_enabled", adv.Enabled(),
		"amqp_enabled", res.Publisher != nil)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		cli.Fatal(logger, "Server error", err)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
