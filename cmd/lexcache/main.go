// Package main is the entry point for the lexcache content service.
// It loads configuration, opens the local document store, connects the
// optional Valkey result cache, starts the background sync runner, and
// serves the content API with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lexcache/internal/cache"
	"lexcache/internal/config"
	"lexcache/internal/handlers"
	"lexcache/internal/middleware"
	"lexcache/internal/query"
	"lexcache/internal/router"
	"lexcache/internal/store"
	"lexcache/internal/syncer"
	"lexcache/internal/wp"
)

func main() {
	// Structured logger — debug level in development, info otherwise.
	level := slog.LevelInfo
	if os.Getenv("APP_ENV") != "production" {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"cms", cfg.WPBaseURL,
		"backend", cfg.StoreBackend,
	)

	// Open the local document store.
	var st store.Store
	switch cfg.StoreBackend {
	case "bbolt":
		st, err = store.NewBoltStore(cfg.DataDir)
	default:
		st, err = store.NewFileStore(cfg.DataDir)
	}
	if err != nil {
		slog.Error("failed to open document store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	// Connect to Valkey (optional — the service works without it).
	var results *cache.ResultCache
	if cfg.HasValkey() {
		valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
		if err != nil {
			slog.Error("failed to connect to valkey", "error", err)
			os.Exit(1)
		}
		defer valkeyClient.Close()
		results = cache.NewResultCache(valkeyClient, cfg.CacheTTL)
	} else {
		slog.Warn("valkey not configured — query-result cache disabled")
	}

	// Remote CMS client.
	client := wp.NewClient(wp.ClientOptions{
		BaseURL: cfg.WPBaseURL,
		Timeout: cfg.WPTimeout,
	})

	// Sync job + background runner.
	sync := syncer.New(client, st, results, syncer.Options{
		TTL:                 cfg.CacheTTL,
		RetryMax:            cfg.SyncRetryMax,
		EssentialCategories: cfg.EssentialCategories,
	})

	// Make sure a usable document exists before serving traffic. A cold
	// start against an unreachable CMS still serves (empty) responses.
	{
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		if ok, err := sync.EnsureDatabase(ctx); err != nil {
			slog.Warn("initial sync failed, serving stale or empty content", "error", err)
		} else if ok {
			slog.Info("document store ready")
		}
		cancel()
	}

	runner := syncer.NewRunner(sync, cfg.SyncInterval)
	runner.Start()

	// Query façade and API handlers.
	facade := query.New(st, sync)
	api := handlers.NewAPI(facade, sync, results)

	limiter := middleware.NewRateLimiter(cfg.RateLimit, cfg.RateWindow)
	defer limiter.Stop()

	r := router.New(api, limiter)

	// Create the HTTP server with sensible timeouts. WriteTimeout covers
	// the on-demand category backfill, which calls out to the CMS.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	runner.Stop()

	// Give active requests up to 30 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
