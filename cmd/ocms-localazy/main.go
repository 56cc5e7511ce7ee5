// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/olegiv/ocms-localazy/internal/cache"
	"github.com/olegiv/ocms-localazy/internal/config"
	"github.com/olegiv/ocms-localazy/internal/errtrack"
	"github.com/olegiv/ocms-localazy/internal/handler"
	"github.com/olegiv/ocms-localazy/internal/hook"
	"github.com/olegiv/ocms-localazy/internal/langmap"
	"github.com/olegiv/ocms-localazy/internal/localazy"
	"github.com/olegiv/ocms-localazy/internal/logging"
	"github.com/olegiv/ocms-localazy/internal/scheduler"
	"github.com/olegiv/ocms-localazy/internal/store"
	"github.com/olegiv/ocms-localazy/internal/syncer"
	"github.com/olegiv/ocms-localazy/internal/throttle"
	"github.com/olegiv/ocms-localazy/internal/version"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = ""
	appGitCommit = ""
	appBuildTime = ""
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "ocms-localazy - Directus content sync with Localazy\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  LOCSYNC_API_TOKEN          Bearer token for the HTTP API (required outside development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  LOCSYNC_DB_PATH            SQLite database path (default: ./data/localazy-sync.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  LOCSYNC_SERVER_PORT        Server port (default: 8090)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  LOCSYNC_ENV                Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  LOCSYNC_LOCALAZY_API_URL   Localazy API base URL (default: https://api.localazy.com)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  LOCSYNC_IMPORT_SCHEDULE    Cron schedule for imports (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  LOCSYNC_EXPORT_SCHEDULE    Cron schedule for exports (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  LOCSYNC_REDIS_URL          Redis URL for shared caching (optional)\n")
	}

	flag.Parse()

	info := version.Info{Version: appVersion, GitCommit: appGitCommit, BuildTime: appBuildTime}

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if *showVersion {
		_, _ = fmt.Println(info.String())
		os.Exit(0)
	}

	if err := run(info); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run(info version.Info) error {
	// Load .env files if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger := slog.New(textHandler)
	slog.SetDefault(logger)

	dbDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	ctx := context.Background()
	schemaVersion, err := store.Migrate(ctx, db)
	if err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready", "schema_version", schemaVersion)
	st := store.New(db, store.WithLegacyTranslationStrings(cfg.LegacyTranslationStrings))

	// WARN and ERROR logs also go to the event log
	logger = slog.New(logging.NewEventLogHandler(textHandler, st))
	slog.SetDefault(logger)

	if err := store.Seed(ctx, st, logger); err != nil {
		return fmt.Errorf("seeding database: %w", err)
	}

	th := throttle.New(throttle.Config{
		PerSecond: cfg.ThrottlePerSecond,
		PerMinute: cfg.ThrottlePerMinute,
		Quantum:   cfg.ThrottleQuantum,
	}, logger)

	httpClient := &http.Client{Timeout: cfg.LocalazyTimeout}
	clients := localazy.ThrottledFactory(localazy.HTTPFactory(cfg.LocalazyAPIURL, info.UserAgent(), httpClient), th)

	c := cache.New(cache.Config{
		RedisURL:   cfg.RedisURL,
		Prefix:     cfg.CachePrefix,
		DefaultTTL: cfg.CacheTTLDuration(),
		MaxSize:    cfg.CacheMaxSize,
	}, logger)
	defer func() {
		if err := c.Close(); err != nil {
			slog.Warn("error closing cache", "error", err)
		}
	}()

	tracker := errtrack.New(logger, errtrack.DefaultCapacity)
	catalog := langmap.DefaultCatalog()

	svc := syncer.New(syncer.Deps{
		Store:    st,
		Model:    st,
		Localazy: clients,
		Tracker:  tracker,
		Cache:    c,
		Catalog:  catalog,
	}, syncer.Config{
		ExportDelay:            cfg.ExportDelay,
		CollectionDelay:        cfg.CollectionDelay,
		DeprecationDelay:       cfg.DeprecationDelay,
		ChunkSize:              cfg.ChunkSize,
		CacheTTL:               cfg.CacheTTLDuration(),
		SanitizeHTML:           cfg.SanitizeImportedHTML,
		BlockedPaymentStatuses: cfg.BlockedPaymentStatuses,
	}, logger)

	hooks := hook.NewRegistry(logger)
	svc.RegisterHooks(hooks)

	registry := scheduler.NewRegistry(st, 0, logger)
	sched := scheduler.New(scheduler.Config{
		ImportSchedule: cfg.ImportSchedule,
		ExportSchedule: cfg.ExportSchedule,
	}, registry, svc, st, logger)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer sched.Stop()

	router := handler.NewRouter(handler.Handlers{
		Health:    handler.NewHealthHandler(db, th, c, info),
		Sync:      handler.NewSyncHandler(svc, hooks, logger),
		Config:    handler.NewConfigHandler(st, svc, catalog, logger),
		Errors:    handler.NewErrorsHandler(tracker),
		Events:    handler.NewEventsHandler(st),
		Scheduler: handler.NewSchedulerHandler(registry, logger),
	}, handler.RouterConfig{
		APIToken:      cfg.APIToken,
		RateLimit:     cfg.APIRateLimit,
		IsDevelopment: cfg.IsDevelopment(),
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		// Sync runs are not bounded by the request timeout middleware.
		WriteTimeout:   10 * time.Minute,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env, "version", info.OrDev())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
