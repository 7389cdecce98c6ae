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

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/olegiv/evops/internal/cache"
	"github.com/olegiv/evops/internal/clock"
	"github.com/olegiv/evops/internal/config"
	"github.com/olegiv/evops/internal/handler"
	"github.com/olegiv/evops/internal/handler/api"
	"github.com/olegiv/evops/internal/logging"
	"github.com/olegiv/evops/internal/middleware"
	"github.com/olegiv/evops/internal/scheduler"
	"github.com/olegiv/evops/internal/service"
	"github.com/olegiv/evops/internal/store"
	"github.com/olegiv/evops/internal/transfer"
	"github.com/olegiv/evops/internal/version"
	"github.com/olegiv/evops/internal/webhook"
)

const (
	requestTimeout  = 30 * time.Second
	shutdownTimeout = 30 * time.Second
	// writeBurst is how many write requests a client may send back to back.
	writeBurst = 10
)

// catalogFlags select a one-shot catalog transfer instead of serving.
type catalogFlags struct {
	exportPath string
	importPath string
	dryRun     bool
	conflict   string
}

func main() {
	var cf catalogFlags
	flag.StringVar(&cf.exportPath, "export-catalog", "", "Write the reference catalog to `file` and exit")
	flag.StringVar(&cf.importPath, "import-catalog", "", "Load a reference catalog from `file` and exit")
	flag.BoolVar(&cf.dryRun, "dry-run", false, "With -import-catalog: report what would change without writing")
	flag.StringVar(&cf.conflict, "conflict", string(transfer.ConflictSkip), "With -import-catalog: skip|overwrite existing entries")

	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "evops - event provisioning and equipment tracking\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  EVOPS_DB_DRIVER        sqlite|postgres (default: sqlite)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  EVOPS_DB_PATH          SQLite database path (default: ./data/evops.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  EVOPS_DATABASE_URL     Postgres DSN (required for postgres)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  EVOPS_SERVER_PORT      Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  EVOPS_TIMEZONE         Zone deciding the job ID day (default: Local)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  EVOPS_REDIS_URL        Redis URL for the reference data cache (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  EVOPS_WEBHOOK_URLS     Comma-separated webhook endpoints (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  EVOPS_AUDIT_SCHEDULE   Cron expression of the consistency audit\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	info := version.Current()
	if *showVersion {
		_, _ = fmt.Printf("evops %s\n", info)
		os.Exit(0)
	}

	if err := run(info, cf); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run(info version.Info, cf catalogFlags) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logLevel := parseLevel(cfg.LogLevel)
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger := slog.New(textHandler)
	slog.SetDefault(logger)

	ctx := context.Background()

	db, dialect, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}()

	slog.Info("running database migrations", "driver", cfg.DBDriver)
	if err := store.Migrate(db, dialect); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	queries := store.NewWithDialect(db, dialect)

	// From here on WARN and ERROR records are also kept in the activity log.
	logger = slog.New(logging.NewActivityLogHandler(textHandler, queries))
	slog.SetDefault(logger)
	slog.Info("activity log integration enabled", "min_level", "warn")

	if cfg.DoSeed {
		if err := store.Seed(ctx, queries); err != nil {
			return fmt.Errorf("seeding database: %w", err)
		}
		slog.Info("reference data seeded")
	}

	if cf.exportPath != "" || cf.importPath != "" {
		return runCatalog(ctx, cf, db, queries, logger)
	}

	loc, err := cfg.Location()
	if err != nil {
		return fmt.Errorf("loading timezone: %w", err)
	}
	clk := clock.NewSystem(loc)

	refCache, backend := cache.New(cache.Config{
		RedisURL:        cfg.RedisURL,
		Prefix:          cfg.CachePrefix,
		DefaultTTL:      cfg.CacheTTLDuration(),
		MaxSize:         cfg.CacheMaxSize,
		CleanupInterval: time.Minute,
	}, logger)
	defer func() { _ = refCache.Close() }()
	slog.Info("reference cache initialized", "backend", backend)
	reference := cache.NewReference(queries, refCache, cfg.CacheTTLDuration())

	opts := service.Options{
		Clock:         clk,
		Logger:        logger,
		IssueAttempts: cfg.IssueAttempts,
	}
	if cfg.WebhooksEnabled() {
		whCfg := webhook.DefaultConfig()
		whCfg.URLs = cfg.WebhookURLs
		whCfg.Secret = cfg.WebhookSecret
		dispatcher := webhook.NewDispatcher(logger, whCfg)
		dispatcher.Start(ctx)
		defer dispatcher.Stop()
		opts.Notifier = dispatcher
		slog.Info("webhook dispatcher initialized", "endpoints", len(cfg.WebhookURLs))
	}

	provisioner := service.NewProvisioner(queries, reference, opts)
	inventory := service.NewInventory(queries, reference, opts)
	assignments := service.NewAssignmentManager(queries, opts)

	sched := scheduler.New(queries, logger, scheduler.Options{
		AuditSchedule: cfg.AuditSchedule,
		Retention:     cfg.ActivityRetention(),
		Clock:         clk,
	})
	if err := sched.Start(); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer sched.Stop()

	apiHandler := api.NewHandler(api.Deps{
		Provisioner: provisioner,
		Inventory:   inventory,
		Assignments: assignments,
		Auditor:     sched,
		Jobs:        sched.Jobs(),
		Activity:    queries,

		CatalogExporter: transfer.NewExporter(queries, logger),
		CatalogImporter: transfer.NewImporter(queries, db, reference, logger),
		Logger:          logger,
	})
	healthHandler := handler.NewHealthHandler(queries, refCache, info)
	writeLimiter := middleware.NewRateLimiter(cfg.APIRateLimit, writeBurst, logger)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.GetHead)
	r.Use(chimw.StripSlashes)

	r.Get("/health", healthHandler.Health)
	r.Get("/health/live", healthHandler.Liveness)
	r.Get("/health/ready", healthHandler.Readiness)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.APIHeaders)
		r.Use(middleware.Timeout(requestTimeout))
		r.Mount("/", apiHandler.Routes(writeLimiter.Middleware()))
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      requestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env, "version", info.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

// runCatalog performs the transfer selected by cf. The reference cache is
// not touched: a running server keeps cached entries until they expire.
func runCatalog(ctx context.Context, cf catalogFlags, db *sql.DB, queries *store.Queries, logger *slog.Logger) error {
	if cf.exportPath != "" {
		if err := transfer.NewExporter(queries, logger).ExportToFile(ctx, cf.exportPath); err != nil {
			return fmt.Errorf("exporting catalog: %w", err)
		}
		slog.Info("catalog written", "path", cf.exportPath)
		return nil
	}

	strategy, err := transfer.ParseConflictStrategy(cf.conflict)
	if err != nil {
		return err
	}
	result, err := transfer.NewImporter(queries, db, nil, logger).
		ImportFromFile(ctx, cf.importPath, transfer.ImportOptions{DryRun: cf.dryRun, ConflictStrategy: strategy})
	if result != nil {
		for _, e := range result.Errors {
			slog.Error("catalog entry rejected", "entity", e.Entity, "id", e.ID, "message", e.Message)
		}
		slog.Info("catalog import finished",
			"dry_run", result.DryRun,
			"created", result.Created,
			"updated", result.Updated,
			"skipped", result.Skipped,
		)
	}
	if err != nil {
		return fmt.Errorf("importing catalog: %w", err)
	}
	return nil
}

func openDB(ctx context.Context, cfg *config.Config) (*sql.DB, store.Dialect, error) {
	if cfg.DBDriver == config.DriverPostgres {
		slog.Info("initializing database", "driver", "postgres")
		db, err := store.NewPostgresDB(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, "", fmt.Errorf("initializing database: %w", err)
		}
		return db, store.DialectPostgres, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return nil, "", fmt.Errorf("creating data directory: %w", err)
	}
	slog.Info("initializing database", "driver", "sqlite", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return nil, "", fmt.Errorf("initializing database: %w", err)
	}
	return db, store.DialectSQLite, nil
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
