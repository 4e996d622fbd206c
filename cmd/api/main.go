// Package main is the entry point for the Yphilios calendar API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/zapponejosh/yphilios-calendar/internal/api"
	"github.com/zapponejosh/yphilios-calendar/internal/cache"
	"github.com/zapponejosh/yphilios-calendar/internal/calendar"
	"github.com/zapponejosh/yphilios-calendar/internal/config"
	"github.com/zapponejosh/yphilios-calendar/internal/database"
	"github.com/zapponejosh/yphilios-calendar/internal/logger"
	"github.com/zapponejosh/yphilios-calendar/internal/seed"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	// Setup structured logging
	log := logger.Setup(cfg)

	log.Info("starting yphilios calendar API",
		slog.String("env", cfg.Env),
		slog.Int("port", cfg.Port),
		slog.String("log_level", cfg.LogLevel),
	)

	if err := run(cfg, log); err != nil {
		log.Error("server failed", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped")
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx := context.Background()

	// --- Database ---
	if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0o755); err != nil {
		return fmt.Errorf("create database directory: %w", err)
	}
	db, err := database.Open(database.DefaultConfig(cfg.DatabasePath), log)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	migrated, err := db.Migrate(ctx)
	if err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	log.Info("database ready", slog.String("path", cfg.DatabasePath), slog.Int("migrations_applied", migrated))

	// --- Catalog ---
	if err := seed.EnsureSeeded(ctx, db, cfg.CatalogPath, log); err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}
	catalog, err := seed.LoadCatalog(ctx, db, calendar.New())
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	counts := catalog.Counts()
	log.Info("catalog loaded",
		slog.Int("events", counts["events"]),
		slog.Int("previous_campaigns", counts["previous_campaigns"]),
		slog.Int("campaigns", counts["campaigns"]),
		slog.Int("notes", counts["notes"]),
	)

	// --- Cache ---
	var c cache.Cache = cache.Noop{}
	if cfg.CacheEnabled() {
		rc, err := cache.NewRedis(cfg.RedisURL, cfg.CacheTTL)
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		defer rc.Close()
		c = rc
		log.Info("connected to redis", slog.Duration("ttl", cfg.CacheTTL))
	} else {
		log.Info("caching disabled")
	}

	// --- HTTP server ---
	handlers := api.NewHandlers(db, catalog, c, cfg, log)
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           api.SetupRoutes(handlers, cfg, log),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Drain in-flight requests on SIGINT/SIGTERM
	shutdownErr := make(chan error, 1)
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		log.Info("shutting down server")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		shutdownErr <- srv.Shutdown(ctx)
	}()

	log.Info("listening", slog.String("addr", srv.Addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return <-shutdownErr
}
