// Somnus - Sleep Tracking and Social Sleep Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/somnus

// Package main is the entry point for the Somnus server.
//
// Somnus is a sleep tracking backend with a social layer: users clock in
// when they go to bed and clock out when they wake up, browse their own
// history, follow other users, and compare sleep from their friends'
// previous week. A statistics engine scores sleep quality and consistency
// over configurable periods.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: defaults, optional config.yaml, environment (Koanf v2)
//  2. Database: SQLite via modernc.org/sqlite, schema applied at startup
//  3. Cache: in-process TTL cache for users, follow lists and statistics
//  4. Clock service: bedtime/wake validation and the active-session rule
//  5. HTTP server: Chi router under suture supervision
//
// # Configuration
//
// Environment variables (see internal/config) override config.yaml which
// overrides defaults. A .env file in the working directory is loaded if
// present.
//
// # Signal Handling
//
// SIGINT and SIGTERM trigger graceful shutdown: the listener stops
// accepting connections and in-flight requests get ShutdownTimeout to
// finish before the process exits.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/tomtom215/somnus/internal/api"
	"github.com/tomtom215/somnus/internal/cache"
	"github.com/tomtom215/somnus/internal/clock"
	"github.com/tomtom215/somnus/internal/config"
	"github.com/tomtom215/somnus/internal/database"
	"github.com/tomtom215/somnus/internal/logging"
	"github.com/tomtom215/somnus/internal/supervisor"
)

func main() {
	// A missing .env file is not an error.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("version", api.Version).
		Str("db_path", cfg.Database.Path).
		Msg("Starting Somnus")

	db, err := database.New(cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	if cfg.Database.SeedMockData {
		logging.Info().Msg("Mock data seeding enabled (SEED_MOCK_DATA=true)")
		if err := db.SeedMockData(context.Background()); err != nil {
			logging.Fatal().Err(err).Msg("Failed to seed mock data")
		}
	}

	appCache := cache.New(cfg.Cache.UserTTL)
	clockSvc := clock.NewService(db)
	handler := api.NewHandler(db, appCache, clockSvc, cfg)

	chimw := api.NewChiMiddleware(api.NewChiMiddlewareConfig(cfg.Security))
	router := api.NewRouter(handler, chimw)

	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (DISABLE_RATE_LIMIT=true)")
	}

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Bridge zerolog to slog for sutureslog.
	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	tree.AddMaintenanceService(supervisor.NewCacheReporterService(appCache, time.Minute))
	tree.AddAPIService(supervisor.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Drain until the supervisor closes the channel.
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Application stopped gracefully")
}
