// Package main is the entry point for the holdings dashboard server.
//
// The server persists accounts, holdings, ledger postings and contribution
// plans, values holdings against live EODHD quotes, and serves the market
// health gauges over a JSON API.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vmi/dashboard/internal/config"
	"github.com/vmi/dashboard/internal/di"
	"github.com/vmi/dashboard/internal/server"
	"github.com/vmi/dashboard/pkg/logger"
)

// main orchestrates startup:
// 1. Loads configuration from environment variables (.env supported)
// 2. Initializes logging
// 3. Wires database, repositories, services and jobs
// 4. Starts the scheduler and HTTP server
// 5. Waits for a shutdown signal and shuts down gracefully
func main() {
	cfg, err := config.Load()
	if err != nil {
		// Use fallback logger if config fails
		fallbackLog := logger.New(logger.Config{
			Level:  "info",
			Pretty: true,
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	log.Info().Str("driver", cfg.DBDriver).Int("port", cfg.Port).Msg("Starting holdings dashboard")

	container, err := di.Wire(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}
	defer func() {
		if err := container.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close database")
		}
	}()

	container.Scheduler.Start()

	srv := server.New(server.Config{
		Log:           log,
		DB:            container.DB,
		Holdings:      container.HoldingService,
		Transactions:  container.TransactionService,
		Baseline:      container.BaselineService,
		Prices:        container.PriceService,
		Metrics:       container.MetricsService,
		Contributions: container.ContributionRepo,
		Jobs:          container.Scheduler,
		Port:          cfg.Port,
		UserID:        cfg.DefaultUserID,
		DevMode:       cfg.DevMode,
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start HTTP server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	container.Scheduler.Stop()

	// In-flight requests get up to 10 seconds to finish
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
