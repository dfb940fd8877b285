// Package main implements the entry point for the Adboard API server,
// a classifieds backend with listings, reviews and email notifications.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"

	"github.com/dkotenko/adboard/internal/config"
	"github.com/dkotenko/adboard/internal/metrics"
	"github.com/dkotenko/adboard/internal/platform/logger"
)

func main() {
	ctx := context.Background()

	app, err := initializeApp(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	if err := app.Run(ctx); err != nil {
		app.logger.Error("Server exited with error", "error", err)
		app.cleanup()
		log.Fatalf("Server error: %v", err)
	}
}

// initializeApp loads configuration, sets up logging and builds the
// application with all its dependencies wired.
func initializeApp(ctx context.Context) (*application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	slog.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel)

	metrics.Register()

	db, err := setupAppDatabase(ctx, cfg, appLogger)
	if err != nil {
		return nil, err
	}

	app, err := newApplication(ctx, cfg, appLogger, db)
	if err != nil {
		if closeErr := db.Close(); closeErr != nil {
			appLogger.Error("Error closing database connection", "error", closeErr)
		}
		return nil, err
	}

	return app, nil
}
