// Package main implements the entry point for the juku-api server, the
// backend of an after-school tutoring service: quota-metered AI lesson
// content generation, asynchronous question photo analysis and push
// notification dispatch.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jukuhub/juku-api/internal/config"
	"github.com/jukuhub/juku-api/internal/platform/logger"
	"github.com/jukuhub/juku-api/internal/platform/postgres"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

// run initializes configuration, logging, the database and the application
// dependency graph, then serves until interrupted.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(logger.LoggerConfig{Level: cfg.Server.LogLevel})
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	appLogger.Info("configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"daily_quota_limit", cfg.Quota.DailyLimit,
		"quota_retention_days", cfg.Quota.RetentionDays)

	ctx := context.Background()

	db, err := openDatabase(ctx, cfg, appLogger)
	if err != nil {
		return err
	}

	if os.Getenv("JUKU_SKIP_MIGRATIONS") == "" {
		if err := postgres.RunMigrations(db, appLogger); err != nil {
			return err
		}
	}

	app, err := newApplication(ctx, cfg, appLogger, db)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return app.Run(ctx)
}
