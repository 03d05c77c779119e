// Command purge-sessions deletes expired session rows. The API never
// sweeps them itself, so this runs from cron.
package main

import (
	"context"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/dentallab/backend/internal/repository"
	"github.com/dentallab/backend/pkg/config"
	"github.com/dentallab/backend/pkg/database"
	"github.com/dentallab/backend/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(&logger.Config{
		Level:       cfg.App.LogLevel,
		ServiceName: "purge-sessions",
		Development: cfg.IsDevelopment(),
	}); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := database.NewPostgres(ctx, &cfg.Database)
	if err != nil {
		logger.Fatal("Database connection failed", zap.Error(err))
	}
	defer db.Close()

	sessions := repository.NewPostgresSessionRepository(db.Pool())
	purged, err := sessions.DeleteExpired(ctx)
	if err != nil {
		logger.Fatal("Purge failed", zap.Error(err))
	}
	logger.Info("Expired sessions purged", zap.Int64("count", purged))
}
