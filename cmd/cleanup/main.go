package main

import (
	"context"
	"log"
	"time"

	"churrasco/internal/config"
	"churrasco/internal/database"
	"churrasco/internal/jobs"
	"churrasco/internal/modules/subscription"
	"churrasco/internal/pkg/logger"
	"churrasco/internal/repository"

	"go.uber.org/zap"
)

// One-shot variant of the scheduled maintenance jobs, for cron hosts that
// run the API without the in-process scheduler.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config:", err)
	}

	zl, err := logger.New(cfg.AppEnv)
	if err != nil {
		log.Fatal("logger:", err)
	}
	defer func() { _ = zl.Sync() }()

	db, err := database.Connect(cfg.DatabaseURL, zl)
	if err != nil {
		zl.Fatal("db connect failed", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	subs := subscription.NewService(subscription.NewRepository(db), nil, nil, zl)
	tasks := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"expire_subscriptions", jobs.ExpireSubscriptions(subs)},
		{"cleanup_tokens", jobs.CleanupTokens(repository.NewTokenRepository(db), zl)},
	}

	failed := false
	for _, t := range tasks {
		if err := t.fn(ctx); err != nil {
			zl.Error("cleanup task failed", zap.String("task", t.name), zap.Error(err))
			failed = true
			continue
		}
		zl.Info("cleanup task done", zap.String("task", t.name))
	}
	if failed {
		zl.Fatal("cleanup completed with errors")
	}
}
