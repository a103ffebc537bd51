package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/zenlit/backend/internal/config"
	"github.com/zenlit/backend/internal/infra/logger"
	"github.com/zenlit/backend/internal/jobs/cleanup"
	pgrepo "github.com/zenlit/backend/internal/repo/postgres"
)

// The worker owns the stale-location sweep: coordinates whose last refresh
// is older than the retention window are cleared even if the owning session
// never said goodbye.
func main() {
	cfgPath := os.Getenv("APP_CONFIG")
	if cfgPath == "" {
		cfgPath = "configs/config.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		panic(err)
	}
	defer func() {
		_ = log.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN)
	if err != nil {
		log.Fatal("connect postgres", zap.Error(err))
	}
	defer pool.Close()

	profileRepo := pgrepo.NewProfileRepo(pool)
	job := cleanup.New(profileRepo, cfg.Location.StaleRetention, log)

	log.Info("cleanup worker started",
		zap.Duration("interval", cfg.Location.CleanupInterval),
		zap.Duration("retention", cfg.Location.StaleRetention),
	)

	if err := job.Run(ctx); err != nil {
		log.Warn("initial cleanup run failed", zap.Error(err))
	}
	job.RunEvery(ctx, cfg.Location.CleanupInterval)

	log.Info("cleanup worker stopped")
}
