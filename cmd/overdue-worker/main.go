package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/caretrack/hospital-backend/internal/billing"
	"github.com/caretrack/hospital-backend/internal/config"
	"github.com/caretrack/hospital-backend/internal/db"
	"github.com/caretrack/hospital-backend/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Setup("overdue-worker", "dev")
		log.Fatal().Err(err).Msg("config load error")
	}

	logging.Setup("overdue-worker", cfg.Env)
	log.Info().Str("env", cfg.Env).Dur("interval", cfg.WorkerInterval).Msg("overdue-worker starting up")

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect Postgres
	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
	cancelPg()
	if err != nil {
		log.Fatal().Err(err).Msg("postgres connection error")
	}
	defer pgPool.Close()
	log.Info().Msg("connected to Postgres")

	repo := billing.NewPgRepository(pgPool)

	// Run once at startup
	runOnce(rootCtx, repo)

	ticker := time.NewTicker(cfg.WorkerInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rootCtx.Done():
			log.Info().Msg("shutdown signal received, stopping overdue worker")
			return
		case <-ticker.C:
			runOnce(rootCtx, repo)
		}
	}
}

func runOnce(ctx context.Context, repo billing.Repository) {
	runCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	start := time.Now()
	n, err := repo.MarkOverdue(runCtx, time.Now())
	if err != nil {
		log.Error().Err(err).Msg("overdue run error")
		return
	}
	log.Info().Int64("marked", n).Dur("took", time.Since(start)).Msg("overdue run complete")
}
