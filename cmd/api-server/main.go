package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/caretrack/hospital-backend/internal/api"
	"github.com/caretrack/hospital-backend/internal/billing"
	"github.com/caretrack/hospital-backend/internal/config"
	"github.com/caretrack/hospital-backend/internal/db"
	"github.com/caretrack/hospital-backend/internal/directory"
	"github.com/caretrack/hospital-backend/internal/logging"
	redisclient "github.com/caretrack/hospital-backend/internal/redis"
	"github.com/caretrack/hospital-backend/internal/scheduling"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Setup("api-server", "dev")
		log.Fatal().Err(err).Msg("config load error")
	}

	logging.Setup("api-server", cfg.Env)
	log.Info().Str("env", cfg.Env).Str("http_port", cfg.HTTPPort).Msg("api-server starting up")

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

	// Connect Redis
	rdb, err := redisclient.NewRedisClient(cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection error")
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Error().Err(err).Msg("error closing redis")
		}
	}()
	log.Info().Msg("connected to Redis")

	dirSvc := directory.NewService(directory.NewPgRepository(pgPool))

	locker := redisclient.NewRedisProviderLocker(rdb, cfg.LockTTL)
	schedSvc := scheduling.NewService(scheduling.NewPgRepository(pgPool), dirSvc, locker)

	billSvc := billing.NewService(billing.NewPgRepository(pgPool), dirSvc, schedSvc)

	router := api.NewRouter(api.RouterConfig{
		Scheduling: schedSvc,
		Billing:    billSvc,
		Directory:  dirSvc,
		PgPool:     pgPool,
		Redis:      rdb,
		Env:        cfg.Env,
		Version:    version,
		JWTSecret:  cfg.JWTSecret,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server error")
		}
	}()

	<-rootCtx.Done()
	log.Info().Msg("shutting down api-server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
