package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dev-shahrooz/Smart-Pricing/internal/config"
	"github.com/dev-shahrooz/Smart-Pricing/internal/infra"
	"github.com/dev-shahrooz/Smart-Pricing/internal/repository"
	"github.com/dev-shahrooz/Smart-Pricing/internal/router"
	"github.com/dev-shahrooz/Smart-Pricing/internal/service"
	"github.com/dev-shahrooz/Smart-Pricing/internal/store"
	"github.com/dev-shahrooz/Smart-Pricing/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Structured logger — dev: pretty, prod: JSON
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The model store is shared between the HTTP surface and the retrain
	// workers. Seed it from persisted parameters before serving.
	models := store.New()
	salesRepo := repository.NewSalesRepository(db)
	currencyRepo := repository.NewCurrencyRepository(db)
	modelRepo := repository.NewTrainedModelRepository(db)
	params := service.EngineParams(cfg)
	if err := service.HydrateStore(ctx, modelRepo, salesRepo, currencyRepo, models, params); err != nil {
		log.Fatal().Err(err).Msg("failed to hydrate model store")
	}

	// Retrain worker pool — uploads enqueue jobs, workers run the fits.
	trainer := service.NewTrainingService(salesRepo, currencyRepo, modelRepo, models, rdb, params)
	worker.StartWorkerPool(ctx, rdb, cfg.WorkerPoolSize, trainer)

	r := router.New(cfg, db, rdb, models)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("pricing engine listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}
