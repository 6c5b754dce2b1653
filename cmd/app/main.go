package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"insurai/config"
	"insurai/di"
	_ "insurai/docs"
	"insurai/helper"
	"insurai/infras/otel"
	"insurai/shared/logger"

	"github.com/rs/zerolog/log"
)

// @title InsurAI Scheduling API
// @version 1.0
// @description Agent availability and appointment scheduling.
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
func main() {
	cfg := config.Get()

	logger.InitLogger(cfg)

	logger.SetLogLevel(cfg)

	if cfg.DB.Postgres.AutoMigrate {
		if err := helper.Up(cfg); err != nil {
			log.Fatal().Err(err).Msg("Failed to apply database migrations")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := di.InitializeService()

	var wg sync.WaitGroup

	wg.Add(1)

	go func() {
		defer wg.Done()

		app.Reminder.Run(ctx)
	}()

	err := app.HTTP.Serve(ctx)

	stop()
	wg.Wait()

	if closeErr := app.Kafka.Close(); closeErr != nil {
		log.Error().Err(closeErr).Msg("Failed to close Kafka client")
	}

	if closeErr := otel.Shutdown(context.Background(), app.Otel); closeErr != nil {
		log.Error().Err(closeErr).Msg("Failed to flush traces")
	}

	if closeErr := app.DB.Close(); closeErr != nil {
		log.Error().Err(closeErr).Msg("Failed to close database connections")
	}

	if err != nil {
		log.Fatal().Err(err).Msg("HTTP server stopped with an error")
	}

	log.Info().Msg("Shut down cleanly.")
}
