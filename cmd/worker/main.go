// cmd/worker/main.go
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"catalog-backend/internal/config"
	"catalog-backend/pkg/container"
	"catalog-backend/pkg/logger"
)

func main() {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.Init("development", "")
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logger.Init(cfg.App.Environment, cfg.App.LogLevel)
	if envErr != nil {
		logger.Warn("no .env file found, using system environment variables", nil)
	}

	c, err := container.NewContainer(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize container")
	}
	defer c.Cleanup()

	if c.Redis == nil {
		log.Error().Msg("the worker needs redis; refusing to start")
		c.Cleanup()
		os.Exit(1)
	}

	handlers := initializeHandlers(c)

	srv, err := setupAsynqServer(cfg, handlers)
	if err != nil {
		log.Error().Err(err).Msg("failed to start worker")
		c.Cleanup()
		os.Exit(1)
	}

	scheduler, err := setupScheduler(cfg)
	if err != nil {
		srv.Shutdown()
		log.Error().Err(err).Msg("failed to start scheduler")
		c.Cleanup()
		os.Exit(1)
	}

	health := startServices(c)

	waitForShutdown(srv, scheduler, health)
}

func waitForShutdown(srv *asynqServer, scheduler *asynqScheduler, health *healthServer) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down worker", nil)
	scheduler.Shutdown()
	srv.Shutdown()
	health.Shutdown()
	logger.Info("worker stopped", nil)
}
