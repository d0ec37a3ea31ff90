package main

import (
	"catalog-backend/internal/config"
	"catalog-backend/internal/infrastructure/queue"
	"catalog-backend/pkg/logger"
)

type asynqScheduler struct {
	*queue.Scheduler
}

func setupScheduler(cfg *config.Config) (*asynqScheduler, error) {
	scheduler := queue.NewScheduler(redisOpt(cfg), cfg.Worker)

	if err := scheduler.RegisterCatalogJobs(); err != nil {
		return nil, err
	}
	if err := scheduler.Start(); err != nil {
		return nil, err
	}

	logger.Info("scheduler started", nil)
	return &asynqScheduler{Scheduler: scheduler}, nil
}

func (s *asynqScheduler) Shutdown() {
	s.Scheduler.Shutdown()
	logger.Info("scheduler stopped", nil)
}
