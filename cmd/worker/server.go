package main

import (
	"context"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"catalog-backend/internal/config"
	"catalog-backend/internal/infrastructure/queue"
	"catalog-backend/pkg/logger"
)

type asynqServer struct {
	*asynq.Server
}

func redisOpt(cfg *config.Config) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Redis.Host,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}
}

func setupAsynqServer(cfg *config.Config, handlers *HandlerRegistry) (*asynqServer, error) {
	mux := asynq.NewServeMux()
	handlers.RegisterHandlers(mux)

	srv := asynq.NewServer(
		redisOpt(cfg),
		asynq.Config{
			Queues:          queue.Queues(),
			Concurrency:     cfg.Worker.Concurrency,
			ShutdownTimeout: 30 * time.Second,
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				retried, _ := asynq.GetRetryCount(ctx)
				maxRetry, _ := asynq.GetMaxRetry(ctx)
				log.Error().
					Err(err).
					Str("task", task.Type()).
					Int("retry", retried).
					Int("max_retry", maxRetry).
					Msg("task failed")
			}),
		},
	)

	if err := srv.Start(mux); err != nil {
		return nil, err
	}

	logger.Info("worker started", map[string]interface{}{
		"concurrency": cfg.Worker.Concurrency,
		"queues":      queue.Queues(),
	})
	return &asynqServer{Server: srv}, nil
}

// Shutdown waits for in-flight tasks up to the configured shutdown timeout.
func (s *asynqServer) Shutdown() {
	s.Server.Shutdown()
	logger.Info("worker drained", nil)
}
