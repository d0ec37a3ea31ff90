package queue

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"

	"catalog-backend/internal/config"
	"catalog-backend/pkg/logger"
)

type Scheduler struct {
	scheduler *asynq.Scheduler
	cfg       config.WorkerConfig
}

func NewScheduler(redis asynq.RedisClientOpt, cfg config.WorkerConfig) *Scheduler {
	scheduler := asynq.NewScheduler(
		redis,
		&asynq.SchedulerOpts{
			Location: time.UTC,
			LogLevel: asynq.InfoLevel,
		},
	)

	return &Scheduler{
		scheduler: scheduler,
		cfg:       cfg,
	}
}

// RegisterCatalogJobs registers the periodic maintenance jobs. A job with an
// empty cron spec is skipped.
func (s *Scheduler) RegisterCatalogJobs() error {
	if err := s.register("TreeAudit", s.cfg.TreeAuditCron, TypeTreeAudit,
		TreeAuditPayload{Reason: "scheduled"},
		asynq.Queue(QueueMaintenance), asynq.MaxRetry(1), asynq.Timeout(5*time.Minute),
	); err != nil {
		return err
	}

	return s.register("TreeCacheWarm", s.cfg.CacheWarmCron, TypeTreeCacheWarm,
		TreeCacheWarmPayload{},
		asynq.Queue(QueueCache), asynq.MaxRetry(2), asynq.Timeout(time.Minute),
	)
}

func (s *Scheduler) register(name, spec, taskType string, payload interface{}, opts ...asynq.Option) error {
	if spec == "" {
		logger.Info("scheduled job disabled", map[string]interface{}{"job": name})
		return nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	entryID, err := s.scheduler.Register(spec, asynq.NewTask(taskType, raw), opts...)
	if err != nil {
		logger.Error("failed to register "+name+" job", err)
		return err
	}

	logger.Info("registered scheduled job", map[string]interface{}{
		"job":      name,
		"cron":     spec,
		"entry_id": entryID,
	})
	return nil
}

// Start runs the scheduler in the background.
func (s *Scheduler) Start() error {
	return s.scheduler.Start()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}
