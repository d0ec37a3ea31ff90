package queue

import (
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"

	"catalog-backend/internal/config"
)

func newTestScheduler(cfg config.WorkerConfig) *Scheduler {
	// Registration only parses cron specs; Redis is not contacted until Start.
	return NewScheduler(asynq.RedisClientOpt{Addr: "127.0.0.1:0"}, cfg)
}

func TestRegisterCatalogJobs(t *testing.T) {
	t.Run("both jobs", func(t *testing.T) {
		s := newTestScheduler(config.WorkerConfig{TreeAuditCron: "0 3 * * *", CacheWarmCron: "*/30 * * * *"})
		assert.NoError(t, s.RegisterCatalogJobs())
	})

	t.Run("disabled jobs", func(t *testing.T) {
		s := newTestScheduler(config.WorkerConfig{})
		assert.NoError(t, s.RegisterCatalogJobs())
	})

	t.Run("bad cron", func(t *testing.T) {
		s := newTestScheduler(config.WorkerConfig{TreeAuditCron: "every night"})
		assert.Error(t, s.RegisterCatalogJobs())
	})
}

func TestQueues(t *testing.T) {
	q := Queues()
	assert.Contains(t, q, QueueMaintenance)
	assert.Contains(t, q, QueueCache)
	assert.Greater(t, q[QueueCache], q[QueueMaintenance])
}
