package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"catalog-backend/pkg/logger"
)

// Enqueuer puts catalog maintenance tasks on the asynq queues.
type Enqueuer struct {
	client *asynq.Client
}

func NewEnqueuer(redisAddr, password string, db int) *Enqueuer {
	return &Enqueuer{
		client: asynq.NewClient(asynq.RedisClientOpt{Addr: redisAddr, Password: password, DB: db}),
	}
}

// EnqueueTreeCacheWarm schedules a rebuild of the cached tree. Every write
// gets its own task, keyed by the time it was requested, so a warm that is
// already running never swallows a later one.
func (e *Enqueuer) EnqueueTreeCacheWarm(ctx context.Context) error {
	now := time.Now().UTC()
	payload, err := json.Marshal(TreeCacheWarmPayload{RequestedAt: now})
	if err != nil {
		return err
	}

	task := asynq.NewTask(TypeTreeCacheWarm, payload)
	_, err = e.client.EnqueueContext(ctx, task, warmTaskOptions(now)...)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", TypeTreeCacheWarm, err)
	}
	return nil
}

func warmTaskOptions(requestedAt time.Time) []asynq.Option {
	return []asynq.Option{
		asynq.Queue(QueueCache),
		asynq.MaxRetry(2),
		asynq.Timeout(time.Minute),
		asynq.TaskID(warmTaskID(requestedAt)),
	}
}

func warmTaskID(requestedAt time.Time) string {
	return fmt.Sprintf("%s:%d", TypeTreeCacheWarm, requestedAt.UnixNano())
}

func (e *Enqueuer) EnqueueTreeAudit(ctx context.Context, reason string) error {
	payload, err := json.Marshal(TreeAuditPayload{Reason: reason, RequestedAt: time.Now().UTC()})
	if err != nil {
		return err
	}

	task := asynq.NewTask(TypeTreeAudit, payload)
	if _, err := e.client.EnqueueContext(ctx, task,
		asynq.Queue(QueueMaintenance),
		asynq.MaxRetry(1),
		asynq.Timeout(5*time.Minute),
	); err != nil {
		return fmt.Errorf("enqueue %s: %w", TypeTreeAudit, err)
	}
	return nil
}

// TreeChanged is the category service hook. Failures are logged only; the
// cache was already invalidated and the next read rebuilds it.
func (e *Enqueuer) TreeChanged(ctx context.Context) {
	if err := e.EnqueueTreeCacheWarm(ctx); err != nil {
		logger.Warn("failed to enqueue tree cache warm", map[string]interface{}{"error": err.Error()})
	}
}

func (e *Enqueuer) Close() error {
	return e.client.Close()
}
