package job

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"catalog-backend/internal/domains/category"
	"catalog-backend/internal/infrastructure/queue"
	"catalog-backend/pkg/logger"
)

// WarmTreeCacheHandler rebuilds the cached category tree so the first
// storefront read after a change does not pay for the recursive query. It
// always reads the database: a task enqueued after a write must not keep a
// tree cached by a task that ran before it.
type WarmTreeCacheHandler struct {
	service category.CategoryService
}

func NewWarmTreeCacheHandler(service category.CategoryService) *WarmTreeCacheHandler {
	return &WarmTreeCacheHandler{service: service}
}

func (h *WarmTreeCacheHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload queue.TreeCacheWarmPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Error("invalid tree cache warm payload", err)
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	start := time.Now()
	tree, err := h.service.RefreshTree(ctx)
	if err != nil {
		logger.Error("failed to warm category tree cache", err)
		return err
	}

	ev := log.Debug().Int("nodes", len(tree)).Dur("took", time.Since(start))
	if !payload.RequestedAt.IsZero() {
		ev = ev.Dur("lag", start.Sub(payload.RequestedAt))
	}
	ev.Msg("category tree cache warmed")
	return nil
}
