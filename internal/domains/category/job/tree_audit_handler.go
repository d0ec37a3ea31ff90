package job

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"catalog-backend/internal/domains/category"
	"catalog-backend/internal/domains/hierarchy"
	"catalog-backend/internal/infrastructure/queue"
	"catalog-backend/internal/shared/metrics"
	"catalog-backend/pkg/logger"
)

// TreeAuditHandler reads the whole category forest under the tree lock and
// reports parent chains that break the hierarchy rules. It never repairs
// anything; findings go to the log and to metrics.
type TreeAuditHandler struct {
	repo     category.CategoryRepository
	maxDepth int
}

func NewTreeAuditHandler(repo category.CategoryRepository, maxDepth int) *TreeAuditHandler {
	return &TreeAuditHandler{repo: repo, maxDepth: maxDepth}
}

func (h *TreeAuditHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload queue.TreeAuditPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Error("invalid tree audit payload", err)
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	report, err := h.Run(ctx)
	if err != nil {
		return err
	}

	event := log.Info()
	if !report.Healthy() {
		event = log.Warn()
	}
	event.
		Str("reason", payload.Reason).
		Int("nodes", report.Nodes).
		Int("roots", report.Roots).
		Int("max_level", report.MaxLevel).
		Int("cycles", len(report.Cycles)).
		Int("unrooted", len(report.Unrooted)).
		Int("orphans", len(report.Orphans)).
		Int("too_deep", len(report.TooDeep)).
		Msg("category tree audit finished")

	for _, cycle := range report.Cycles {
		log.Warn().Interface("cycle", cycle).Msg("category parent cycle")
	}
	return nil
}

// Run performs one audit and publishes its metrics.
func (h *TreeAuditHandler) Run(ctx context.Context) (hierarchy.AuditReport, error) {
	var report hierarchy.AuditReport
	err := h.repo.InTreeTx(ctx, func(tx category.TreeTx) error {
		forest, err := tx.Forest(ctx)
		if err != nil {
			return err
		}
		report = hierarchy.Audit(forest, h.maxDepth)
		return nil
	})
	if err != nil {
		logger.Error("category tree audit failed", err)
		return report, err
	}

	metrics.ObserveTreeAudit(map[string]int{
		"cycles":   len(report.Cycles),
		"unrooted": len(report.Unrooted),
		"orphans":  len(report.Orphans),
		"too_deep": len(report.TooDeep),
	})
	return report, nil
}
