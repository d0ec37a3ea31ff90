package main

import (
	"github.com/hibiken/asynq"

	categoryJob "catalog-backend/internal/domains/category/job"
	"catalog-backend/internal/infrastructure/queue"
	"catalog-backend/pkg/container"
)

// HandlerRegistry holds all job handlers
type HandlerRegistry struct {
	treeAudit     *categoryJob.TreeAuditHandler
	warmTreeCache *categoryJob.WarmTreeCacheHandler
}

func initializeHandlers(c *container.Container) *HandlerRegistry {
	return &HandlerRegistry{
		treeAudit:     categoryJob.NewTreeAuditHandler(c.CategoryRepo, c.Config.Catalog.MaxCategoryDepth),
		warmTreeCache: categoryJob.NewWarmTreeCacheHandler(c.CategoryService),
	}
}

// RegisterHandlers registers all handlers with the mux
func (h *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(queue.TypeTreeAudit, h.treeAudit.ProcessTask)
	mux.HandleFunc(queue.TypeTreeCacheWarm, h.warmTreeCache.ProcessTask)
}
