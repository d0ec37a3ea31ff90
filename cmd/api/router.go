package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"catalog-backend/internal/shared/middleware"
	"catalog-backend/internal/shared/response"
	"catalog-backend/pkg/container"
	"catalog-backend/pkg/jwt"
	"catalog-backend/pkg/logger"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.CORS(),
		middleware.Metrics(),
	)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Catalog writes need a staff token.
	staff := []gin.HandlerFunc{
		middleware.AuthMiddleware(c.JWTManager),
		middleware.RequireRole(jwt.RoleAdmin, jwt.RoleEditor),
		middleware.RateLimit(c.Config.App.WriteRateLimit, c.Config.App.WriteBurst),
	}

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheckHandler(c))

		setupCategoryRoutes(v1, c, staff)
		setupBrandRoutes(v1, c, staff)
		setupAttributeRoutes(v1, c, staff)
		setupProductRoutes(v1, c, staff)
	}

	return router
}

// ========================================
// CATEGORY ROUTES
// ========================================
func setupCategoryRoutes(v1 *gin.RouterGroup, c *container.Container, staff []gin.HandlerFunc) {
	h := c.CategoryHandler

	public := v1.Group("/categories")
	{
		public.GET("", h.GetAll)
		public.GET("/tree", h.GetTree)
		public.GET("/by-slug/:slug", h.GetBySlug)
		public.GET("/:id", h.GetByID)
		public.GET("/:id/breadcrumb", h.GetBreadcrumb)
		public.GET("/:id/subcategories", h.GetSubcategories)
	}

	admin := v1.Group("/categories", staff...)
	{
		admin.POST("", h.Create)
		admin.PUT("/:id", h.Update)
		admin.PATCH("/:id/parent", h.MoveToParent)
		admin.PUT("/:id/subcategories", h.SetSubcategories)
		admin.POST("/:id/activate", h.Activate)
		admin.POST("/:id/deactivate", h.Deactivate)
		admin.DELETE("/:id", h.Delete)

		admin.POST("/bulk/move", h.BulkMove)
		admin.POST("/bulk/activate", h.BulkActivate)
		admin.POST("/bulk/deactivate", h.BulkDeactivate)
		admin.DELETE("/bulk", h.BulkDelete)
	}

	ops := v1.Group("/categories",
		middleware.AuthMiddleware(c.JWTManager),
		middleware.AdminMiddleware(),
	)
	ops.POST("/audit", treeAuditHandler(c))
}

// ========================================
// BRAND ROUTES
// ========================================
func setupBrandRoutes(v1 *gin.RouterGroup, c *container.Container, staff []gin.HandlerFunc) {
	h := c.BrandHandler

	public := v1.Group("/brands")
	{
		public.GET("", h.List)
		public.GET("/by-slug/:slug", h.GetBySlug)
		public.GET("/:id", h.Get)
	}

	admin := v1.Group("/brands", staff...)
	{
		admin.POST("", h.Create)
		admin.PUT("/:id", h.Update)
		admin.DELETE("/:id", h.Delete)
	}
}

// ========================================
// ATTRIBUTE ROUTES
// ========================================
func setupAttributeRoutes(v1 *gin.RouterGroup, c *container.Container, staff []gin.HandlerFunc) {
	h := c.AttributeHandler

	v1.GET("/attributes", h.ListAttributes)
	v1.GET("/attributes/:id", h.GetAttribute)
	v1.GET("/attribute-options", h.ListOptions)

	admin := v1.Group("", staff...)
	{
		admin.POST("/attributes", h.CreateAttribute)
		admin.PUT("/attributes/:id/options", h.SetOptions)
		admin.POST("/attribute-options", h.CreateOption)
	}
}

// ========================================
// PRODUCT ROUTES
// ========================================
func setupProductRoutes(v1 *gin.RouterGroup, c *container.Container, staff []gin.HandlerFunc) {
	h := c.ProductHandler

	public := v1.Group("/products")
	{
		public.GET("", h.List)
		public.GET("/by-slug/:slug", h.GetBySlug)
		public.GET("/:id", h.Get)
	}

	admin := v1.Group("/products", staff...)
	{
		admin.POST("", h.Create)
		admin.PUT("/:id", h.Update)
		admin.PUT("/:id/options", h.SetOptions)
		admin.POST("/:id/images", h.UploadImage)
		admin.DELETE("/:id", h.Delete)
		admin.GET("/export", h.Export)
	}
}

// healthCheckHandler reports the database and cache status. A cache
// failure degrades the status but does not fail the probe.
func healthCheckHandler(c *container.Container) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		reqCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
		defer cancel()

		checks := gin.H{"database": "ok", "cache": "ok"}
		status := http.StatusOK
		overall := "healthy"

		if err := c.DB.Ping(reqCtx); err != nil {
			checks["database"] = err.Error()
			status = http.StatusServiceUnavailable
			overall = "unhealthy"
		}
		if err := c.Cache.Ping(reqCtx); err != nil {
			checks["cache"] = err.Error()
			if overall == "healthy" {
				overall = "degraded"
			}
		}

		ctx.JSON(status, gin.H{
			"status":  overall,
			"version": c.Config.App.Version,
			"checks":  checks,
			"time":    time.Now().UTC(),
		})
	}
}

// treeAuditHandler queues a category tree audit on the maintenance worker.
func treeAuditHandler(c *container.Container) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if c.Enqueuer == nil {
			response.ErrorResponse(ctx, http.StatusServiceUnavailable, "QUEUE_UNAVAILABLE", "background jobs are disabled")
			return
		}
		if err := c.Enqueuer.EnqueueTreeAudit(ctx.Request.Context(), "manual"); err != nil {
			logger.Error("failed to enqueue tree audit", err)
			response.InternalServerError(ctx, "internal error")
			return
		}
		response.Success(ctx, http.StatusAccepted, gin.H{"queued": true})
	}
}
