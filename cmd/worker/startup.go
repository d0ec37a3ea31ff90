// cmd/worker/startup.go
package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"catalog-backend/pkg/container"
	"catalog-backend/pkg/logger"
)

type healthServer struct {
	srv *http.Server
}

// startServices exposes liveness, readiness and metrics for the worker.
func startServices(c *container.Container) *healthServer {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "UP", "service": "catalog-worker"})
	})
	router.GET("/ready", readyCheckHandler(c))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	srv := &http.Server{
		Addr:              ":" + c.Config.Worker.HealthPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("worker health server listening", map[string]interface{}{"addr": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("worker health server failed", err)
		}
	}()

	return &healthServer{srv: srv}
}

// readyCheckHandler is the readiness probe: both the database and Redis
// must answer.
func readyCheckHandler(c *container.Container) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		reqCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
		defer cancel()

		checks := gin.H{"database": "ok", "redis": "ok"}
		status := http.StatusOK

		if err := c.DB.Ping(reqCtx); err != nil {
			checks["database"] = err.Error()
			status = http.StatusServiceUnavailable
		}
		if err := c.Redis.Client.Ping(reqCtx).Err(); err != nil {
			checks["redis"] = err.Error()
			status = http.StatusServiceUnavailable
		}

		state := "READY"
		if status != http.StatusOK {
			state = "NOT_READY"
		}
		ctx.JSON(status, gin.H{"status": state, "checks": checks})
	}
}

func (h *healthServer) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := h.srv.Shutdown(ctx); err != nil {
		logger.Error("worker health server shutdown failed", err)
	}
}
