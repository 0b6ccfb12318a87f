// Package main provides the course advisor server entry point.
package main

import (
	"net/http"

	"github.com/Killzin1000/quality-eco/internal/config"
	"github.com/Killzin1000/quality-eco/internal/prompt"
	"github.com/Killzin1000/quality-eco/internal/server"
	"github.com/Killzin1000/quality-eco/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// setupRoutes configures all HTTP routes
func setupRoutes(
	router *gin.Engine,
	handler *server.Handler,
	db *storage.DB,
	promptCache *prompt.Cache,
	registry *prometheus.Registry,
	cfg *config.Config,
) {
	// Root endpoint - service identification
	rootHandler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": "course-advisor",
			"status":  "ok",
		})
	}
	router.GET("/", rootHandler)
	router.HEAD("/", rootHandler)

	// Health check endpoints
	// Liveness Probe - checks if the application is alive (minimal check)
	// This should NEVER check dependencies - only that the process is running
	healthHandler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
	router.GET("/healthz", healthHandler)
	router.HEAD("/healthz", healthHandler)

	// Readiness Probe - checks if the application is ready to serve traffic
	readyHandler := func(c *gin.Context) {
		if err := db.Ready(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "not ready",
				"reason": err.Error(),
			})
			return
		}

		courseCount, _ := db.CountCourses(c.Request.Context())
		promptCount, _ := db.CountPrompts(c.Request.Context())

		c.JSON(http.StatusOK, gin.H{
			"status":    "ready",
			"database":  "connected",
			"generator": cfg.HasGenerator(),
			"content": gin.H{
				"courses":        courseCount,
				"prompts":        promptCount,
				"prompts_loaded": promptCache.Loaded(),
			},
		})
	}
	router.GET("/ready", readyHandler)
	router.HEAD("/ready", readyHandler)

	// Chat API endpoints
	router.POST("/chat", handler.HandleChat)
	router.POST("/refresh-prompts", handler.HandleRefreshPrompts)

	// Prometheus metrics endpoint, Basic Auth protected when configured
	metricsHandler := gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	if cfg.MetricsPassword != "" {
		authorized := router.Group("/", gin.BasicAuth(gin.Accounts{
			cfg.MetricsUsername: cfg.MetricsPassword,
		}))
		authorized.GET("/metrics", metricsHandler)
	} else {
		router.GET("/metrics", metricsHandler)
	}
}
