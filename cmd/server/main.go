// Package main provides the course advisor server entry point.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Killzin1000/quality-eco/internal/advisor"
	"github.com/Killzin1000/quality-eco/internal/config"
	"github.com/Killzin1000/quality-eco/internal/genai"
	"github.com/Killzin1000/quality-eco/internal/logger"
	"github.com/Killzin1000/quality-eco/internal/metrics"
	"github.com/Killzin1000/quality-eco/internal/prompt"
	"github.com/Killzin1000/quality-eco/internal/sentry"
	"github.com/Killzin1000/quality-eco/internal/server"
	"github.com/Killzin1000/quality-eco/internal/storage"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.LogLevel)
	log.Info("Starting Course Advisor Server")

	// Initialize error tracking
	if err := sentry.Initialize(sentry.Config{
		DSN:         cfg.SentryDSN,
		Environment: cfg.SentryEnvironment,
		Release:     cfg.SentryRelease,
		SampleRate:  cfg.SentrySampleRate,
	}); err != nil {
		log.WithError(err).Warn("Failed to initialize Sentry, error tracking disabled")
	} else if sentry.IsEnabled() {
		log.Info("Sentry error tracking enabled")
	}
	defer sentry.Flush(2 * time.Second)

	// Connect to database
	db, err := storage.New(cfg.SQLitePath())
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}
	defer func() { _ = db.Close() }()
	log.WithField("path", cfg.SQLitePath()).Info("Database connected")

	// Create Prometheus registry
	registry := prometheus.NewRegistry()

	// Register Go and process collectors
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	registry.MustRegister(collectors.NewBuildInfoCollector())

	// Create metrics
	m := metrics.New(registry)
	log.Info("Metrics initialized")

	// Create the generator chain (Gemini primary, Groq fallback)
	generator, err := genai.NewGenerator(context.Background(), cfg, m)
	if err != nil {
		log.WithError(err).Fatal("Failed to create generator")
	}
	if generator == nil {
		log.Warn("No LLM provider configured, serving offline replies only")
	} else {
		log.WithField("provider", generator.Provider()).Info("Generator created")
	}

	// Load prompt modules; an empty store degrades to offline replies until
	// /refresh-prompts succeeds
	promptCache := prompt.NewCache(db, log, m)
	if count, err := promptCache.Refresh(context.Background()); err != nil {
		log.WithError(err).Warn("Initial prompt load failed")
	} else {
		log.WithField("modules", count).Info("Prompt modules loaded")
	}

	// Create the turn orchestrator
	adv := advisor.New(advisor.Options{
		Courses:          db,
		Sink:             db,
		Generator:        generator,
		Prompts:          promptCache,
		Metrics:          m,
		Logger:           log,
		TranscriptWindow: cfg.TranscriptWindow,
		MaxSearchResults: cfg.MaxSearchResults,
	})

	// Create the chat API handler
	apiHandler := server.NewHandler(adv, promptCache, m, log)

	// Set Gin mode based on log level
	if cfg.LogLevel == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create Gin router
	router := gin.New()

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(securityHeadersMiddleware())
	router.Use(requestIDMiddleware())
	router.Use(loggingMiddleware(log))
	router.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowedOrigins,
		AllowMethods: []string{"GET", "POST", "HEAD", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", requestIDHeader},
		MaxAge:       12 * time.Hour,
	}))

	// Setup routes
	setupRoutes(router, apiHandler, db, promptCache, registry, cfg)

	// Create HTTP server with timeouts sized for chat turn handling
	// See internal/config/timeouts.go for detailed explanations
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  config.HTTPRead,
		WriteTimeout: config.HTTPWrite,
		IdleTimeout:  config.HTTPIdle,
	}

	// Start server in goroutine
	go func() {
		log.WithField("port", cfg.Port).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	// Shutdown server gracefully
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	}

	// Close the generator chain
	if generator != nil {
		if err := generator.Close(); err != nil {
			log.WithError(err).Error("Failed to close generator")
		}
	}

	// Close database connection
	if err := db.Close(); err != nil {
		log.WithError(err).Error("Failed to close database")
	}

	log.Info("Server stopped")
}
