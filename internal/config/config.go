// Package config provides application configuration management.
// It loads settings from environment variables and provides defaults for
// server mode, dialogue limits, LLM providers, and data paths.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server Configuration
	Port            string
	LogLevel        string
	ShutdownTimeout time.Duration
	AllowedOrigins  []string // CORS origins for the chat front end

	// Data Configuration
	DataDir string // Data directory for the SQLite database

	// LLM Configuration
	GeminiAPIKey string // Gemini API key (primary generator)
	GeminiModel  string // Gemini model name (default: gemini-2.5-flash)
	GroqAPIKey   string // Groq API key (optional fallback generator)
	GroqModel    string // Groq model name (default: llama-3.3-70b-versatile)

	// Dialogue Configuration
	TranscriptWindow int // Number of recent turns rendered into the prompt (default: 10)
	MaxSearchResults int // Maximum courses returned per search (default: 5)

	// Metrics Authentication
	MetricsUsername string // Username for /metrics Basic Auth (default: "prometheus")
	MetricsPassword string // Password for /metrics Basic Auth (empty = no auth)

	// Sentry Configuration
	SentryDSN         string
	SentryEnvironment string
	SentryRelease     string
	SentrySampleRate  float64
}

// Load reads configuration from environment variables
// It attempts to load .env file first, then reads from env vars
func Load() (*Config, error) {
	// Try to load .env file (ignore error if file doesn't exist)
	_ = godotenv.Load()

	cfg := &Config{
		// Server Configuration
		Port:            getEnv(EnvPort, "8000"),
		LogLevel:        getEnv(EnvLogLevel, "info"),
		ShutdownTimeout: getDurationEnv(EnvShutdownTimeout, GracefulShutdown),
		AllowedOrigins:  getListEnv(EnvAllowedOrigins, []string{"http://localhost:8080", "http://127.0.0.1:8080"}),

		// Data Configuration
		DataDir: getEnv(EnvDataDir, getDefaultDataDir()),

		// LLM Configuration
		GeminiAPIKey: getEnv(EnvGeminiAPIKey, ""),
		GeminiModel:  getEnv(EnvGeminiModel, ""),
		GroqAPIKey:   getEnv(EnvGroqAPIKey, ""),
		GroqModel:    getEnv(EnvGroqModel, ""),

		// Dialogue Configuration
		TranscriptWindow: getIntEnv(EnvTranscriptWindow, 10),
		MaxSearchResults: getIntEnv(EnvMaxSearchResults, 5),

		// Metrics Authentication
		MetricsUsername: getEnv(EnvMetricsUsername, "prometheus"),
		MetricsPassword: getEnv(EnvMetricsPassword, ""),

		// Sentry Configuration
		SentryDSN:         getEnv(EnvSentryDSN, ""),
		SentryEnvironment: getEnv(EnvSentryEnvironment, "production"),
		SentryRelease:     getEnv(EnvSentryRelease, ""),
		SentrySampleRate:  getFloatEnv(EnvSentrySampleRate, 1.0),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("invalid port %q: %w", c.Port, err)
	}
	if c.TranscriptWindow <= 0 {
		return fmt.Errorf("transcript window must be positive, got %d", c.TranscriptWindow)
	}
	if c.MaxSearchResults <= 0 {
		return fmt.Errorf("max search results must be positive, got %d", c.MaxSearchResults)
	}
	return nil
}

// SQLitePath returns the full path to the SQLite database file
func (c *Config) SQLitePath() string {
	return filepath.Join(c.DataDir, "advisor.db")
}

// HasGenerator reports whether at least one LLM provider is configured.
func (c *Config) HasGenerator() bool {
	return c.GeminiAPIKey != "" || c.GroqAPIKey != ""
}

// getDefaultDataDir returns the default data directory
func getDefaultDataDir() string {
	if dir := os.Getenv("DATA_DIR"); dir != "" {
		return dir
	}
	return "./data"
}

// getEnv returns the environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnv returns the environment variable as int or a default
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getFloatEnv returns the environment variable as float64 or a default
func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getDurationEnv returns the environment variable as duration or a default
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getListEnv returns the environment variable as a comma-separated list or a default
func getListEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return defaultValue
}
