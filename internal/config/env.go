// Package config defines environment variable keys for configuration.
package config

//nolint:gosec // Environment variable keys are not credentials.
const (
	// Server
	EnvPort            = "ADVISOR_PORT"
	EnvLogLevel        = "ADVISOR_LOG_LEVEL"
	EnvShutdownTimeout = "ADVISOR_SHUTDOWN_TIMEOUT"
	EnvAllowedOrigins  = "ADVISOR_ALLOWED_ORIGINS"

	// Data
	EnvDataDir = "ADVISOR_DATA_DIR"

	// LLM Feature
	EnvGeminiAPIKey = "ADVISOR_GEMINI_API_KEY"
	EnvGeminiModel  = "ADVISOR_GEMINI_MODEL"
	EnvGroqAPIKey   = "ADVISOR_GROQ_API_KEY"
	EnvGroqModel    = "ADVISOR_GROQ_MODEL"

	// Dialogue
	EnvTranscriptWindow = "ADVISOR_TRANSCRIPT_WINDOW"
	EnvMaxSearchResults = "ADVISOR_MAX_SEARCH_RESULTS"

	// Metrics Auth Feature
	EnvMetricsUsername = "ADVISOR_METRICS_USERNAME"
	EnvMetricsPassword = "ADVISOR_METRICS_PASSWORD"

	// Sentry Feature
	EnvSentryDSN         = "ADVISOR_SENTRY_DSN"
	EnvSentryEnvironment = "ADVISOR_SENTRY_ENVIRONMENT"
	EnvSentryRelease     = "ADVISOR_SENTRY_RELEASE"
	EnvSentrySampleRate  = "ADVISOR_SENTRY_SAMPLE_RATE"
)
