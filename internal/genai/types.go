// Package genai provides integration with LLM APIs (Gemini and Groq).
// This file contains shared types, interfaces, and configuration for
// free-form reply generation with provider fallback support.
//
// Architecture:
// - Gemini: Uses google.golang.org/genai (official SDK)
// - Groq: Uses github.com/openai/openai-go/v3 (OpenAI-compatible API)
//
// Fallback Strategy:
// 1. Retry: Same provider retried with exponential backoff on transient errors
// 2. Provider fallback: Secondary provider tried when the primary fails
package genai

import (
	"context"
	"time"
)

// Provider represents an LLM provider.
type Provider string

const (
	// ProviderGemini represents Google's Gemini API (non-OpenAI-compatible).
	ProviderGemini Provider = "gemini"
	// ProviderGroq represents Groq's API (OpenAI-compatible, fast inference).
	ProviderGroq Provider = "groq"
)

// GroqBaseURL is the OpenAI-compatible endpoint for Groq.
const GroqBaseURL = "https://api.groq.com/openai/v1/"

// String returns the string representation of the provider.
func (p Provider) String() string {
	return string(p)
}

// SamplingConfig holds the fixed sampling parameters for reply generation.
// These are deterministic per deployment, not tunable per call.
type SamplingConfig struct {
	Temperature float32
	TopP        float32
	TopK        int32
}

// DefaultSampling is the sampling configuration used for every reply.
var DefaultSampling = SamplingConfig{
	Temperature: 0.5,
	TopP:        0.8,
	TopK:        40,
}

// Generator defines the interface for free-form text generation.
// Implementations include Gemini (native) and OpenAI-compatible providers.
type Generator interface {
	// Generate produces a reply for the assembled prompt.
	Generate(ctx context.Context, prompt string, cfg SamplingConfig) (string, error)
	// Provider returns the provider type for metrics.
	Provider() Provider
	// Close releases any resources held by the generator.
	Close() error
}

// RetryConfig defines retry behavior for LLM API calls.
// Uses AWS-recommended Full Jitter exponential backoff.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts (including initial).
	MaxAttempts int

	// InitialDelay is the base delay before first retry.
	InitialDelay time.Duration

	// MaxDelay is the maximum delay between retries.
	MaxDelay time.Duration
}

// Default model configurations.
var (
	// DefaultGeminiModel is the default Gemini model for reply generation.
	DefaultGeminiModel = "gemini-2.5-flash"

	// DefaultGroqModel is the default Groq model for reply generation.
	DefaultGroqModel = "llama-3.3-70b-versatile"
)

// Retry configuration defaults
const (
	DefaultMaxRetryAttempts  = 2
	DefaultInitialRetryDelay = 500 * time.Millisecond
	DefaultMaxRetryDelay     = 3 * time.Second
)

// DefaultRetryConfig returns the default retry configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  DefaultMaxRetryAttempts,
		InitialDelay: DefaultInitialRetryDelay,
		MaxDelay:     DefaultMaxRetryDelay,
	}
}
