// Package genai provides integration with LLM APIs (Gemini and Groq).
// This file contains the factory that assembles the configured generator chain.
package genai

import (
	"context"
	"fmt"

	"github.com/Killzin1000/quality-eco/internal/config"
	"github.com/Killzin1000/quality-eco/internal/metrics"
)

// NewGenerator builds the generator chain from configuration.
// Gemini is the primary provider; Groq, when configured, serves as fallback.
// Returns nil (no error) when no provider is configured, so the caller can
// degrade to offline replies.
func NewGenerator(ctx context.Context, cfg *config.Config, m *metrics.Metrics) (Generator, error) {
	var primary, fallback Generator

	gemini, err := newGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		return nil, fmt.Errorf("create gemini generator: %w", err)
	}
	if gemini != nil {
		primary = gemini
	}

	groq, err := newOpenAIGenerator(ctx, ProviderGroq, GroqBaseURL, cfg.GroqAPIKey, cfg.GroqModel)
	if err != nil {
		return nil, fmt.Errorf("create groq generator: %w", err)
	}
	if groq != nil {
		if primary == nil {
			primary = groq
		} else {
			fallback = groq
		}
	}

	if primary == nil {
		return nil, nil //nolint:nilnil // Intentional: generation disabled when no API key
	}

	return NewFallbackGenerator(primary, fallback, DefaultRetryConfig(), m), nil
}
