// Package genai provides integration with LLM APIs (Gemini and Groq).
// This file contains the fallback wrapper for cross-provider failover.
package genai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Killzin1000/quality-eco/internal/metrics"
)

// FallbackGenerator wraps a primary and an optional fallback Generator.
// It implements layered degradation:
// 1. Retry with backoff (same provider)
// 2. Provider fallback (primary → fallback provider)
// If fallback is nil, only retry logic is applied to the primary provider.
type FallbackGenerator struct {
	primary     Generator
	fallback    Generator
	retryConfig RetryConfig
	metrics     *metrics.Metrics
}

// NewFallbackGenerator creates a new fallback-enabled generator.
// The metrics recorder is optional.
func NewFallbackGenerator(primary, fallback Generator, cfg RetryConfig, m *metrics.Metrics) *FallbackGenerator {
	return &FallbackGenerator{
		primary:     primary,
		fallback:    fallback,
		retryConfig: cfg,
		metrics:     m,
	}
}

// Generate tries the primary generator first with retry, then falls back if needed.
func (f *FallbackGenerator) Generate(ctx context.Context, prompt string, cfg SamplingConfig) (string, error) {
	if f == nil || f.primary == nil {
		return "", errors.New("generator not configured")
	}

	start := time.Now()
	provider := f.primary.Provider()

	result, err := f.generateWithRetry(ctx, f.primary, prompt, cfg)
	if err == nil {
		f.record(provider, "success", time.Since(start))
		return result, nil
	}

	action := ClassifyError(err)
	slog.WarnContext(ctx, "primary generator failed",
		"provider", provider,
		"error", err,
		"action", action,
		"duration", time.Since(start))

	if action == ActionFail || f.fallback == nil {
		f.record(provider, "error", time.Since(start))
		return "", &GenerationError{Provider: provider, Err: err}
	}

	slog.InfoContext(ctx, "falling back to secondary provider",
		"from", provider,
		"to", f.fallback.Provider())

	fallbackStart := time.Now()
	fallbackProvider := f.fallback.Provider()

	result, err = f.generateWithRetry(ctx, f.fallback, prompt, cfg)
	if err == nil {
		f.record(fallbackProvider, "success", time.Since(fallbackStart))
		if f.metrics != nil {
			f.metrics.GenerationFallbacksTotal.WithLabelValues(provider.String(), fallbackProvider.String()).Inc()
		}
		return result, nil
	}

	f.record(fallbackProvider, "error", time.Since(fallbackStart))
	slog.ErrorContext(ctx, "all generators failed",
		"primary", provider,
		"fallback", fallbackProvider,
		"error", err)

	return "", &GenerationError{Provider: fallbackProvider, Err: fmt.Errorf("all providers failed: %w", err)}
}

// generateWithRetry attempts generation with retry logic.
func (f *FallbackGenerator) generateWithRetry(ctx context.Context, gen Generator, prompt string, cfg SamplingConfig) (string, error) {
	var lastErr error

	for attempt := range f.retryConfig.MaxAttempts {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		result, err := gen.Generate(ctx, prompt, cfg)
		if err == nil {
			return result, nil
		}

		lastErr = err
		if ClassifyError(err) != ActionRetry {
			return "", err
		}

		// Last attempt, don't sleep
		if attempt == f.retryConfig.MaxAttempts-1 {
			break
		}

		backoff := CalculateBackoff(attempt+1, f.retryConfig.InitialDelay, f.retryConfig.MaxDelay)
		if !HasSufficientBudget(ctx, backoff) {
			return "", fmt.Errorf("timeout during retry: %w", lastErr)
		}

		slog.DebugContext(ctx, "retrying generation",
			"provider", gen.Provider(),
			"attempt", attempt+1,
			"backoff", backoff,
			"error", err)

		if err := Sleep(ctx, backoff); err != nil {
			return "", err
		}
	}

	return "", lastErr
}

func (f *FallbackGenerator) record(provider Provider, status string, d time.Duration) {
	if f.metrics == nil {
		return
	}
	f.metrics.GenerationsTotal.WithLabelValues(provider.String(), status).Inc()
	if status == "success" {
		f.metrics.GenerationDurationSeconds.WithLabelValues(provider.String()).Observe(d.Seconds())
	}
}

// Provider returns the primary provider type.
func (f *FallbackGenerator) Provider() Provider {
	if f == nil || f.primary == nil {
		return ""
	}
	return f.primary.Provider()
}

// Close releases resources held by both generators.
func (f *FallbackGenerator) Close() error {
	if f == nil {
		return nil
	}
	var firstErr error
	if f.primary != nil {
		firstErr = f.primary.Close()
	}
	if f.fallback != nil {
		if err := f.fallback.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
