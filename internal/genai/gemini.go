// Package genai provides integration with LLM APIs (Gemini and Groq).
// This file contains the Gemini implementation of reply generation.
package genai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"
)

// geminiGenerator produces conversational replies using Google's Gemini API.
// It implements the Generator interface.
type geminiGenerator struct {
	client *genai.Client
	model  string
}

// newGeminiGenerator creates a new Gemini-based generator.
// Returns nil if apiKey is empty (provider disabled).
func newGeminiGenerator(ctx context.Context, apiKey, model string) (*geminiGenerator, error) {
	if apiKey == "" {
		return nil, nil //nolint:nilnil // Intentional: provider disabled when no API key
	}

	if model == "" {
		model = DefaultGeminiModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &geminiGenerator{
		client: client,
		model:  model,
	}, nil
}

// Generate produces a reply for the assembled prompt using the fixed
// sampling configuration.
func (g *geminiGenerator) Generate(ctx context.Context, prompt string, cfg SamplingConfig) (string, error) {
	if g == nil || g.client == nil {
		return "", &GenerationError{Provider: ProviderGemini, Err: fmt.Errorf("gemini client not initialized")}
	}

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](cfg.Temperature),
		TopP:        genai.Ptr[float32](cfg.TopP),
		TopK:        genai.Ptr[float32](float32(cfg.TopK)),
	}

	start := time.Now()
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), config)
	duration := time.Since(start)

	if err != nil {
		slog.WarnContext(ctx, "generation API call failed",
			"provider", "gemini",
			"model", g.model,
			"prompt_length", len(prompt),
			"duration_ms", duration.Milliseconds(),
			"error", err)
		return "", fmt.Errorf("generate content failed: %w", err)
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", &GenerationError{Provider: ProviderGemini, Err: fmt.Errorf("empty response")}
	}

	var out strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Text != "" {
			out.WriteString(part.Text)
		}
	}

	result := strings.TrimSpace(out.String())
	if result == "" {
		return "", &GenerationError{Provider: ProviderGemini, Err: fmt.Errorf("empty candidate text")}
	}

	if resp.UsageMetadata != nil {
		slog.DebugContext(ctx, "generation completed",
			"provider", "gemini",
			"model", g.model,
			"input_tokens", resp.UsageMetadata.PromptTokenCount,
			"output_tokens", resp.UsageMetadata.CandidatesTokenCount,
			"total_tokens", resp.UsageMetadata.TotalTokenCount,
			"duration_ms", duration.Milliseconds())
	}

	return result, nil
}

// Provider returns the provider type for this generator.
func (g *geminiGenerator) Provider() Provider {
	return ProviderGemini
}

// Close releases resources.
// Safe to call on nil receiver.
func (g *geminiGenerator) Close() error {
	if g == nil {
		return nil
	}
	// Note: genai.Client does not require explicit cleanup in current SDK version
	return nil
}
