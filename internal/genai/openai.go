// Package genai provides integration with LLM APIs (Gemini and Groq).
// This file contains the OpenAI-compatible implementation of reply generation.
// It works with any OpenAI-compatible provider via custom BaseURL; Groq is the
// one wired by the factory.
package genai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// openaiGenerator produces conversational replies using an OpenAI-compatible API.
// It implements the Generator interface.
type openaiGenerator struct {
	client   openai.Client
	model    string
	provider Provider
}

// newOpenAIGenerator creates a new OpenAI-compatible generator.
// Returns nil if apiKey is empty (provider disabled).
func newOpenAIGenerator(_ context.Context, provider Provider, baseURL, apiKey, model string) (*openaiGenerator, error) {
	if apiKey == "" {
		return nil, nil //nolint:nilnil // Intentional: provider disabled when no API key
	}

	if model == "" {
		model = DefaultGroqModel
	}

	client := openai.NewClient(
		option.WithBaseURL(baseURL),
		option.WithAPIKey(apiKey),
	)

	return &openaiGenerator{
		client:   client,
		model:    model,
		provider: provider,
	}, nil
}

// Generate produces a reply for the assembled prompt.
// TopK is not part of the OpenAI chat completion surface and is ignored here;
// temperature and nucleus sampling carry over.
func (g *openaiGenerator) Generate(ctx context.Context, prompt string, cfg SamplingConfig) (string, error) {
	if g == nil {
		return "", &GenerationError{Provider: ProviderGroq, Err: fmt.Errorf("client not initialized")}
	}

	params := openai.ChatCompletionNewParams{
		Model: g.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(float64(cfg.Temperature)),
		TopP:        openai.Float(float64(cfg.TopP)),
	}

	start := time.Now()
	resp, err := g.client.Chat.Completions.New(ctx, params)
	duration := time.Since(start)

	if err != nil {
		slog.WarnContext(ctx, "generation API call failed",
			"provider", g.provider,
			"model", g.model,
			"prompt_length", len(prompt),
			"duration_ms", duration.Milliseconds(),
			"error", err)
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", &GenerationError{Provider: g.provider, Err: fmt.Errorf("empty response")}
	}

	result := strings.TrimSpace(resp.Choices[0].Message.Content)
	if result == "" {
		return "", &GenerationError{Provider: g.provider, Err: fmt.Errorf("empty choice text")}
	}

	slog.DebugContext(ctx, "generation completed",
		"provider", g.provider,
		"model", g.model,
		"input_tokens", resp.Usage.PromptTokens,
		"output_tokens", resp.Usage.CompletionTokens,
		"duration_ms", duration.Milliseconds())

	return result, nil
}

// Provider returns the provider type for this generator.
func (g *openaiGenerator) Provider() Provider {
	return g.provider
}

// Close releases resources.
// Safe to call on nil receiver.
func (g *openaiGenerator) Close() error {
	return nil
}
