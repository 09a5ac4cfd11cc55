package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/genai"
)

// GeminiEngine implements Engine against the Gemini API.
type GeminiEngine struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	logger  *slog.Logger
}

// NewGeminiEngine creates a Gemini-backed completion engine. Every
// Complete call is bounded by timeout so a slow upstream degrades the
// turn instead of hanging it.
func NewGeminiEngine(ctx context.Context, apiKey, model string, timeout time.Duration, logger *slog.Logger) (*GeminiEngine, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: API key is required")
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	return &GeminiEngine{
		client:  client,
		model:   model,
		timeout: timeout,
		logger:  logger,
	}, nil
}

// Client exposes the underlying API client so the transcriber can
// share one connection with the engine.
func (e *GeminiEngine) Client() *genai.Client {
	return e.client
}

// Complete sends one prompt and returns the response text.
func (e *GeminiEngine) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	start := time.Now()
	resp, err := e.client.Models.GenerateContent(ctx, e.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("gemini: generate content: %w", err)
	}

	text := resp.Text()
	e.logger.Debug("completion finished",
		"model", e.model,
		"prompt_chars", len(prompt),
		"response_chars", len(text),
		"elapsed", time.Since(start),
	)
	return text, nil
}
