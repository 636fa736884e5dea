// Package llm provides a provider-neutral text completion client.
package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/viralscript/viralscript/internal/config"
)

var ErrEmptyResponse = errors.New("language model returned no text")

type Request struct {
	Model       string
	Prompt      string
	MaxTokens   int
	Temperature float64
}

type Response struct {
	Text         string
	Model        string
	InputTokens  int64
	OutputTokens int64
}

// Client sends a single-turn prompt and returns the model's text reply.
// Implementations attempt each call exactly once.
type Client interface {
	Complete(ctx context.Context, req Request) (*Response, error)
}

// New builds the client for the configured provider.
func New(ctx context.Context, cfg config.LLMConfig) (Client, error) {
	switch cfg.Provider {
	case config.ProviderAnthropic:
		return NewAnthropic(cfg.AnthropicAPIKey, cfg.Timeout), nil
	case config.ProviderGemini:
		return NewGemini(ctx, cfg.GeminiAPIKey, cfg.Timeout)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}
