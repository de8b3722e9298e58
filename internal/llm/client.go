// Package llm provides the uniform adapter over AI completion providers.
package llm

import (
	"context"
	"fmt"

	"github.com/replyloop-ai/messenger-platform/internal/model"
)

// CompletionRequest represents a completion request.
type CompletionRequest struct {
	Model        string
	SystemPrompt string
	UserMessage  string
	MaxTokens    int
	Temperature  float64
}

// CompletionResponse represents a completion response.
type CompletionResponse struct {
	Content   string
	Model     string
	TokensIn  int
	TokensOut int
	LatencyMs int64
}

// Client is the interface for AI completion providers.
type Client interface {
	// Complete sends a completion request and returns the response.
	// Failures come back as errors; no retries are attempted here.
	Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)

	// Name returns the provider name.
	Name() string
}

// NewClient creates a client for the configuration's provider variant.
// Unknown provider tags are a configuration error, not a crash.
func NewClient(cfg *model.AIProviderConfig) (Client, error) {
	switch cfg.Provider {
	case model.ProviderOpenAI:
		return NewOpenAIClient(cfg.APIKey)
	case model.ProviderMistral:
		return NewMistralClient(cfg.APIKey)
	case model.ProviderAnthropic:
		return NewAnthropicClient(cfg.APIKey)
	default:
		return nil, fmt.Errorf("unsupported provider %q", cfg.Provider)
	}
}
