package model

import (
	"time"
)

// Provider identifies an AI completion back-end variant.
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderMistral   Provider = "mistral"
	ProviderAnthropic Provider = "anthropic"
)

// Valid reports whether the provider tag is a known variant.
func (p Provider) Valid() bool {
	switch p {
	case ProviderOpenAI, ProviderMistral, ProviderAnthropic:
		return true
	}
	return false
}

// AIProviderConfig is the per-page AI fallback configuration. At most one
// active row is consulted per page at resolution time.
type AIProviderConfig struct {
	ID           int64     `json:"id"`
	PageID       string    `json:"page_id"`
	Provider     Provider  `json:"provider"`
	APIKey       string    `json:"-"`
	Model        string    `json:"model"`
	Temperature  float64   `json:"temperature"`
	SystemPrompt string    `json:"system_prompt,omitempty"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
}

// ClampTemperature bounds the temperature to the supported [0, 2] range.
func (c *AIProviderConfig) ClampTemperature() {
	if c.Temperature < 0 {
		c.Temperature = 0
	}
	if c.Temperature > 2 {
		c.Temperature = 2
	}
}

// UpsertAIConfigRequest is the request to set a page's active AI configuration.
type UpsertAIConfigRequest struct {
	Provider     Provider `json:"provider"`
	APIKey       string   `json:"api_key"`
	Model        string   `json:"model"`
	Temperature  float64  `json:"temperature"`
	SystemPrompt string   `json:"system_prompt,omitempty"`
}
