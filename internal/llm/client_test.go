package llm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/replyloop-ai/messenger-platform/internal/model"
)

func TestNewClient_MapsProviderVariants(t *testing.T) {
	t.Parallel()

	cases := []struct {
		provider model.Provider
		name     string
	}{
		{model.ProviderOpenAI, "openai"},
		{model.ProviderMistral, "mistral"},
		{model.ProviderAnthropic, "anthropic"},
	}

	for _, tc := range cases {
		client, err := NewClient(&model.AIProviderConfig{
			Provider: tc.provider,
			APIKey:   "test-key",
			Model:    "some-model",
		})
		require.NoError(t, err)
		require.Equal(t, tc.name, client.Name())
	}
}

func TestNewClient_RejectsUnknownProvider(t *testing.T) {
	t.Parallel()

	_, err := NewClient(&model.AIProviderConfig{
		Provider: model.Provider("cohere"),
		APIKey:   "test-key",
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsupported provider")
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	t.Parallel()

	for _, p := range []model.Provider{model.ProviderOpenAI, model.ProviderMistral, model.ProviderAnthropic} {
		_, err := NewClient(&model.AIProviderConfig{Provider: p})
		require.Error(t, err)
	}
}

func TestOpenAIClient_Complete(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"model": "gpt-4o-mini",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "Ouvert 9h-18h."}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 12, "completion_tokens": 7, "total_tokens": 19}
		}`))
	}))
	defer srv.Close()

	client, err := NewCompatibleClient("test-key", srv.URL, "openai")
	require.NoError(t, err)

	resp, err := client.Complete(context.Background(), &CompletionRequest{
		Model:        "gpt-4o-mini",
		SystemPrompt: "Answer as the shop.",
		UserMessage:  "vos horaires ?",
		Temperature:  0.7,
	})
	require.NoError(t, err)
	require.Equal(t, "Ouvert 9h-18h.", resp.Content)
	require.Equal(t, "gpt-4o-mini", resp.Model)
	require.Equal(t, 12, resp.TokensIn)
	require.Equal(t, 7, resp.TokensOut)
}

func TestOpenAIClient_CompleteEmptyChoicesIsError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": "chatcmpl-2", "object": "chat.completion", "model": "gpt-4o-mini", "choices": []}`))
	}))
	defer srv.Close()

	client, err := NewCompatibleClient("test-key", srv.URL, "openai")
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), &CompletionRequest{
		Model:       "gpt-4o-mini",
		UserMessage: "hello",
	})
	require.Error(t, err)
}
