package llm

import (
	"context"
)

// Message is a minimal chat message format for the provider
type Message struct {
	Role    string // system | user | assistant
	Content string
}

// Usage captures token accounting if available
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// ModelConfig contains per-request model settings
type ModelConfig struct {
	Model        string
	Temperature  float32
	SystemPrompt string
}

// Provider abstracts the LLM call; implementations can wrap Eino models.
type Provider interface {
	Generate(ctx context.Context, messages []Message, cfg ModelConfig) (text string, usage Usage, err error)
}

// NoopProvider answers with a fixed string. It is the active provider when
// AI_PROVIDER is unset, keeping the bot functional without any credentials.
type NoopProvider struct{}

func NewNoopProvider() *NoopProvider { return &NoopProvider{} }

func (n *NoopProvider) Generate(ctx context.Context, messages []Message, cfg ModelConfig) (string, Usage, error) {
	return "Desculpe, não consegui entender. Pode tentar de outro jeito? 🙂", Usage{}, nil
}
