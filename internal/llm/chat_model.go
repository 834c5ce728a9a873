package llm

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/robertorodriguesrl2-cmd/botpmx-backend/internal/utils"
)

// GeminiProvider wraps one Gemini chat model per API key and rotates
// requests round-robin across them to spread rate limits.
type GeminiProvider struct {
	models   []model.BaseChatModel
	keyIndex uint64 // atomic counter for round-robin selection
}

// NewGeminiProvider builds an eino Gemini chat model for each API key.
func NewGeminiProvider(ctx context.Context, apiKeys []string, modelName string) (*GeminiProvider, error) {
	if len(apiKeys) == 0 {
		return nil, fmt.Errorf("at least one API key is required")
	}

	models := make([]model.BaseChatModel, len(apiKeys))
	for i, key := range apiKeys {
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey: key,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini client for key %d: %w", i+1, err)
		}

		chatModel, err := gemini.NewChatModel(ctx, &gemini.Config{
			Client: client,
			Model:  modelName,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create chat model for key %d: %w", i+1, err)
		}
		models[i] = chatModel
	}

	utils.Zlog.Info("Created Gemini provider with round-robin key rotation",
		zap.Int("key_count", len(apiKeys)),
		zap.String("model", modelName))

	return &GeminiProvider{models: models}, nil
}

func (p *GeminiProvider) getNextModel() model.BaseChatModel {
	if len(p.models) == 1 {
		return p.models[0]
	}
	idx := atomic.AddUint64(&p.keyIndex, 1)
	return p.models[idx%uint64(len(p.models))]
}

// Generate implements Provider on top of the eino chat model.
func (p *GeminiProvider) Generate(ctx context.Context, messages []Message, cfg ModelConfig) (string, Usage, error) {
	input := make([]*schema.Message, 0, len(messages)+1)
	if cfg.SystemPrompt != "" {
		input = append(input, schema.SystemMessage(cfg.SystemPrompt))
	}
	for _, m := range messages {
		switch m.Role {
		case "system":
			input = append(input, schema.SystemMessage(m.Content))
		case "assistant":
			input = append(input, schema.AssistantMessage(m.Content, nil))
		default:
			input = append(input, schema.UserMessage(m.Content))
		}
	}

	result, err := p.getNextModel().Generate(ctx, input)
	if err != nil {
		return "", Usage{}, fmt.Errorf("gemini generation failed: %w", err)
	}

	var usage Usage
	if result.ResponseMeta != nil && result.ResponseMeta.Usage != nil {
		usage = Usage{
			PromptTokens:     result.ResponseMeta.Usage.PromptTokens,
			CompletionTokens: result.ResponseMeta.Usage.CompletionTokens,
			TotalTokens:      result.ResponseMeta.Usage.TotalTokens,
		}
	}
	return result.Content, usage, nil
}
