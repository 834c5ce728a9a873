package llm

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/robertorodriguesrl2-cmd/botpmx-backend/internal/config"
	"github.com/robertorodriguesrl2-cmd/botpmx-backend/internal/utils"
)

const systemPrompt = "Você é um assistente de atendimento simpático e vendedor. " +
	"Responda de forma curta, clara, em português do Brasil, com tom leve e " +
	"alguns emojis quando fizer sentido."

// apologyText is returned whenever the provider fails; callers of Ask never
// see an error.
const apologyText = "Tive um probleminha pra pensar aqui 😅. Pode perguntar de outra forma?"

// Responder is the AI fallback for messages the menu router cannot handle.
type Responder struct {
	provider Provider
	model    string
}

func NewResponder(provider Provider, model string) *Responder {
	return &Responder{provider: provider, model: model}
}

// NewResponderFromConfig picks the provider named by AI_PROVIDER. Anything
// that goes wrong building the real provider degrades to the noop one so a
// missing key never blocks startup.
func NewResponderFromConfig(ctx context.Context, cfg *config.Config) *Responder {
	if cfg.AIProvider == "gemini" {
		provider, err := NewGeminiProvider(ctx, cfg.GeminiAPIKeys, cfg.AIModel)
		if err == nil {
			return NewResponder(provider, cfg.AIModel)
		}
		utils.Zlog.Error("Failed to enable Gemini provider, falling back to noop",
			zap.Error(err))
	}
	return NewResponder(NewNoopProvider(), cfg.AIModel)
}

// Ask forwards the customer text to the provider and returns its answer.
// Always succeeds from the caller's point of view: provider failures are
// logged and mapped to a canned apology.
func (r *Responder) Ask(ctx context.Context, text string) string {
	prompt := fmt.Sprintf("Mensagem do cliente: %q", text)

	answer, _, err := r.provider.Generate(ctx, []Message{{Role: "user", Content: prompt}}, ModelConfig{
		Model:        r.model,
		SystemPrompt: systemPrompt,
	})
	if err != nil {
		utils.Zlog.Error("AI fallback failed", zap.Error(err))
		return apologyText
	}
	if strings.TrimSpace(answer) == "" {
		return apologyText
	}
	return answer
}
