package llm

import (
	"context"
	"errors"
	"testing"
)

type fakeProvider struct {
	answer string
	err    error
	got    []Message
	gotCfg ModelConfig
}

func (f *fakeProvider) Generate(ctx context.Context, messages []Message, cfg ModelConfig) (string, Usage, error) {
	f.got = messages
	f.gotCfg = cfg
	return f.answer, Usage{}, f.err
}

func TestResponderAsk(t *testing.T) {
	fake := &fakeProvider{answer: "Claro! Posso ajudar 😊"}
	r := NewResponder(fake, "gemini-1.5-flash")

	got := r.Ask(context.Background(), "vocês entregam no sábado?")
	if got != "Claro! Posso ajudar 😊" {
		t.Errorf("Ask = %q", got)
	}
	if len(fake.got) != 1 || fake.got[0].Role != "user" {
		t.Fatalf("provider messages = %+v", fake.got)
	}
	if fake.gotCfg.SystemPrompt == "" {
		t.Error("system prompt not set")
	}
}

func TestResponderSwallowsErrors(t *testing.T) {
	fake := &fakeProvider{err: errors.New("quota exceeded")}
	r := NewResponder(fake, "gemini-1.5-flash")

	if got := r.Ask(context.Background(), "oi"); got != apologyText {
		t.Errorf("Ask on error = %q, want apology", got)
	}
}

func TestResponderEmptyAnswer(t *testing.T) {
	fake := &fakeProvider{answer: "   "}
	r := NewResponder(fake, "gemini-1.5-flash")

	if got := r.Ask(context.Background(), "oi"); got != apologyText {
		t.Errorf("Ask on blank answer = %q, want apology", got)
	}
}

func TestNoopProvider(t *testing.T) {
	text, _, err := NewNoopProvider().Generate(context.Background(), nil, ModelConfig{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text == "" {
		t.Error("noop provider returned empty text")
	}
}
