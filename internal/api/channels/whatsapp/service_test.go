package whatsapp

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/robertorodriguesrl2-cmd/botpmx-backend/internal/leads"
	"github.com/robertorodriguesrl2-cmd/botpmx-backend/internal/llm"
	"github.com/robertorodriguesrl2-cmd/botpmx-backend/internal/wagraph"
)

type sentMessage struct {
	To   string
	Body string
}

type fakeSender struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
}

func (f *fakeSender) SendText(ctx context.Context, to, body string) (*wagraph.SendResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, sentMessage{To: to, Body: body})
	return &wagraph.SendResponse{}, nil
}

func (f *fakeSender) messages() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]sentMessage, len(f.sent))
	copy(out, f.sent)
	return out
}

func newTestService(t *testing.T, sender *fakeSender) (*Service, leads.Store) {
	t.Helper()
	store, err := leads.OpenFileStore(filepath.Join(t.TempDir(), "data.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	responder := llm.NewResponder(llm.NewNoopProvider(), "gemini-1.5-flash")
	return NewService(store, responder, sender, true), store
}

func eventTypes(lead *leads.Lead) []leads.EventType {
	out := make([]leads.EventType, len(lead.History))
	for i, ev := range lead.History {
		out[i] = ev.Type
	}
	return out
}

func TestProcessFirstContact(t *testing.T) {
	sender := &fakeSender{}
	svc, store := newTestService(t, sender)
	ctx := context.Background()

	err := svc.Process(ctx, &InboundMessage{From: "5511999990000", Name: "Maria", Text: "oi", MessageID: "wamid.1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sent := sender.messages()
	if len(sent) != 2 {
		t.Fatalf("sent %d messages, want greeting + menu", len(sent))
	}
	if sent[0].To != "5511999990000" {
		t.Errorf("greeting sent to %q", sent[0].To)
	}

	lead, err := store.GetOrCreate(ctx, "5511999990000", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := eventTypes(lead)
	if len(got) != 2 || got[0] != leads.EventConversationStarted || got[1] != leads.EventMenuShown {
		t.Errorf("events = %v", got)
	}
	if lead.Stage != leads.StageMenu {
		t.Errorf("stage = %q, want %q", lead.Stage, leads.StageMenu)
	}
	if lead.History[0].Data["source"] != "whatsapp" {
		t.Errorf("conversation-started payload = %v", lead.History[0].Data)
	}
}

func TestProcessMenuOptions(t *testing.T) {
	cases := []struct {
		input     string
		event     leads.EventType
		wantStage leads.Stage
	}{
		{"1", leads.EventMenuOption1, leads.StageProduct},
		{"2", leads.EventMenuOption2, leads.StagePrice},
		{"3", leads.EventMenuOption3, leads.StageHuman},
		{"4", leads.EventMenuOption4, leads.StageStatus},
	}

	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			sender := &fakeSender{}
			svc, store := newTestService(t, sender)
			ctx := context.Background()

			// Seed history so the first-contact branch is skipped.
			if err := store.RecordEvent(ctx, "5511000000001", leads.EventConversationStarted, nil); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			err := svc.Process(ctx, &InboundMessage{From: "5511000000001", Text: tc.input, MessageID: "wamid.2"})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(sender.messages()) != 1 {
				t.Fatalf("sent %d messages, want 1", len(sender.messages()))
			}

			lead, _ := store.GetOrCreate(ctx, "5511000000001", "")
			got := eventTypes(lead)
			if len(got) != 3 || got[1] != tc.event || got[2] != leads.EventReplySent {
				t.Errorf("events = %v", got)
			}
			if lead.Stage != tc.wantStage {
				t.Errorf("stage = %q, want %q", lead.Stage, tc.wantStage)
			}
		})
	}
}

func TestProcessAIFallback(t *testing.T) {
	sender := &fakeSender{}
	svc, store := newTestService(t, sender)
	ctx := context.Background()

	if err := store.RecordEvent(ctx, "5511000000002", leads.EventConversationStarted, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := svc.Process(ctx, &InboundMessage{From: "5511000000002", Text: "  xyz123  ", MessageID: "wamid.3"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lead, _ := store.GetOrCreate(ctx, "5511000000002", "")
	var aiEvent *leads.Event
	for i := range lead.History {
		if lead.History[i].Type == leads.EventAIAnswered {
			aiEvent = &lead.History[i]
		}
	}
	if aiEvent == nil {
		t.Fatal("no ai-answered event recorded")
	}
	if aiEvent.Data["question"] != "xyz123" {
		t.Errorf("question payload = %q, want trimmed original text", aiEvent.Data["question"])
	}
	if aiEvent.Data["answer"] == "" {
		t.Error("answer payload empty")
	}

	sent := sender.messages()
	if len(sent) != 1 || sent[0].Body != aiEvent.Data["answer"] {
		t.Errorf("sent = %v", sent)
	}
}

func TestProcessSendFailureSkipsReplyEvent(t *testing.T) {
	sender := &fakeSender{err: errors.New("network down")}
	svc, store := newTestService(t, sender)
	ctx := context.Background()

	if err := store.RecordEvent(ctx, "5511000000003", leads.EventConversationStarted, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := svc.Process(ctx, &InboundMessage{From: "5511000000003", Text: "1", MessageID: "wamid.4"})
	if err == nil {
		t.Fatal("expected error when send fails")
	}

	lead, _ := store.GetOrCreate(ctx, "5511000000003", "")
	if len(lead.History) != 1 {
		t.Errorf("events after failed send = %v", eventTypes(lead))
	}
}

func TestProcessTrackingDisabled(t *testing.T) {
	sender := &fakeSender{}
	responder := llm.NewResponder(llm.NewNoopProvider(), "gemini-1.5-flash")
	svc := NewService(nil, responder, sender, false)

	err := svc.Process(context.Background(), &InboundMessage{From: "5511000000004", Text: "menu", MessageID: "wamid.5"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sender.messages()) != 1 {
		t.Fatalf("sent %d messages, want 1", len(sender.messages()))
	}
}
