package whatsapp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/robertorodriguesrl2-cmd/botpmx-backend/internal/botflow"
	"github.com/robertorodriguesrl2-cmd/botpmx-backend/internal/leads"
	"github.com/robertorodriguesrl2-cmd/botpmx-backend/internal/llm"
	"github.com/robertorodriguesrl2-cmd/botpmx-backend/internal/utils"
	"github.com/robertorodriguesrl2-cmd/botpmx-backend/internal/wagraph"
)

// InboundMessage is one text message extracted from a webhook delivery.
type InboundMessage struct {
	From      string
	Name      string
	Text      string
	MessageID string
}

// Service drives the message pipeline: lead tracking, menu routing, AI
// fallback and the outbound reply.
type Service struct {
	store     leads.Store
	responder *llm.Responder
	sender    wagraph.Sender
	tracking  bool
}

// NewService wires the pipeline. With tracking disabled the store is never
// touched and the bot degrades to a stateless menu/AI router.
func NewService(store leads.Store, responder *llm.Responder, sender wagraph.Sender, tracking bool) *Service {
	return &Service{
		store:     store,
		responder: responder,
		sender:    sender,
		tracking:  tracking,
	}
}

// Process handles one inbound message end to end. The webhook was already
// acknowledged, so errors here are for the dispatcher's log only.
func (s *Service) Process(ctx context.Context, msg *InboundMessage) error {
	startTime := time.Now()
	text := strings.TrimSpace(msg.Text)

	utils.Zlog.Info("Processing WhatsApp message",
		zap.String("from", msg.From),
		zap.String("name", msg.Name),
		zap.String("message_id", msg.MessageID))

	if s.tracking {
		lead, err := s.store.GetOrCreate(ctx, msg.From, msg.Name)
		if err != nil {
			return fmt.Errorf("failed to load lead %s: %w", msg.From, err)
		}

		// First contact bypasses the router: greet, show the menu,
		// record both events.
		if len(lead.History) == 0 {
			s.track(ctx, msg.From, leads.EventConversationStarted, map[string]string{"source": "whatsapp"})
			if err := s.send(ctx, msg.From, botflow.Greeting(msg.Name)); err != nil {
				return err
			}
			if err := s.send(ctx, msg.From, botflow.MenuText); err != nil {
				return err
			}
			s.track(ctx, msg.From, leads.EventMenuShown, nil)
			return nil
		}
	}

	reply := botflow.Route(text)
	switch reply.Action {
	case botflow.ActionMenu, botflow.ActionReply:
		if err := s.send(ctx, msg.From, reply.Text); err != nil {
			return err
		}
		s.track(ctx, msg.From, reply.Event, nil)

	case botflow.ActionNoMatch:
		answer := s.responder.Ask(ctx, text)
		if err := s.send(ctx, msg.From, answer); err != nil {
			return err
		}
		s.track(ctx, msg.From, leads.EventAIAnswered, map[string]string{
			"question": text,
			"answer":   answer,
		})
	}

	s.track(ctx, msg.From, leads.EventReplySent, map[string]string{"in_reply_to": msg.MessageID})

	utils.Zlog.Info("WhatsApp message processed",
		zap.String("from", msg.From),
		zap.Int64("latency_ms", time.Since(startTime).Milliseconds()))
	return nil
}

func (s *Service) send(ctx context.Context, to, body string) error {
	if _, err := s.sender.SendText(ctx, to, body); err != nil {
		return fmt.Errorf("failed to send WhatsApp message to %s: %w", to, err)
	}
	return nil
}

// track records an event; tracking failures never interrupt the reply path.
func (s *Service) track(ctx context.Context, id string, t leads.EventType, data map[string]string) {
	if !s.tracking {
		return
	}
	if err := s.store.RecordEvent(ctx, id, t, data); err != nil {
		utils.Zlog.Warn("Failed to record lead event",
			zap.String("wa_id", id),
			zap.String("event", string(t)),
			zap.Error(err))
	}
}
