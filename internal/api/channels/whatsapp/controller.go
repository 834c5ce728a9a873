package whatsapp

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/robertorodriguesrl2-cmd/botpmx-backend/internal/config"
	"github.com/robertorodriguesrl2-cmd/botpmx-backend/internal/utils"
)

// Controller handles the Meta webhook endpoints.
type Controller struct {
	cfg        *config.Config
	dispatcher *Dispatcher
}

func NewController(cfg *config.Config, dispatcher *Dispatcher) *Controller {
	return &Controller{
		cfg:        cfg,
		dispatcher: dispatcher,
	}
}

// VerifyWebhook handles Meta's challenge-response verification.
// GET /webhooks/meta
func (c *Controller) VerifyWebhook(ctx *gin.Context) {
	mode := ctx.Query("hub.mode")
	token := ctx.Query("hub.verify_token")
	challenge := ctx.Query("hub.challenge")

	if mode == "subscribe" && token == c.cfg.VerifyToken {
		ctx.String(http.StatusOK, challenge)
		return
	}

	utils.Zlog.Warn("Webhook verification rejected", zap.String("mode", mode))
	ctx.Status(http.StatusForbidden)
}

// Webhook handles incoming delivery callbacks.
// POST /webhooks/meta
func (c *Controller) Webhook(ctx *gin.Context) {
	body, err := ctx.GetRawData()
	if err != nil {
		utils.Zlog.Error("Failed to read webhook body", zap.Error(err))
		ctx.JSON(http.StatusOK, gin.H{"status": "received"})
		return
	}

	if c.cfg.AppSecret != "" {
		signature := ctx.GetHeader("X-Hub-Signature-256")
		if err := VerifySignature(signature, body, c.cfg.AppSecret); err != nil {
			utils.Zlog.Warn("Webhook signature rejected", zap.Error(err))
			ctx.Status(http.StatusForbidden)
			return
		}
	}

	// Meta requires a fast response; ack before any processing so
	// downstream failures can never trigger a redelivery.
	ctx.JSON(http.StatusOK, gin.H{"status": "received"})

	var payload WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		utils.Zlog.Warn("Ignoring malformed webhook payload", zap.Error(err))
		return
	}

	// Only the first message of the first change of the first entry is
	// processed; anything deeper is silently ignored.
	if len(payload.Entry) == 0 || len(payload.Entry[0].Changes) == 0 {
		utils.Zlog.Debug("Empty webhook payload")
		return
	}
	value := payload.Entry[0].Changes[0].Value

	if len(value.Statuses) > 0 {
		st := value.Statuses[0]
		utils.Zlog.Info("Message status update",
			zap.String("message_id", st.ID),
			zap.String("status", st.Status),
			zap.String("recipient", st.RecipientID))
		return
	}

	if len(value.Messages) == 0 {
		utils.Zlog.Debug("No messages in webhook payload")
		return
	}
	message := value.Messages[0]

	if message.Type != "text" || message.Text == nil {
		utils.Zlog.Debug("Ignoring non-text message",
			zap.String("from", message.From),
			zap.String("message_type", message.Type))
		return
	}

	var name string
	if len(value.Contacts) > 0 {
		name = value.Contacts[0].Profile.Name
	}

	utils.Zlog.Info("Received WhatsApp message",
		zap.String("from", message.From),
		zap.String("name", name),
		zap.String("message_id", message.ID))

	c.dispatcher.Enqueue(&InboundMessage{
		From:      message.From,
		Name:      name,
		Text:      message.Text.Body,
		MessageID: message.ID,
	})
}
