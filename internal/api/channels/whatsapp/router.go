package whatsapp

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/robertorodriguesrl2-cmd/botpmx-backend/internal/config"
	"github.com/robertorodriguesrl2-cmd/botpmx-backend/internal/utils"
)

// RegisterRoutes registers the Meta webhook endpoints and returns the
// dispatcher so main can drain it on shutdown.
func RegisterRoutes(router *gin.Engine, cfg *config.Config, service *Service) *Dispatcher {
	dispatcher := NewDispatcher(service, cfg.WorkerCount)
	ctrl := NewController(cfg, dispatcher)

	webhooks := router.Group("/webhooks")
	{
		// Meta sends GET for verification, POST for messages
		webhooks.GET("/meta", ctrl.VerifyWebhook)
		webhooks.POST("/meta", ctrl.Webhook)
	}

	utils.Zlog.Info("WhatsApp webhook routes registered",
		zap.String("verify_endpoint", "/webhooks/meta [GET]"),
		zap.String("webhook_endpoint", "/webhooks/meta [POST]"))

	return dispatcher
}
