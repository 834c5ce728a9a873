package send

import (
	"github.com/gin-gonic/gin"

	"github.com/robertorodriguesrl2-cmd/botpmx-backend/internal/config"
	"github.com/robertorodriguesrl2-cmd/botpmx-backend/internal/middleware"
	"github.com/robertorodriguesrl2-cmd/botpmx-backend/internal/wagraph"
)

// RegisterRoutes registers the manual send endpoint behind the static
// bearer token.
func RegisterRoutes(router *gin.Engine, cfg *config.Config, sender wagraph.Sender) {
	ctrl := NewController(sender)

	api := router.Group("/api/whatsapp", middleware.BearerAuth(cfg.BasicToken))
	{
		api.POST("/send", ctrl.Send)
	}
}
