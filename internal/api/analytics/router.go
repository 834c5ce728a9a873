package analytics

import (
	"github.com/gin-gonic/gin"

	"github.com/robertorodriguesrl2-cmd/botpmx-backend/internal/config"
	"github.com/robertorodriguesrl2-cmd/botpmx-backend/internal/leads"
	"github.com/robertorodriguesrl2-cmd/botpmx-backend/internal/middleware"
)

// RegisterRoutes registers the analytics endpoints behind the static bearer
// token.
func RegisterRoutes(router *gin.Engine, cfg *config.Config, store leads.Store) {
	ctrl := NewController(NewService(store))

	api := router.Group("/api/analytics", middleware.BearerAuth(cfg.BasicToken))
	{
		api.GET("/summary", ctrl.Summary)
		api.GET("/funnel", ctrl.Funnel)
		api.GET("/leads", ctrl.Leads)
	}
}
