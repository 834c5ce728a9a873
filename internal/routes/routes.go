package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/robertorodriguesrl2-cmd/botpmx-backend/internal/api/analytics"
	"github.com/robertorodriguesrl2-cmd/botpmx-backend/internal/api/channels/whatsapp"
	"github.com/robertorodriguesrl2-cmd/botpmx-backend/internal/api/send"
	"github.com/robertorodriguesrl2-cmd/botpmx-backend/internal/config"
	"github.com/robertorodriguesrl2-cmd/botpmx-backend/internal/leads"
	"github.com/robertorodriguesrl2-cmd/botpmx-backend/internal/middleware"
	"github.com/robertorodriguesrl2-cmd/botpmx-backend/internal/wagraph"
)

// SetupRoutes configures all application routes and returns the webhook
// dispatcher so main can drain it on shutdown.
func SetupRoutes(router *gin.Engine, cfg *config.Config, store leads.Store, waService *whatsapp.Service, sender wagraph.Sender) *whatsapp.Dispatcher {
	// Apply global middleware
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())

	// Setup route groups
	SetupHealthRoutes(router, store)
	dispatcher := whatsapp.RegisterRoutes(router, cfg, waService)
	send.RegisterRoutes(router, cfg, sender)
	analytics.RegisterRoutes(router, cfg, store)
	Setup404Handler(router)

	return dispatcher
}
