package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/robertorodriguesrl2-cmd/botpmx-backend/internal/controllers"
	"github.com/robertorodriguesrl2-cmd/botpmx-backend/internal/leads"
)

// SetupHealthRoutes configures health check endpoints
func SetupHealthRoutes(router *gin.Engine, store leads.Store) {
	healthController := controllers.NewHealthController(store)

	// Root endpoint
	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "BotPMX Backend OK ✅")
	})

	// Health check endpoint
	router.GET("/health", healthController.HealthCheck)
}
