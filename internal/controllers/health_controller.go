package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/robertorodriguesrl2-cmd/botpmx-backend/internal/leads"
	"github.com/robertorodriguesrl2-cmd/botpmx-backend/internal/utils"
)

// HealthController reports service and lead-store health
type HealthController struct {
	store leads.Store
}

func NewHealthController(store leads.Store) *HealthController {
	return &HealthController{store: store}
}

// HealthCheck pings the lead store.
// GET /health
func (h *HealthController) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		utils.Zlog.Error("Health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}
