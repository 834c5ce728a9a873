package analytics

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/robertorodriguesrl2-cmd/botpmx-backend/internal/utils"
)

type Controller struct {
	service *Service
}

func NewController(service *Service) *Controller {
	return &Controller{service: service}
}

// GET /api/analytics/summary
func (c *Controller) Summary(ctx *gin.Context) {
	summary, err := c.service.Summary(ctx.Request.Context())
	if err != nil {
		utils.Zlog.Error("Failed to compute analytics summary", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "analytics_failed"})
		return
	}
	ctx.JSON(http.StatusOK, summary)
}

// GET /api/analytics/funnel
func (c *Controller) Funnel(ctx *gin.Context) {
	funnel, err := c.service.Funnel(ctx.Request.Context())
	if err != nil {
		utils.Zlog.Error("Failed to compute funnel", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "analytics_failed"})
		return
	}
	ctx.JSON(http.StatusOK, funnel)
}

// GET /api/analytics/leads
func (c *Controller) Leads(ctx *gin.Context) {
	dump, err := c.service.Leads(ctx.Request.Context())
	if err != nil {
		utils.Zlog.Error("Failed to dump leads", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "analytics_failed"})
		return
	}
	ctx.JSON(http.StatusOK, dump)
}
