package send

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/robertorodriguesrl2-cmd/botpmx-backend/internal/utils"
	"github.com/robertorodriguesrl2-cmd/botpmx-backend/internal/wagraph"
)

// Controller exposes a manual text-send endpoint, handy for smoke tests.
type Controller struct {
	sender wagraph.Sender
}

func NewController(sender wagraph.Sender) *Controller {
	return &Controller{sender: sender}
}

// SendRequest is the manual send body
type SendRequest struct {
	To   string `json:"to" binding:"required"`
	Text string `json:"text" binding:"required"`
}

// Send proxies a text message to the Graph API and returns the provider's
// raw response.
// POST /api/whatsapp/send
func (c *Controller) Send(ctx *gin.Context) {
	var req SendRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid_payload"})
		return
	}

	resp, err := c.sender.SendText(ctx.Request.Context(), req.To, req.Text)
	if err != nil {
		utils.Zlog.Error("Manual send failed",
			zap.String("to", req.To),
			zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":  "send_failed",
			"detail": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, resp)
}
