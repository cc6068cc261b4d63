package ping

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Macwinner1/Xecret/utils"
)

// Pinger is implemented by backends the health check probes.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	store   Pinger
	started time.Time
}

func New(store Pinger) *Handler {
	return &Handler{store: store, started: time.Now()}
}

// HandlePing godoc
// @Summary Ping test
// @Description Answers pong
// @Tags health
// @Produce json
// @Success 200 {object} utils.Response
// @Router /ping [get]
func (h *Handler) HandlePing(c *gin.Context) {
	utils.SendSuccess(c, http.StatusOK, "Ping successful", gin.H{
		"message": "pong",
	})
}

// Health godoc
// @Summary Service health
// @Description Reports ok when the store answers within two seconds
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{} "status, uptime"
// @Failure 503 {object} map[string]interface{} "status: degraded"
// @Router /health [get]
func (h *Handler) Health(c *gin.Context) {
	uptime := time.Since(h.started).Round(time.Second).String()
	if h.store != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.store.Ping(ctx); err != nil {
			utils.LogError(err, "Health check failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "uptime": uptime})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "uptime": uptime})
}
