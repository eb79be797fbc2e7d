package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/sweetsbybella/internal/server/http/dto"
)

// HealthHandler reports liveness and database reachability.
type HealthHandler struct {
	facade HealthFacade
	logger *slog.Logger
	now    func() time.Time
}

func NewHealthHandler(facade HealthFacade, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{facade: facade, logger: logger, now: time.Now}
}

// Health handles GET /health. A failing database answers 503.
func (h *HealthHandler) Health(c *gin.Context) {
	resp := dto.HealthResponse{Status: "OK", Timestamp: h.now().UTC(), Database: "up"}
	if err := h.facade.Health(c.Request.Context()); err != nil {
		h.logger.Warn("health check failed", slog.String("error", err.Error()))
		resp.Status = "DEGRADED"
		resp.Database = "down"
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Root handles GET /.
func Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Sweets by Bella Backend API"})
}
