package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/sweetsbybella/internal/server/http/dto"
)

// SweepHandler exposes the expiry sweep to external schedulers and admins.
type SweepHandler struct {
	facade SweepFacade
	logger *slog.Logger
}

func NewSweepHandler(facade SweepFacade, logger *slog.Logger) *SweepHandler {
	return &SweepHandler{facade: facade, logger: logger}
}

// Run handles the cron, admin and legacy sweep routes.
func (h *SweepHandler) Run(c *gin.Context) {
	result, err := h.facade.RunExpirySweep(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSweepResponse(result))
}
