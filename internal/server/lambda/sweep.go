// Package lambda exposes the expiry sweep as an AWS Lambda handler for
// scheduled EventBridge rules.
package lambda

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-lambda-go/events"

	"github.com/polkiloo/sweetsbybella/internal/domain/model"
	"github.com/polkiloo/sweetsbybella/internal/server/http/dto"
)

// SweepFacade runs one expiry sweep.
type SweepFacade interface {
	RunExpirySweep(ctx context.Context) (model.SweepResult, error)
}

// SweepHandler runs a sweep per scheduled event.
type SweepHandler struct {
	facade SweepFacade
	logger *slog.Logger
}

func NewSweepHandler(facade SweepFacade, logger *slog.Logger) *SweepHandler {
	return &SweepHandler{facade: facade, logger: logger}
}

// Handle returns an error when the sweep fails so the invocation is retried.
func (h *SweepHandler) Handle(ctx context.Context, event events.CloudWatchEvent) (dto.SweepResponse, error) {
	logger := h.logger.With(
		slog.String("event_id", event.ID),
		slog.String("detail_type", event.DetailType),
	)

	result, err := h.facade.RunExpirySweep(ctx)
	if err != nil {
		logger.Error("scheduled expiry sweep failed", slog.String("error", err.Error()))
		return dto.SweepResponse{}, fmt.Errorf("expiry sweep: %w", err)
	}

	logger.Info("scheduled expiry sweep finished",
		slog.Int("cancelled", result.CancelledCount),
		slog.Int("notified", result.NotifiedCount),
	)
	return dto.NewSweepResponse(result), nil
}
