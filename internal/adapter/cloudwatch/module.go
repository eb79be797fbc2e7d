package cloudwatch

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/sweetsbybella/internal/config"
	"github.com/polkiloo/sweetsbybella/internal/usecase"
)

// Module exposes the sweep metrics recorder.
var Module = fx.Provide(newSweepRecorder)

type recorderParams struct {
	fx.In

	Ctx    context.Context
	Config *config.Config
	Logger *slog.Logger
}

func newSweepRecorder(p recorderParams) (usecase.SweepRecorder, error) {
	if p.Config.MetricsNamespace == "" {
		return NopRecorder{}, nil
	}
	client, err := NewClient(p.Ctx, p.Config.AWSRegion)
	if err != nil {
		return nil, err
	}
	return NewRecorder(client, p.Config.MetricsNamespace, p.Logger), nil
}
