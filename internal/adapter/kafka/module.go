package kafka

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/sweetsbybella/internal/config"
	"github.com/polkiloo/sweetsbybella/internal/usecase"
)

// Module exposes the order event publisher.
var Module = fx.Provide(newEventPublisher)

type publisherParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    *config.Config
	Logger    *slog.Logger
}

func newEventPublisher(p publisherParams) usecase.EventPublisher {
	if len(p.Config.KafkaBrokers) == 0 {
		return NopPublisher{}
	}

	publisher := NewPublisher(NewWriter(p.Config.KafkaBrokers, p.Config.KafkaTopic, p.Logger), p.Logger)
	p.Lifecycle.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return publisher.Close()
		},
	})
	p.Logger.Info("order events enabled",
		slog.String("topic", p.Config.KafkaTopic),
		slog.Int("brokers", len(p.Config.KafkaBrokers)),
	)
	return publisher
}
