package worker

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/sweetsbybella/internal/config"
	"github.com/polkiloo/sweetsbybella/internal/usecase"
)

// Module provides the mail queue as the lifecycle outbox.
var Module = fx.Options(
	fx.Provide(newMailQueue),
	fx.Provide(func(q *MailQueue) usecase.Outbox { return q }),
)

type mailQueueParams struct {
	fx.In

	Config   *config.Config
	Notifier usecase.Notifier
	Logger   *slog.Logger
}

func newMailQueue(p mailQueueParams) *MailQueue {
	return NewMailQueue(p.Notifier, p.Config.MailWorkers, p.Config.MailQueueSize, p.Logger)
}
