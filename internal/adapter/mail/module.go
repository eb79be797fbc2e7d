package mail

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/sweetsbybella/internal/config"
	"github.com/polkiloo/sweetsbybella/internal/usecase"
)

// Module exposes the email notifier to the fx graph.
var Module = fx.Provide(newNotifier)

type notifierParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newNotifier(p notifierParams) usecase.Notifier {
	if !p.Config.Mail.Enabled() {
		p.Logger.Warn("smtp credentials not configured, emails are disabled")
		return DisabledSender{}
	}
	return NewSMTPSender(p.Config.Mail, p.Config.Shop.Name, p.Logger)
}
