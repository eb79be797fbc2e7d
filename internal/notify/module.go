package notify

import (
	"go.uber.org/fx"

	"github.com/polkiloo/sweetsbybella/internal/usecase"
)

// Module provides the email composer.
var Module = fx.Options(
	fx.Provide(New),
	fx.Provide(func(c *Composer) usecase.MessageComposer { return c }),
)
