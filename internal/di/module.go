package di

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/sweetsbybella/internal/adapter/cloudwatch"
	"github.com/polkiloo/sweetsbybella/internal/adapter/kafka"
	"github.com/polkiloo/sweetsbybella/internal/adapter/mail"
	"github.com/polkiloo/sweetsbybella/internal/adapter/redis"
	"github.com/polkiloo/sweetsbybella/internal/app"
	"github.com/polkiloo/sweetsbybella/internal/config"
	"github.com/polkiloo/sweetsbybella/internal/logger"
	"github.com/polkiloo/sweetsbybella/internal/notify"
	"github.com/polkiloo/sweetsbybella/internal/pkg/auth"
	"github.com/polkiloo/sweetsbybella/internal/server/http/router"
	"github.com/polkiloo/sweetsbybella/internal/server/lambda"
	"github.com/polkiloo/sweetsbybella/internal/storage/postgres"
	"github.com/polkiloo/sweetsbybella/internal/usecase"
	"github.com/polkiloo/sweetsbybella/internal/worker"
)

// Core wires storage, integrations and the order lifecycle behind the shop facade.
func Core() fx.Option {
	return fx.Options(
		config.Module,
		logger.Module,
		auth.Module,
		postgres.Module,
		notify.Module,
		mail.Module,
		kafka.Module,
		redis.Module,
		cloudwatch.Module,
		worker.Module,
		usecase.Module,
		app.FacadeModule,
	)
}

// Module builds the long-running HTTP service.
func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		Core(),
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}

// Lambda builds the scheduled sweep function.
func Lambda(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		Core(),
		fx.Provide(func(f *app.ShopFacade, l *slog.Logger) *lambda.SweepHandler {
			return lambda.NewSweepHandler(f, l)
		}),
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
