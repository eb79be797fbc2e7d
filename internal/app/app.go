package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/polkiloo/sweetsbybella/internal/config"
	"github.com/polkiloo/sweetsbybella/internal/server/http/handlers"
	"github.com/polkiloo/sweetsbybella/internal/worker"
)

// FacadeModule provides the shop facade shared by the server and the lambda.
var FacadeModule = fx.Provide(
	NewShopFacade,
	func(f *ShopFacade) handlers.ShopFacade { return f },
)

// Module wires the HTTP server, the background sweeper, and lifecycle hooks.
var Module = fx.Options(
	fx.Provide(
		newHTTPServer,
		newExpirySweeper,
	),
	fx.Invoke(registerLifecycle),
)

type serverParams struct {
	fx.In

	Config *config.Config
	Router *gin.Engine
}

func newHTTPServer(p serverParams) *http.Server {
	return &http.Server{
		Addr:    p.Config.RunAddress,
		Handler: p.Router,
	}
}

type sweeperParams struct {
	fx.In

	Facade *ShopFacade
	Config *config.Config
	Logger *slog.Logger
}

func newExpirySweeper(p sweeperParams) *worker.ExpirySweeper {
	return worker.NewExpirySweeper(p.Facade, p.Config.SweepInterval, p.Logger)
}

type lifecycleParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Logger     *slog.Logger
	Server     *http.Server
	Sweeper    *worker.ExpirySweeper
	Mail       *worker.MailQueue
	Config     *config.Config
}

func registerLifecycle(p lifecycleParams) {
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			p.Logger.Info("starting sweets by bella",
				slog.String("addr", p.Server.Addr),
				slog.Bool("sweep_enabled", p.Config.SweepEnabled),
				slog.Duration("payment_window", p.Config.PaymentWindow),
			)
			p.Mail.Start()
			if p.Config.SweepEnabled {
				// The hook context ends with startup, the sweeper outlives it until Stop.
				p.Sweeper.Start(context.WithoutCancel(ctx))
			}
			go func() {
				if err := p.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					p.Logger.Error("http server terminated", slog.String("error", err.Error()))
					_ = p.Shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx := ctx
			cancel := func() {}
			if _, ok := ctx.Deadline(); !ok {
				shutdownCtx, cancel = context.WithTimeout(ctx, p.Config.ShutdownTimeout)
			}
			defer cancel()

			serverErr := p.Server.Shutdown(shutdownCtx)
			if errors.Is(serverErr, http.ErrServerClosed) {
				serverErr = nil
			}
			p.Sweeper.Stop()
			if err := p.Mail.Stop(shutdownCtx); err != nil {
				p.Logger.Warn("mail queue did not drain before shutdown", slog.String("error", err.Error()))
			}
			if serverErr != nil {
				return serverErr
			}
			p.Logger.Info("sweets by bella stopped")
			return nil
		},
	})
}
