// Command expiry-sweeper runs the expiry sweep as a scheduled AWS Lambda.
package main

import (
	"context"
	"fmt"
	"os"

	awslambda "github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/fx"

	"github.com/polkiloo/sweetsbybella/internal/di"
	"github.com/polkiloo/sweetsbybella/internal/logger"
	"github.com/polkiloo/sweetsbybella/internal/server/lambda"
)

func main() {
	ctx := context.Background()

	var handler *lambda.SweepHandler
	app := fx.New(
		fx.Provide(func() context.Context { return ctx }),
		fx.WithLogger(logger.NewFxEventLogger),
		di.Lambda(),
		fx.Populate(&handler),
	)
	if err := app.Start(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "failed to start sweeper: %v\n", err)
		os.Exit(1)
	}

	awslambda.StartWithOptions(handler.Handle, awslambda.WithEnableSIGTERM(func() {
		_ = app.Stop(context.Background())
	}))
}
