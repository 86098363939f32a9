// Package main provides the campaigner scheduler, which starts and completes
// campaigns on their dates.
package main

import (
	"context"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/dukex/campaigner/pkg/cmd"
	"github.com/dukex/campaigner/pkg/log"
	cli "github.com/urfave/cli/v3"
)

func main() {
	command := &cli.Command{
		Name:                  "campaigner-scheduler",
		Usage:                 "Start and complete campaigns when their dates pass",
		EnableShellCompletion: true,
		Flags: append(slices.Clone(cmd.RuntimeFlags()),
			&cli.StringFlag{
				Name:    "spec",
				Usage:   "Cron spec of the scheduler tick",
				Value:   DefaultSpec,
				Sources: cli.EnvVars("SCHEDULER_SPEC"),
			},
		),
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"), command.String("log-format"))

			logger := log.WithModule("campaigner-scheduler")

			logger.InfoContext(ctx, "Initializing campaigner scheduler")

			runtime, err := cmd.NewRuntime(ctx, command, "campaigner-scheduler", logger)
			if err != nil {
				return err
			}

			defer func() {
				if err := runtime.Close(context.Background()); err != nil {
					logger.Error("Failed to close runtime", "error", err)
				}
			}()

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			scheduler := NewScheduler(runtime.Persistence, runtime.Lifecycle(), command.String("spec"), logger)

			return scheduler.Start(ctx)
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		panic(err)
	}
}
