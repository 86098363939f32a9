// Package main provides the campaigner API server.
package main

import (
	"context"
	"os"
	"slices"

	"github.com/dukex/campaigner/pkg/cmd"
	"github.com/dukex/campaigner/pkg/log"
	cli "github.com/urfave/cli/v3"
)

const defaultPort = 9091

func main() {
	command := &cli.Command{
		Name:                  "campaigner-api",
		Usage:                 "Manage campaigns and deploy their flows to n8n",
		EnableShellCompletion: true,
		Flags: append(slices.Clone(cmd.RuntimeFlags()),
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
		),
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"), command.String("log-format"))

			logger := log.WithModule("api")

			logger.InfoContext(ctx, "Initializing campaigner API")

			runtime, err := cmd.NewRuntime(ctx, command, "campaigner-api", logger)
			if err != nil {
				return err
			}

			defer func() {
				if err := runtime.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close runtime", "error", err)
				}
			}()

			api := NewAPI(logger, runtime)

			if err := api.Subscribe(ctx); err != nil {
				return err
			}

			return api.Start(command.Int("port"))
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		panic(err)
	}
}
