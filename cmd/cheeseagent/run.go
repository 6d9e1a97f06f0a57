package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"CheeseAgent/internal/app"
	"CheeseAgent/internal/config"
	"CheeseAgent/internal/logging"
)

func newRunCommand(configPath *string) *cobra.Command {
	var daemon bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute a discovery run and merge candidates into the upload queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load(*configPath)

			logger, closer, err := logging.New(cfg.Logging.Level, cfg.Logging.Dir)
			if err != nil {
				return err
			}
			defer closer.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			application := app.New(cfg, logger)
			if daemon {
				return application.RunDaemon(ctx)
			}
			return application.Run(ctx)
		},
	}

	cmd.Flags().BoolVar(&daemon, "daemon", false, "Keep running on the configured schedule")
	return cmd
}
