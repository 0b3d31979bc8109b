package main

import (
	"github.com/spf13/cobra"

	"tunesort/internal/daemonrun"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var development bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the sorting daemon in the foreground",
		Long: `Run the sorting daemon in the foreground.

The first cycle starts immediately; later cycles follow every
sorter.interval_seconds until SIGINT or SIGTERM.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return daemonrun.Run(cmd.Context(), cfg, daemonrun.Options{
				LogLevel:    ctx.logLevel(),
				Development: development,
			})
		},
	}
	cmd.Flags().BoolVar(&development, "dev", false, "Include caller information in every log line")
	return cmd
}
