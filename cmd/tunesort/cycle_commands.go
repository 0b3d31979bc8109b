package main

import (
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"tunesort/internal/daemon"
	"tunesort/internal/reconcile"
)

func newOnceCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "once",
		Short: "Run a single sorting cycle and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.commandLogger(cfg, "")
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			lock, err := daemon.AcquireLock(daemon.LockPath(cfg))
			if err != nil {
				if errors.Is(err, daemon.ErrAlreadyRunning) {
					return fmt.Errorf("%w; the daemon sorts the inbox on its own schedule", err)
				}
				return err
			}
			defer lock.Unlock() //nolint:errcheck

			runCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			cycle, err := ctx.newCycle(runCtx, cfg, logger)
			if err != nil {
				return err
			}
			report, err := cycle.Run(runCtx, reconcile.Options{})
			if err != nil {
				return err
			}
			printReport(cmd.OutOrStdout(), report)
			return nil
		},
	}
}

func newPlanCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "plan",
		Short: "Ask the oracle and show where files would go without moving them",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.commandLogger(cfg, "warn")
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			cycle, err := ctx.newCycle(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			report, err := cycle.Run(cmd.Context(), reconcile.Options{DryRun: true})
			if err != nil {
				return err
			}
			printReport(cmd.OutOrStdout(), report)
			return nil
		},
	}
}

func newPromptCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "prompt",
		Short: "Print the classification request for the current inbox",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			request, listing, err := reconcile.New(cfg, nil, nil).Request()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(listing.Files) == 0 {
				fmt.Fprintln(out, "Inbox is empty; nothing would be sent.")
				return nil
			}
			fmt.Fprintln(out, request)
			if listing.Deferred > 0 {
				fmt.Fprintf(out, "\n(%d more files deferred to later cycles)\n", listing.Deferred)
			}
			return nil
		},
	}
}
