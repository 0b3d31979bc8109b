package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"tunesort/internal/oracle"
	"tunesort/internal/preflight"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var skipOracle bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify library paths and oracle access",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			var checker oracle.HealthChecker
			if !skipOracle {
				backend, err := oracle.New(cmd.Context(), cfg)
				if err != nil {
					return err
				}
				checker = backend
			}
			results := preflight.RunAll(cmd.Context(), cfg, checker)

			out := cmd.OutOrStdout()
			p := newPalette(out)
			for _, line := range renderSectionHeader(p, "Preflight") {
				fmt.Fprintln(out, line)
			}
			for _, r := range results {
				kind := statusOK
				if !r.Passed {
					kind = statusError
				}
				fmt.Fprintln(out, renderStatusLine(p, r.Name, kind, r.Detail))
			}
			fmt.Fprintln(out, renderStatusLine(p, "Folder creation", statusInfo, yesNo(cfg.Sorter.AllowFolderCreation)))
			fmt.Fprintln(out, renderStatusLine(p, "Tag normalization", statusInfo, yesNo(cfg.Sorter.NormalizeTags)))

			if !preflight.AllPassed(results) {
				return errors.New("preflight checks failed")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&skipOracle, "offline", false, "Skip the oracle health check")
	return cmd
}
