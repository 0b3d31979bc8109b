package main

import (
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"tunesort/internal/daemon"
	"tunesort/internal/tags"
)

func newNormalizeCommand(ctx *commandContext) *cobra.Command {
	var showAll bool

	cmd := &cobra.Command{
		Use:   "normalize",
		Short: "Rewrite MP3 tags and names from their library folder",
		Long: `Rewrite the ID3 tags of every MP3 directly inside a library folder.

Artist and album become the folder name, the title is taken from the file
name after "Artist - ", and the file is renamed to "<Artist> - <Title>.mp3".
Files that already match are left untouched.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.commandLogger(cfg, "warn")
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			lock, err := daemon.AcquireLock(daemon.LockPath(cfg))
			if err != nil {
				return err
			}
			defer lock.Unlock() //nolint:errcheck

			runCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			var exclude []string
			if !cfg.InboxIsRoot() {
				exclude = append(exclude, cfg.InboxPath())
			}
			results, err := tags.New(logger).NormalizeTree(runCtx, cfg.Paths.RootFolder, exclude...)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			p := newPalette(out)
			var rows [][]string
			changed, failed := 0, 0
			for _, r := range results {
				var status string
				switch {
				case r.Err != nil:
					failed++
					status = p.paint(statusError, "failed: "+r.Err.Error())
				case r.Renamed:
					changed++
					status = p.paint(statusOK, "retagged, renamed")
				case r.Retagged:
					changed++
					status = p.paint(statusOK, "retagged")
				default:
					if !showAll {
						continue
					}
					status = "unchanged"
				}
				rows = append(rows, []string{relativeToRoot(cfg.Paths.RootFolder, r.Target), r.Artist, r.Title, status})
			}
			if len(rows) > 0 {
				fmt.Fprintln(out, renderTable([]string{"File", "Artist", "Title", "Result"}, rows, nil))
			}
			fmt.Fprintf(out, "%d files checked, %d changed, %d failed\n", len(results), changed, failed)
			return nil
		},
	}
	cmd.Flags().BoolVar(&showAll, "all", false, "List unchanged files as well")
	return cmd
}

func relativeToRoot(root, path string) string {
	if rel, err := filepath.Rel(root, path); err == nil {
		return rel
	}
	return path
}
