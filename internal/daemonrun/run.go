// Package daemonrun assembles the long-running tunesort process: logging,
// log retention, the pid file, the oracle backend, and the scheduler.
package daemonrun

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"tunesort/internal/config"
	"tunesort/internal/daemon"
	"tunesort/internal/logging"
	"tunesort/internal/oracle"
	"tunesort/internal/reconcile"
)

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel    string
	Development bool
}

// Run starts the tunesort daemon and blocks until SIGINT/SIGTERM or ctx ends.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	runID := time.Now().UTC().Format("20060102T150405.000Z")
	logPath := filepath.Join(cfg.Paths.LogDir, fmt.Sprintf("tunesort-%s.log", runID))
	level := cfg.Logging.Level
	if strings.TrimSpace(opts.LogLevel) != "" {
		level = opts.LogLevel
	}
	logger, err := logging.New(logging.Options{
		Level:       level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{"stdout", logPath},
		Development: opts.Development,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	if err := ensureCurrentLogPointer(cfg.Paths.LogDir, logPath); err != nil {
		fmt.Fprintf(os.Stderr, "warn: unable to update %s link: %v\n", logging.LogFileName, err)
	}
	logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays,
		logging.RetentionTarget{Dir: cfg.Paths.LogDir, Pattern: "tunesort-*.log", Exclude: []string{logPath}},
	)
	logStartupSnapshot(logger, cfg)

	pidPath := filepath.Join(cfg.Paths.LogDir, "tunesort.pid")
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	backend, err := oracle.New(signalCtx, cfg)
	if err != nil {
		logger.Error("create oracle backend", logging.Error(err))
		return err
	}

	cycle := reconcile.New(cfg, backend, logger)
	d, err := daemon.New(cfg, cycle, logger)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}

	if err := d.Serve(signalCtx); err != nil {
		logging.ErrorWithContext(logger, "daemon start failed", "daemon_start_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "stop the other tunesort instance or remove a stale lock"),
			logging.String(logging.FieldImpact, "the inbox is not being sorted"),
		)
		return err
	}
	logger.Info("tunesort daemon shutting down")
	return nil
}

func ensureCurrentLogPointer(logDir, target string) error {
	if logDir == "" || target == "" {
		return nil
	}
	current := filepath.Join(logDir, logging.LogFileName)
	if err := os.Remove(current); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing log pointer: %w", err)
	}
	if err := os.Symlink(target, current); err == nil {
		return nil
	}
	if err := os.Link(target, current); err != nil {
		return fmt.Errorf("link log pointer: %w", err)
	}
	return nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}

func logStartupSnapshot(logger *slog.Logger, cfg *config.Config) {
	if logger == nil || cfg == nil {
		return
	}
	logger.Info("startup snapshot",
		logging.String(logging.FieldEventType, "startup_snapshot"),
		logging.String("root", cfg.Paths.RootFolder),
		logging.String("inbox", cfg.InboxPath()),
		logging.String("provider", cfg.Oracle.Provider),
		logging.String("model", cfg.Oracle.Model),
		logging.Bool("api_key_present", strings.TrimSpace(cfg.Oracle.APIKey) != ""),
		logging.Duration("interval", cfg.Interval()),
		logging.Int("batch_size", cfg.Sorter.BatchSize),
		logging.Bool("allow_folder_creation", cfg.Sorter.AllowFolderCreation),
		logging.String("parse_mode", cfg.Sorter.ParseMode),
		logging.Bool("normalize_tags", cfg.Sorter.NormalizeTags),
	)
}
