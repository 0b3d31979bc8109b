package main

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"tunesort/internal/config"
	"tunesort/internal/logging"
	"tunesort/internal/oracle"
	"tunesort/internal/reconcile"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
	})
	return c.config, c.configErr
}

func (c *commandContext) logLevel() string {
	if c.logLevelFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.logLevelFlag)
}

// commandLogger builds the logger for one-shot commands. Logs go to stderr and
// the log directory so stdout stays clean for tables and prompts.
func (c *commandContext) commandLogger(cfg *config.Config, defaultLevel string) (*slog.Logger, error) {
	level := c.logLevel()
	if level == "" {
		level = defaultLevel
	}
	if level == "" {
		level = cfg.Logging.Level
	}
	paths := []string{"stderr"}
	if cfg.Paths.LogDir != "" {
		paths = append(paths, logFilePath(cfg))
	}
	return logging.New(logging.Options{
		Level:       level,
		Format:      cfg.Logging.Format,
		OutputPaths: paths,
	})
}

// newCycle wires a reconciliation cycle against the configured oracle.
func (c *commandContext) newCycle(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*reconcile.Cycle, error) {
	backend, err := oracle.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return reconcile.New(cfg, backend, logger), nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

func logFilePath(cfg *config.Config) string {
	return filepath.Join(cfg.Paths.LogDir, logging.LogFileName)
}
