package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar"

	"tunesort/internal/services"
)

// Validate ensures the configuration is usable. Every failure wraps
// services.ErrConfiguration so callers can treat it as fatal at startup.
func (c *Config) Validate() error {
	for _, check := range []func() error{
		c.validatePaths,
		c.validateOracle,
		c.validateSorter,
	} {
		if err := check(); err != nil {
			return services.Wrap(services.ErrConfiguration, "config", "validate", "", err)
		}
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.RootFolder) == "" {
		return errors.New("paths.root_folder is required. Set ROOT_FOLDER or edit the config file (create with 'tunesort config init')")
	}
	if err := ensureDirectory("paths.root_folder", c.Paths.RootFolder); err != nil {
		return err
	}
	if !c.InboxIsRoot() {
		if err := ensureDirectory("paths.inbox_dir", c.Paths.InboxDir); err != nil {
			return err
		}
	}
	return nil
}

func ensureDirectory(key, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%s %q does not exist", key, path)
		}
		return fmt.Errorf("%s: stat %q: %w", key, path, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s %q is not a directory", key, path)
	}
	return nil
}

func (c *Config) validateOracle() error {
	switch c.Oracle.Provider {
	case ProviderOpenAI, ProviderGemini:
	default:
		return fmt.Errorf("oracle.provider %q is not supported (use %q or %q)", c.Oracle.Provider, ProviderOpenAI, ProviderGemini)
	}
	if c.Oracle.APIKey == "" {
		return errors.New("oracle.api_key is required. Set API_KEY or edit the config file")
	}
	if c.Oracle.Model == "" {
		return errors.New("oracle.model must be set")
	}
	return nil
}

func (c *Config) validateSorter() error {
	if c.Sorter.IntervalSeconds <= 0 {
		return errors.New("sorter.interval_seconds must be positive")
	}
	if c.Sorter.BatchSize <= 0 {
		return errors.New("sorter.batch_size must be positive")
	}
	switch c.Sorter.ParseMode {
	case ParseModeStrict, ParseModeLenient:
	default:
		return fmt.Errorf("sorter.parse_mode %q is not supported (use %q or %q)", c.Sorter.ParseMode, ParseModeStrict, ParseModeLenient)
	}
	if c.Sorter.FilePattern != "" {
		if _, err := doublestar.Match(c.Sorter.FilePattern, "probe"); err != nil {
			return fmt.Errorf("sorter.file_pattern %q: %w", c.Sorter.FilePattern, err)
		}
	}
	return nil
}
