package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeOracle()
	c.normalizeSorter()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if value, ok := os.LookupEnv("ROOT_FOLDER"); ok && strings.TrimSpace(value) != "" {
		c.Paths.RootFolder = value
	}
	c.Paths.RootFolder = strings.TrimSpace(c.Paths.RootFolder)
	if c.Paths.RootFolder, err = expandPath(c.Paths.RootFolder); err != nil {
		return fmt.Errorf("paths.root_folder: %w", err)
	}

	inbox := strings.TrimSpace(c.Paths.InboxDir)
	if value, ok := os.LookupEnv("INBOX_DIR"); ok && strings.TrimSpace(value) != "" {
		inbox = strings.TrimSpace(value)
	}
	switch {
	case inbox == "":
		c.Paths.InboxDir = c.Paths.RootFolder
	case strings.HasPrefix(inbox, "~") || filepath.IsAbs(inbox):
		if c.Paths.InboxDir, err = expandPath(inbox); err != nil {
			return fmt.Errorf("paths.inbox_dir: %w", err)
		}
	default:
		c.Paths.InboxDir = filepath.Join(c.Paths.RootFolder, inbox)
	}

	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeOracle() {
	c.Oracle.Provider = strings.ToLower(strings.TrimSpace(c.Oracle.Provider))
	if c.Oracle.Provider == "" {
		c.Oracle.Provider = defaultOracleProvider
	}
	c.Oracle.APIKey = strings.TrimSpace(c.Oracle.APIKey)
	if value, ok := os.LookupEnv("API_KEY"); ok && strings.TrimSpace(value) != "" {
		c.Oracle.APIKey = strings.TrimSpace(value)
	}
	if c.Oracle.APIKey == "" {
		for _, key := range c.apiKeyEnvNames() {
			if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
				c.Oracle.APIKey = strings.TrimSpace(value)
				break
			}
		}
	}
	c.Oracle.BaseURL = strings.TrimSpace(c.Oracle.BaseURL)
	if c.Oracle.BaseURL == "" && c.Oracle.Provider == ProviderOpenAI {
		c.Oracle.BaseURL = defaultOpenAIBaseURL
	}
	c.Oracle.Model = strings.TrimSpace(c.Oracle.Model)
	if c.Oracle.Model == "" {
		c.Oracle.Model = defaultModel(c.Oracle.Provider)
	}
	c.Oracle.Referer = strings.TrimSpace(c.Oracle.Referer)
	c.Oracle.Title = strings.TrimSpace(c.Oracle.Title)
	if c.Oracle.TimeoutSeconds <= 0 {
		c.Oracle.TimeoutSeconds = defaultOracleTimeoutSeconds
	}
}

// apiKeyEnvNames lists the provider-specific fallbacks consulted in order when
// neither API_KEY nor the config file supplies a key.
func (c *Config) apiKeyEnvNames() []string {
	if c.Oracle.Provider == ProviderGemini {
		return []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"}
	}
	return []string{"OPENAI_API_KEY", "OPENROUTER_API_KEY"}
}

func defaultModel(provider string) string {
	if provider == ProviderGemini {
		return defaultGeminiModel
	}
	return defaultOpenAIModel
}

func (c *Config) normalizeSorter() {
	if value, ok := os.LookupEnv("ALLOW_FOLDER_CREATION"); ok {
		if parsed, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			c.Sorter.AllowFolderCreation = parsed
		}
	}
	c.Sorter.FilePattern = strings.TrimSpace(c.Sorter.FilePattern)
	c.Sorter.ParseMode = strings.ToLower(strings.TrimSpace(c.Sorter.ParseMode))
	if c.Sorter.ParseMode == "" {
		c.Sorter.ParseMode = defaultParseMode
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
