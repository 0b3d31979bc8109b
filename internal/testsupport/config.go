package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"tunesort/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The music root is <tmp>/music and doubles as the inbox unless WithInbox is
// used.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Oracle.APIKey = "test"
	cfgVal.Oracle.Model = "test-model"
	cfgVal.Paths.RootFolder = filepath.Join(base, "music")
	cfgVal.Paths.InboxDir = cfgVal.Paths.RootFolder
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	for _, dir := range []string{builder.cfg.Paths.RootFolder, builder.cfg.Paths.InboxDir, builder.cfg.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}
	return builder.cfg
}

// WithInbox places the inbox in a subdirectory of the music root.
func WithInbox(name string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.InboxDir = filepath.Join(b.cfg.Paths.RootFolder, name)
	}
}

// WithFolders creates destination folders below the music root.
func WithFolders(names ...string) ConfigOption {
	return func(b *configBuilder) {
		for _, name := range names {
			dir := filepath.Join(b.cfg.Paths.RootFolder, name)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				b.t.Fatalf("mkdir %s: %v", dir, err)
			}
		}
	}
}

// WithFolderCreation toggles sorter.allow_folder_creation.
func WithFolderCreation(enabled bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Sorter.AllowFolderCreation = enabled
	}
}

// WithParseMode sets sorter.parse_mode.
func WithParseMode(mode string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Sorter.ParseMode = mode
	}
}

// WithBatchSize sets sorter.batch_size.
func WithBatchSize(size int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Sorter.BatchSize = size
	}
}

// WithNormalizeTags sets sorter.normalize_tags.
func WithNormalizeTags(enabled bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Sorter.NormalizeTags = enabled
	}
}
