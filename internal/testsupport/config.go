package testsupport

import (
	"path/filepath"
	"testing"

	"usecasesync/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp paths per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.Source = filepath.Join(base, "export.csv")
	cfgVal.Paths.Catalog = filepath.Join(base, "src", "data", "useCases.json")
	cfgVal.Paths.Registry = filepath.Join(base, "src", "data", "id_mapping.json")
	cfgVal.Paths.StateDB = filepath.Join(base, "state", "state.db")
	cfgVal.Paths.LogDir = ""
	cfgVal.Paths.EnvFile = ""
	cfgVal.Catalog.Backup = false

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithMode sets the identity strategy.
func WithMode(mode string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Registry.Mode = mode
	}
}

// WithBackend sets the registry backend.
func WithBackend(backend string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Registry.Backend = backend
	}
}

// WithSourceName points the source at a file of the given name in the base
// directory, so callers can switch to .xlsx fixtures.
func WithSourceName(name string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.Source = filepath.Join(b.baseDir, name)
	}
}

// WithBackup enables catalog backups.
func WithBackup() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Catalog.Backup = true
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.Source)
}
