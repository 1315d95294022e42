package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Registry backends.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Identity strategies.
const (
	ModeRegistry = "registry"
	ModeSnapshot = "snapshot"
)

// Paths contains file locations used by a sync run.
type Paths struct {
	Source   string `toml:"source"`
	Catalog  string `toml:"catalog"`
	Registry string `toml:"registry"`
	StateDB  string `toml:"state_db"`
	LogDir   string `toml:"log_dir"`
	EnvFile  string `toml:"env_file"`
}

// Source contains options for reading the tabular export.
type Source struct {
	// Sheet selects an XLSX worksheet by name. Empty means the first sheet.
	Sheet string `toml:"sheet"`
}

// Registry selects how identifiers are persisted and allocated.
type Registry struct {
	Backend string `toml:"backend"`
	Mode    string `toml:"mode"`
	// SeedFromCatalog builds the first registry from the existing catalog
	// instead of numbering from 1.
	SeedFromCatalog bool `toml:"seed_from_catalog"`
}

// Catalog contains output document settings.
type Catalog struct {
	Backup      bool   `toml:"backup"`
	Version     string `toml:"version"`
	SourceLabel string `toml:"source_label"`
}

// Records contains the defaults and lookup tables applied while normalizing
// source rows.
type Records struct {
	DefaultAuthor     string            `toml:"default_author"`
	DefaultDate       string            `toml:"default_date"`
	DefaultDifficulty string            `toml:"default_difficulty"`
	DefaultCategory   string            `toml:"default_category"`
	DefaultRoles      []string          `toml:"default_roles"`
	Icons             []string          `toml:"icons"`
	IconMap           map[string]string `toml:"icon_map"`
	TaskCategories    map[string]string `toml:"task_categories"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for usecasesync.
type Config struct {
	Paths    Paths    `toml:"paths"`
	Source   Source   `toml:"source"`
	Registry Registry `toml:"registry"`
	Catalog  Catalog  `toml:"catalog"`
	Records  Records  `toml:"records"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the user configuration file.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. An explicit path
// that does not exist is not an error; defaults apply and exists is false.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.loadEnvFile(); err != nil {
		return nil, "", false, err
	}
	cfg.applyEnvOverrides()

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		return statConfig(expanded)
	}

	projectPath, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", false, err
	}
	if resolved, ok, err := statConfig(projectPath); err != nil || ok {
		return resolved, ok, err
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	return statConfig(defaultPath)
}

func statConfig(path string) (string, bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return path, false, nil
		}
		return "", false, fmt.Errorf("stat config: %w", err)
	}
	if info.IsDir() {
		return "", false, fmt.Errorf("config path %s is a directory", path)
	}
	return path, true, nil
}

// LockTarget returns the file whose lock serializes runs: the registry store
// in registry mode, the catalog in snapshot mode.
func (c *Config) LockTarget() string {
	if c.Registry.Mode == ModeSnapshot {
		return c.Paths.Catalog
	}
	if c.Registry.Backend == BackendSQLite {
		return c.Paths.StateDB
	}
	return c.Paths.Registry
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
