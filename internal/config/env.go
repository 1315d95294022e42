package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// loadEnvFile exports variables from paths.env_file into the process
// environment. Variables already set win, and a missing file is ignored.
func (c *Config) loadEnvFile() error {
	path := strings.TrimSpace(c.Paths.EnvFile)
	if path == "" {
		return nil
	}
	expanded, err := expandPath(path)
	if err != nil {
		return fmt.Errorf("paths.env_file: %w", err)
	}
	if err := godotenv.Load(expanded); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", expanded, err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	overrides := []struct {
		key    string
		target *string
	}{
		{envSource, &c.Paths.Source},
		{envCatalog, &c.Paths.Catalog},
		{envRegistry, &c.Paths.Registry},
		{envStateDB, &c.Paths.StateDB},
		{envMode, &c.Registry.Mode},
		{envLogLevel, &c.Logging.Level},
	}
	for _, o := range overrides {
		if value, ok := os.LookupEnv(o.key); ok && strings.TrimSpace(value) != "" {
			*o.target = strings.TrimSpace(value)
		}
	}
}
