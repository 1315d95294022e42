package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Validate ensures the configuration is usable. The source path is not
// required here; commands that read a source check it themselves.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateRegistry(); err != nil {
		return err
	}
	if err := c.validateRecords(); err != nil {
		return err
	}
	return c.validateLogging()
}

// RequireSource reports a missing source path.
func (c *Config) RequireSource() error {
	if strings.TrimSpace(c.Paths.Source) == "" {
		return fmt.Errorf("paths.source is required. Pass --source, set %s, or edit the config file", envSource)
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.Catalog == "" {
		return errors.New("paths.catalog must be set")
	}
	if c.Registry.Backend == BackendJSON && c.Paths.Registry == "" {
		return errors.New("paths.registry must be set")
	}
	if c.Registry.Backend == BackendSQLite && c.Paths.StateDB == "" {
		return errors.New("paths.state_db must be set when registry.backend is sqlite")
	}
	if c.Paths.Source != "" && c.Paths.Source == c.Paths.Catalog {
		return errors.New("paths.source and paths.catalog must differ")
	}
	if c.Paths.Registry != "" && c.Paths.Registry == c.Paths.Catalog {
		return errors.New("paths.registry and paths.catalog must differ")
	}
	return nil
}

func (c *Config) validateRegistry() error {
	switch c.Registry.Backend {
	case BackendJSON, BackendSQLite:
	default:
		return fmt.Errorf("registry.backend must be %q or %q, got %q", BackendJSON, BackendSQLite, c.Registry.Backend)
	}
	switch c.Registry.Mode {
	case ModeRegistry, ModeSnapshot:
	default:
		return fmt.Errorf("registry.mode must be %q or %q, got %q", ModeRegistry, ModeSnapshot, c.Registry.Mode)
	}
	return nil
}

func (c *Config) validateRecords() error {
	if _, err := time.Parse(dateLayout, c.Records.DefaultDate); err != nil {
		return fmt.Errorf("records.default_date must be YYYY-MM-DD: %w", err)
	}
	for category, icon := range c.Records.IconMap {
		if strings.TrimSpace(icon) == "" {
			return fmt.Errorf("records.icon_map: empty icon for %q", category)
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level: unknown level %q", c.Logging.Level)
	}
	return nil
}
