package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeRegistry()
	c.normalizeCatalog()
	c.normalizeRecords()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	fields := []struct {
		name  string
		value *string
	}{
		{"paths.source", &c.Paths.Source},
		{"paths.catalog", &c.Paths.Catalog},
		{"paths.registry", &c.Paths.Registry},
		{"paths.state_db", &c.Paths.StateDB},
		{"paths.log_dir", &c.Paths.LogDir},
	}
	for _, f := range fields {
		trimmed := strings.TrimSpace(*f.value)
		expanded, err := expandPath(trimmed)
		if err != nil {
			return fmt.Errorf("%s: %w", f.name, err)
		}
		*f.value = expanded
	}
	return nil
}

func (c *Config) normalizeRegistry() {
	c.Registry.Backend = strings.ToLower(strings.TrimSpace(c.Registry.Backend))
	if c.Registry.Backend == "" {
		c.Registry.Backend = defaultBackend
	}
	c.Registry.Mode = strings.ToLower(strings.TrimSpace(c.Registry.Mode))
	if c.Registry.Mode == "" {
		c.Registry.Mode = defaultMode
	}
}

func (c *Config) normalizeCatalog() {
	c.Catalog.Version = strings.TrimSpace(c.Catalog.Version)
	if c.Catalog.Version == "" {
		c.Catalog.Version = defaultCatalogVersion
	}
	c.Catalog.SourceLabel = strings.TrimSpace(c.Catalog.SourceLabel)
	if c.Catalog.SourceLabel == "" {
		c.Catalog.SourceLabel = defaultSourceLabel
	}
}

func (c *Config) normalizeRecords() {
	r := &c.Records
	r.DefaultAuthor = strings.TrimSpace(r.DefaultAuthor)
	if r.DefaultAuthor == "" {
		r.DefaultAuthor = defaultAuthor
	}
	r.DefaultDate = strings.TrimSpace(r.DefaultDate)
	if r.DefaultDate == "" {
		r.DefaultDate = defaultDate
	}
	r.DefaultDifficulty = strings.TrimSpace(r.DefaultDifficulty)
	if r.DefaultDifficulty == "" {
		r.DefaultDifficulty = defaultDifficulty
	}
	r.DefaultCategory = strings.TrimSpace(r.DefaultCategory)
	if r.DefaultCategory == "" {
		r.DefaultCategory = defaultCategory
	}
	r.DefaultRoles = compactStrings(r.DefaultRoles)
	if len(r.DefaultRoles) == 0 {
		r.DefaultRoles = []string{defaultRole}
	}
	r.Icons = compactStrings(r.Icons)
	if len(r.Icons) == 0 {
		r.Icons = defaultIcons()
	}
	if r.IconMap == nil {
		r.IconMap = map[string]string{}
	}
	if r.TaskCategories == nil {
		r.TaskCategories = map[string]string{}
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func compactStrings(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
