package registry

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"usecasesync/internal/config"
)

// Store loads and persists a Registry.
type Store interface {
	// Load returns the persisted registry. A missing store is the first-run
	// state: a fresh registry with exists=false and no error.
	Load(ctx context.Context) (reg *Registry, exists bool, err error)
	// Save replaces the persisted registry with reg.
	Save(ctx context.Context, reg *Registry) error
	// Path identifies the backing file for logs and messages.
	Path() string
	Close() error
}

// Open returns the store selected by the registry backend setting. The JSON
// backend lives at paths.registry; the SQLite backend at paths.state_db.
func Open(cfg *config.Config, logger *slog.Logger) (Store, error) {
	if cfg == nil {
		return nil, fmt.Errorf("registry store requires config")
	}
	switch cfg.Registry.Backend {
	case config.BackendSQLite:
		path := strings.TrimSpace(cfg.Paths.StateDB)
		if path == "" {
			return nil, fmt.Errorf("paths.state_db must be set for the sqlite backend")
		}
		return OpenSQLiteStore(path, logger)
	case config.BackendJSON, "":
		path := strings.TrimSpace(cfg.Paths.Registry)
		if path == "" {
			return nil, fmt.Errorf("paths.registry must be set")
		}
		return NewJSONStore(path, logger), nil
	default:
		return nil, fmt.Errorf("registry backend: unsupported value %q", cfg.Registry.Backend)
	}
}
