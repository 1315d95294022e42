package testsupport

import (
	"context"
	"testing"

	"usecasesync/internal/config"
	"usecasesync/internal/ident"
	"usecasesync/internal/logging"
	"usecasesync/internal/registry"
)

// MustOpenStore opens the configured registry.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) registry.Store {
	t.Helper()

	store, err := registry.Open(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("registry.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

// SaveRegistry persists a registry restored from mapping through the
// configured store.
func SaveRegistry(t testing.TB, cfg *config.Config, mapping map[string]ident.ID, next ident.ID, retired ...ident.ID) {
	t.Helper()

	reg, err := registry.Restore(mapping, next, retired, "")
	if err != nil {
		t.Fatalf("registry.Restore: %v", err)
	}
	store := MustOpenStore(t, cfg)
	if err := store.Save(context.Background(), reg); err != nil {
		t.Fatalf("store.Save: %v", err)
	}
}

// LoadRegistry reads the registry back through the configured store.
func LoadRegistry(t testing.TB, cfg *config.Config) *registry.Registry {
	t.Helper()

	store := MustOpenStore(t, cfg)
	reg, _, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("store.Load: %v", err)
	}
	return reg
}
