package registry

import (
	"context"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"usecasesync/internal/ident"
	"usecasesync/internal/logging"
)

func openTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := OpenSQLiteStore(filepath.Join(t.TempDir(), "state", "usecasesync.db"), logging.NewNop())
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStoreFreshThenRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := openTestSQLite(t)

	reg, exists, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load fresh: %v", err)
	}
	if exists || reg.NextID() != 1 {
		t.Fatalf("expected fresh registry, exists=%v next=%s", exists, reg.NextID())
	}

	_, _ = reg.Allocate("Alpha")
	id, _ := reg.Allocate("Beta")
	_ = reg.Bind("Betta", id)
	reg.Retire(ident.NewSet(1))
	if err := store.Save(ctx, reg); err != nil {
		t.Fatalf("save: %v", err)
	}

	// Save twice to confirm replacement rather than accumulation.
	if err := store.Save(ctx, reg); err != nil {
		t.Fatalf("second save: %v", err)
	}

	loaded, exists, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !exists {
		t.Fatal("expected exists=true")
	}
	if !slices.Equal(loaded.Entries(), reg.Entries()) {
		t.Fatalf("entries = %v, want %v", loaded.Entries(), reg.Entries())
	}
	if loaded.NextID() != reg.NextID() || !slices.Equal(loaded.Retired(), []ident.ID{1}) {
		t.Fatalf("next=%s retired=%v", loaded.NextID(), loaded.Retired())
	}
	if loaded.Notes() != DefaultNotes {
		t.Fatalf("notes = %q", loaded.Notes())
	}
}

func TestSQLiteStoreMigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "usecasesync.db")
	for i := 0; i < 2; i++ {
		store, err := OpenSQLiteStore(path, logging.NewNop())
		if err != nil {
			t.Fatalf("open #%d: %v", i, err)
		}
		_ = store.Close()
	}
}

func TestSQLiteStoreRunHistory(t *testing.T) {
	ctx := context.Background()
	store := openTestSQLite(t)
	var _ HistoryRecorder = store

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"run-a", "run-b", "run-c"} {
		run := Run{
			ID:         id,
			StartedAt:  base.Add(time.Duration(i) * time.Hour),
			FinishedAt: base.Add(time.Duration(i)*time.Hour + time.Second),
			Mode:       "registry",
			Source:     "export.csv",
			Records:    10 + i,
			Allocated:  i,
			DryRun:     i == 1,
		}
		if err := store.RecordRun(ctx, run); err != nil {
			t.Fatalf("record %s: %v", id, err)
		}
	}

	runs, err := store.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != "run-c" || runs[1].ID != "run-b" {
		t.Fatalf("unexpected order: %s, %s", runs[0].ID, runs[1].ID)
	}
	if !runs[1].DryRun || runs[0].Records != 12 {
		t.Fatalf("fields not preserved: %+v", runs)
	}
	if runs[0].Duration() != time.Second {
		t.Fatalf("duration = %s", runs[0].Duration())
	}

	all, err := store.ListRuns(ctx, 0)
	if err != nil || len(all) != 3 {
		t.Fatalf("list all: %d, %v", len(all), err)
	}
	if err := store.RecordRun(ctx, Run{}); err == nil {
		t.Fatal("expected error for run without id")
	}
}
