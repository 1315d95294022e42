package registry

import (
	"errors"
	"slices"
	"testing"

	"usecasesync/internal/ident"
)

func TestAllocateIsMonotonic(t *testing.T) {
	reg := New()
	titles := []string{"Alpha", "Beta", "Gamma"}
	for i, title := range titles {
		id, err := reg.Allocate(title)
		if err != nil {
			t.Fatalf("allocate %q: %v", title, err)
		}
		if want := ident.ID(i + 1); id != want {
			t.Fatalf("allocate %q = %s, want %s", title, id, want)
		}
	}
	if got := reg.NextID(); got != 4 {
		t.Fatalf("NextID = %s, want 4", got)
	}
	if got := reg.TotalIDs(); got != 3 {
		t.Fatalf("TotalIDs = %d, want 3", got)
	}
}

func TestAllocateRejectsBoundAndEmptyTitles(t *testing.T) {
	reg := New()
	if _, err := reg.Allocate("  "); !errors.Is(err, ErrEmptyTitle) {
		t.Fatalf("expected ErrEmptyTitle, got %v", err)
	}
	if _, err := reg.Allocate("Alpha"); err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if _, err := reg.Allocate(" Alpha "); !errors.Is(err, ErrTitleConflict) {
		t.Fatalf("expected ErrTitleConflict, got %v", err)
	}
}

func TestAllocateSkipsRetiredAndBoundIDs(t *testing.T) {
	// A hand-edited file with a stale counter must not cause reuse.
	reg, err := Restore(map[string]ident.ID{"Alpha": 1, "Beta": 2}, 1, []ident.ID{3}, "")
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if got := reg.NextID(); got != 4 {
		t.Fatalf("NextID after restore = %s, want 4", got)
	}
	id, err := reg.Allocate("Gamma")
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if id != 4 {
		t.Fatalf("allocate = %s, want 4", id)
	}
}

func TestBindAliasesExistingID(t *testing.T) {
	reg := New()
	id, _ := reg.Allocate("Refactor function")
	if err := reg.Bind("Refactor functoin", id); err != nil {
		t.Fatalf("bind alias: %v", err)
	}
	if err := reg.Bind("Refactor functoin", id); err != nil {
		t.Fatalf("rebinding the same pair should be a no-op: %v", err)
	}
	if got, ok := reg.ResolveExact("Refactor functoin"); !ok || got != id {
		t.Fatalf("ResolveExact alias = %s,%v", got, ok)
	}
	if err := reg.Bind("Refactor functoin", id+1); !errors.Is(err, ErrTitleConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if got := reg.TitlesFor(id); !slices.Equal(got, []string{"Refactor function", "Refactor functoin"}) {
		t.Fatalf("TitlesFor = %v", got)
	}
	if reg.Len() != 2 || reg.KnownIDs().Len() != 1 {
		t.Fatalf("Len=%d known=%d", reg.Len(), reg.KnownIDs().Len())
	}
}

func TestBindRaisesCounter(t *testing.T) {
	reg := New()
	if err := reg.Bind("Imported", 41); err != nil {
		t.Fatalf("bind: %v", err)
	}
	if got := reg.NextID(); got != 42 {
		t.Fatalf("NextID = %s, want 42", got)
	}
	if err := reg.Bind("Zero", 0); !errors.Is(err, ident.ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

func TestRetireIsPermanentAndReportsNewOnly(t *testing.T) {
	reg := New()
	for _, title := range []string{"A", "B", "C"} {
		if _, err := reg.Allocate(title); err != nil {
			t.Fatal(err)
		}
	}
	active := ident.NewSet(1)
	gone := ComputeRetired(reg.KnownIDs(), active)
	if got := reg.Retire(gone); !slices.Equal(got, []ident.ID{2, 3}) {
		t.Fatalf("first retire = %v", got)
	}
	if got := reg.Retire(ident.NewSet(3)); len(got) != 0 {
		t.Fatalf("second retire should add nothing, got %v", got)
	}
	if !reg.IsRetired(2) || reg.IsRetired(1) {
		t.Fatal("unexpected retired state")
	}
	// Retired titles still resolve exactly.
	if id, ok := reg.ResolveExact("B"); !ok || id != 2 {
		t.Fatalf("ResolveExact retired = %s,%v", id, ok)
	}
	id, err := reg.Allocate("D")
	if err != nil {
		t.Fatal(err)
	}
	if id != 4 {
		t.Fatalf("allocate after retire = %s, want 4", id)
	}
}

func TestRestoreRejectsInvalidIDs(t *testing.T) {
	if _, err := Restore(map[string]ident.ID{"A": 0}, 1, nil, ""); !errors.Is(err, ident.ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

func TestRestoreTrimsTitlesAndKeepsNotes(t *testing.T) {
	reg, err := Restore(map[string]ident.ID{"  A  ": 5, "": 9}, 0, nil, "hands off")
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if id, ok := reg.ResolveExact("A"); !ok || id != 5 {
		t.Fatalf("ResolveExact = %s,%v", id, ok)
	}
	if reg.Notes() != "hands off" {
		t.Fatalf("notes = %q", reg.Notes())
	}
	if reg.NextID() != 6 {
		t.Fatalf("NextID = %s, want 6", reg.NextID())
	}
}

func TestCloneIsIndependent(t *testing.T) {
	reg := New()
	_, _ = reg.Allocate("A")
	clone := reg.Clone()
	_, _ = clone.Allocate("B")
	clone.Retire(ident.NewSet(1))
	if reg.Len() != 1 || reg.NextID() != 2 || reg.IsRetired(1) {
		t.Fatalf("original mutated through clone: len=%d next=%s", reg.Len(), reg.NextID())
	}
}

func TestEntriesOrderedByID(t *testing.T) {
	reg := New()
	_ = reg.Bind("zeta", 10)
	_ = reg.Bind("alpha", 2)
	_ = reg.Bind("beta", 2)
	got := reg.Entries()
	want := []Binding{{"alpha", 2}, {"beta", 2}, {"zeta", 10}}
	if !slices.Equal(got, want) {
		t.Fatalf("Entries = %v, want %v", got, want)
	}
}

func TestSeed(t *testing.T) {
	tests := []struct {
		name     string
		bindings []Binding
		retired  []ident.ID
		total    uint64
		wantNext ident.ID
		wantLen  int
	}{
		{
			name:     "counter from max id",
			bindings: []Binding{{"A", 1}, {"B", 4}},
			wantNext: 5,
			wantLen:  2,
		},
		{
			name:     "counter from total ids",
			bindings: []Binding{{"A", 1}},
			total:    9,
			wantNext: 10,
			wantLen:  1,
		},
		{
			name:     "counter from retired",
			bindings: []Binding{{"A", 1}},
			retired:  []ident.ID{12},
			wantNext: 13,
			wantLen:  1,
		},
		{
			name:     "duplicate title keeps first and reserves second",
			bindings: []Binding{{"A", 3}, {"A", 7}, {"", 8}},
			wantNext: 9,
			wantLen:  1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg, err := Seed(tt.bindings, tt.retired, tt.total)
			if err != nil {
				t.Fatalf("seed: %v", err)
			}
			if reg.NextID() != tt.wantNext {
				t.Fatalf("NextID = %s, want %s", reg.NextID(), tt.wantNext)
			}
			if reg.Len() != tt.wantLen {
				t.Fatalf("Len = %d, want %d", reg.Len(), tt.wantLen)
			}
		})
	}
}

func TestSeedReservesConflictingID(t *testing.T) {
	reg, err := Seed([]Binding{{"A", 3}, {"A", 7}}, nil, 0)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if !reg.KnownIDs().Has(7) {
		t.Fatal("conflicting id should stay known")
	}
	if id, _ := reg.ResolveExact("A"); id != 3 {
		t.Fatalf("first binding should win, got %s", id)
	}
}
