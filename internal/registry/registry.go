package registry

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"usecasesync/internal/ident"
)

// DefaultNotes is stored alongside new registries as a warning to editors.
const DefaultNotes = "This file maintains stable IDs for use cases. DO NOT edit manually unless necessary."

var (
	// ErrEmptyTitle rejects bindings without a usable title.
	ErrEmptyTitle = errors.New("title cannot be empty")
	// ErrTitleConflict reports an attempt to bind a title to a second identifier.
	ErrTitleConflict = errors.New("title already bound to a different identifier")
)

// Binding pairs a title with its identifier.
type Binding struct {
	Title string   `json:"title"`
	ID    ident.ID `json:"id"`
}

// Registry is the title to identifier mapping plus allocation state.
type Registry struct {
	titleToID map[string]ident.ID
	bound     ident.Set
	nextID    ident.ID
	retired   ident.Set
	notes     string
}

// New returns the first-run state: empty mapping, nothing retired, next ID 1.
func New() *Registry {
	return &Registry{
		titleToID: make(map[string]ident.ID),
		bound:     make(ident.Set),
		nextID:    1,
		retired:   make(ident.Set),
		notes:     DefaultNotes,
	}
}

// Restore rebuilds a registry from persisted parts. The counter is raised
// past every bound or retired identifier so stale or hand-edited files cannot
// cause reuse.
func Restore(titleToID map[string]ident.ID, nextID ident.ID, retired []ident.ID, notes string) (*Registry, error) {
	r := New()
	if strings.TrimSpace(notes) != "" {
		r.notes = notes
	}
	for title, id := range titleToID {
		clean := normalizeTitle(title)
		if clean == "" {
			continue
		}
		if !id.Valid() {
			return nil, fmt.Errorf("title %q: %w", clean, ident.ErrInvalid)
		}
		if existing, ok := r.titleToID[clean]; ok && existing != id {
			return nil, fmt.Errorf("%w: %q maps to %s and %s", ErrTitleConflict, clean, existing, id)
		}
		r.titleToID[clean] = id
		r.bound.Add(id)
	}
	for _, id := range retired {
		r.retired.Add(id)
	}
	r.nextID = max(nextID, r.bound.Max().Next(), r.retired.Max().Next(), 1)
	return r, nil
}

// ResolveExact returns the identifier bound to title, if any.
func (r *Registry) ResolveExact(title string) (ident.ID, bool) {
	id, ok := r.titleToID[normalizeTitle(title)]
	return id, ok
}

// Allocate binds title to the next free identifier and advances the counter.
func (r *Registry) Allocate(title string) (ident.ID, error) {
	clean := normalizeTitle(title)
	if clean == "" {
		return 0, ErrEmptyTitle
	}
	if existing, ok := r.titleToID[clean]; ok {
		return 0, fmt.Errorf("%w: %q is %s", ErrTitleConflict, clean, existing)
	}
	id := r.nextID
	for r.bound.Has(id) || r.retired.Has(id) {
		id = id.Next()
	}
	r.titleToID[clean] = id
	r.bound.Add(id)
	r.nextID = id.Next()
	return id, nil
}

// Bind records title as another name for an existing identifier. Binding a
// title to the identifier it already has is a no-op.
func (r *Registry) Bind(title string, id ident.ID) error {
	clean := normalizeTitle(title)
	if clean == "" {
		return ErrEmptyTitle
	}
	if !id.Valid() {
		return fmt.Errorf("bind %q: %w", clean, ident.ErrInvalid)
	}
	if existing, ok := r.titleToID[clean]; ok {
		if existing == id {
			return nil
		}
		return fmt.Errorf("%w: %q is %s, not %s", ErrTitleConflict, clean, existing, id)
	}
	r.titleToID[clean] = id
	r.bound.Add(id)
	if id >= r.nextID {
		r.nextID = id.Next()
	}
	return nil
}

// KnownIDs returns every identifier ever bound.
func (r *Registry) KnownIDs() ident.Set {
	return r.bound.Clone()
}

// ComputeRetired returns the identifiers in known that the batch did not touch.
func ComputeRetired(known, active ident.Set) ident.Set {
	return known.Minus(active)
}

// Retire merges ids into the retired set and returns the ones that were not
// already retired, in ascending order. Retirement is permanent.
func (r *Registry) Retire(ids ident.Set) []ident.ID {
	var added []ident.ID
	for _, id := range ids.Sorted() {
		if r.retired.Has(id) {
			continue
		}
		r.retired.Add(id)
		added = append(added, id)
	}
	return added
}

// IsRetired reports whether id has been retired.
func (r *Registry) IsRetired(id ident.ID) bool {
	return r.retired.Has(id)
}

// Retired returns the retired identifiers in ascending order.
func (r *Registry) Retired() []ident.ID {
	return r.retired.Sorted()
}

// NextID returns the identifier the next allocation starts from.
func (r *Registry) NextID() ident.ID {
	return r.nextID
}

// TotalIDs is the number of identifiers the counter has handed out.
func (r *Registry) TotalIDs() uint64 {
	return uint64(r.nextID) - 1
}

// Len returns the number of bound titles.
func (r *Registry) Len() int {
	return len(r.titleToID)
}

// Notes returns the free-form note persisted with the registry.
func (r *Registry) Notes() string {
	return r.notes
}

// Entries returns every binding ordered by identifier, then title.
func (r *Registry) Entries() []Binding {
	out := make([]Binding, 0, len(r.titleToID))
	for title, id := range r.titleToID {
		out = append(out, Binding{Title: title, ID: id})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ID != out[j].ID {
			return out[i].ID < out[j].ID
		}
		return out[i].Title < out[j].Title
	})
	return out
}

// TitlesFor returns every title bound to id, sorted.
func (r *Registry) TitlesFor(id ident.ID) []string {
	var titles []string
	for title, bound := range r.titleToID {
		if bound == id {
			titles = append(titles, title)
		}
	}
	sort.Strings(titles)
	return titles
}

// Clone returns a deep copy so callers can mutate without affecting r.
func (r *Registry) Clone() *Registry {
	out := &Registry{
		titleToID: make(map[string]ident.ID, len(r.titleToID)),
		bound:     r.bound.Clone(),
		nextID:    r.nextID,
		retired:   r.retired.Clone(),
		notes:     r.notes,
	}
	for title, id := range r.titleToID {
		out.titleToID[title] = id
	}
	return out
}

func normalizeTitle(title string) string {
	return strings.TrimSpace(title)
}
