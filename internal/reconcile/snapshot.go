package reconcile

import (
	"fmt"
	"sort"
	"strings"

	"usecasesync/internal/ident"
	"usecasesync/internal/registry"
)

// SnapshotSource identifies records against the previous catalog alone. New
// identifiers fill gaps: the scan starts at 1 and keeps its position across
// the batch, skipping anything in use this batch, present in the previous
// snapshot, or retired.
type SnapshotSource struct {
	titleToID  map[string]ident.ID
	candidates []Candidate
	previous   ident.Set
	retired    ident.Set
	batch      map[string]ident.ID
	allocated  ident.Set
	counter    ident.ID
	totalIDs   uint64
}

// NewSnapshotSource builds a source from the previous catalog's bindings,
// its retired list and its recorded ID total. When one title appears under
// several identifiers the first binding resolves the title; the others stay
// known and are never reallocated.
func NewSnapshotSource(bindings []registry.Binding, retired []ident.ID, totalIDs uint64) *SnapshotSource {
	s := &SnapshotSource{
		titleToID: make(map[string]ident.ID, len(bindings)),
		previous:  make(ident.Set, len(bindings)),
		retired:   ident.NewSet(retired...),
		batch:     make(map[string]ident.ID),
		allocated: make(ident.Set),
		counter:   1,
		totalIDs:  totalIDs,
	}
	for _, b := range bindings {
		title := strings.TrimSpace(b.Title)
		if title == "" || !b.ID.Valid() {
			continue
		}
		s.previous.Add(b.ID)
		if _, seen := s.titleToID[title]; seen {
			continue
		}
		s.titleToID[title] = b.ID
		s.candidates = append(s.candidates, Candidate{Title: title, ID: b.ID})
	}
	sort.SliceStable(s.candidates, func(i, j int) bool {
		if s.candidates[i].ID != s.candidates[j].ID {
			return s.candidates[i].ID < s.candidates[j].ID
		}
		return s.candidates[i].Title < s.candidates[j].Title
	})
	return s
}

func (s *SnapshotSource) Mode() Mode { return ModeSnapshot }

func (s *SnapshotSource) ResolveExact(title string) (ident.ID, bool) {
	title = strings.TrimSpace(title)
	if id, ok := s.titleToID[title]; ok {
		return id, true
	}
	id, ok := s.batch[title]
	return id, ok
}

func (s *SnapshotSource) Candidates() []Candidate {
	return append([]Candidate(nil), s.candidates...)
}

func (s *SnapshotSource) Allocate(title string, inUse ident.Set) (ident.ID, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return 0, registry.ErrEmptyTitle
	}
	if existing, ok := s.ResolveExact(title); ok {
		return 0, fmt.Errorf("%w: %q is %s", registry.ErrTitleConflict, title, existing)
	}
	for inUse.Has(s.counter) || s.allocated.Has(s.counter) || s.previous.Has(s.counter) || s.retired.Has(s.counter) {
		s.counter = s.counter.Next()
	}
	id := s.counter
	s.counter = s.counter.Next()
	s.batch[title] = id
	s.allocated.Add(id)
	return id, nil
}

func (s *SnapshotSource) Bind(title string, id ident.ID) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return registry.ErrEmptyTitle
	}
	if existing, ok := s.ResolveExact(title); ok {
		if existing == id {
			return nil
		}
		return fmt.Errorf("%w: %q is %s, not %s", registry.ErrTitleConflict, title, existing, id)
	}
	s.batch[title] = id
	return nil
}

func (s *SnapshotSource) KnownIDs() ident.Set {
	known := s.previous.Clone()
	known.Union(s.allocated)
	return known
}

func (s *SnapshotSource) Retire(ids ident.Set) []ident.ID {
	var added []ident.ID
	for _, id := range ids.Sorted() {
		if s.retired.Has(id) {
			continue
		}
		s.retired.Add(id)
		added = append(added, id)
	}
	return added
}

func (s *SnapshotSource) Retired() []ident.ID { return s.retired.Sorted() }

// TotalIDs is the recorded total or the highest identifier seen, whichever
// is larger.
func (s *SnapshotSource) TotalIDs() uint64 {
	highest := max(s.previous.Max(), s.allocated.Max(), s.retired.Max())
	return max(s.totalIDs, uint64(highest))
}
