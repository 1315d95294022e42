package reconcile

import (
	"usecasesync/internal/ident"
	"usecasesync/internal/registry"
)

// Mode names an identity strategy.
type Mode string

const (
	ModeRegistry Mode = "registry"
	ModeSnapshot Mode = "snapshot"
)

// ParseMode validates a mode name.
func ParseMode(value string) (Mode, bool) {
	switch Mode(value) {
	case ModeRegistry, ModeSnapshot:
		return Mode(value), true
	default:
		return "", false
	}
}

// Candidate is a previously seen title eligible for fuzzy matching.
type Candidate struct {
	Title string
	ID    ident.ID
}

// IdentitySource is the identity state a Reconciler reads and mutates.
type IdentitySource interface {
	Mode() Mode
	// ResolveExact returns the identifier bound to title.
	ResolveExact(title string) (ident.ID, bool)
	// Candidates lists fuzzy-match candidates ordered by identifier, then title.
	Candidates() []Candidate
	// Allocate binds title to a new identifier outside inUse.
	Allocate(title string, inUse ident.Set) (ident.ID, error)
	// Bind records title as another name for id.
	Bind(title string, id ident.ID) error
	// KnownIDs returns every identifier the source knew before or during the batch.
	KnownIDs() ident.Set
	// Retire marks ids retired and returns the ones not already retired.
	Retire(ids ident.Set) []ident.ID
	// Retired returns all retired identifiers in ascending order.
	Retired() []ident.ID
	// TotalIDs is the count of identifiers ever handed out, for catalog metadata.
	TotalIDs() uint64
}

// RegistrySource allocates from a persistent registry's monotonic counter.
type RegistrySource struct {
	reg *registry.Registry
}

// NewRegistrySource wraps reg. The reconciler mutates reg in place.
func NewRegistrySource(reg *registry.Registry) *RegistrySource {
	return &RegistrySource{reg: reg}
}

// Registry returns the wrapped registry.
func (s *RegistrySource) Registry() *registry.Registry { return s.reg }

func (s *RegistrySource) Mode() Mode { return ModeRegistry }

func (s *RegistrySource) ResolveExact(title string) (ident.ID, bool) {
	return s.reg.ResolveExact(title)
}

func (s *RegistrySource) Candidates() []Candidate {
	entries := s.reg.Entries()
	out := make([]Candidate, len(entries))
	for i, e := range entries {
		out[i] = Candidate{Title: e.Title, ID: e.ID}
	}
	return out
}

// Allocate ignores inUse: every claimed identifier is already bound in the
// registry, and the counter never moves backwards.
func (s *RegistrySource) Allocate(title string, _ ident.Set) (ident.ID, error) {
	return s.reg.Allocate(title)
}

func (s *RegistrySource) Bind(title string, id ident.ID) error { return s.reg.Bind(title, id) }

func (s *RegistrySource) KnownIDs() ident.Set { return s.reg.KnownIDs() }

func (s *RegistrySource) Retire(ids ident.Set) []ident.ID { return s.reg.Retire(ids) }

func (s *RegistrySource) Retired() []ident.ID { return s.reg.Retired() }

func (s *RegistrySource) TotalIDs() uint64 { return s.reg.TotalIDs() }
