package registry

import (
	"errors"
	"fmt"

	"usecasesync/internal/ident"
)

// Seed builds a registry from an existing catalog snapshot so the first
// registry-backed run keeps the IDs already published. totalIDs carries the
// snapshot's "IDs ever allocated" counter when known; zero means unknown.
//
// When the snapshot lists one title under two identifiers the first binding
// wins; the other identifier (or one listed without a title) stays reserved
// so it is never reallocated.
func Seed(bindings []Binding, retired []ident.ID, totalIDs uint64) (*Registry, error) {
	r := New()
	for _, b := range bindings {
		err := r.Bind(b.Title, b.ID)
		switch {
		case err == nil:
		case errors.Is(err, ErrTitleConflict), errors.Is(err, ErrEmptyTitle):
			r.bound.Add(b.ID)
		default:
			return nil, fmt.Errorf("seed registry: %w", err)
		}
	}
	for _, id := range retired {
		r.retired.Add(id)
	}
	r.nextID = max(r.nextID, r.bound.Max().Next(), r.retired.Max().Next(), ident.ID(totalIDs+1))
	return r, nil
}
