package ident

import "slices"

// Set is an unordered collection of identifiers.
type Set map[ID]struct{}

// NewSet builds a set from the given identifiers.
func NewSet(ids ...ID) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Add inserts id into the set. Invalid identifiers are ignored.
func (s Set) Add(id ID) {
	if !id.Valid() {
		return
	}
	s[id] = struct{}{}
}

// Has reports whether id is present.
func (s Set) Has(id ID) bool {
	_, ok := s[id]
	return ok
}

// Len returns the number of identifiers.
func (s Set) Len() int { return len(s) }

// Union adds every member of other to s.
func (s Set) Union(other Set) {
	for id := range other {
		s[id] = struct{}{}
	}
}

// Minus returns the members of s that are absent from other.
func (s Set) Minus(other Set) Set {
	out := make(Set)
	for id := range s {
		if !other.Has(id) {
			out[id] = struct{}{}
		}
	}
	return out
}

// Clone returns an independent copy.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for id := range s {
		out[id] = struct{}{}
	}
	return out
}

// Max returns the largest identifier, or zero for an empty set.
func (s Set) Max() ID {
	var highest ID
	for id := range s {
		if id > highest {
			highest = id
		}
	}
	return highest
}

// Sorted returns the identifiers in ascending numeric order.
func (s Set) Sorted() []ID {
	out := make([]ID, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}
