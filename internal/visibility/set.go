// Package visibility tracks which page regions a visitor has scrolled into
// view. A region, once seen, stays seen.
package visibility

import "slices"

// Set is a grow-only set of region ids. It is not safe for concurrent use.
type Set struct {
	ids map[string]struct{}
}

// NewSet returns a set holding ids.
func NewSet(ids ...string) *Set {
	s := &Set{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Add inserts id and reports whether it was new. Empty ids are ignored.
func (s *Set) Add(id string) bool {
	if id == "" {
		return false
	}
	if s.ids == nil {
		s.ids = make(map[string]struct{})
	}
	if _, ok := s.ids[id]; ok {
		return false
	}
	s.ids[id] = struct{}{}
	return true
}

// Has reports whether id has been seen.
func (s *Set) Has(id string) bool {
	if s == nil {
		return false
	}
	_, ok := s.ids[id]
	return ok
}

// Len returns the number of ids.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.ids)
}

// IDs returns the ids in sorted order.
func (s *Set) IDs() []string {
	if s == nil {
		return []string{}
	}
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}
