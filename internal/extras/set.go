package extras

import (
	"maps"
	"slices"
)

// Set is an unordered collection of distinct strings.
type Set map[string]struct{}

// NewSet returns a set holding items.
func NewSet(items ...string) Set {
	s := make(Set, len(items))
	s.Add(items...)
	return s
}

// Add inserts items, ignoring ones already present.
func (s Set) Add(items ...string) {
	for _, item := range items {
		s[item] = struct{}{}
	}
}

// Has reports whether item is in the set.
func (s Set) Has(item string) bool {
	_, ok := s[item]
	return ok
}

// Len returns the number of distinct items.
func (s Set) Len() int {
	return len(s)
}

// Union returns a new set with the items of s and other.
func (s Set) Union(other Set) Set {
	out := make(Set, len(s)+len(other))
	maps.Copy(out, s)
	maps.Copy(out, other)
	return out
}

// Sorted returns the items in lexical order.
func (s Set) Sorted() []string {
	return slices.Sorted(maps.Keys(s))
}
