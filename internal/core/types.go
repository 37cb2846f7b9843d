// Package core provides the shared descriptor types and sentinel errors.
package core

import (
	"maps"
	"slices"
)

// AllGroup is the name of the derived group holding every installable extra.
const AllGroup = "all"

// Groups maps an extras group name to its dependency specifiers.
// Specifiers are opaque strings at this level.
type Groups map[string][]string

// Names returns the group names in sorted order.
func (g Groups) Names() []string {
	return slices.Sorted(maps.Keys(g))
}

// Clone returns a deep copy so callers never share backing arrays.
func (g Groups) Clone() Groups {
	out := make(Groups, len(g))
	for name, specs := range g {
		out[name] = slices.Clone(specs)
	}
	return out
}

// MetaGroup declares a derived group as "every declared group except Exclude".
type MetaGroup struct {
	Name    string
	Exclude []string
}

// DefaultMetaGroups mirrors the observed descriptor: "all" is every extra
// except the ROM license acceptance bundle.
func DefaultMetaGroups() []MetaGroup {
	return []MetaGroup{{Name: AllGroup, Exclude: []string{"accept-rom-license"}}}
}

// Descriptor is the declarative content of a distribution's setup() call.
type Descriptor struct {
	Name            string
	Version         string
	Description     string
	URL             string
	Author          string
	AuthorEmail     string
	License         string
	PackagePrefix   string // only discovered packages with this prefix ship
	ZipSafe         bool
	InstallRequires []string
	Extras          Groups // final table, derived groups included
	MetaGroups      []MetaGroup
	PackageData     map[string][]string // package -> globs relative to it
	TestsRequire    []string
	PythonRequires  string
	Classifiers     []string
}

// Requirement is a parsed dependency specifier.
type Requirement struct {
	Raw        string
	Name       string
	Extras     []string
	Constraint string // "*" when unconstrained
	Marker     string
}
