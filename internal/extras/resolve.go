// Package extras computes derived dependency groups and installer selections.
package extras

import (
	"github.com/git-pkgs/distmeta/internal/core"
	"go.trai.ch/zerr"
)

// ComputeAll returns the distinct specifiers of every group in groups whose
// name is not in excluded, sorted. A group literally named "all" never feeds
// its own union. Unknown names in excluded are ignored; listing "all" in
// excluded is a configuration error.
func ComputeAll(groups core.Groups, excluded Set) ([]string, error) {
	return computeDerived(core.AllGroup, groups, excluded)
}

func computeDerived(name string, groups core.Groups, excluded Set) ([]string, error) {
	if excluded.Has(name) {
		return nil, zerr.With(zerr.Wrap(core.ErrSelfExclusion, "invalid derived group"), "group", name)
	}

	union := NewSet()
	for group, specs := range groups {
		if group == name || excluded.Has(group) {
			continue
		}
		union.Add(specs...)
	}
	return union.Sorted(), nil
}

// Finalize returns a new table holding the declared groups plus one entry per
// meta group. Meta groups are computed from the declared groups only, so the
// order of metas does not matter and one meta never feeds another.
func Finalize(declared core.Groups, metas []core.MetaGroup) (core.Groups, error) {
	out := declared.Clone()
	seen := NewSet()
	for _, meta := range metas {
		if meta.Name == "" {
			return nil, core.ErrInvalidGroupName
		}
		if seen.Has(meta.Name) {
			return nil, zerr.With(zerr.Wrap(core.ErrDuplicateGroup, "derived group repeated"), "group", meta.Name)
		}
		seen.Add(meta.Name)
		if _, ok := declared[meta.Name]; ok {
			return nil, zerr.With(zerr.Wrap(core.ErrReservedGroup, "declared group shadows derived group"), "group", meta.Name)
		}

		specs, err := computeDerived(meta.Name, declared, NewSet(meta.Exclude...))
		if err != nil {
			return nil, err
		}
		out[meta.Name] = specs
	}
	return out, nil
}
