package extras

import (
	"github.com/git-pkgs/distmeta/internal/core"
)

// Selection is what an installer would install for name[groups...].
type Selection struct {
	Groups       []string // picked groups that exist, in request order
	Unknown      []string // picked groups the descriptor does not declare
	Requirements []string // core requirements first, then sorted extras
}

// Select resolves the requirements for the given extras names against d.
// Unknown names are reported rather than rejected, as pip only warns.
func Select(d *core.Descriptor, names []string) Selection {
	var sel Selection
	seen := NewSet()
	picked := NewSet()

	for _, name := range names {
		if seen.Has(name) {
			continue
		}
		seen.Add(name)

		specs, ok := d.Extras[name]
		if !ok {
			sel.Unknown = append(sel.Unknown, name)
			continue
		}
		sel.Groups = append(sel.Groups, name)
		picked.Add(specs...)
	}

	base := NewSet()
	for _, req := range d.InstallRequires {
		if base.Has(req) {
			continue
		}
		base.Add(req)
		sel.Requirements = append(sel.Requirements, req)
	}
	for _, req := range picked.Sorted() {
		if !base.Has(req) {
			sel.Requirements = append(sel.Requirements, req)
		}
	}
	return sel
}
