package extras

import (
	"fmt"
	"slices"

	"github.com/cespare/xxhash/v2"
	"github.com/git-pkgs/distmeta/internal/core"
)

// Fingerprint returns a stable digest of a group table. Specifier order
// within a group does not affect it, matching resolution semantics.
func Fingerprint(groups core.Groups) string {
	hasher := xxhash.New()
	for _, name := range groups.Names() {
		_, _ = hasher.WriteString(name)
		_, _ = hasher.Write([]byte{0})

		specs := slices.Clone(groups[name])
		slices.Sort(specs)
		for _, spec := range slices.Compact(specs) {
			_, _ = hasher.WriteString(spec)
			_, _ = hasher.Write([]byte{0})
		}
		_, _ = hasher.Write([]byte{0}) // group separator
	}
	return fmt.Sprintf("%016x", hasher.Sum64())
}
