// Package layout discovers Python packages in a source tree and expands
// package data globs.
package layout

import (
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/zerr"
)

const initFile = "__init__.py"

// FindPackages walks root and returns the dotted names of directories that
// contain __init__.py and whose ancestors up to root are packages too.
// Names not starting with prefix are dropped; an empty prefix keeps all.
func FindPackages(root, prefix string) ([]string, error) {
	var pkgs []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() || path == root {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if _, err := os.Stat(filepath.Join(path, initFile)); err != nil {
			// Subpackages of a non-package directory are not importable.
			return filepath.SkipDir
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		name := strings.ReplaceAll(filepath.ToSlash(rel), "/", ".")
		if prefix == "" || strings.HasPrefix(name, prefix) {
			pkgs = append(pkgs, name)
		}
		return nil
	})
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to discover packages"), "root", root)
	}
	slices.Sort(pkgs)
	return pkgs, nil
}

// DataFiles is the result of expanding package data globs.
type DataFiles struct {
	Files   map[string][]string // package -> matched paths relative to the package dir
	Missing map[string][]string // package -> globs that matched nothing
}

// ExpandData expands each package's globs relative to the package directory
// under root. Globs that match nothing are reported in Missing.
func ExpandData(root string, data map[string][]string) (*DataFiles, error) {
	out := &DataFiles{
		Files:   make(map[string][]string),
		Missing: make(map[string][]string),
	}

	for pkg, globs := range data {
		pkgDir := filepath.Join(root, filepath.FromSlash(strings.ReplaceAll(pkg, ".", "/")))
		seen := make(map[string]bool)

		for _, pattern := range globs {
			matches, err := filepath.Glob(filepath.Join(pkgDir, filepath.FromSlash(pattern)))
			if err != nil {
				return nil, zerr.With(zerr.Wrap(err, "invalid package data glob"), "pattern", pattern)
			}

			found := false
			for _, m := range matches {
				info, err := os.Stat(m)
				if err != nil || info.IsDir() {
					continue
				}
				rel, err := filepath.Rel(pkgDir, m)
				if err != nil {
					return nil, err
				}
				rel = filepath.ToSlash(rel)
				found = true
				if !seen[rel] {
					seen[rel] = true
					out.Files[pkg] = append(out.Files[pkg], rel)
				}
			}
			if !found {
				out.Missing[pkg] = append(out.Missing[pkg], pattern)
			}
		}
		slices.Sort(out.Files[pkg])
	}
	return out, nil
}
