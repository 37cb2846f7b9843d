// Package manifest loads distribution descriptors from YAML files.
package manifest

import (
	_ "embed"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/git-pkgs/distmeta/internal/core"
	"github.com/git-pkgs/distmeta/internal/extras"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// DefaultFileName is the manifest looked up when no path is given.
const DefaultFileName = "distmeta.yaml"

//go:embed gym.yaml
var gymManifest []byte

// Gym returns the reference manifest for the gym distribution.
func Gym() []byte {
	return append([]byte(nil), gymManifest...)
}

var versionRegex = regexp.MustCompile(`(?m)^\s*VERSION\s*=\s*["']([^"']+)["']`)

// Load reads and validates the manifest at path.
func Load(path string) (*core.Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, zerr.With(zerr.Wrap(core.ErrManifestNotFound, "failed to load manifest"), "path", path)
		}
		return nil, zerr.With(zerr.Wrap(err, "failed to read manifest"), "path", path)
	}

	d, err := Parse(data, filepath.Dir(path))
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "invalid manifest"), "path", path)
	}
	return d, nil
}

// Parse decodes manifest bytes. dir resolves a relative version_file.
func Parse(data []byte, dir string) (*core.Descriptor, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, zerr.Wrap(err, "failed to parse manifest")
	}
	return f.descriptor(dir)
}

func (f *File) descriptor(dir string) (*core.Descriptor, error) {
	if strings.TrimSpace(f.Name) == "" {
		return nil, core.ErrMissingName
	}

	version, err := f.resolveVersion(dir)
	if err != nil {
		return nil, err
	}

	declared := make(core.Groups, len(f.Extras))
	for name, specs := range f.Extras {
		if strings.TrimSpace(name) == "" {
			return nil, core.ErrInvalidGroupName
		}
		declared[name] = specs
	}

	metas := core.DefaultMetaGroups()
	if f.MetaGroups != nil {
		metas = make([]core.MetaGroup, 0, len(f.MetaGroups))
		for _, m := range f.MetaGroups {
			metas = append(metas, core.MetaGroup{Name: m.Name, Exclude: m.Exclude})
		}
	}

	final, err := extras.Finalize(declared, metas)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to compute derived groups")
	}

	return &core.Descriptor{
		Name:            f.Name,
		Version:         version,
		Description:     f.Description,
		URL:             f.URL,
		Author:          f.Author,
		AuthorEmail:     f.AuthorEmail,
		License:         f.License,
		PackagePrefix:   f.PackagePrefix,
		ZipSafe:         f.ZipSafe,
		InstallRequires: f.InstallRequires,
		Extras:          final,
		MetaGroups:      metas,
		PackageData:     f.PackageData,
		TestsRequire:    f.TestsRequire,
		PythonRequires:  f.PythonRequires,
		Classifiers:     f.Classifiers,
	}, nil
}

func (f *File) resolveVersion(dir string) (string, error) {
	if f.Version != "" {
		return f.Version, nil
	}
	if f.VersionFile == "" {
		return "", core.ErrMissingVersion
	}

	path := f.VersionFile
	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to read version file"), "version_file", path)
	}

	m := versionRegex.FindSubmatch(data)
	if m == nil {
		return "", zerr.With(zerr.Wrap(core.ErrMissingVersion, "no VERSION assignment"), "version_file", path)
	}
	return string(m[1]), nil
}
