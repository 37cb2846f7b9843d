package fetch

import (
	"context"
	"strings"

	"github.com/git-pkgs/distmeta/internal/pep508"
	"github.com/git-pkgs/distmeta/internal/pypi"
	"go.trai.ch/zerr"
)

var (
	ErrNotPinned       = zerr.New("requirement is not pinned to an exact version")
	ErrNoDownloadURL   = zerr.New("no download URL available")
	ErrYanked          = zerr.New("release is yanked")
	ErrInvalidFilename = zerr.New("download URL does not name a file")
)

// ReleaseSource looks up a single release. *pypi.Registry satisfies it.
type ReleaseSource interface {
	FetchRelease(ctx context.Context, name, version string) (*pypi.Release, error)
}

// ArtifactInfo describes a downloadable distribution file.
type ArtifactInfo struct {
	Name      string
	Version   string
	URL       string
	Filename  string
	Integrity string // sha256-...
}

// Resolver maps pinned requirement specifiers to artifact URLs.
type Resolver struct {
	source ReleaseSource
}

// NewResolver creates a resolver backed by source.
func NewResolver(source ReleaseSource) *Resolver {
	return &Resolver{source: source}
}

// Resolve returns the artifact for a specifier such as "box2d-py==2.3.5".
// Only exact pins resolve; ranges would require a version solver.
func (r *Resolver) Resolve(ctx context.Context, spec string) (*ArtifactInfo, error) {
	req := pep508.Parse(spec)
	version, ok := pep508.Pinned(req)
	if !ok {
		return nil, zerr.With(zerr.Wrap(ErrNotPinned, "cannot resolve artifact"), "requirement", spec)
	}

	rel, err := r.source.FetchRelease(ctx, req.Name, version)
	if err != nil {
		return nil, zerr.With(zerr.With(zerr.Wrap(err, "fetching release"), "project", req.Name), "version", version)
	}
	if rel.Yanked {
		return nil, zerr.With(zerr.With(zerr.Wrap(ErrYanked, "cannot resolve artifact"), "project", req.Name), "version", version)
	}
	if rel.DownloadURL == "" {
		return nil, zerr.With(zerr.With(zerr.Wrap(ErrNoDownloadURL, "cannot resolve artifact"), "project", req.Name), "version", version)
	}
	filename := filenameFromURL(rel.DownloadURL)
	if err := checkFilename(filename); err != nil {
		return nil, zerr.With(err, "url", rel.DownloadURL)
	}

	return &ArtifactInfo{
		Name:      req.Name,
		Version:   version,
		URL:       rel.DownloadURL,
		Filename:  filename,
		Integrity: rel.Integrity,
	}, nil
}

func filenameFromURL(url string) string {
	if idx := strings.IndexAny(url, "?#"); idx >= 0 {
		url = url[:idx]
	}
	if idx := strings.LastIndex(url, "/"); idx >= 0 {
		return url[idx+1:]
	}
	return url
}

// checkFilename rejects names that would not land as a plain file inside the
// download directory.
func checkFilename(name string) error {
	switch {
	case name == "", name == ".", name == "..",
		strings.ContainsAny(name, `/\`), strings.ContainsRune(name, 0):
		return zerr.With(zerr.Wrap(ErrInvalidFilename, "unsafe artifact filename"), "filename", name)
	}
	return nil
}
