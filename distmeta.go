// Package distmeta reads declarative Python distribution descriptors and
// resolves their optional dependency groups.
//
// The derived "all" group is the deduplicated union of every declared extras
// group except the excluded ones:
//
//	all, err := distmeta.ComputeAll(groups, distmeta.NewSet("accept-rom-license"))
//	if err != nil {
//		log.Fatal(err)
//	}
//
// A manifest on disk is loaded, validated and finalized in one step:
//
//	d, err := distmeta.Load("distmeta.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
//	sel := distmeta.Select(d, []string{"box2d"})
//	fmt.Println(sel.Requirements)
package distmeta

import (
	"github.com/git-pkgs/distmeta/client"
	"github.com/git-pkgs/distmeta/internal/core"
	"github.com/git-pkgs/distmeta/internal/extras"
	"github.com/git-pkgs/distmeta/internal/layout"
	"github.com/git-pkgs/distmeta/internal/license"
	"github.com/git-pkgs/distmeta/internal/manifest"
	"github.com/git-pkgs/distmeta/internal/pep508"
	"github.com/git-pkgs/distmeta/internal/pypi"
	"github.com/git-pkgs/purl"
)

// Re-export types from internal/core
type (
	// Groups maps an extras group name to its dependency specifiers.
	Groups = core.Groups

	// MetaGroup declares a derived group by exclusion.
	MetaGroup = core.MetaGroup

	// Descriptor is the declarative content of a distribution.
	Descriptor = core.Descriptor

	// Requirement is a parsed dependency specifier.
	Requirement = core.Requirement
)

// Re-export resolver types
type (
	// Set is a set of group names or specifiers.
	Set = extras.Set

	// Selection is what an installer would install for name[groups...].
	Selection = extras.Selection

	// LicenseResult is the outcome of CheckLicense.
	LicenseResult = license.Result

	// DataFiles is the result of ExpandData.
	DataFiles = layout.DataFiles
)

// Re-export types from client and the index
type (
	// Client is an HTTP client with retry logic for the package index.
	Client = client.Client

	// Index is a PyPI JSON API client.
	Index = pypi.Registry

	// Project is index metadata about a project.
	Project = pypi.Project

	// Release is a single published version of a project.
	Release = pypi.Release
)

// AllGroup is the conventional name of the derived group.
const AllGroup = core.AllGroup

// Re-export errors
var (
	ErrSelfExclusion    = core.ErrSelfExclusion
	ErrReservedGroup    = core.ErrReservedGroup
	ErrDuplicateGroup   = core.ErrDuplicateGroup
	ErrInvalidGroupName = core.ErrInvalidGroupName
	ErrMissingName      = core.ErrMissingName
	ErrMissingVersion   = core.ErrMissingVersion
	ErrManifestNotFound = core.ErrManifestNotFound
	ErrNotFound         = client.ErrNotFound
)

// Error types
type (
	HTTPError      = client.HTTPError
	NotFoundError  = client.NotFoundError
	RateLimitError = client.RateLimitError
)

// NewSet returns a set holding items.
func NewSet(items ...string) Set {
	return extras.NewSet(items...)
}

// ComputeAll returns the sorted, deduplicated union of every group not in
// excluded. A group named "all" never contributes to itself. Excluding "all"
// returns ErrSelfExclusion.
func ComputeAll(groups Groups, excluded Set) ([]string, error) {
	return extras.ComputeAll(groups, excluded)
}

// Finalize returns a copy of declared with every meta group computed and
// added. If metas is nil the default "all" group is used.
func Finalize(declared Groups, metas []MetaGroup) (Groups, error) {
	if metas == nil {
		metas = core.DefaultMetaGroups()
	}
	return extras.Finalize(declared, metas)
}

// Select returns the requirements for installing d with the named extras.
func Select(d *Descriptor, names []string) Selection {
	return extras.Select(d, names)
}

// Load reads, validates and finalizes the manifest at path.
func Load(path string) (*Descriptor, error) {
	return manifest.Load(path)
}

// Parse decodes manifest bytes. dir resolves a relative version_file.
func Parse(data []byte, dir string) (*Descriptor, error) {
	return manifest.Parse(data, dir)
}

// ParseRequirement splits a dependency specifier into its parts.
func ParseRequirement(spec string) Requirement {
	return pep508.Parse(spec)
}

// NormalizeName returns the PEP 503 normalized form of a project name.
func NormalizeName(name string) string {
	return pep508.NormalizeName(name)
}

// CheckLicense resolves and validates the effective SPDX license.
func CheckLicense(declared string, classifiers []string) LicenseResult {
	return license.Check(declared, classifiers)
}

// FindPackages returns the dotted names of Python packages under root.
func FindPackages(root, prefix string) ([]string, error) {
	return layout.FindPackages(root, prefix)
}

// ExpandData expands package data globs relative to each package.
func ExpandData(root string, data map[string][]string) (*DataFiles, error) {
	return layout.ExpandData(root, data)
}

// DefaultClient returns a client with sensible defaults:
// - 30s timeout
// - 5 retries with exponential backoff
// - Retry on 429 and 5xx responses
func DefaultClient() *Client {
	return client.DefaultClient()
}

// NewClient creates a new client with the given options.
func NewClient(opts ...Option) *Client {
	return client.NewClient(opts...)
}

// Option configures a Client.
type Option = client.Option

// WithTimeout sets the HTTP client timeout.
var WithTimeout = client.WithTimeout

// WithMaxRetries sets the maximum number of retries.
var WithMaxRetries = client.WithMaxRetries

// NewIndex creates a PyPI client. If baseURL is empty the public index is used.
// If c is nil, DefaultClient() is used.
func NewIndex(baseURL string, c *Client) *Index {
	return pypi.New(baseURL, c)
}

// PackageURL returns the PURL of a PyPI project, with version when non-empty.
func PackageURL(name, version string) string {
	return pypi.PURL(name, version)
}

// PURL represents a parsed Package URL.
type PURL = purl.PURL

// ParsePURL parses a Package URL string into its components.
// Supports both package PURLs (pkg:pypi/gym) and version PURLs (pkg:pypi/gym@0.26.2).
func ParsePURL(purlStr string) (*PURL, error) {
	return purl.Parse(purlStr)
}
