// Package pypi looks up projects on a PyPI-compatible JSON API.
package pypi

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/git-pkgs/distmeta/internal/core"
	"github.com/git-pkgs/distmeta/internal/license"
	"github.com/git-pkgs/distmeta/internal/pep508"
	packageurl "github.com/package-url/packageurl-go"
)

const (
	DefaultURL = "https://pypi.org"
	index      = "pypi"
)

// Project is the subset of project metadata distmeta reports on.
type Project struct {
	Name           string
	Summary        string
	LatestVersion  string
	License        string
	RequiresPython string
	RequiresDist   []string
	Homepage       string
	Repository     string
}

// Release is one published version and its first file.
type Release struct {
	Version     string
	PublishedAt time.Time
	Yanked      bool
	DownloadURL string
	Integrity   string // sha256-...
	PackageType string
}

type Registry struct {
	baseURL string
	client  *core.Client
	urls    *URLs
}

func New(baseURL string, client *core.Client) *Registry {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	if client == nil {
		client = core.DefaultClient()
	}
	r := &Registry{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  client,
	}
	r.urls = &URLs{baseURL: r.baseURL}
	return r
}

func (r *Registry) URLs() core.URLBuilder {
	return r.urls
}

type projectResponse struct {
	Info     infoBlock                `json:"info"`
	Releases map[string][]releaseFile `json:"releases"`
}

type infoBlock struct {
	Name              string            `json:"name"`
	Summary           string            `json:"summary"`
	HomePage          string            `json:"home_page"`
	License           string            `json:"license"`
	LicenseExpression string            `json:"license_expression"`
	Version           string            `json:"version"`
	Classifiers       []string          `json:"classifiers"`
	ProjectURLs       map[string]string `json:"project_urls"`
	RequiresDist      []string          `json:"requires_dist"`
	RequiresPython    string            `json:"requires_python"`
}

type releaseFile struct {
	Digests     map[string]string `json:"digests"`
	URL         string            `json:"url"`
	UploadTime  string            `json:"upload_time"`
	Yanked      bool              `json:"yanked"`
	PackageType string            `json:"packagetype"`
}

func (r *Registry) get(ctx context.Context, name string) (*projectResponse, error) {
	url := fmt.Sprintf("%s/pypi/%s/json", r.baseURL, pep508.NormalizeName(name))

	var resp projectResponse
	if err := r.client.GetJSON(ctx, url, &resp); err != nil {
		var httpErr *core.HTTPError
		if errors.As(err, &httpErr) && httpErr.IsNotFound() {
			return nil, &core.NotFoundError{Index: index, Name: name}
		}
		return nil, err
	}
	return &resp, nil
}

// FetchProject retrieves project metadata.
func (r *Registry) FetchProject(ctx context.Context, name string) (*Project, error) {
	resp, err := r.get(ctx, name)
	if err != nil {
		return nil, err
	}

	return &Project{
		Name:           resp.Info.Name,
		Summary:        resp.Info.Summary,
		LatestVersion:  resp.Info.Version,
		License:        extractLicense(resp.Info),
		RequiresPython: resp.Info.RequiresPython,
		RequiresDist:   resp.Info.RequiresDist,
		Homepage:       extractHomepage(resp.Info.ProjectURLs, resp.Info.HomePage),
		Repository:     extractRepoURL(resp.Info.ProjectURLs, resp.Info.HomePage),
	}, nil
}

// FetchReleases retrieves every release of a project, in no particular order.
// The first source distribution of a release is preferred as its file.
func (r *Registry) FetchReleases(ctx context.Context, name string) ([]Release, error) {
	resp, err := r.get(ctx, name)
	if err != nil {
		return nil, err
	}

	releases := make([]Release, 0, len(resp.Releases))
	for num, files := range resp.Releases {
		rel := Release{Version: num}
		if len(files) == 0 {
			releases = append(releases, rel)
			continue
		}

		file := files[0]
		for _, f := range files {
			if f.PackageType == "sdist" {
				file = f
				break
			}
		}

		if file.UploadTime != "" {
			rel.PublishedAt, _ = time.Parse("2006-01-02T15:04:05", file.UploadTime)
		}
		if sha256, ok := file.Digests["sha256"]; ok {
			rel.Integrity = "sha256-" + sha256
		}
		rel.Yanked = file.Yanked
		rel.DownloadURL = file.URL
		rel.PackageType = file.PackageType
		releases = append(releases, rel)
	}
	return releases, nil
}

// FetchRelease returns one release, or a NotFoundError carrying the version.
func (r *Registry) FetchRelease(ctx context.Context, name, version string) (*Release, error) {
	releases, err := r.FetchReleases(ctx, name)
	if err != nil {
		return nil, err
	}
	for i := range releases {
		if releases[i].Version == version {
			return &releases[i], nil
		}
	}
	return nil, &core.NotFoundError{Index: index, Name: name, Version: version}
}

func extractRepoURL(projectURLs map[string]string, homePage string) string {
	priorityKeys := []string{"Repository", "Source", "Source Code", "Code"}
	for _, key := range priorityKeys {
		if url, ok := projectURLs[key]; ok && isRepoURL(url) {
			return url
		}
	}

	for _, url := range projectURLs {
		if isRepoURL(url) && !strings.Contains(url, "github.com/sponsors") {
			return url
		}
	}

	if isRepoURL(homePage) {
		return homePage
	}
	return ""
}

func extractHomepage(projectURLs map[string]string, homePage string) string {
	if homePage != "" {
		return homePage
	}
	if url, ok := projectURLs["Homepage"]; ok {
		return url
	}
	return projectURLs["Home"]
}

func isRepoURL(url string) bool {
	return strings.Contains(url, "github.com") ||
		strings.Contains(url, "gitlab.com") ||
		strings.Contains(url, "bitbucket.org") ||
		strings.Contains(url, "codeberg.org")
}

func extractLicense(info infoBlock) string {
	if info.LicenseExpression != "" {
		return info.LicenseExpression
	}
	return license.Check(info.License, info.Classifiers).Effective
}

type URLs struct {
	baseURL string
}

func (u *URLs) Registry(name, version string) string {
	name = pep508.NormalizeName(name)
	if version != "" {
		return fmt.Sprintf("%s/project/%s/%s/", u.baseURL, name, version)
	}
	return fmt.Sprintf("%s/project/%s/", u.baseURL, name)
}

func (u *URLs) Download(name, version string) string {
	// PyPI downloads are version-specific and stored in release metadata
	return ""
}

func (u *URLs) Documentation(name, version string) string {
	name = pep508.NormalizeName(name)
	if version != "" {
		return fmt.Sprintf("https://%s.readthedocs.io/en/%s/", name, version)
	}
	return fmt.Sprintf("https://%s.readthedocs.io/", name)
}

func (u *URLs) PURL(name, version string) string {
	return PURL(name, version)
}

// PURL returns the package URL for a PyPI project.
func PURL(name, version string) string {
	return packageurl.NewPackageURL(packageurl.TypePyPi, "", pep508.NormalizeName(name), version, nil, "").ToString()
}
