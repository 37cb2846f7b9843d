// Package app ties the manifest, resolver, index and fetcher together for the CLI.
package app

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/git-pkgs/distmeta/fetch"
	"github.com/git-pkgs/distmeta/internal/core"
	"github.com/git-pkgs/distmeta/internal/extras"
	"github.com/git-pkgs/distmeta/internal/logger"
	"github.com/git-pkgs/distmeta/internal/manifest"
	"github.com/git-pkgs/distmeta/internal/pep508"
	"github.com/git-pkgs/distmeta/internal/pypi"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

const defaultConcurrency = 8

// Index is the subset of the PyPI client the app needs.
type Index interface {
	FetchProject(ctx context.Context, name string) (*pypi.Project, error)
	FetchRelease(ctx context.Context, name, version string) (*pypi.Release, error)
}

// Config carries the settings the CLI collects from flags and environment.
type Config struct {
	IndexURL    string
	JSONLogs    bool
	Debug       bool
	Concurrency int
}

// App is the application entry point for every command that needs I/O.
type App struct {
	Logger      *logger.Logger
	Index       Index
	Fetcher     fetch.FetcherInterface
	Concurrency int

	closers []func()
}

// New creates an App. Nil dependencies are filled in by Configure.
func New(log *logger.Logger, index Index, fetcher fetch.FetcherInterface) *App {
	if log == nil {
		log = logger.New()
	}
	return &App{Logger: log, Index: index, Fetcher: fetcher, Concurrency: defaultConcurrency}
}

// Configure applies cfg. An explicit index URL replaces any injected index.
func (a *App) Configure(cfg Config) {
	a.Logger.SetJSON(cfg.JSONLogs)
	a.Logger.SetDebug(cfg.Debug)
	if cfg.Concurrency > 0 {
		a.Concurrency = cfg.Concurrency
	}

	if a.Index == nil || cfg.IndexURL != "" {
		a.Index = pypi.New(cfg.IndexURL, core.DefaultClient())
	}
	if a.Fetcher == nil {
		f := fetch.NewFetcher()
		a.closers = append(a.closers, f.Close)
		a.Fetcher = fetch.NewCircuitBreakerFetcher(f, 0)
	}
}

// Close releases resources created by Configure.
func (a *App) Close() {
	for _, c := range a.closers {
		c()
	}
	a.closers = nil
}

// Load reads the manifest at path.
func (a *App) Load(path string) (*core.Descriptor, error) {
	d, err := manifest.Load(path)
	if err != nil {
		return nil, err
	}
	a.Logger.Debug("loaded manifest",
		"path", path,
		"name", d.Name,
		"version", d.Version,
		"groups", len(d.Extras),
		"all", len(d.Extras[core.AllGroup]),
	)
	return d, nil
}

// Select returns the selection for groups, warning about unknown names.
func (a *App) Select(d *core.Descriptor, groups []string) extras.Selection {
	sel := extras.Select(d, groups)
	for _, name := range sel.Unknown {
		a.Logger.Warn("distribution does not provide extra", "distribution", d.Name, "extra", name)
	}
	return sel
}

// CheckResult is the index lookup outcome for one project.
type CheckResult struct {
	Name   string   // normalized project name
	Specs  []string // specifiers in the selection that name this project
	Found  bool
	Latest string
	Err    error // lookup failure other than not-found
}

// Check looks up every distinct project in the selection on the index.
// A missing project is a result, not an error; cancellation is an error.
func (a *App) Check(ctx context.Context, d *core.Descriptor, groups []string) ([]CheckResult, error) {
	sel := a.Select(d, groups)

	byName := make(map[string]*CheckResult)
	var order []string
	for _, spec := range sel.Requirements {
		name := pep508.NormalizeName(pep508.Parse(spec).Name)
		r, ok := byName[name]
		if !ok {
			r = &CheckResult{Name: name}
			byName[name] = r
			order = append(order, name)
		}
		r.Specs = append(r.Specs, spec)
	}
	slices.Sort(order)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency())
	var mu sync.Mutex

	for _, name := range order {
		r := byName[name]
		g.Go(func() error {
			proj, err := a.Index.FetchProject(ctx, r.Name)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				r.Found = true
				r.Latest = proj.LatestVersion
			case errors.Is(err, core.ErrNotFound):
				a.Logger.Warn("project not found on index", "project", r.Name)
			case ctx.Err() != nil:
				return ctx.Err()
			default:
				r.Err = err
				a.Logger.Warn("index lookup failed", "project", r.Name, "error", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, zerr.Wrap(err, "index check interrupted")
	}

	results := make([]CheckResult, 0, len(order))
	for _, name := range order {
		results = append(results, *byName[name])
	}
	return results, nil
}

// DownloadResult is the outcome for one requirement.
type DownloadResult struct {
	Spec    string
	Path    string
	Skipped bool // not pinned to an exact version
	Err     error
}

// Download fetches every pinned requirement of the selection into dir.
// Unpinned requirements are skipped; per-artifact failures are reported in
// the results.
func (a *App) Download(ctx context.Context, d *core.Descriptor, groups []string, dir string) ([]DownloadResult, error) {
	sel := a.Select(d, groups)
	resolver := fetch.NewResolver(a.Index)
	results := make([]DownloadResult, len(sel.Requirements))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency())

	for i, spec := range sel.Requirements {
		results[i].Spec = spec
		g.Go(func() error {
			info, err := resolver.Resolve(ctx, spec)
			if errors.Is(err, fetch.ErrNotPinned) {
				results[i].Skipped = true
				a.Logger.Debug("skipping unpinned requirement", "requirement", spec)
				return nil
			}
			if err == nil {
				results[i].Path, err = fetch.Download(ctx, a.Fetcher, info, dir)
			}
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				results[i].Err = err
				a.Logger.Warn("download failed", "requirement", spec, "error", err)
				return nil
			}
			a.Logger.Info("downloaded", "requirement", spec, "path", results[i].Path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, zerr.Wrap(err, "download interrupted")
	}
	return results, nil
}

func (a *App) concurrency() int {
	if a.Concurrency > 0 {
		return a.Concurrency
	}
	return defaultConcurrency
}
