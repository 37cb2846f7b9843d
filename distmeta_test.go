package distmeta_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"slices"
	"testing"

	"github.com/git-pkgs/distmeta"
)

func TestComputeAll(t *testing.T) {
	groups := distmeta.Groups{
		"box2d":              {"box2d-py==2.3.5", "pygame==2.1.0"},
		"toy_text":           {"pygame==2.1.0"},
		"accept-rom-license": {"autorom[accept-rom-license]~=0.4.2"},
	}

	got, err := distmeta.ComputeAll(groups, distmeta.NewSet("accept-rom-license"))
	if err != nil {
		t.Fatalf("ComputeAll failed: %v", err)
	}
	want := []string{"box2d-py==2.3.5", "pygame==2.1.0"}
	if !slices.Equal(got, want) {
		t.Errorf("ComputeAll = %v, want %v", got, want)
	}

	if _, err := distmeta.ComputeAll(groups, distmeta.NewSet(distmeta.AllGroup)); !errors.Is(err, distmeta.ErrSelfExclusion) {
		t.Errorf("expected ErrSelfExclusion, got %v", err)
	}
}

func TestFinalizeDefaults(t *testing.T) {
	declared := distmeta.Groups{
		"atari":              {"ale-py~=0.8.0"},
		"accept-rom-license": {"autorom[accept-rom-license]~=0.4.2"},
	}

	final, err := distmeta.Finalize(declared, nil)
	if err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}
	if !slices.Equal(final[distmeta.AllGroup], []string{"ale-py~=0.8.0"}) {
		t.Errorf("all = %v", final[distmeta.AllGroup])
	}
	if _, ok := declared[distmeta.AllGroup]; ok {
		t.Error("Finalize modified its input")
	}
}

func TestLoadAndSelect(t *testing.T) {
	d, err := distmeta.Load(filepath.Join("internal", "manifest", "testdata", "gym", "distmeta.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if d.Version != "0.26.2" {
		t.Errorf("Version = %q, want 0.26.2", d.Version)
	}

	sel := distmeta.Select(d, []string{"box2d", "nonexistent"})
	want := []string{
		"numpy>=1.18.0",
		"cloudpickle>=1.2.0,<1.7.0",
		"box2d-py==2.3.5",
		"pygame==2.1.0",
		"swig==4.*",
	}
	if !slices.Equal(sel.Requirements, want) {
		t.Errorf("Requirements = %v, want %v", sel.Requirements, want)
	}
	if !slices.Equal(sel.Unknown, []string{"nonexistent"}) {
		t.Errorf("Unknown = %v", sel.Unknown)
	}
}

func TestParseRequirement(t *testing.T) {
	r := distmeta.ParseRequirement("autorom[accept-rom-license]~=0.4.2")
	if r.Name != "autorom" || r.Constraint != "~=0.4.2" {
		t.Errorf("unexpected requirement %+v", r)
	}
	if distmeta.NormalizeName("Box2D_py") != "box2d-py" {
		t.Errorf("NormalizeName did not normalize")
	}
}

func TestPackageURL(t *testing.T) {
	s := distmeta.PackageURL("Box2D_py", "2.3.5")
	if s != "pkg:pypi/box2d-py@2.3.5" {
		t.Errorf("PackageURL = %q", s)
	}
	if _, err := distmeta.ParsePURL(s); err != nil {
		t.Errorf("ParsePURL(%q) failed: %v", s, err)
	}
}

func TestNewIndex(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/pypi/gym/json" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"info": map[string]any{
				"name":    "gym",
				"version": "0.26.2",
				"summary": "The OpenAI Gym",
			},
			"releases": map[string]any{},
		})
	}))
	defer server.Close()

	idx := distmeta.NewIndex(server.URL, distmeta.NewClient(distmeta.WithMaxRetries(0)))

	proj, err := idx.FetchProject(context.Background(), "gym")
	if err != nil {
		t.Fatalf("FetchProject failed: %v", err)
	}
	if proj.LatestVersion != "0.26.2" {
		t.Errorf("LatestVersion = %q", proj.LatestVersion)
	}

	_, err = idx.FetchProject(context.Background(), "missing")
	if !errors.Is(err, distmeta.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
