package pep508

import (
	"slices"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		spec           string
		wantName       string
		wantExtras     []string
		wantConstraint string
		wantMarker     string
	}{
		{"ale-py~=0.8.0", "ale-py", nil, "~=0.8.0", ""},
		{"autorom[accept-rom-license]~=0.4.2", "autorom", []string{"accept-rom-license"}, "~=0.4.2", ""},
		{"mujoco_py<2.2,>=2.1", "mujoco_py", nil, "<2.2,>=2.1", ""},
		{"swig==4.*", "swig", nil, "==4.*", ""},
		{"pytest", "pytest", nil, "*", ""},
		{"requests[security, socks] (>=2.0)", "requests", []string{"security", "socks"}, ">=2.0", ""},
		{"pywin32>=1.0; sys_platform == 'win32'", "pywin32", nil, ">=1.0", "sys_platform == 'win32'"},
		{"x", "x", nil, "*", ""},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			req := Parse(tt.spec)
			if req.Raw != tt.spec {
				t.Errorf("Raw = %q", req.Raw)
			}
			if req.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", req.Name, tt.wantName)
			}
			if !slices.Equal(req.Extras, tt.wantExtras) {
				t.Errorf("Extras = %v, want %v", req.Extras, tt.wantExtras)
			}
			if req.Constraint != tt.wantConstraint {
				t.Errorf("Constraint = %q, want %q", req.Constraint, tt.wantConstraint)
			}
			if req.Marker != tt.wantMarker {
				t.Errorf("Marker = %q, want %q", req.Marker, tt.wantMarker)
			}
		})
	}
}

func TestParseInvalidName(t *testing.T) {
	req := Parse("  >=1.0")
	if req.Name != ">=1.0" || req.Constraint != "*" {
		t.Errorf("unexpected parse of malformed spec: %+v", req)
	}
}

func TestNormalizeName(t *testing.T) {
	tests := map[string]string{
		"Box2D-py":       "box2d-py",
		"mujoco_py":      "mujoco-py",
		"zope.interface": "zope-interface",
		"a__-.b":         "a-b",
	}
	for in, want := range tests {
		if got := NormalizeName(in); got != want {
			t.Errorf("NormalizeName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPinned(t *testing.T) {
	tests := []struct {
		spec string
		want string
		ok   bool
	}{
		{"box2d-py==2.3.5", "2.3.5", true},
		{"pygame===2.1.0", "2.1.0", true},
		{"swig==4.*", "", false},
		{"mujoco_py<2.2,>=2.1", "", false},
		{"ale-py~=0.8.0", "", false},
		{"pytest", "", false},
	}
	for _, tt := range tests {
		got, ok := Pinned(Parse(tt.spec))
		if got != tt.want || ok != tt.ok {
			t.Errorf("Pinned(%q) = %q, %v; want %q, %v", tt.spec, got, ok, tt.want, tt.ok)
		}
	}
}
