// Package pep508 splits dependency specifiers into name, extras, version
// constraint and environment marker. It does not evaluate constraints.
package pep508

import (
	"regexp"
	"strings"

	"github.com/git-pkgs/distmeta/internal/core"
)

var (
	nameRegex      = regexp.MustCompile(`^([A-Za-z0-9][-A-Za-z0-9._]*[A-Za-z0-9]|[A-Za-z0-9])\s*(\[[^\]]*\])?`)
	normalizeRegex = regexp.MustCompile(`[-_.]+`)
)

// Parse splits spec. A spec that does not start with a valid project name
// keeps the whole left-hand side as Name.
func Parse(spec string) core.Requirement {
	req := core.Requirement{Raw: spec}

	// Split on ; first to get environment markers
	parts := strings.SplitN(spec, ";", 2)
	nameAndVersion := strings.TrimSpace(parts[0])
	if len(parts) > 1 {
		req.Marker = strings.TrimSpace(parts[1])
	}

	match := nameRegex.FindStringSubmatch(nameAndVersion)
	if match == nil {
		req.Name = nameAndVersion
		req.Constraint = "*"
		return req
	}

	req.Name = match[1]
	if match[2] != "" {
		for _, extra := range strings.Split(strings.Trim(match[2], "[]"), ",") {
			if extra = strings.TrimSpace(extra); extra != "" {
				req.Extras = append(req.Extras, extra)
			}
		}
	}

	constraint := strings.TrimSpace(nameAndVersion[len(match[0]):])
	// Remove parentheses from version spec
	constraint = strings.TrimSpace(strings.Trim(constraint, "()"))
	if constraint == "" {
		constraint = "*"
	}
	req.Constraint = constraint
	return req
}

// NormalizeName applies PEP 503 normalization.
func NormalizeName(name string) string {
	return normalizeRegex.ReplaceAllString(strings.ToLower(name), "-")
}

// Pinned returns the exact version a requirement pins with == or ===.
// Wildcards and compound constraints are not pins.
func Pinned(req core.Requirement) (string, bool) {
	c := req.Constraint
	if strings.Contains(c, ",") {
		return "", false
	}

	var version string
	switch {
	case strings.HasPrefix(c, "==="):
		version = strings.TrimSpace(c[3:])
	case strings.HasPrefix(c, "=="):
		version = strings.TrimSpace(c[2:])
	default:
		return "", false
	}

	if version == "" || strings.Contains(version, "*") {
		return "", false
	}
	return version, true
}
