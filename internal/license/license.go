// Package license checks a descriptor's license string against SPDX.
package license

import (
	"strings"

	"github.com/git-pkgs/spdx"
	"github.com/github/go-spdx/v2/spdxexp"
)

// Source records where the effective license came from.
type Source string

const (
	SourceField      Source = "field"
	SourceClassifier Source = "classifier"
	SourceNone       Source = "none"
)

// Result is the outcome of Check.
type Result struct {
	Declared  string
	Effective string
	Source    Source
	Valid     bool     // Effective is a valid SPDX expression
	Invalid   []string // rejected identifiers, if any
}

// Check resolves the effective license. The license field wins; otherwise the
// first "License ::" classifier is used. Neither present is not an error.
// Informal names ("MIT License", "Apache 2.0") are normalized to SPDX
// identifiers; names that cannot be normalized are kept and reported invalid.
func Check(declared string, classifiers []string) Result {
	r := Result{Declared: declared, Source: SourceNone}

	if s := strings.TrimSpace(declared); s != "" {
		r.Effective = normalize(s)
		r.Source = SourceField
	} else if leaf := classifierLicense(classifiers); leaf != "" {
		r.Effective = normalize(leaf)
		r.Source = SourceClassifier
	}

	if r.Effective == "" {
		return r
	}
	r.Valid, r.Invalid = spdxexp.ValidateLicenses([]string{r.Effective})
	return r
}

// normalize maps s to SPDX. Valid input is returned untouched. Only
// upper-case operators mark an expression, since classifier prose such as
// "v2 or later" is a single license.
func normalize(s string) string {
	if ok, _ := spdxexp.ValidateLicenses([]string{s}); ok {
		return s
	}
	if isExpression(s) {
		if expr, err := spdx.NormalizeExpressionLax(s); err == nil {
			return expr
		}
		return s
	}
	if id, err := spdx.Normalize(s); err == nil {
		return id
	}
	return s
}

func isExpression(s string) bool {
	for _, op := range []string{" OR ", " AND ", " WITH "} {
		if strings.Contains(s, op) {
			return true
		}
	}
	return false
}

func classifierLicense(classifiers []string) string {
	for _, classifier := range classifiers {
		if strings.HasPrefix(classifier, "License :: ") {
			parts := strings.Split(classifier, " :: ")
			return parts[len(parts)-1]
		}
	}
	return ""
}
