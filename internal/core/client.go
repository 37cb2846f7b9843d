package core

import (
	"github.com/git-pkgs/distmeta/client"
)

// Type aliases so internal packages depend on core only.
type (
	Client         = client.Client
	Option         = client.Option
	URLBuilder     = client.URLBuilder
	HTTPError      = client.HTTPError
	NotFoundError  = client.NotFoundError
	RateLimitError = client.RateLimitError
)

// Function aliases.
var (
	DefaultClient  = client.DefaultClient
	NewClient      = client.NewClient
	WithTimeout    = client.WithTimeout
	WithMaxRetries = client.WithMaxRetries
	ErrNotFound    = client.ErrNotFound
)
