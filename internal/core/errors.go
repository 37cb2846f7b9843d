package core

import "go.trai.ch/zerr"

var (
	// ErrSelfExclusion is returned when a derived group lists itself as excluded.
	ErrSelfExclusion = zerr.New("derived group cannot exclude itself")

	// ErrReservedGroup is returned when a declared group reuses a derived group's name.
	ErrReservedGroup = zerr.New("group name is reserved for a derived group")

	// ErrDuplicateGroup is returned when two derived groups share a name.
	ErrDuplicateGroup = zerr.New("derived group declared more than once")

	// ErrInvalidGroupName is returned for empty group names.
	ErrInvalidGroupName = zerr.New("group name must not be empty")

	// ErrMissingName is returned when a descriptor has no distribution name.
	ErrMissingName = zerr.New("missing distribution name")

	// ErrMissingVersion is returned when neither a version nor a version file resolves.
	ErrMissingVersion = zerr.New("missing distribution version")

	// ErrManifestNotFound is returned when the manifest file does not exist.
	ErrManifestNotFound = zerr.New("manifest not found")

	// ErrManifestExists is returned by init when it would overwrite a manifest.
	ErrManifestExists = zerr.New("manifest already exists")

	// ErrCheckFailed is returned when index lookups failed for some requirements.
	ErrCheckFailed = zerr.New("index check failed")

	// ErrDownloadFailed is returned when one or more artifacts could not be fetched.
	ErrDownloadFailed = zerr.New("download failed")
)
