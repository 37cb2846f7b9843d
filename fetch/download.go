package fetch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/zerr"
)

// ErrIntegrityMismatch is returned when a downloaded file's digest differs
// from the one the index advertised.
var ErrIntegrityMismatch = zerr.New("integrity mismatch")

// Download streams info's artifact into dir and returns the written path.
// The file only appears under its final name once its digest checks out.
func Download(ctx context.Context, f FetcherInterface, info *ArtifactInfo, dir string) (string, error) {
	if err := checkFilename(info.Filename); err != nil {
		return "", err
	}

	artifact, err := f.Fetch(ctx, info.URL)
	if err != nil {
		return "", err
	}
	defer func() { _ = artifact.Body.Close() }()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to create download directory"), "dir", dir)
	}

	tmp, err := os.CreateTemp(dir, "."+info.Filename+".*")
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to create temp file"), "dir", dir)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	h := sha256.New()
	if _, err := io.Copy(io.MultiWriter(tmp, h), artifact.Body); err != nil {
		_ = tmp.Close()
		return "", zerr.With(zerr.Wrap(err, "failed to write artifact"), "filename", info.Filename)
	}
	if err := tmp.Close(); err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to write artifact"), "filename", info.Filename)
	}

	if want, ok := strings.CutPrefix(info.Integrity, "sha256-"); ok {
		if got := hex.EncodeToString(h.Sum(nil)); got != want {
			err := zerr.With(zerr.Wrap(ErrIntegrityMismatch, "downloaded artifact rejected"), "filename", info.Filename)
			return "", zerr.With(zerr.With(err, "got", got), "want", want)
		}
	}

	dst := filepath.Join(dir, info.Filename)
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to move artifact into place"), "filename", info.Filename)
	}
	return dst, nil
}
