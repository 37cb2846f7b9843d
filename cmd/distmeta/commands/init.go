package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/git-pkgs/distmeta/internal/core"
	"github.com/git-pkgs/distmeta/internal/manifest"
	"github.com/spf13/cobra"
	"go.trai.ch/zerr"
)

func (c *CLI) newInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the reference gym manifest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := c.manifestPath
			if !force {
				if _, err := os.Stat(path); err == nil {
					return zerr.With(zerr.Wrap(core.ErrManifestExists, "refusing to overwrite"), "path", path)
				} else if !errors.Is(err, fs.ErrNotExist) {
					return zerr.With(zerr.Wrap(err, "failed to stat manifest"), "path", path)
				}
			}

			if err := os.WriteFile(path, manifest.Gym(), 0o644); err != nil {
				return zerr.With(zerr.Wrap(err, "failed to write manifest"), "path", path)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing manifest")
	return cmd
}
