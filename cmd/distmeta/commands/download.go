package commands

import (
	"fmt"

	"github.com/git-pkgs/distmeta/internal/core"
	"github.com/spf13/cobra"
	"go.trai.ch/zerr"
)

func (c *CLI) newDownloadCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "download [group...]",
		Short: "Download the pinned requirements of the selection",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := c.load()
			if err != nil {
				return err
			}
			results, err := c.app.Download(cmd.Context(), d, args, dir)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			failed := 0
			for _, r := range results {
				switch {
				case r.Err != nil:
					failed++
					_, _ = fmt.Fprintf(out, "failed   %s: %v\n", r.Spec, r.Err)
				case r.Skipped:
					_, _ = fmt.Fprintf(out, "skipped  %s (not pinned)\n", r.Spec)
				default:
					_, _ = fmt.Fprintf(out, "fetched  %s -> %s\n", r.Spec, r.Path)
				}
			}
			if failed > 0 {
				return zerr.With(zerr.Wrap(core.ErrDownloadFailed, "some artifacts could not be fetched"), "failed", failed)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", "dist", "Destination directory")
	return cmd
}
