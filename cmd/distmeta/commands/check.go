package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/git-pkgs/distmeta/internal/core"
	"github.com/spf13/cobra"
	"go.trai.ch/zerr"
)

func (c *CLI) newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check [group...]",
		Short: "Look up the selected requirements on the package index",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := c.load()
			if err != nil {
				return err
			}
			results, err := c.app.Check(cmd.Context(), d, args)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "PROJECT\tLATEST\tSTATUS\tREQUIRED AS")
			var failed, missing int
			for _, r := range results {
				status := "ok"
				switch {
				case r.Err != nil:
					status = "error"
					failed++
				case !r.Found:
					status = "not found"
					missing++
				}
				latest := r.Latest
				if latest == "" {
					latest = "-"
				}
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Name, latest, status, strings.Join(r.Specs, ", "))
			}
			_ = tw.Flush()

			if failed > 0 || missing > 0 {
				return zerr.With(zerr.With(zerr.Wrap(core.ErrCheckFailed, "some requirements are unresolved"),
					"failed", failed), "missing", missing)
			}
			return nil
		},
	}
}
