package commands

import (
	"fmt"

	"github.com/git-pkgs/distmeta/internal/core"
	"github.com/git-pkgs/distmeta/internal/extras"
	"github.com/spf13/cobra"
)

func (c *CLI) newExtrasCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "extras",
		Short: "List the extras groups and their requirements",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := c.load()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "fingerprint: %s\n", extras.Fingerprint(d.Extras))
			for _, name := range d.Extras.Names() {
				_, _ = fmt.Fprintf(out, "%s (%d)\n", name, len(d.Extras[name]))
				for _, spec := range d.Extras[name] {
					_, _ = fmt.Fprintf(out, "  %s\n", spec)
				}
			}
			return nil
		},
	}
}

func (c *CLI) newAllCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "all",
		Short: "Print the derived all group, one requirement per line",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := c.load()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, spec := range d.Extras[core.AllGroup] {
				_, _ = fmt.Fprintln(out, spec)
			}
			return nil
		},
	}
}

func (c *CLI) newRequiresCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "requires [group...]",
		Short: "Print what installing the distribution with the given extras pulls in",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := c.load()
			if err != nil {
				return err
			}
			sel := c.app.Select(d, args)
			out := cmd.OutOrStdout()
			for _, req := range sel.Requirements {
				_, _ = fmt.Fprintln(out, req)
			}
			return nil
		},
	}
}
