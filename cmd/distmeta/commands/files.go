package commands

import (
	"fmt"
	"path/filepath"
	"slices"

	"github.com/git-pkgs/distmeta/internal/layout"
	"github.com/spf13/cobra"
	"go.trai.ch/zerr"
)

func (c *CLI) newFilesCmd() *cobra.Command {
	var root string

	cmd := &cobra.Command{
		Use:   "files",
		Short: "List discovered packages and bundled package data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := c.load()
			if err != nil {
				return err
			}
			if root == "" {
				root = filepath.Dir(c.manifestPath)
			}

			pkgs, err := layout.FindPackages(root, d.PackagePrefix)
			if err != nil {
				return zerr.With(zerr.Wrap(err, "failed to discover packages"), "root", root)
			}
			data, err := layout.ExpandData(root, d.PackageData)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintln(out, "packages:")
			for _, p := range pkgs {
				_, _ = fmt.Fprintf(out, "  %s\n", p)
			}

			names := make([]string, 0, len(d.PackageData))
			for name := range d.PackageData {
				names = append(names, name)
			}
			slices.Sort(names)

			if len(names) > 0 {
				_, _ = fmt.Fprintln(out, "package data:")
			}
			errOut := cmd.ErrOrStderr()
			for _, name := range names {
				for _, f := range data.Files[name] {
					_, _ = fmt.Fprintf(out, "  %s/%s\n", name, f)
				}
				for _, pattern := range data.Missing[name] {
					_, _ = fmt.Fprintf(errOut, "warning: %s: %s matched no files\n", name, pattern)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&root, "root", "", "Source tree to scan (defaults to the manifest directory)")
	return cmd
}
