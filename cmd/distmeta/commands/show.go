package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/git-pkgs/distmeta/client"
	"github.com/git-pkgs/distmeta/internal/license"
	"github.com/git-pkgs/distmeta/internal/pep508"
	"github.com/git-pkgs/distmeta/internal/pypi"
	"github.com/git-pkgs/purl"
	"github.com/spf13/cobra"
	"go.trai.ch/zerr"
)

func (c *CLI) newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show distribution metadata and license status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := c.load()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			field(out, "name", d.Name)
			field(out, "version", d.Version)
			field(out, "summary", d.Description)
			field(out, "url", d.URL)
			field(out, "author", d.Author)
			field(out, "author-email", d.AuthorEmail)
			field(out, "python", d.PythonRequires)
			field(out, "zip-safe", fmt.Sprint(d.ZipSafe))

			lic := license.Check(d.License, d.Classifiers)
			switch {
			case lic.Source == license.SourceNone:
				field(out, "license", "(none declared)")
			case lic.Valid:
				field(out, "license", fmt.Sprintf("%s (from %s)", lic.Effective, lic.Source))
			default:
				field(out, "license", fmt.Sprintf("%s (invalid SPDX: %s)", lic.Effective, strings.Join(lic.Invalid, ", ")))
			}

			field(out, "requires", strings.Join(d.InstallRequires, ", "))
			field(out, "extras", strings.Join(d.Extras.Names(), ", "))
			if len(d.TestsRequire) > 0 {
				field(out, "tests", strings.Join(d.TestsRequire, ", "))
			}
			_, _ = fmt.Fprintln(out, "links:")
			urls := pypi.New(c.config().IndexURL, nil).URLs()
			for _, l := range client.Links(urls, d.Name, d.Version) {
				_, _ = fmt.Fprintf(out, "  %-9s %s\n", l.Kind, l.URL)
			}
			if len(d.Classifiers) > 0 {
				_, _ = fmt.Fprintln(out, "classifiers:")
				for _, cl := range d.Classifiers {
					_, _ = fmt.Fprintf(out, "  %s\n", cl)
				}
			}
			return nil
		},
	}
}

func field(w io.Writer, key, value string) {
	if value == "" {
		return
	}
	_, _ = fmt.Fprintf(w, "%-13s %s\n", key+":", value)
}

func (c *CLI) newPurlsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "purls [group...]",
		Short: "Print package URLs for the selected requirements",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := c.load()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, spec := range c.app.Select(d, args).Requirements {
				req := pep508.Parse(spec)
				version, _ := pep508.Pinned(req)
				p := pypi.PURL(req.Name, version)
				if _, err := purl.Parse(p); err != nil {
					return zerr.With(zerr.Wrap(err, "generated invalid package URL"), "requirement", spec)
				}
				_, _ = fmt.Fprintln(out, p)
			}
			return nil
		},
	}
}
