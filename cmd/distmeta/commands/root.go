// Package commands implements the CLI commands for distmeta.
package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/git-pkgs/distmeta/internal/app"
	"github.com/git-pkgs/distmeta/internal/build"
	"github.com/git-pkgs/distmeta/internal/core"
	"github.com/git-pkgs/distmeta/internal/extras"
	"github.com/git-pkgs/distmeta/internal/manifest"
	"github.com/spf13/cobra"
)

// IndexURLEnv overrides the package index when --index-url is not given.
const IndexURLEnv = "DISTMETA_INDEX_URL"

// CLI represents the command line interface for distmeta.
type CLI struct {
	app     Application
	rootCmd *cobra.Command

	manifestPath string
	indexURL     string
	jsonLogs     bool
	debug        bool
}

// Application represents the application logic interface.
type Application interface {
	Configure(cfg app.Config)
	Load(path string) (*core.Descriptor, error)
	Select(d *core.Descriptor, groups []string) extras.Selection
	Check(ctx context.Context, d *core.Descriptor, groups []string) ([]app.CheckResult, error)
	Download(ctx context.Context, d *core.Descriptor, groups []string, dir string) ([]app.DownloadResult, error)
}

// New creates a new CLI instance with the given app.
func New(a Application) *CLI {
	c := &CLI{app: a}

	rootCmd := &cobra.Command{
		Use:           "distmeta",
		Short:         "Inspect and resolve Python distribution descriptors",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			c.app.Configure(c.config())
		},
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&c.manifestPath, "manifest", "f", manifest.DefaultFileName, "Path to the distribution manifest")
	flags.StringVar(&c.indexURL, "index-url", "", "Base URL of the package index (env "+IndexURLEnv+")")
	flags.BoolVar(&c.jsonLogs, "json-logs", false, "Emit logs as JSON")
	flags.BoolVar(&c.debug, "debug", false, "Enable debug logging")

	c.rootCmd = rootCmd

	rootCmd.AddCommand(c.newExtrasCmd())
	rootCmd.AddCommand(c.newAllCmd())
	rootCmd.AddCommand(c.newRequiresCmd())
	rootCmd.AddCommand(c.newShowCmd())
	rootCmd.AddCommand(c.newPurlsCmd())
	rootCmd.AddCommand(c.newFilesCmd())
	rootCmd.AddCommand(c.newCheckCmd())
	rootCmd.AddCommand(c.newDownloadCmd())
	rootCmd.AddCommand(c.newInitCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

func (c *CLI) config() app.Config {
	indexURL := c.indexURL
	if indexURL == "" {
		indexURL = os.Getenv(IndexURLEnv)
	}
	return app.Config{
		IndexURL: indexURL,
		JSONLogs: c.jsonLogs,
		Debug:    c.debug,
	}
}

func (c *CLI) load() (*core.Descriptor, error) {
	return c.app.Load(c.manifestPath)
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}
