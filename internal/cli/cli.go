// Package cli implements the flexo command-line surface, grounded on the
// teacher's internal/cli root-command scaffold.
package cli

import (
	"github.com/spf13/cobra"
)

// App represents the CLI application with all wired dependencies.
type App struct {
	rootCmd *cobra.Command

	verbose bool

	version string
	commit  string
	date    string
}

// New creates a new CLI application with all subcommands registered.
func New() *App {
	app := &App{}
	app.setupRootCmd()
	app.rootCmd.AddCommand(
		NewServeCmd(app),
		NewDiscoverCmd(app),
		NewTailCmd(app),
		NewVersionCmd(app),
	)
	return app
}

// Execute runs the CLI application.
func (a *App) Execute() error {
	return a.rootCmd.Execute()
}

// SetVersion sets the version string for the version command.
func (a *App) SetVersion(version, commit, date string) {
	a.version = version
	a.commit = commit
	a.date = date
}

func (a *App) setupRootCmd() {
	a.rootCmd = &cobra.Command{
		Use:   "flexo",
		Short: "Caching download proxy and mirror-selection scheduler",
		Long: `flexo caches packages fetched from a list of mirrors, picking the
best-ranked mirror for each download and falling back to the next one on
failure.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	a.rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false,
		"Verbose output")
}
