package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/dnmerge/cmd/dnmerge/cmd/run"
	"github.com/agentstation/dnmerge/cmd/dnmerge/cmd/schema"
	"github.com/agentstation/dnmerge/cmd/dnmerge/cmd/serve"
	"github.com/agentstation/dnmerge/internal/cmd/output"
)

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	// Core commands
	rootCmd.AddCommand(run.NewCommand(a))
	rootCmd.AddCommand(serve.NewCommand(a))

	// Management commands
	rootCmd.AddCommand(schema.NewCommand(a))

	// Utility commands
	rootCmd.AddCommand(a.newVersionCommand())
}

// versionInfo is the structured form of the version command output.
type versionInfo struct {
	Version string `json:"version" yaml:"version"`
	Commit  string `json:"commit" yaml:"commit"`
	Date    string `json:"date" yaml:"date"`
	BuiltBy string `json:"builtBy" yaml:"builtBy"`
}

// newVersionCommand creates the version command.
func (a *App) newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format := output.Format(a.config.Format)
			if format != "" && !format.Tabular() {
				info := versionInfo{Version: a.version, Commit: a.commit, Date: a.date, BuiltBy: a.builtBy}
				return output.NewFormatter(format).Format(cmd.OutOrStdout(), info)
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "dnmerge %s\n", a.version)
			if a.config.Verbose {
				fmt.Fprintf(w, "  commit:   %s\n", a.commit)
				fmt.Fprintf(w, "  built:    %s\n", a.date)
				fmt.Fprintf(w, "  built by: %s\n", a.builtBy)
			}
			return nil
		},
	}
}
