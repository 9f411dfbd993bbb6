// Package schema provides commands to inspect, create, and validate the
// column schema runs are mapped onto.
package schema

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentstation/dnmerge/internal/cmd/application"
	"github.com/agentstation/dnmerge/internal/cmd/output"
	"github.com/agentstation/dnmerge/pkg/constants"
	"github.com/agentstation/dnmerge/pkg/errors"
	"github.com/agentstation/dnmerge/pkg/schema"
)

// NewCommand creates the schema command.
func NewCommand(app application.Application) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "schema",
		GroupID: "management",
		Short:   "Show, create, or validate the column schema",
		Long: `The schema names the delivery number column and its aliases, renames
secondary report columns onto the primary names, and lists the fields
every row must have.

Without a subcommand the active schema is printed. A custom schema is
selected with schema_file in the config file or DNMERGE_SCHEMA_FILE.`,
		Example: `  dnmerge schema
  dnmerge schema --format yaml
  dnmerge schema init > schema.yaml
  dnmerge schema validate schema.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}
			return printSchema(cmd.OutOrStdout(), app.OutputFormat(), client.Schema())
		},
	}

	cmd.AddCommand(newInitCommand())
	cmd.AddCommand(newValidateCommand(app))

	return cmd
}

func newInitCommand() *cobra.Command {
	var path string
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default schema as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if path == "" {
				return schema.Default().Encode(cmd.OutOrStdout())
			}
			flag := os.O_WRONLY | os.O_CREATE | os.O_EXCL
			if force {
				flag = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
			}
			f, err := os.OpenFile(path, flag, constants.FilePermissions)
			if err != nil {
				return errors.WrapIO("create", path, err)
			}
			if err := schema.Default().Encode(f); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return errors.WrapIO("write", path, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Schema written to %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&path, "file", "", "write to this file instead of stdout")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	return cmd
}

func newValidateCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a schema file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := schema.Load(args[0])
			if err != nil {
				return err
			}
			app.Logger().Debug().Str("file", args[0]).Str("key", cfg.KeyColumn).Msg("Schema is valid")
			fmt.Fprintf(cmd.OutOrStdout(), "%s: valid (%d mappings, %d required fields)\n",
				args[0], len(cfg.ColumnMapping), len(cfg.RequiredFields))
			return nil
		},
	}
}

// printSchema writes cfg in the requested format.
func printSchema(w io.Writer, format string, cfg *schema.Config) error {
	f, err := output.ParseFormat(string(output.DetectFormat(format)))
	if err != nil {
		return err
	}
	formatter := output.NewFormatter(f)
	if !f.Tabular() {
		return formatter.Format(w, cfg)
	}
	return formatter.Format(w, output.SchemaData(cfg))
}
