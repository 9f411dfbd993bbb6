// Package run provides the run command, which reconciles two delivery
// files and writes the highlighted comparison workbook.
package run

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/agentstation/dnmerge"
	"github.com/agentstation/dnmerge/internal/cmd/application"
	"github.com/agentstation/dnmerge/internal/cmd/output"
	"github.com/agentstation/dnmerge/internal/ingest"
	"github.com/agentstation/dnmerge/pkg/constants"
	"github.com/agentstation/dnmerge/pkg/errors"
	"github.com/agentstation/dnmerge/pkg/logging"
)

// Flags holds the run command flags.
type Flags struct {
	Output          string
	NoExport        bool
	Preview         int
	PrimaryFormat   string
	SecondaryFormat string
	Timeout         time.Duration
}

// NewCommand creates the run command.
func NewCommand(app application.Application) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:     "run <primary> <secondary>",
		GroupID: "core",
		Short:   "Reconcile a delivery workbook with a shipment report",
		Long: `Run joins the primary workbook with the secondary report on the delivery
number. Rows found in both files keep their primary values, blank primary
cells are filled from the report, and rows found in only one file are
kept and labeled. Every row is checked for the required fields.

The result is written as an Excel workbook with highlighted rows and a
summary with the rows that need attention is printed.`,
		Example: `  dnmerge run deliveries.xlsx report.csv
  dnmerge run deliveries.xlsx report.csv --output merged.xlsx
  dnmerge run a.csv b.csv --no-export --format json
  dnmerge run export.txt report.csv --primary-format csv --preview -1`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return Execute(cmd.Context(), app, cmd.OutOrStdout(), args[0], args[1], flags)
		},
	}

	cmd.Flags().StringVar(&flags.Output, "output", constants.DefaultOutputFile, "path of the exported workbook")
	cmd.Flags().BoolVar(&flags.NoExport, "no-export", false, "skip writing the workbook")
	cmd.Flags().IntVar(&flags.Preview, "preview", constants.PreviewRows, "rows needing attention to print (-1 for all)")
	cmd.Flags().StringVar(&flags.PrimaryFormat, "primary-format", "", "primary file format: csv, xlsx (default: by extension)")
	cmd.Flags().StringVar(&flags.SecondaryFormat, "secondary-format", "", "secondary file format: csv, xlsx (default: by extension)")
	cmd.Flags().DurationVar(&flags.Timeout, "timeout", constants.CommandTimeout, "maximum duration of the run")

	return cmd
}

// Execute performs a run and prints its report to w.
func Execute(ctx context.Context, app application.Application, w io.Writer, primaryPath, secondaryPath string, flags *Flags) error {
	format, err := output.ParseFormat(string(output.DetectFormat(app.OutputFormat())))
	if err != nil {
		return err
	}

	if flags.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, flags.Timeout)
		defer cancel()
	}
	logger := app.Logger()
	ctx = logging.WithLogger(ctx, logger)

	client, err := app.Client()
	if err != nil {
		return err
	}

	primary, err := openSource(primaryPath, flags.PrimaryFormat)
	if err != nil {
		return err
	}
	defer primary.Close()

	secondary, err := openSource(secondaryPath, flags.SecondaryFormat)
	if err != nil {
		return err
	}
	defer secondary.Close()

	outcome, err := client.Run(ctx, dnmerge.Input{
		Primary:   primary.Source,
		Secondary: secondary.Source,
	})
	if err != nil {
		return err
	}

	if !flags.NoExport {
		if err := writeWorkbook(outcome, flags.Output); err != nil {
			return err
		}
		logger.Info().Str("file", flags.Output).Str("run_id", outcome.RunID).Msg("Workbook written")
	}

	rep := outcome.Report(flags.Preview)
	formatter := output.NewFormatter(format)
	if !format.Tabular() {
		return formatter.Format(w, rep)
	}
	return formatter.Format(w, output.ReportData(rep, client.Schema().KeyColumn, format == output.FormatWide))
}

// openedSource is a Source backed by an open file.
type openedSource struct {
	dnmerge.Source
	file *os.File
}

func (s *openedSource) Close() error {
	return s.file.Close()
}

func openSource(path, format string) (*openedSource, error) {
	f, err := ingest.ParseFormat(format)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	return &openedSource{
		Source: dnmerge.Source{Name: filepath.Base(path), Reader: file, Format: f},
		file:   file,
	}, nil
}

// writeWorkbook writes the workbook next to path and renames it into place,
// so a failed export never leaves a truncated file behind.
func writeWorkbook(outcome *dnmerge.Outcome, path string) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".dnmerge-*.xlsx")
	if err != nil {
		return errors.WrapIO("create", path, err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if err = outcome.WriteXLSX(tmp); err != nil {
		return fmt.Errorf("exporting workbook: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return errors.WrapIO("write", path, err)
	}
	if err = os.Chmod(tmp.Name(), constants.FilePermissions); err != nil {
		return errors.WrapIO("chmod", path, err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return errors.WrapIO("rename", path, err)
	}
	return nil
}
