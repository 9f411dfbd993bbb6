package run_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/agentstation/dnmerge"
	"github.com/agentstation/dnmerge/cmd/dnmerge/cmd/run"
	"github.com/agentstation/dnmerge/internal/cmd/application"
	pkgerrors "github.com/agentstation/dnmerge/pkg/errors"
)

const (
	primaryCSV = "DN NUMBER (SAP),Material,Number of pieces,Weight (kg)\n" +
		"100,Steel,,\n" +
		"150,Glass,2,3.5\n"
	secondaryCSV = "Zakázka (Delivery),Materiál,Počet kusů,Hmotnost (kg)\n" +
		"100.0,Iron,4,50\n" +
		"200,Wood,,7\n"
)

func writeInputs(t *testing.T, primary, secondary string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	p := filepath.Join(dir, "primary.csv")
	s := filepath.Join(dir, "secondary.csv")
	require.NoError(t, os.WriteFile(p, []byte(primary), 0o600))
	require.NoError(t, os.WriteFile(s, []byte(secondary), 0o600))
	return p, s
}

func mockApp(format string) *application.Mock {
	return &application.Mock{OutputFormatFunc: func() string { return format }}
}

func TestExecuteJSON(t *testing.T) {
	p, s := writeInputs(t, primaryCSV, secondaryCSV)
	out := filepath.Join(t.TempDir(), "result.xlsx")

	var buf bytes.Buffer
	err := run.Execute(context.Background(), mockApp("json"), &buf, p, s, &run.Flags{Output: out, Preview: 10})
	require.NoError(t, err)

	var rep dnmerge.Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rep))
	assert.NotEmpty(t, rep.RunID)
	assert.Equal(t, 3, rep.Summary.Total)
	assert.Equal(t, 1, rep.Summary.Both)
	assert.Equal(t, 1, rep.Summary.PrimaryOnly)
	assert.Equal(t, 1, rep.Summary.SecondaryOnly)
	assert.Equal(t, 2, rep.Summary.Backfilled)
	assert.Len(t, rep.Preview, 2)

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	assert.Len(t, rows, 4)
	assert.Equal(t, "Status_Dat", rows[0][0])
}

func TestExecuteTable(t *testing.T) {
	p, s := writeInputs(t, primaryCSV, secondaryCSV)

	var buf bytes.Buffer
	err := run.Execute(context.Background(), mockApp("table"), &buf, p, s, &run.Flags{NoExport: true})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Summary")
	assert.Contains(t, buf.String(), "200")
}

func TestExecuteNoExport(t *testing.T) {
	p, s := writeInputs(t, primaryCSV, secondaryCSV)
	dir := t.TempDir()
	out := filepath.Join(dir, "result.xlsx")

	var buf bytes.Buffer
	require.NoError(t, run.Execute(context.Background(), mockApp("yaml"), &buf, p, s, &run.Flags{Output: out, NoExport: true}))
	assert.NoFileExists(t, out)
	assert.Contains(t, buf.String(), "summary:")
}

func TestExecuteErrors(t *testing.T) {
	p, s := writeInputs(t, primaryCSV, "Foo,Bar\n1,2\n")
	flags := &run.Flags{NoExport: true}

	err := run.Execute(context.Background(), mockApp("json"), &bytes.Buffer{}, p, s, flags)
	assert.True(t, pkgerrors.IsMissingKeyColumn(err), "got %v", err)

	err = run.Execute(context.Background(), mockApp("json"), &bytes.Buffer{}, p, filepath.Join(t.TempDir(), "missing.csv"), flags)
	require.Error(t, err)
	var ioErr *pkgerrors.IOError
	assert.ErrorAs(t, err, &ioErr)

	err = run.Execute(context.Background(), mockApp("json"), &bytes.Buffer{}, p, s, &run.Flags{NoExport: true, PrimaryFormat: "pdf"})
	assert.True(t, pkgerrors.IsValidationError(err))

	err = run.Execute(context.Background(), mockApp("xml"), &bytes.Buffer{}, p, s, flags)
	assert.Error(t, err)
}

func TestExecuteFailedExportLeavesNoFile(t *testing.T) {
	p, s := writeInputs(t, primaryCSV, secondaryCSV)
	out := filepath.Join(t.TempDir(), "missing-dir", "result.xlsx")

	err := run.Execute(context.Background(), mockApp("json"), &bytes.Buffer{}, p, s, &run.Flags{Output: out})
	require.Error(t, err)
	assert.NoFileExists(t, out)
}

func TestNewCommand(t *testing.T) {
	p, s := writeInputs(t, primaryCSV, secondaryCSV)
	out := filepath.Join(t.TempDir(), "cmd.xlsx")

	cmd := run.NewCommand(mockApp("json"))
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{p, s, "--output", out, "--preview", "-1"})
	require.NoError(t, cmd.ExecuteContext(context.Background()))
	assert.FileExists(t, out)

	cmd = run.NewCommand(mockApp("json"))
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{p})
	assert.Error(t, cmd.Execute())
}
