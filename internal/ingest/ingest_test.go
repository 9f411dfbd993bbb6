package ingest_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/agentstation/dnmerge/internal/ingest"
	"github.com/agentstation/dnmerge/pkg/cell"
	pkgerrors "github.com/agentstation/dnmerge/pkg/errors"
)

func newLoader(t *testing.T, opts ...ingest.Option) *ingest.Loader {
	t.Helper()
	l, err := ingest.New(opts...)
	require.NoError(t, err)
	return l
}

func TestDetect(t *testing.T) {
	assert.Equal(t, ingest.FormatCSV, ingest.Detect("report.csv"))
	assert.Equal(t, ingest.FormatCSV, ingest.Detect("REPORT.CSV"))
	assert.Equal(t, ingest.FormatXLSX, ingest.Detect("book.xlsx"))
	assert.Equal(t, ingest.FormatXLSX, ingest.Detect("noext"))
	assert.Equal(t, ingest.FormatCSV, ingest.FormatAuto.Resolve("a.csv"))
	assert.Equal(t, ingest.FormatXLSX, ingest.FormatXLSX.Resolve("a.csv"))
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]ingest.Format{
		"": ingest.FormatAuto, "auto": ingest.FormatAuto, "CSV": ingest.FormatCSV, "excel": ingest.FormatXLSX,
	} {
		got, err := ingest.ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ingest.ParseFormat("parquet")
	assert.True(t, pkgerrors.IsValidationError(err))
}

func TestLoadCSV(t *testing.T) {
	data := "\uFEFF DN NUMBER (SAP) ,Material,,Weight (kg)\n" +
		"100,Steel,x,12.5\n" +
		"\n" +
		",,,\n" +
		"00123,,y\n"

	ds, err := newLoader(t).Load(context.Background(), "primary.csv", strings.NewReader(data), ingest.FormatAuto)
	require.NoError(t, err)

	assert.Equal(t, "primary.csv", ds.Name)
	assert.Equal(t, []string{"DN NUMBER (SAP)", "Material", "Unnamed: 2", "Weight (kg)"}, ds.Columns)
	require.Equal(t, 2, ds.Len())

	assert.Equal(t, []cell.Value{cell.Text("100"), cell.Text("Steel"), cell.Text("x"), cell.Text("12.5")}, ds.Rows[0])
	assert.Equal(t, cell.Text("00123"), ds.Rows[1][0])
	assert.True(t, ds.Rows[1][1].IsEmpty())
	assert.True(t, ds.Rows[1][3].IsEmpty())
}

func TestLoadCSVSemicolon(t *testing.T) {
	data := "Zakázka (Delivery);Váha\n200;3,5\n"
	ds, err := newLoader(t, ingest.WithComma(';')).Load(context.Background(), "secondary", strings.NewReader(data), ingest.FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, []string{"Zakázka (Delivery)", "Váha"}, ds.Columns)
	assert.Equal(t, cell.Text("3,5"), ds.Rows[0][1])

	_, err = ingest.New(ingest.WithComma('"'))
	assert.True(t, pkgerrors.IsValidationError(err))
}

func TestLoadCSVErrors(t *testing.T) {
	l := newLoader(t)

	_, err := l.Load(context.Background(), "empty.csv", strings.NewReader(""), ingest.FormatAuto)
	assert.True(t, pkgerrors.IsUnreadableInput(err))

	_, err = l.Load(context.Background(), "bad.csv", strings.NewReader("a,b\n\"1,2\n"), ingest.FormatAuto)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsUnreadableInput(err))
	assert.Contains(t, err.Error(), "bad.csv")

	lazy := newLoader(t, ingest.WithLazyQuotes(true))
	ds, err := lazy.Load(context.Background(), "lazy.csv", strings.NewReader("a,b\n1,x\"y\n"), ingest.FormatAuto)
	require.NoError(t, err)
	assert.Equal(t, cell.Text("x\"y"), ds.Rows[0][1])

	_, err = l.Load(context.Background(), "nil.csv", nil, ingest.FormatAuto)
	assert.True(t, pkgerrors.IsUnreadableInput(err))
}

func TestLoadCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newLoader(t).Load(ctx, "a.csv", strings.NewReader("a\n1\n"), ingest.FormatAuto)
	assert.True(t, pkgerrors.IsCanceled(err))
	assert.ErrorIs(t, err, context.Canceled)
}

func workbook(t *testing.T, sheet string, rows ...[]any) *bytes.Buffer {
	t.Helper()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	if sheet != "Sheet1" {
		require.NoError(t, f.SetSheetName("Sheet1", sheet))
	}
	for i, r := range rows {
		ref, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		row := r
		require.NoError(t, f.SetSheetRow(sheet, ref, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestLoadXLSX(t *testing.T) {
	buf := workbook(t, "Data",
		[]any{"DN NUMBER (SAP)", " Material ", "Weight (kg)", "Code"},
		[]any{100, "Steel", 12.5, "00123"},
		[]any{nil, nil, nil, nil},
		[]any{"200", nil, 7, nil},
	)

	ds, err := newLoader(t).Load(context.Background(), "primary.xlsx", buf, ingest.FormatAuto)
	require.NoError(t, err)

	assert.Equal(t, []string{"DN NUMBER (SAP)", "Material", "Weight (kg)", "Code"}, ds.Columns)
	require.Equal(t, 2, ds.Len())

	assert.Equal(t, cell.Number(100), ds.Rows[0][0])
	assert.Equal(t, cell.Text("Steel"), ds.Rows[0][1])
	assert.Equal(t, cell.Number(12.5), ds.Rows[0][2])
	assert.Equal(t, cell.Text("00123"), ds.Rows[0][3])

	assert.Equal(t, cell.Text("200"), ds.Rows[1][0])
	assert.True(t, ds.Rows[1][1].IsEmpty())
	assert.Equal(t, cell.Number(7), ds.Rows[1][2])
	assert.True(t, ds.Rows[1][3].IsEmpty())
}

func TestLoadXLSXDate(t *testing.T) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "Delivery date"))
	require.NoError(t, f.SetCellValue("Sheet1", "A2", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	ds, err := newLoader(t).Load(context.Background(), "dates.xlsx", buf, ingest.FormatXLSX)
	require.NoError(t, err)
	require.Equal(t, 1, ds.Len())
	assert.Equal(t, cell.KindText, ds.Rows[0][0].Kind())
}

func TestLoadXLSXSheet(t *testing.T) {
	buf := workbook(t, "Report", []any{"ID"}, []any{"1"})

	ds, err := newLoader(t, ingest.WithSheet("report")).Load(context.Background(), "b.xlsx", bytes.NewReader(buf.Bytes()), ingest.FormatAuto)
	require.NoError(t, err)
	assert.Equal(t, 1, ds.Len())

	_, err = newLoader(t, ingest.WithSheet("Missing")).Load(context.Background(), "b.xlsx", bytes.NewReader(buf.Bytes()), ingest.FormatAuto)
	assert.True(t, pkgerrors.IsUnreadableInput(err))
	assert.Contains(t, err.Error(), "Missing")
}

func TestLoadXLSXErrors(t *testing.T) {
	l := newLoader(t)

	_, err := l.Load(context.Background(), "broken.xlsx", strings.NewReader("not a workbook"), ingest.FormatAuto)
	assert.True(t, pkgerrors.IsUnreadableInput(err))

	empty := workbook(t, "Sheet1")
	_, err = l.Load(context.Background(), "empty.xlsx", empty, ingest.FormatAuto)
	assert.True(t, pkgerrors.IsUnreadableInput(err))
}
