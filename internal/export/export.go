// Package export writes final tables as highlighted workbooks.
package export

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/agentstation/dnmerge/pkg/cell"
	"github.com/agentstation/dnmerge/pkg/constants"
	"github.com/agentstation/dnmerge/pkg/errors"
	"github.com/agentstation/dnmerge/pkg/report"
)

const (
	minColWidth = 10
	maxColWidth = 60
)

// Option configures an Exporter.
type Option func(*options) error

type options struct {
	sheet         string
	highlightRows int
	freezeHeader  bool
}

func defaultOptions() *options {
	return &options{
		sheet:         constants.DefaultSheetName,
		highlightRows: constants.XLSXHighlightRows,
		freezeHeader:  true,
	}
}

func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// WithSheetName sets the name of the output sheet.
func WithSheetName(name string) Option {
	return func(o *options) error {
		name = strings.TrimSpace(name)
		if name == "" || utf8.RuneCountInString(name) > 31 || strings.ContainsAny(name, `:\/?*[]`) {
			return &errors.ValidationError{Field: "sheet", Value: name, Message: "invalid sheet name"}
		}
		o.sheet = name
		return nil
	}
}

// WithHighlightRows sets the last row covered by highlighting. Values
// below the table length are raised to it.
func WithHighlightRows(n int) Option {
	return func(o *options) error {
		if n < 2 {
			return &errors.ValidationError{Field: "highlightRows", Value: n, Message: "must be at least 2"}
		}
		o.highlightRows = n
		return nil
	}
}

// WithFreezeHeader keeps the header row visible while scrolling.
func WithFreezeHeader(freeze bool) Option {
	return func(o *options) error {
		o.freezeHeader = freeze
		return nil
	}
}

// Exporter writes FinalTables as single-sheet workbooks.
type Exporter struct {
	opts *options
}

// New creates an Exporter.
func New(opts ...Option) (*Exporter, error) {
	o, err := defaultOptions().apply(opts...)
	if err != nil {
		return nil, err
	}
	return &Exporter{opts: o}, nil
}

// Sheet returns the name of the output sheet.
func (e *Exporter) Sheet() string {
	return e.opts.sheet
}

// Export writes ft to w. Each highlight rule becomes a conditional format
// over its column, from the first data row down to the highlight limit.
func (e *Exporter) Export(w io.Writer, ft *report.FinalTable) error {
	if ft == nil {
		return &errors.ValidationError{Field: "table", Message: "cannot be nil"}
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := e.opts.sheet
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return errors.WrapIO("export", sheet, err)
	}

	if err := e.writeRows(f, ft); err != nil {
		return err
	}
	if err := e.highlight(f, ft); err != nil {
		return err
	}
	if err := e.layout(f, ft); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return errors.WrapIO("write", sheet, err)
	}
	return nil
}

func (e *Exporter) writeRows(f *excelize.File, ft *report.FinalTable) error {
	sheet := e.opts.sheet

	header := make([]any, len(ft.Columns))
	for i, c := range ft.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return errors.WrapIO("write header", sheet, err)
	}

	for i, row := range ft.Rows {
		values := make([]any, len(row))
		for j, v := range row {
			values[j] = cellValue(v)
		}
		ref, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return errors.WrapIO("write row", sheet, err)
		}
		if err := f.SetSheetRow(sheet, ref, &values); err != nil {
			return errors.WrapIO("write row", sheet, err)
		}
	}
	return nil
}

func (e *Exporter) highlight(f *excelize.File, ft *report.FinalTable) error {
	sheet := e.opts.sheet
	last := e.opts.highlightRows
	if n := ft.Len() + 1; n > last {
		last = n
	}

	for _, rule := range ft.Rules {
		col := columnIndex(ft.Columns, rule.Column)
		if col < 0 {
			return &errors.ValidationError{
				Field:   "rules",
				Value:   rule.Name,
				Message: fmt.Sprintf("column %q is not in the table", rule.Column),
			}
		}
		letter, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return errors.WrapIO("highlight", sheet, err)
		}

		style, err := f.NewConditionalStyle(&excelize.Style{
			Font: &excelize.Font{Color: rule.Font},
			Fill: excelize.Fill{Type: "pattern", Color: []string{rule.Fill}, Pattern: 1},
		})
		if err != nil {
			return errors.WrapIO("highlight", sheet, err)
		}

		rangeRef := fmt.Sprintf("%s2:%s%d", letter, letter, last)
		err = f.SetConditionalFormat(sheet, rangeRef, []excelize.ConditionalFormatOptions{{
			Type:     "formula",
			Criteria: containsFormula(rule.Contains, letter+"2"),
			Format:   style,
		}})
		if err != nil {
			return errors.WrapIO("highlight", sheet, err)
		}
	}
	return nil
}

func (e *Exporter) layout(f *excelize.File, ft *report.FinalTable) error {
	sheet := e.opts.sheet
	if len(ft.Columns) == 0 {
		return nil
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return errors.WrapIO("layout", sheet, err)
	}
	if err := f.SetRowStyle(sheet, 1, 1, bold); err != nil {
		return errors.WrapIO("layout", sheet, err)
	}

	for i, c := range ft.Columns {
		width := utf8.RuneCountInString(c)
		for _, row := range ft.Rows {
			if i < len(row) {
				width = max(width, utf8.RuneCountInString(row[i].Display()))
			}
		}
		letter, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return errors.WrapIO("layout", sheet, err)
		}
		if err := f.SetColWidth(sheet, letter, letter, float64(min(max(width+2, minColWidth), maxColWidth))); err != nil {
			return errors.WrapIO("layout", sheet, err)
		}
	}

	if e.opts.freezeHeader {
		err := f.SetPanes(sheet, &excelize.Panes{
			Freeze:      true,
			YSplit:      1,
			TopLeftCell: "A2",
			ActivePane:  "bottomLeft",
		})
		if err != nil {
			return errors.WrapIO("layout", sheet, err)
		}
	}
	return nil
}

// containsFormula matches cells containing text, case-insensitively.
func containsFormula(text, ref string) string {
	return fmt.Sprintf(`ISNUMBER(SEARCH("%s",%s))`, strings.ReplaceAll(text, `"`, `""`), ref)
}

func cellValue(v cell.Value) any {
	switch v.Kind() {
	case cell.KindNumber:
		f, _ := v.Float()
		return f
	case cell.KindText:
		return v.String()
	default:
		return nil
	}
}

func columnIndex(columns []string, name string) int {
	for i, c := range columns {
		if c == name {
			return i
		}
	}
	return -1
}
