package ingest

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/agentstation/dnmerge/pkg/cell"
	"github.com/agentstation/dnmerge/pkg/errors"
	"github.com/agentstation/dnmerge/pkg/logging"
	"github.com/agentstation/dnmerge/pkg/table"
)

// readXLSX parses the first sheet of a workbook, or the sheet chosen with
// WithSheet. The first row is the header.
//
// Numeric cells become Numbers. A numeric cell whose number format renders
// something that is not a number, such as a date, keeps its displayed text.
func (l *Loader) readXLSX(ctx context.Context, name string, r io.Reader) (*table.Dataset, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.NewUnreadableInputError(name, FormatXLSX.String(), err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			logging.FromContext(ctx).Debug().Err(cerr).Str("dataset", name).Msg("Failed to close workbook")
		}
	}()

	sheet, err := l.sheet(f)
	if err != nil {
		return nil, errors.NewUnreadableInputError(name, FormatXLSX.String(), err)
	}

	shown, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.NewUnreadableInputError(name, FormatXLSX.String(), err)
	}
	raw, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, errors.NewUnreadableInputError(name, FormatXLSX.String(), err)
	}
	if len(shown) == 0 {
		return nil, errors.NewUnreadableInputError(name, FormatXLSX.String(), fmt.Errorf("sheet %q has no header row", sheet))
	}

	ds := &table.Dataset{Name: name, Columns: headers(shown[0])}
	for i := 1; i < len(shown); i++ {
		if i%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, errors.WrapCanceled("read "+name, err)
			}
		}
		if blankRecord(shown[i]) {
			continue
		}

		row := make([]cell.Value, len(ds.Columns))
		for j := range row {
			if j >= len(shown[i]) || shown[i][j] == "" {
				continue
			}
			var rawValue string
			if i < len(raw) && j < len(raw[i]) {
				rawValue = raw[i][j]
			}
			v, err := l.xlsxValue(f, sheet, j+1, i+1, shown[i][j], rawValue)
			if err != nil {
				return nil, errors.NewUnreadableInputError(name, FormatXLSX.String(), err)
			}
			row[j] = v
		}
		ds.Rows = append(ds.Rows, row)
	}

	return ds, nil
}

func (l *Loader) sheet(f *excelize.File) (string, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", fmt.Errorf("workbook has no sheets")
	}
	if l.opts.sheet == "" {
		return sheets[0], nil
	}
	for _, s := range sheets {
		if strings.EqualFold(s, l.opts.sheet) {
			return s, nil
		}
	}
	return "", fmt.Errorf("workbook has no sheet %q", l.opts.sheet)
}

func (l *Loader) xlsxValue(f *excelize.File, sheet string, col, row int, shown, raw string) (cell.Value, error) {
	ref, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return cell.Empty(), err
	}
	typ, err := f.GetCellType(sheet, ref)
	if err != nil {
		return cell.Empty(), err
	}
	if typ != excelize.CellTypeUnset && typ != excelize.CellTypeNumber {
		return cell.Text(shown), nil
	}

	n, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return cell.Text(shown), nil
	}
	if shown != raw {
		if _, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(shown), ",", ""), 64); err != nil {
			return cell.Text(shown), nil
		}
	}
	return cell.Number(n), nil
}
