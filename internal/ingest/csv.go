package ingest

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/agentstation/dnmerge/pkg/cell"
	"github.com/agentstation/dnmerge/pkg/errors"
	"github.com/agentstation/dnmerge/pkg/table"
)

// readCSV parses delimited text. Every value is text; empty fields are Empty.
func (l *Loader) readCSV(ctx context.Context, name string, r io.Reader) (*table.Dataset, error) {
	cr := csv.NewReader(r)
	cr.Comma = l.opts.comma
	cr.LazyQuotes = l.opts.lazyQuotes
	cr.FieldsPerRecord = -1

	hdr, err := cr.Read()
	if err == io.EOF {
		return nil, errors.NewUnreadableInputError(name, FormatCSV.String(), fmt.Errorf("no header row"))
	}
	if err != nil {
		return nil, errors.NewUnreadableInputError(name, FormatCSV.String(), fmt.Errorf("read header: %w", err))
	}
	if len(hdr) > 0 {
		hdr[0] = strings.TrimPrefix(hdr[0], "\uFEFF")
	}

	ds := &table.Dataset{Name: name, Columns: headers(hdr)}
	line := 1
	for {
		if line%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, errors.WrapCanceled("read "+name, err)
			}
		}

		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, errors.NewUnreadableInputError(name, FormatCSV.String(), fmt.Errorf("line %d: %w", line, err))
		}
		if blankRecord(rec) {
			continue
		}

		row := make([]cell.Value, len(ds.Columns))
		for i := range row {
			if i < len(rec) && rec[i] != "" {
				row[i] = cell.Text(rec[i])
			}
		}
		ds.Rows = append(ds.Rows, row)
	}

	return ds, nil
}

func blankRecord(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
