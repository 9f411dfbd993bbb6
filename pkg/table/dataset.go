// Package table provides the in-memory tabular Dataset shared by ingestion,
// schema mapping and reconciliation.
package table

import (
	"github.com/agentstation/dnmerge/pkg/cell"
)

// Dataset is an ordered set of named columns and rows of cell values.
// Columns may contain duplicates until the dataset passes through schema
// mapping. Rows may be shorter than Columns; missing trailing cells are Empty.
type Dataset struct {
	Name    string
	Columns []string
	Rows    [][]cell.Value
}

// New creates a dataset with the given name, columns and rows.
func New(name string, columns []string, rows ...[]cell.Value) *Dataset {
	return &Dataset{Name: name, Columns: columns, Rows: rows}
}

// FromStrings builds a dataset from text rows. Empty strings become Empty cells.
func FromStrings(name string, columns []string, rows ...[]string) *Dataset {
	ds := &Dataset{Name: name, Columns: columns, Rows: make([][]cell.Value, 0, len(rows))}
	for _, r := range rows {
		values := make([]cell.Value, len(r))
		for i, s := range r {
			if s != "" {
				values[i] = cell.Text(s)
			}
		}
		ds.Rows = append(ds.Rows, values)
	}
	return ds
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	return len(d.Rows)
}

// Index returns the position of the first column with the given name, or -1.
func (d *Dataset) Index(column string) int {
	for i, c := range d.Columns {
		if c == column {
			return i
		}
	}
	return -1
}

// Has reports whether the dataset has a column with the given name.
func (d *Dataset) Has(column string) bool {
	return d.Index(column) >= 0
}

// Cell returns the value at row and column position, Empty when out of range.
func (d *Dataset) Cell(row, col int) cell.Value {
	if row < 0 || row >= len(d.Rows) || col < 0 {
		return cell.Empty()
	}
	r := d.Rows[row]
	if col >= len(r) {
		return cell.Empty()
	}
	return r[col]
}

// Value returns the value of the named column in the given row.
func (d *Dataset) Value(row int, column string) cell.Value {
	return d.Cell(row, d.Index(column))
}

// Record returns the named values of one row, first occurrence of each column.
func (d *Dataset) Record(row int) map[string]cell.Value {
	rec := make(map[string]cell.Value, len(d.Columns))
	for i, c := range d.Columns {
		if _, seen := rec[c]; seen {
			continue
		}
		rec[c] = d.Cell(row, i)
	}
	return rec
}

// Clone returns a deep copy of the dataset.
func (d *Dataset) Clone() *Dataset {
	out := &Dataset{
		Name:    d.Name,
		Columns: append([]string(nil), d.Columns...),
		Rows:    make([][]cell.Value, len(d.Rows)),
	}
	for i, r := range d.Rows {
		out.Rows[i] = append([]cell.Value(nil), r...)
	}
	return out
}

// Project returns a copy of the dataset keeping only the columns at the given positions.
func (d *Dataset) Project(positions []int) *Dataset {
	out := &Dataset{
		Name:    d.Name,
		Columns: make([]string, len(positions)),
		Rows:    make([][]cell.Value, len(d.Rows)),
	}
	for j, p := range positions {
		out.Columns[j] = d.Columns[p]
	}
	for i := range d.Rows {
		row := make([]cell.Value, len(positions))
		for j, p := range positions {
			row[j] = d.Cell(i, p)
		}
		out.Rows[i] = row
	}
	return out
}
