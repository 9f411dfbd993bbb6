package reconciler

import (
	"github.com/agentstation/dnmerge/pkg/cell"
	"github.com/agentstation/dnmerge/pkg/keys"
	"github.com/agentstation/dnmerge/pkg/provenance"
)

// Row is one merged record. Values holds canonical columns only; a column
// absent from Values is Empty.
type Row struct {
	Key        keys.Key
	Origin     provenance.Origin
	Values     map[string]cell.Value
	Backfilled []string // columns filled from the secondary dataset, in column order
	Synthetic  bool     // key was generated for a blank identifier
}

// Value returns the value of the named column.
func (r *Row) Value(column string) cell.Value {
	return r.Values[column]
}

// IsBackfilled reports whether column was filled from the secondary dataset.
func (r *Row) IsBackfilled(column string) bool {
	for _, c := range r.Backfilled {
		if c == column {
			return true
		}
	}
	return false
}

// Table is the merged result: unique canonical columns with the key first,
// and exactly one row per key.
type Table struct {
	KeyColumn string
	Columns   []string
	Rows      []Row
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Counts returns the number of rows per origin.
func (t *Table) Counts() map[provenance.Origin]int {
	counts := make(map[provenance.Origin]int, len(provenance.Origins))
	for _, o := range provenance.Origins {
		counts[o] = 0
	}
	for i := range t.Rows {
		counts[t.Rows[i].Origin]++
	}
	return counts
}

// Find returns the row with the given key.
func (t *Table) Find(key keys.Key) (*Row, bool) {
	for i := range t.Rows {
		if t.Rows[i].Key == key {
			return &t.Rows[i], true
		}
	}
	return nil, false
}
