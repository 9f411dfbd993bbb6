// Package report assembles the final table of a run: status and verdict
// labels in front of the merged columns, summary counters, and the
// highlight rules an exporter applies. It performs no I/O.
package report

import (
	"fmt"

	"github.com/agentstation/dnmerge/pkg/cell"
	"github.com/agentstation/dnmerge/pkg/completeness"
	"github.com/agentstation/dnmerge/pkg/errors"
	"github.com/agentstation/dnmerge/pkg/provenance"
	"github.com/agentstation/dnmerge/pkg/reconciler"
)

// Summary holds the counters shown after a run.
type Summary struct {
	Total         int `json:"total" yaml:"total"`
	Both          int `json:"both" yaml:"both"`
	PrimaryOnly   int `json:"primaryOnly" yaml:"primaryOnly"`
	SecondaryOnly int `json:"secondaryOnly" yaml:"secondaryOnly"`
	Complete      int `json:"complete" yaml:"complete"`
	Incomplete    int `json:"incomplete" yaml:"incomplete"`
	Backfilled    int `json:"backfilled" yaml:"backfilled"`
}

// FinalTable is the display-ready result of a run.
type FinalTable struct {
	Columns  []string
	Rows     [][]cell.Value
	Origins  []provenance.Origin    // aligned with Rows
	Verdicts []completeness.Verdict // aligned with Rows
	Rules    []Rule
	Summary  Summary
}

// Len returns the number of rows.
func (ft *FinalTable) Len() int {
	return len(ft.Rows)
}

// NeedsAttention reports whether row i is not present in both datasets
// or lacks required data.
func (ft *FinalTable) NeedsAttention(i int) bool {
	return ft.Origins[i] != provenance.Both || !ft.Verdicts[i].Complete
}

// Preview returns up to limit rows that need attention, in table order.
// A limit of zero or less returns all of them.
func (ft *FinalTable) Preview(limit int) *FinalTable {
	out := &FinalTable{Columns: ft.Columns, Rules: ft.Rules, Summary: ft.Summary}
	for i := range ft.Rows {
		if limit > 0 && len(out.Rows) >= limit {
			break
		}
		if !ft.NeedsAttention(i) {
			continue
		}
		out.Rows = append(out.Rows, ft.Rows[i])
		out.Origins = append(out.Origins, ft.Origins[i])
		out.Verdicts = append(out.Verdicts, ft.Verdicts[i])
	}
	return out
}

// Records returns the rows as column-name maps, for JSON and YAML output.
func (ft *FinalTable) Records() []map[string]cell.Value {
	out := make([]map[string]cell.Value, len(ft.Rows))
	for i, row := range ft.Rows {
		rec := make(map[string]cell.Value, len(ft.Columns))
		for j, c := range ft.Columns {
			if j < len(row) {
				rec[c] = row[j]
			}
		}
		out[i] = rec
	}
	return out
}

// Assembler builds FinalTables.
type Assembler struct {
	labels Labels
	rules  []Rule
}

// New creates an Assembler. Without rules the default highlight rules apply.
func New(labels Labels, rules ...Rule) (*Assembler, error) {
	if err := labels.Validate(); err != nil {
		return nil, err
	}
	if len(rules) == 0 {
		rules = DefaultRules(labels)
	}
	return &Assembler{labels: labels, rules: rules}, nil
}

// Labels returns the labels used by the assembler.
func (a *Assembler) Labels() Labels {
	return a.labels
}

// Assemble combines the merged table and its verdicts into a FinalTable.
// verdicts must be aligned with t.Rows.
func (a *Assembler) Assemble(t *reconciler.Table, verdicts []completeness.Verdict) (*FinalTable, error) {
	if t == nil {
		return nil, &errors.ValidationError{Field: "table", Message: "cannot be nil"}
	}
	if len(verdicts) != len(t.Rows) {
		return nil, &errors.ValidationError{
			Field:   "verdicts",
			Value:   len(verdicts),
			Message: fmt.Sprintf("expected %d verdicts, got %d", len(t.Rows), len(verdicts)),
		}
	}
	for _, c := range t.Columns {
		if c == a.labels.StatusColumn || c == a.labels.VerdictColumn {
			return nil, &errors.ValidationError{
				Field:   "columns",
				Value:   c,
				Message: fmt.Sprintf("data column %q collides with a report column", c),
			}
		}
	}

	ft := &FinalTable{
		Columns:  append([]string{a.labels.StatusColumn, a.labels.VerdictColumn}, t.Columns...),
		Rows:     make([][]cell.Value, len(t.Rows)),
		Origins:  make([]provenance.Origin, len(t.Rows)),
		Verdicts: append([]completeness.Verdict(nil), verdicts...),
		Rules:    a.rules,
	}

	for i := range t.Rows {
		row := &t.Rows[i]
		values := make([]cell.Value, 0, len(ft.Columns))
		values = append(values,
			cell.Text(a.labels.Status(row.Origin)),
			cell.Text(a.labels.Verdict.Render(verdicts[i])),
		)
		for _, c := range t.Columns {
			values = append(values, row.Value(c))
		}
		ft.Rows[i] = values
		ft.Origins[i] = row.Origin

		ft.Summary.Total++
		switch row.Origin {
		case provenance.Both:
			ft.Summary.Both++
		case provenance.PrimaryOnly:
			ft.Summary.PrimaryOnly++
		case provenance.SecondaryOnly:
			ft.Summary.SecondaryOnly++
		}
		if verdicts[i].Complete {
			ft.Summary.Complete++
		} else {
			ft.Summary.Incomplete++
		}
		ft.Summary.Backfilled += len(row.Backfilled)
	}

	return ft, nil
}
