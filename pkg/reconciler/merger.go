package reconciler

import (
	"github.com/agentstation/dnmerge/pkg/cell"
	"github.com/agentstation/dnmerge/pkg/provenance"
)

// merger builds merged rows from collected dataset entries.
type merger struct {
	keyColumn string
	columns   []string
	strategy  Strategy
	tracker   provenance.Tracker
}

// newMerger creates a merger over the canonical columns.
func newMerger(keyColumn string, columns []string, strategy Strategy, tracker provenance.Tracker) *merger {
	return &merger{
		keyColumn: keyColumn,
		columns:   columns,
		strategy:  strategy,
		tracker:   tracker,
	}
}

// both merges a key present in both datasets. Blank primary values are
// resolved through the strategy; every value taken from the secondary
// dataset is recorded as backfilled.
func (m *merger) both(p *index, pe entry, s *index, se entry) Row {
	row := m.newRow(pe, provenance.Both)

	for _, col := range m.columns {
		if col == m.keyColumn {
			continue
		}

		values := make(map[provenance.Source]cell.Value, 2)
		pv, inPrimary := p.value(pe, col)
		if inPrimary {
			values[provenance.Primary] = pv
		}
		if sv, ok := s.value(se, col); ok {
			values[provenance.Secondary] = sv
		}
		if len(values) == 0 {
			continue
		}

		value, source, reason := m.strategy.ResolveConflict(col, values)
		row.Values[col] = value

		if source == provenance.Secondary && !value.IsBlank() {
			row.Backfilled = append(row.Backfilled, col)
			m.tracker.Track(pe.key.String(), col, provenance.Provenance{
				Source:        provenance.Secondary,
				Value:         value.String(),
				PreviousValue: pv.String(),
				Reason:        reason,
			})
		}
	}

	return row
}

// single copies the values of a key present in one dataset only.
func (m *merger) single(ix *index, e entry, origin provenance.Origin) Row {
	row := m.newRow(e, origin)
	for _, col := range m.columns {
		if col == m.keyColumn {
			continue
		}
		if v, ok := ix.value(e, col); ok {
			row.Values[col] = v
		}
	}
	return row
}

// newRow starts a row with its key cell set. Generated keys leave the key cell empty.
func (m *merger) newRow(e entry, origin provenance.Origin) Row {
	row := Row{
		Key:       e.key,
		Origin:    origin,
		Values:    make(map[string]cell.Value, len(m.columns)),
		Synthetic: e.synthetic,
	}
	if e.synthetic {
		row.Values[m.keyColumn] = cell.Empty()
	} else {
		row.Values[m.keyColumn] = cell.Text(e.key.String())
	}
	return row
}

// canonicalColumns returns the canonical column order: key, primary columns, then
// columns only the secondary dataset has.
func canonicalColumns(keyColumn string, primary, secondary []string) []string {
	seen := map[string]bool{keyColumn: true}
	out := []string{keyColumn}
	for _, set := range [][]string{primary, secondary} {
		for _, c := range set {
			if !seen[c] {
				seen[c] = true
				out = append(out, c)
			}
		}
	}
	return out
}
