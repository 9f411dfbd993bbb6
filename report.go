package dnmerge

import (
	"github.com/agentstation/dnmerge/pkg/cell"
	"github.com/agentstation/dnmerge/pkg/provenance"
	"github.com/agentstation/dnmerge/pkg/reconciler"
	"github.com/agentstation/dnmerge/pkg/report"
)

// Report is the serializable view of an Outcome shown by the CLI and the
// JSON API: counters, warnings, and the rows that need attention.
type Report struct {
	RunID    string               `json:"runId" yaml:"runId"`
	Summary  report.Summary       `json:"summary" yaml:"summary"`
	Warnings []reconciler.Warning `json:"warnings,omitempty" yaml:"warnings,omitempty"`

	// Backfilled counts values taken from the secondary dataset per column.
	// Empty when provenance tracking is disabled.
	Backfilled map[string]int          `json:"backfilled,omitempty" yaml:"backfilled,omitempty"`
	Columns    []string                `json:"columns" yaml:"columns"`
	Preview    []map[string]cell.Value `json:"preview" yaml:"preview"`
}

// Report returns the serializable view of o with up to limit preview rows.
// A limit of zero uses the default preview size.
func (o *Outcome) Report(limit int) *Report {
	preview := o.Preview(limit)
	rep := &Report{
		RunID:    o.RunID,
		Summary:  o.Summary(),
		Warnings: o.Result.Warnings,
		Columns:  preview.Columns,
		Preview:  preview.Records(),
	}
	if len(o.Result.Provenance) > 0 {
		rep.Backfilled = provenance.GenerateReport(o.Result.Provenance).ByField
	}
	return rep
}
