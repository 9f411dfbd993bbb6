package output

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/agentstation/dnmerge"
	"github.com/agentstation/dnmerge/pkg/provenance"
	"github.com/agentstation/dnmerge/pkg/schema"
)

// ReportData converts a run report into table sections. Narrow output
// shows the report columns and the key of each preview row; wide output
// shows every column.
func ReportData(rep *dnmerge.Report, keyColumn string, wide bool) []Data {
	s := rep.Summary
	out := []Data{{
		Title:           "Summary",
		Headers:         []string{"Metric", "Rows"},
		ColumnAlignment: []Align{AlignLeft, AlignRight},
		Rows: [][]string{
			{"Total", strconv.Itoa(s.Total)},
			{"In both", strconv.Itoa(s.Both)},
			{"Only in primary", strconv.Itoa(s.PrimaryOnly)},
			{"Only in secondary", strconv.Itoa(s.SecondaryOnly)},
			{"Complete", strconv.Itoa(s.Complete)},
			{"Incomplete", strconv.Itoa(s.Incomplete)},
			{"Backfilled cells", strconv.Itoa(s.Backfilled)},
		},
	}}

	if len(rep.Warnings) > 0 {
		warnings := Data{Title: "Warnings", Headers: []string{"Kind", "Dataset", "Row", "Message"}}
		for _, w := range rep.Warnings {
			warnings.Rows = append(warnings.Rows, []string{string(w.Kind), w.Dataset, strconv.Itoa(w.Row), w.Message})
		}
		out = append(out, warnings)
	}

	if wide && len(rep.Backfilled) > 0 {
		fields := (&provenance.Report{ByField: rep.Backfilled}).Fields()
		backfilled := Data{
			Title:           "Backfilled columns",
			Headers:         []string{"Column", "Values"},
			ColumnAlignment: []Align{AlignLeft, AlignRight},
		}
		for _, f := range fields {
			backfilled.Rows = append(backfilled.Rows, []string{f, strconv.Itoa(rep.Backfilled[f])})
		}
		out = append(out, backfilled)
	}

	columns := rep.Columns
	if !wide && len(columns) > 2 {
		columns = []string{keyColumn, columns[0], columns[1]}
	}
	preview := Data{
		Title:   fmt.Sprintf("Needs attention (%d shown)", len(rep.Preview)),
		Headers: columns,
	}
	for _, rec := range rep.Preview {
		row := make([]string, len(columns))
		for i, c := range columns {
			row[i] = rec[c].Display()
		}
		preview.Rows = append(preview.Rows, row)
	}
	return append(out, preview)
}

// SchemaData converts a schema into table sections.
func SchemaData(cfg *schema.Config) []Data {
	key := Data{
		Title:   "Key",
		Headers: []string{"Column", "Aliases"},
		Rows:    [][]string{{cfg.KeyColumn, joinOrDash(cfg.KeyAliases)}},
	}

	mapping := Data{Title: "Column mapping", Headers: []string{"Report column", "Canonical column"}}
	for _, r := range cfg.ColumnMapping {
		mapping.Rows = append(mapping.Rows, []string{r.From, r.To})
	}

	required := Data{Title: "Required fields", Headers: []string{"#", "Column"}}
	for i, f := range cfg.RequiredFields {
		required.Rows = append(required.Rows, []string{strconv.Itoa(i + 1), f})
	}

	return []Data{key, mapping, required}
}

func joinOrDash(values []string) string {
	if len(values) == 0 {
		return "-"
	}
	return strings.Join(values, ", ")
}
