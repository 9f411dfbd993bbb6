package report_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/dnmerge/pkg/cell"
	"github.com/agentstation/dnmerge/pkg/completeness"
	pkgerrors "github.com/agentstation/dnmerge/pkg/errors"
	"github.com/agentstation/dnmerge/pkg/provenance"
	"github.com/agentstation/dnmerge/pkg/reconciler"
	"github.com/agentstation/dnmerge/pkg/report"
	"github.com/agentstation/dnmerge/pkg/schema"
	"github.com/agentstation/dnmerge/pkg/table"
)

const keyCol = "DN NUMBER (SAP)"

// assemble runs the scenario of a blank primary weight backfilled from the
// secondary report plus one delivery that only the report knows.
func assemble(t *testing.T) *report.FinalTable {
	t.Helper()

	primary := table.FromStrings("primary",
		[]string{keyCol, "Material", "Weight (kg)"},
		[]string{"100", "Steel", ""},
		[]string{"150", "Glass", "3"},
	)
	secondary := table.FromStrings("secondary",
		[]string{keyCol, "Weight (kg)", "Material"},
		[]string{"100", "50", ""},
		[]string{"200", "", "Wood"},
	)

	r, err := reconciler.New()
	require.NoError(t, err)
	result, err := r.Reconcile(context.Background(), primary, secondary)
	require.NoError(t, err)

	checker, err := completeness.New([]string{"Material", "Weight (kg)"})
	require.NoError(t, err)

	a, err := report.New(report.DefaultLabels())
	require.NoError(t, err)
	ft, err := a.Assemble(result.Table, checker.CheckTable(result.Table))
	require.NoError(t, err)
	return ft
}

func TestAssemble(t *testing.T) {
	ft := assemble(t)

	assert.Equal(t, []string{"Status_Dat", "Kontrola_Dat", keyCol, "Material", "Weight (kg)"}, ft.Columns)
	require.Equal(t, 3, ft.Len())

	assert.Equal(t, []cell.Value{
		cell.Text("Kompletní (V obou)"), cell.Text("Kompletní"),
		cell.Text("100"), cell.Text("Steel"), cell.Text("50"),
	}, ft.Rows[0])

	assert.Equal(t, cell.Text("Pouze v Sešitu1 (Chybí v reportu)"), ft.Rows[1][0])
	assert.Equal(t, cell.Text("Kompletní"), ft.Rows[1][1])

	assert.Equal(t, cell.Text("NOVÉ (Přidáno z reportu)"), ft.Rows[2][0])
	assert.Equal(t, cell.Text("Chybí: Weight (kg)"), ft.Rows[2][1])
	assert.Equal(t, []provenance.Origin{provenance.Both, provenance.PrimaryOnly, provenance.SecondaryOnly}, ft.Origins)

	assert.Equal(t, report.Summary{
		Total: 3, Both: 1, PrimaryOnly: 1, SecondaryOnly: 1,
		Complete: 2, Incomplete: 1, Backfilled: 1,
	}, ft.Summary)

	assert.Len(t, ft.Rules, 3)
}

func TestPreview(t *testing.T) {
	ft := assemble(t)

	preview := ft.Preview(0)
	require.Equal(t, 2, preview.Len())
	assert.Equal(t, provenance.PrimaryOnly, preview.Origins[0])
	assert.Equal(t, provenance.SecondaryOnly, preview.Origins[1])
	assert.Equal(t, ft.Summary, preview.Summary)

	limited := ft.Preview(1)
	assert.Equal(t, 1, limited.Len())
}

func TestRecords(t *testing.T) {
	ft := assemble(t)
	records := ft.Records()
	require.Len(t, records, 3)
	assert.Equal(t, cell.Text("Wood"), records[2]["Material"])
	assert.True(t, records[2]["Weight (kg)"].IsEmpty())
}

func TestAssembleErrors(t *testing.T) {
	a, err := report.New(report.DefaultLabels())
	require.NoError(t, err)

	_, err = a.Assemble(nil, nil)
	assert.True(t, pkgerrors.IsValidationError(err))

	tbl := &reconciler.Table{KeyColumn: "ID", Columns: []string{"ID"}, Rows: []reconciler.Row{{Key: "1"}}}
	_, err = a.Assemble(tbl, nil)
	assert.True(t, pkgerrors.IsValidationError(err))

	collide := &reconciler.Table{KeyColumn: "ID", Columns: []string{"ID", "Status_Dat"}}
	_, err = a.Assemble(collide, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Status_Dat")
}

func TestLabels(t *testing.T) {
	l := report.DefaultLabels()
	require.NoError(t, l.Validate())
	assert.Equal(t, "NOVÉ (Přidáno z reportu)", l.Status(provenance.SecondaryOnly))
	assert.Equal(t, "other", l.Status("other"))

	l.Both = ""
	_, err := report.New(l)
	assert.True(t, pkgerrors.IsValidationError(err))

	l = report.DefaultLabels()
	l.VerdictColumn = l.StatusColumn
	assert.Error(t, l.Validate())
}

func TestRules(t *testing.T) {
	rules := report.DefaultRules(report.DefaultLabels())
	require.Len(t, rules, 3)

	added, missing, incomplete := rules[0], rules[1], rules[2]
	assert.True(t, added.Matches(cell.Text("NOVÉ (Přidáno z reportu)")))
	assert.False(t, added.Matches(cell.Text("Kompletní (V obou)")))
	assert.True(t, missing.Matches(cell.Text("Pouze v Sešitu1 (Chybí v reportu)")))
	assert.Equal(t, "Kontrola_Dat", incomplete.Column)
	assert.Equal(t, "Chybí:", incomplete.Contains)
	assert.Equal(t, report.RedFill, incomplete.Fill)

	assert.False(t, report.Rule{}.Matches(cell.Text("anything")))
}

func TestRulesFollowLabels(t *testing.T) {
	labels := report.Labels{
		StatusColumn:  "Status",
		VerdictColumn: "Check",
		Both:          "In both",
		PrimaryOnly:   "Missing from report",
		SecondaryOnly: "NEW from report",
		Verdict:       completeness.Labels{Complete: "OK", MissingPrefix: "Lacks: ", Separator: ", "},
	}
	primary := table.FromStrings("primary",
		[]string{keyCol, "Material"},
		[]string{"100", "Steel"},
		[]string{"150", "Glass"},
	)
	secondary := table.FromStrings("secondary",
		[]string{keyCol, "Material"},
		[]string{"100", "Iron"},
		[]string{"200", ""},
	)

	r, err := reconciler.New()
	require.NoError(t, err)
	result, err := r.Reconcile(context.Background(), primary, secondary)
	require.NoError(t, err)
	checker, err := completeness.New([]string{"Material"})
	require.NoError(t, err)

	a, err := report.New(labels)
	require.NoError(t, err)
	ft, err := a.Assemble(result.Table, checker.CheckTable(result.Table))
	require.NoError(t, err)
	require.Equal(t, 3, ft.Len())

	matched := func(i int) []string {
		var names []string
		for _, rule := range ft.Rules {
			col := -1
			for j, c := range ft.Columns {
				if c == rule.Column {
					col = j
				}
			}
			require.GreaterOrEqual(t, col, 0, rule.Name)
			if rule.Matches(ft.Rows[i][col]) {
				names = append(names, rule.Name)
			}
		}
		return names
	}

	assert.Empty(t, matched(0))
	assert.Equal(t, []string{"missing"}, matched(1))
	assert.Equal(t, []string{"added", "incomplete"}, matched(2))
}

func TestCustomRules(t *testing.T) {
	custom := report.Rule{Name: "x", Column: "Status_Dat", Contains: "X", Fill: "FFFFFF", Font: "000000"}
	a, err := report.New(report.DefaultLabels(), custom)
	require.NoError(t, err)

	ft, err := a.Assemble(&reconciler.Table{KeyColumn: keyCol, Columns: []string{keyCol}}, nil)
	require.NoError(t, err)
	assert.Equal(t, []report.Rule{custom}, ft.Rules)
	assert.Equal(t, 0, ft.Len())
	assert.Equal(t, schema.Default().KeyColumn, ft.Columns[2])
}
