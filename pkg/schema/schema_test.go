package schema_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/dnmerge/pkg/cell"
	"github.com/agentstation/dnmerge/pkg/errors"
	"github.com/agentstation/dnmerge/pkg/schema"
	"github.com/agentstation/dnmerge/pkg/table"
)

func newMapper(t *testing.T) *schema.Mapper {
	t.Helper()
	m, err := schema.NewMapper(schema.Default())
	require.NoError(t, err)
	return m
}

func TestDefault(t *testing.T) {
	cfg := schema.Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "DN NUMBER (SAP)", cfg.KeyColumn)
	assert.Equal(t, []string{"Zakázka (Delivery)"}, cfg.KeyAliases)
	assert.Len(t, cfg.ColumnMapping, 9)
	assert.Equal(t, []string{"Material", "Number of pieces", "Weight (kg)"}, cfg.RequiredFields)
	assert.Equal(t, []string{
		"Material", "Number of pieces", "Weight (kg)", "Customer",
		"Carrier", "Delivery date", "Delivery place", "Note",
	}, cfg.Targets())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *schema.Config)
		field  string
	}{
		{"empty key", func(c *schema.Config) { c.KeyColumn = " " }, "keyColumn"},
		{"empty alias", func(c *schema.Config) { c.KeyAliases = []string{""} }, "keyAliases"},
		{"alias equals key", func(c *schema.Config) { c.KeyAliases = []string{c.KeyColumn} }, "keyAliases"},
		{"incomplete rule", func(c *schema.Config) { c.ColumnMapping = schema.Mapping{{From: "a"}} }, "columnMapping[0]"},
		{"rule targets key", func(c *schema.Config) {
			c.ColumnMapping = append(c.ColumnMapping, schema.Rule{From: "Order", To: c.KeyColumn})
		}, "columnMapping[9]"},
		{"duplicate source", func(c *schema.Config) {
			c.ColumnMapping = append(c.ColumnMapping, schema.Rule{From: "Dopravce", To: "Shipper"})
		}, "columnMapping[9]"},
		{"empty required", func(c *schema.Config) { c.RequiredFields = []string{"Material", ""} }, "requiredFields"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := schema.Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.IsValidationError(err))

			var verr *errors.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestLoad(t *testing.T) {
	t.Run("partial file keeps defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "schema.yaml")
		require.NoError(t, os.WriteFile(path, []byte("keyColumn: Order ID\nkeyAliases: [\"Order\"]\n"), 0o600))

		cfg, err := schema.Load(path)
		require.NoError(t, err)
		assert.Equal(t, "Order ID", cfg.KeyColumn)
		assert.Equal(t, []string{"Order"}, cfg.KeyAliases)
		assert.Len(t, cfg.ColumnMapping, 9)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := schema.Load(filepath.Join(t.TempDir(), "missing.yaml"))
		var ioErr *errors.IOError
		assert.ErrorAs(t, err, &ioErr)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		_, err := schema.Decode(strings.NewReader("keyColumn: [unterminated"))
		var parseErr *errors.ParseError
		assert.ErrorAs(t, err, &parseErr)
	})

	t.Run("invalid schema", func(t *testing.T) {
		_, err := schema.Decode(strings.NewReader("keyColumn: \"\"\n"))
		assert.True(t, errors.IsValidationError(err))
	})

	t.Run("round trip", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, schema.Default().Encode(&buf))
		assert.Contains(t, buf.String(), "keyColumn: DN NUMBER (SAP)")

		cfg, err := schema.Decode(&buf)
		require.NoError(t, err)
		assert.Equal(t, schema.Default(), cfg)
	})
}

func TestMapRenamesAndPassesThrough(t *testing.T) {
	in := table.FromStrings("secondary",
		[]string{"DN NUMBER (SAP)", "Hmotnost (kg)", "Dopravce", "Extra"},
		[]string{"100", "5", "DHL", "x"},
	)

	out, err := newMapper(t).Map(in)
	require.NoError(t, err)
	assert.Equal(t, []string{"DN NUMBER (SAP)", "Weight (kg)", "Carrier", "Extra"}, out.Columns)
	assert.Equal(t, cell.Text("5"), out.Value(0, "Weight (kg)"))

	assert.Equal(t, "Hmotnost (kg)", in.Columns[1], "input is not modified")
}

func TestMapKeyAlias(t *testing.T) {
	in := table.FromStrings("secondary",
		[]string{"Zakázka (Delivery)", "Material"},
		[]string{"300", "Z"},
	)

	out, err := newMapper(t).Map(in)
	require.NoError(t, err)
	assert.Equal(t, []string{"DN NUMBER (SAP)", "Material"}, out.Columns)
	assert.Equal(t, cell.Text("300"), out.Value(0, "DN NUMBER (SAP)"))
}

func TestMapAliasIgnoredWhenKeyPresent(t *testing.T) {
	in := table.FromStrings("secondary",
		[]string{"DN NUMBER (SAP)", "Zakázka (Delivery)"},
		[]string{"1", "2"},
	)

	out, err := newMapper(t).Map(in)
	require.NoError(t, err)
	assert.Equal(t, []string{"DN NUMBER (SAP)", "Zakázka (Delivery)"}, out.Columns)
}

func TestMapDuplicateTargets(t *testing.T) {
	in := table.FromStrings("secondary",
		[]string{"DN NUMBER (SAP)", "Material(cz)", "Materiál", "Material(cz)"},
		[]string{"1", "first", "second", "third"},
	)

	out, err := newMapper(t).Map(in)
	require.NoError(t, err)
	assert.Equal(t, []string{"DN NUMBER (SAP)", "Material"}, out.Columns)
	assert.Equal(t, cell.Text("first"), out.Value(0, "Material"))
}

func TestMapDecomposedHeaders(t *testing.T) {
	in := table.FromStrings("secondary",
		[]string{"DN NUMBER (SAP)", "Materia\u0301l "},
		[]string{"1", "A"},
	)

	out, err := newMapper(t).Map(in)
	require.NoError(t, err)
	assert.Equal(t, "Material", out.Columns[1])
}

func TestMapMissingKey(t *testing.T) {
	in := table.FromStrings("secondary", []string{"Material"}, []string{"A"})

	out, err := newMapper(t).Map(in)
	assert.Nil(t, out)
	require.Error(t, err)
	assert.True(t, errors.IsMissingKeyColumn(err))

	var mkErr *errors.MissingKeyColumnError
	require.ErrorAs(t, err, &mkErr)
	assert.Equal(t, "secondary", mkErr.Dataset)
	assert.Equal(t, []string{"Zakázka (Delivery)"}, mkErr.Aliases)
	assert.Contains(t, err.Error(), "aliases tried: Zakázka (Delivery)")
}

func TestRequireKey(t *testing.T) {
	m := newMapper(t)
	require.NoError(t, m.RequireKey(table.FromStrings("primary", []string{"DN NUMBER (SAP)"}, []string{"1"})))

	// Aliases are never resolved for the primary dataset, so none are reported.
	err := m.RequireKey(table.FromStrings("primary", []string{"Zakázka (Delivery)"}, []string{"1"}))
	var mkErr *errors.MissingKeyColumnError
	require.ErrorAs(t, err, &mkErr)
	assert.Equal(t, "primary", mkErr.Dataset)
	assert.Empty(t, mkErr.Aliases)
	assert.Equal(t, `dataset primary has no key column "DN NUMBER (SAP)"`, err.Error())
}

func TestDedupColumns(t *testing.T) {
	in := table.FromStrings("primary",
		[]string{"DN NUMBER (SAP)", "Material", "Material", "Note"},
		[]string{"1", "a", "b", "n"},
	)

	out := schema.DedupColumns(in)
	assert.Equal(t, []string{"DN NUMBER (SAP)", "Material", "Note"}, out.Columns)
	assert.Equal(t, []cell.Value{cell.Text("1"), cell.Text("a"), cell.Text("n")}, out.Rows[0])
	assert.Len(t, in.Columns, 4)
}
