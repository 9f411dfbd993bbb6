package reconciler_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agentstation/dnmerge/pkg/cell"
	pkgerrors "github.com/agentstation/dnmerge/pkg/errors"
	"github.com/agentstation/dnmerge/pkg/keys"
	"github.com/agentstation/dnmerge/pkg/provenance"
	"github.com/agentstation/dnmerge/pkg/reconciler"
)

func TestStrategyType(t *testing.T) {
	assert.Equal(t, "source-order", reconciler.StrategyTypeSourceOrder.String())
	assert.Equal(t, "Source Order", reconciler.StrategyTypeSourceOrder.Name())
}

func TestPrimaryFirstStrategy(t *testing.T) {
	s := reconciler.NewPrimaryFirstStrategy()
	assert.Equal(t, reconciler.StrategyTypeSourceOrder, s.Type())
	assert.Contains(t, s.Description(), "primary")

	tests := []struct {
		name       string
		values     map[provenance.Source]cell.Value
		wantValue  cell.Value
		wantSource provenance.Source
	}{
		{
			name: "primary wins when present",
			values: map[provenance.Source]cell.Value{
				provenance.Primary:   cell.Text("A"),
				provenance.Secondary: cell.Text("B"),
			},
			wantValue:  cell.Text("A"),
			wantSource: provenance.Primary,
		},
		{
			name: "secondary fills blank primary",
			values: map[provenance.Source]cell.Value{
				provenance.Primary:   cell.Empty(),
				provenance.Secondary: cell.Number(5),
			},
			wantValue:  cell.Number(5),
			wantSource: provenance.Secondary,
		},
		{
			name: "secondary fills missing primary column",
			values: map[provenance.Source]cell.Value{
				provenance.Secondary: cell.Text("B"),
			},
			wantValue:  cell.Text("B"),
			wantSource: provenance.Secondary,
		},
		{
			name: "zero is a value",
			values: map[provenance.Source]cell.Value{
				provenance.Primary:   cell.Number(0),
				provenance.Secondary: cell.Number(9),
			},
			wantValue:  cell.Number(0),
			wantSource: provenance.Primary,
		},
		{
			name: "both blank keeps primary",
			values: map[provenance.Source]cell.Value{
				provenance.Primary:   cell.Text(" "),
				provenance.Secondary: cell.Empty(),
			},
			wantValue:  cell.Text(" "),
			wantSource: provenance.Primary,
		},
		{
			name:       "nothing",
			values:     map[provenance.Source]cell.Value{},
			wantValue:  cell.Empty(),
			wantSource: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, source, reason := s.ResolveConflict("Weight (kg)", tt.values)
			assert.Equal(t, tt.wantValue, value)
			assert.Equal(t, tt.wantSource, source)
			assert.NotEmpty(t, reason)
		})
	}
}

func TestStrategyValidateResult(t *testing.T) {
	s := reconciler.NewPrimaryFirstStrategy()

	assert.True(t, pkgerrors.IsValidationError(s.ValidateResult(nil)))
	assert.True(t, pkgerrors.IsValidationError(s.ValidateResult(&reconciler.Result{})))

	bad := &reconciler.Result{Table: &reconciler.Table{
		KeyColumn: "ID",
		Columns:   []string{"ID"},
		Rows: []reconciler.Row{
			{Key: "1", Origin: provenance.Both},
			{Key: "1", Origin: provenance.Both},
		},
	}}
	err := s.ValidateResult(bad)
	assert.True(t, pkgerrors.IsValidationError(err))
	assert.Contains(t, err.Error(), "duplicate key")
}

func TestValidateTable(t *testing.T) {
	t.Run("valid with warning", func(t *testing.T) {
		v := reconciler.ValidateTable(&reconciler.Table{
			KeyColumn: "ID",
			Columns:   []string{"ID", "A"},
			Rows: []reconciler.Row{
				{Key: "1", Origin: provenance.Both, Values: map[string]cell.Value{"A": cell.Text("x")}},
				{Key: keys.NewSynthetic(), Origin: provenance.PrimaryOnly, Synthetic: true},
			},
		})
		assert.True(t, v.IsValid())
		assert.True(t, v.HasWarnings())
		assert.Equal(t, "Validation passed with 1 warnings", v.String())
	})

	t.Run("violations", func(t *testing.T) {
		v := reconciler.ValidateTable(&reconciler.Table{
			KeyColumn: "ID",
			Columns:   []string{"A", "ID", "A"},
			Rows: []reconciler.Row{
				{Key: "", Origin: "left"},
				{Key: "2", Origin: provenance.Both, Values: map[string]cell.Value{"Z": cell.Empty()}},
			},
		})
		assert.False(t, v.IsValid())
		assert.Len(t, v.Errors, 5)
		assert.Equal(t, "Validation failed with 5 errors", v.String())
	})
}
