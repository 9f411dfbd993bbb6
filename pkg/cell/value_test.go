package cell_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/dnmerge/pkg/cell"
)

func TestValueString(t *testing.T) {
	tests := []struct {
		name  string
		value cell.Value
		want  string
	}{
		{"empty", cell.Empty(), ""},
		{"zero value", cell.Value{}, ""},
		{"text", cell.Text(" A-1 "), " A-1 "},
		{"integral number", cell.Number(123), "123.0"},
		{"negative integral", cell.Number(-4), "-4.0"},
		{"fraction", cell.Number(12.5), "12.5"},
		{"large integral", cell.Number(80012345678), "80012345678.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.value.String())
		})
	}
}

func TestValueDisplay(t *testing.T) {
	assert.Equal(t, "123", cell.Number(123).Display())
	assert.Equal(t, "12.5", cell.Number(12.5).Display())
	assert.Equal(t, "abc", cell.Text("abc").Display())
	assert.Equal(t, "", cell.Empty().Display())
}

func TestValueBlank(t *testing.T) {
	assert.True(t, cell.Empty().IsBlank())
	assert.True(t, cell.Text("").IsBlank())
	assert.True(t, cell.Text("  \t").IsBlank())
	assert.False(t, cell.Text("x").IsBlank())
	assert.False(t, cell.Number(0).IsBlank())

	assert.True(t, cell.Number(math.NaN()).IsEmpty())
	assert.False(t, cell.Text("").IsEmpty())
}

func TestOf(t *testing.T) {
	assert.Equal(t, cell.Empty(), cell.Of(nil))
	assert.Equal(t, cell.Text("a"), cell.Of("a"))
	assert.Equal(t, cell.Text("b"), cell.Of([]byte("b")))
	assert.Equal(t, cell.Number(3), cell.Of(3))
	assert.Equal(t, cell.Number(3), cell.Of(uint16(3)))
	assert.Equal(t, cell.Number(2.5), cell.Of(float32(2.5)))
	assert.Equal(t, cell.Text("true"), cell.Of(true))
	assert.Equal(t, cell.Text("x"), cell.Of(cell.Text("x")))

	f, ok := cell.Of(int64(7)).Float()
	require.True(t, ok)
	assert.Equal(t, 7.0, f)
	assert.Equal(t, cell.KindNumber, cell.Of(int64(7)).Kind())
	assert.Equal(t, "number", cell.KindNumber.String())
}

func TestValueMarshalJSON(t *testing.T) {
	data, err := json.Marshal(map[string]cell.Value{
		"a": cell.Empty(),
		"b": cell.Text("x"),
		"c": cell.Number(5),
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":null,"b":"x","c":5}`, string(data))
}

func TestValueEqual(t *testing.T) {
	assert.True(t, cell.Text("1").Equal(cell.Text("1")))
	assert.False(t, cell.Text("1").Equal(cell.Number(1)))
	assert.True(t, cell.Empty().Equal(cell.Value{}))
}

func TestValueUnmarshalJSON(t *testing.T) {
	var row map[string]cell.Value
	require.NoError(t, json.Unmarshal([]byte(`{"a":null,"b":"x","c":3}`), &row))
	assert.True(t, row["a"].IsEmpty())
	assert.Equal(t, cell.Text("x"), row["b"])
	assert.Equal(t, cell.Number(3), row["c"])

	var v cell.Value
	assert.Error(t, json.Unmarshal([]byte(`[1]`), &v))
}
