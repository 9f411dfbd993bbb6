// Package cell defines the tagged value stored in every dataset cell.
//
// A Value is either Empty, Text, or Number. Numbers that are integral
// render with a trailing ".0", which is how spreadsheet numbers arrive in
// text form and why key normalization strips that suffix.
package cell

import (
	"encoding/json"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	// KindEmpty is an absent value.
	KindEmpty Kind = iota
	// KindText is a string value.
	KindText
	// KindNumber is a numeric value.
	KindNumber
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	default:
		return "empty"
	}
}

// Value is an immutable tagged cell value. The zero Value is Empty.
type Value struct {
	kind Kind
	text string
	num  float64
}

// Empty returns the empty value.
func Empty() Value {
	return Value{}
}

// Text returns a text value. Text values are stored verbatim.
func Text(s string) Value {
	return Value{kind: KindText, text: s}
}

// Number returns a numeric value. NaN is treated as Empty.
func Number(f float64) Value {
	if math.IsNaN(f) {
		return Value{}
	}
	return Value{kind: KindNumber, num: f}
}

// Of converts a Go scalar into a Value.
func Of(v any) Value {
	switch x := v.(type) {
	case nil:
		return Empty()
	case Value:
		return x
	case string:
		return Text(x)
	case []byte:
		return Text(string(x))
	case float64:
		return Number(x)
	case float32:
		return Number(float64(x))
	case int:
		return Number(float64(x))
	case int8:
		return Number(float64(x))
	case int16:
		return Number(float64(x))
	case int32:
		return Number(float64(x))
	case int64:
		return Number(float64(x))
	case uint:
		return Number(float64(x))
	case uint8:
		return Number(float64(x))
	case uint16:
		return Number(float64(x))
	case uint32:
		return Number(float64(x))
	case uint64:
		return Number(float64(x))
	case bool:
		return Text(strconv.FormatBool(x))
	default:
		if s, ok := v.(interface{ String() string }); ok {
			return Text(s.String())
		}
		return Empty()
	}
}

// Kind returns the variant of v.
func (v Value) Kind() Kind {
	return v.kind
}

// IsEmpty reports whether v is the Empty variant.
func (v Value) IsEmpty() bool {
	return v.kind == KindEmpty
}

// IsBlank reports whether v is Empty or Text that is empty after trimming.
func (v Value) IsBlank() bool {
	switch v.kind {
	case KindEmpty:
		return true
	case KindText:
		return strings.TrimSpace(v.text) == ""
	default:
		return false
	}
}

// Float returns the numeric content and whether v is a Number.
func (v Value) Float() (float64, bool) {
	return v.num, v.kind == KindNumber
}

// String renders v as text. Integral numbers render as "<int>.0".
func (v Value) String() string {
	switch v.kind {
	case KindText:
		return v.text
	case KindNumber:
		s := strconv.FormatFloat(v.num, 'f', -1, 64)
		if !math.IsInf(v.num, 0) && v.num == math.Trunc(v.num) {
			s += ".0"
		}
		return s
	default:
		return ""
	}
}

// Display renders v for people: integral numbers lose the ".0" suffix.
func (v Value) Display() string {
	if v.kind == KindNumber && !math.IsInf(v.num, 0) && v.num == math.Trunc(v.num) {
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	}
	return v.String()
}

// Equal reports whether v and o hold the same variant and content.
func (v Value) Equal(o Value) bool {
	return v == o
}

// Interface returns nil, a string, or a float64.
func (v Value) Interface() any {
	switch v.kind {
	case KindText:
		return v.text
	case KindNumber:
		return v.num
	default:
		return nil
	}
}

// MarshalJSON encodes Empty as null, Text as a string and Number as a number.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.kind == KindNumber && math.IsInf(v.num, 0) {
		return json.Marshal(v.String())
	}
	return json.Marshal(v.Interface())
}

// MarshalYAML encodes v the same way as MarshalJSON.
func (v Value) MarshalYAML() (any, error) {
	return v.Interface(), nil
}

// UnmarshalJSON decodes null, strings and numbers, the inverse of MarshalJSON.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch x := raw.(type) {
	case nil, string, float64:
		*v = Of(x)
		return nil
	default:
		return &json.UnmarshalTypeError{Value: string(data), Type: reflect.TypeOf(*v)}
	}
}
