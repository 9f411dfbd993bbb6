// Package keys normalizes record identifiers so that the same delivery
// number written as text, integer or spreadsheet float compares equal.
package keys

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/agentstation/dnmerge/pkg/cell"
)

// Key is a canonical record identifier.
type Key string

// Empty is the key of a record whose identifier is blank.
const Empty Key = ""

// SyntheticPrefix starts every key generated for a blank identifier.
const SyntheticPrefix = "blank-"

// floatSuffix is the text a spreadsheet float gains when rendered as text.
const floatSuffix = ".0"

// String returns the key text.
func (k Key) String() string {
	return string(k)
}

// IsEmpty reports whether k is the Empty sentinel.
func (k Key) IsEmpty() bool {
	return k == Empty
}

// Normalize converts a raw identifier into a Key. Normalize never panics
// and is idempotent: Normalize(Normalize(v)) == Normalize(v).
func Normalize(v any) Key {
	switch t := v.(type) {
	case nil:
		return Empty
	case Key:
		return normalizeText(string(t))
	case cell.Value:
		return FromCell(t)
	case string:
		return normalizeText(t)
	case []byte:
		return normalizeText(string(t))
	case float64:
		return FromCell(cell.Number(t))
	case float32:
		return FromCell(cell.Number(float64(t)))
	case int:
		return Key(strconv.Itoa(t))
	case int8, int16, int32, int64:
		return Key(fmt.Sprintf("%d", t))
	case uint, uint8, uint16, uint32, uint64:
		return Key(fmt.Sprintf("%d", t))
	case fmt.Stringer:
		return normalizeText(t.String())
	default:
		return normalizeText(fmt.Sprint(v))
	}
}

// FromCell converts a cell value into a Key. Infinite numbers keep their
// textual form ("+Inf", "-Inf").
func FromCell(v cell.Value) Key {
	return normalizeText(v.String())
}

// NewSynthetic returns a unique key for a record whose identifier is blank.
func NewSynthetic() Key {
	return Key(SyntheticPrefix + uuid.NewString())
}

// normalizeText trims s and strips one trailing ".0" unless the remainder
// itself ends in ".0".
func normalizeText(s string) Key {
	s = strings.TrimSpace(s)
	if rest, ok := strings.CutSuffix(s, floatSuffix); ok {
		rest = strings.TrimSpace(rest)
		if !strings.HasSuffix(rest, floatSuffix) {
			s = rest
		}
	}
	return Key(s)
}
