package sheet

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Value is a sealed interface over the cell value variants.
// Only Null, Number, String and Bool implement it.
type Value interface {
	cellValue()
}

// Null represents an unset cell. Reads of cells that were never written
// yield Null, never an error.
type Null struct{}

func (Null) cellValue() {}

// MarshalJSON implements json.Marshaler for Null.
func (Null) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

// Number is a numeric cell value (quantities, molecular weight, density).
type Number float64

func (Number) cellValue() {}

// String is a textual cell value (identifiers, status, notes, highlight).
type String string

func (String) cellValue() {}

// Bool is a boolean cell value (the equivalence-reference checkbox).
type Bool bool

func (Bool) cellValue() {}

// NA is the sentinel for "known to be unavailable", distinct from Null
// ("never looked up"). Density reads as NA when the compound database has
// no density record, and volume is forced to NA while density is NA.
const NA = String("N/A")

// Num wraps a float64 as a cell value.
func Num(f float64) Value { return Number(f) }

// Str wraps a string as a cell value.
func Str(s string) Value { return String(s) }

// IsNull reports whether v is unset. A nil interface counts as unset so
// callers may pass the zero value of a map lookup directly.
func IsNull(v Value) bool {
	if v == nil {
		return true
	}
	_, ok := v.(Null)
	return ok
}

// IsNA reports whether v is the N/A sentinel.
func IsNA(v Value) bool {
	s, ok := v.(String)
	return ok && s == NA
}

// AsNumber returns the numeric value of v and whether v is a Number.
func AsNumber(v Value) (float64, bool) {
	n, ok := v.(Number)
	return float64(n), ok
}

// Positive reports whether v is a Number strictly greater than zero.
// This is the guard every quantity rule applies before computing.
func Positive(v Value) bool {
	n, ok := v.(Number)
	return ok && n > 0
}

// Equal compares two cell values. Null equals Null and a nil interface.
func Equal(a, b Value) bool {
	if IsNull(a) && IsNull(b) {
		return true
	}
	if IsNull(a) || IsNull(b) {
		return false
	}
	return a == b
}

// FromGo converts a decoded JSON value (or a plain Go literal) into a cell
// Value. Unsupported types collapse to their string form rather than fail;
// reads never error.
func FromGo(v any) Value {
	switch x := v.(type) {
	case nil:
		return Null{}
	case Value:
		return x
	case float64:
		return Number(x)
	case float32:
		return Number(x)
	case int:
		return Number(x)
	case int64:
		return Number(x)
	case json.Number:
		if f, err := x.Float64(); err == nil {
			return Number(f)
		}
		return String(x.String())
	case string:
		return String(x)
	case bool:
		return Bool(x)
	default:
		return String(fmt.Sprint(x))
	}
}

// ToGo converts a cell Value back to the plain Go form used for JSON
// serialization: nil, float64, string or bool.
func ToGo(v Value) any {
	switch x := v.(type) {
	case nil, Null:
		return nil
	case Number:
		return float64(x)
	case String:
		return string(x)
	case Bool:
		return bool(x)
	default:
		return nil
	}
}

// Format renders a value for logs and CLI output. Numbers use the shortest
// representation that round-trips.
func Format(v Value) string {
	switch x := v.(type) {
	case nil, Null:
		return "<null>"
	case Number:
		if math.IsNaN(float64(x)) {
			return "NaN"
		}
		return strconv.FormatFloat(float64(x), 'g', -1, 64)
	case String:
		return string(x)
	case Bool:
		return strconv.FormatBool(bool(x))
	default:
		return fmt.Sprint(x)
	}
}
