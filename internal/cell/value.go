// Package cell models a single spreadsheet cell as a tagged value.
//
// Sheet readers convert whatever the source held into a Value right after
// decoding, so the rest of the converter works on a closed set of shapes:
// Empty, Text, Number and Bool.
package cell

import (
	"fmt"
	"math"
	"strconv"

	"github.com/goccy/go-json"
)

// Value is a decoded cell. The zero Value is Empty.
type Value struct {
	kind Kind
	text string
	num  float64
	b    bool
}

// Empty returns the empty cell.
func Empty() Value { return Value{} }

// Text returns a text cell. The empty string is normalized to Empty.
func Text(s string) Value {
	if s == "" {
		return Value{}
	}

	return Value{kind: KindText, text: s}
}

// Number returns a numeric cell.
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// Bool returns a boolean cell.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// FromAny converts a decoded scalar (JSON, YAML or plain Go) into a Value.
// It returns an error for maps, slices and other non-scalar inputs.
func FromAny(v any) (Value, error) {
	switch t := v.(type) {
	case nil:
		return Empty(), nil
	case Value:
		return t, nil
	case string:
		return Text(t), nil
	case bool:
		return Bool(t), nil
	case float64:
		return Number(t), nil
	case float32:
		return Number(float64(t)), nil
	case int:
		return Number(float64(t)), nil
	case int8:
		return Number(float64(t)), nil
	case int16:
		return Number(float64(t)), nil
	case int32:
		return Number(float64(t)), nil
	case int64:
		return Number(float64(t)), nil
	case uint:
		return Number(float64(t)), nil
	case uint8:
		return Number(float64(t)), nil
	case uint16:
		return Number(float64(t)), nil
	case uint32:
		return Number(float64(t)), nil
	case uint64:
		return Number(float64(t)), nil
	default:
		return Value{}, fmt.Errorf("unsupported cell value of type %T", v)
	}
}

// Kind reports which shape the value holds.
func (v Value) Kind() Kind { return v.kind }

// IsEmpty reports whether the cell holds nothing.
func (v Value) IsEmpty() bool { return v.kind == KindEmpty }

// AsNumber returns the numeric payload and whether the value is a Number.
func (v Value) AsNumber() (float64, bool) { return v.num, v.kind == KindNumber }

// AsBool returns the boolean payload and whether the value is a Bool.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

// String returns the string form of the value. Integral numbers print
// without a fraction, so Number(30) is "30".
func (v Value) String() string {
	switch v.kind {
	case KindText:
		return v.text
	case KindNumber:
		return formatNumber(v.num)
	case KindBool:
		return strconv.FormatBool(v.b)
	default:
		return ""
	}
}

// Interface returns the value as a plain Go value suitable for JSON output.
// Integral numbers become int64.
func (v Value) Interface() any {
	switch v.kind {
	case KindText:
		return v.text
	case KindNumber:
		if i, ok := integral(v.num); ok {
			return i
		}

		return v.num
	case KindBool:
		return v.b
	default:
		return nil
	}
}

// MarshalJSON encodes the value as its plain JSON counterpart.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

// Integer returns the value as int64 when it is a Number without a fraction.
func (v Value) Integer() (int64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}

	return integral(v.num)
}

func integral(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}

	if f < -(1<<63) || f >= 1<<63 {
		return 0, false
	}

	return int64(f), true
}

func formatNumber(f float64) string {
	if i, ok := integral(f); ok {
		return strconv.FormatInt(i, 10)
	}

	return strconv.FormatFloat(f, 'f', -1, 64)
}
