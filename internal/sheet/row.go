package sheet

import (
	"bytes"

	"github.com/goccy/go-json"

	"sheetjson/internal/cell"
)

// Row is an ordered mapping from header name to cell value.
type Row struct {
	// Line is the 1-based spreadsheet line the row came from (the header is line 1).
	Line int

	keys   []string
	values map[string]cell.Value
}

// NewRow returns an empty row for the given spreadsheet line.
func NewRow(line int) Row {
	return Row{Line: line, values: map[string]cell.Value{}}
}

// RowOf builds a row from alternating header/value pairs. It is meant for
// tests and small fixtures: RowOf(2, "key", "timeout", "value", 30).
// Values go through cell.FromAny; unsupported values panic.
func RowOf(line int, pairs ...any) Row {
	r := NewRow(line)

	for i := 0; i+1 < len(pairs); i += 2 {
		name, ok := pairs[i].(string)
		if !ok {
			panic("sheet.RowOf: header names must be strings")
		}

		v, err := cell.FromAny(pairs[i+1])
		if err != nil {
			panic("sheet.RowOf: " + err.Error())
		}

		r.Set(name, v)
	}

	return r
}

// Set stores v under name. A repeated name keeps its first position and
// takes the latest value.
func (r *Row) Set(name string, v cell.Value) {
	if r.values == nil {
		r.values = map[string]cell.Value{}
	}

	if _, ok := r.values[name]; !ok {
		r.keys = append(r.keys, name)
	}

	r.values[name] = v
}

// Get returns the value stored under name.
func (r Row) Get(name string) (cell.Value, bool) {
	v, ok := r.values[name]
	return v, ok
}

// Value returns the value stored under name, or Empty.
func (r Row) Value(name string) cell.Value {
	return r.values[name]
}

// Has reports whether the row has a column called name.
func (r Row) Has(name string) bool {
	_, ok := r.values[name]
	return ok
}

// Keys returns the header names in column order.
func (r Row) Keys() []string {
	return append([]string(nil), r.keys...)
}

// IsBlank reports whether every cell is empty.
func (r Row) IsBlank() bool {
	for _, v := range r.values {
		if !v.IsEmpty() {
			return false
		}
	}

	return true
}

// MarshalJSON encodes the row as an object with keys in column order.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}

		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}

		vb, err := json.Marshal(r.values[k].Interface())
		if err != nil {
			return nil, err
		}

		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}
