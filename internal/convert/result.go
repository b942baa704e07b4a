package convert

import (
	"sheetjson/internal/diagnostic"
	"sheetjson/internal/sheet"
)

// Result is the outcome of one conversion.
type Result struct {
	Mode Mode
	// OK is false when a config or config_schema conversion produced no entries.
	OK bool
	// Data is the produced configuration (config and config_schema modes).
	// It is empty, never nil, when OK is false.
	Data map[string]any
	// Rows holds each sheet's rows (rows mode), keyed by sheet name.
	Rows map[string][]sheet.Row
	// SheetNames lists the converted sheets in workbook order.
	SheetNames []string
	// Diagnostics are the findings, in the order they were made.
	Diagnostics diagnostic.Diagnostics
}

// Messages renders the diagnostics. Sheet names are included when more than
// one sheet was converted, since row numbers restart on every sheet.
func (r *Result) Messages() []string {
	return r.Diagnostics.Messages(len(r.SheetNames) > 1)
}

// Output is the JSON document returned to callers. Exactly one of Data and
// Rows is set.
type Output struct {
	Data     any      `json:"data,omitempty"`
	Rows     any      `json:"rows,omitempty"`
	Messages []string `json:"messages"`
}

// Output returns the result as its caller-facing document. Rows mode carries
// rows; the other modes carry data, which is an empty object on failure.
func (r *Result) Output() Output {
	out := Output{Messages: r.Messages()}

	if r.Mode == ModeRows {
		rows := r.Rows
		if rows == nil {
			rows = map[string][]sheet.Row{}
		}

		out.Rows = rows

		return out
	}

	data := r.Data
	if data == nil || !r.OK {
		data = map[string]any{}
	}

	out.Data = data

	return out
}
