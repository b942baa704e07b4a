package diagnostic

import (
	"errors"
	"fmt"
	"strings"

	"sheetjson/internal/common"
)

// Codes identify the kind of finding independently of its wording.
const (
	CodeEmptyKey           = "empty_key"
	CodeDuplicateKey       = "duplicate_key"
	CodeMissingValue       = "missing_required_value"
	CodeTypeMismatch       = "type_mismatch"
	CodeUnknownKey         = "unknown_key"
	CodeRequiredKeyMissing = "schema_required_key_missing"
	CodeMissingColumns     = "missing_columns"
	CodeMissingHeader      = "missing_header"
	CodeNoRows             = "no_rows"
	CodeNoEntries          = "no_entries"
	CodeAliasCollision     = "alias_collision"
	CodeHeaderCollision    = "header_collision"
	CodeUnknownSchemaField = "unknown_schema_field"
	CodeInvalidDefault     = "invalid_default"
)

// Diagnostics holds diagnostics in the order they were reported.
type Diagnostics struct {
	Items []Diagnostic
}

// Diagnostic represents a single diagnostic message.
type Diagnostic struct {
	// Severity of the diagnostic.
	Severity DiagnosticSeverity
	// Code is a unique identifier for this type of diagnostic.
	Code string
	// Message is the human-readable description.
	Message string
	// Sheet names the worksheet the finding belongs to (if any).
	Sheet string
	// Row is the 1-based spreadsheet row, header included (0 when not row bound).
	Row int
	// Key is the canonical key the finding relates to (if any).
	Key string
	// Suggestions are potential fixes or alternatives.
	Suggestions []string
}

// DiagnosticSeverity represents the severity level of a diagnostic.
type DiagnosticSeverity int

const (
	DiagnosticInfo DiagnosticSeverity = iota
	DiagnosticWarning
	DiagnosticError
)

// String returns a human-readable severity name.
func (s DiagnosticSeverity) String() string {
	switch s {
	case DiagnosticInfo:
		return "info"
	case DiagnosticWarning:
		return "warning"
	case DiagnosticError:
		return "error"
	default:
		return common.UnknownStr
	}
}

// Add appends a diagnostic.
func (d *Diagnostics) Add(diag Diagnostic) {
	d.Items = append(d.Items, diag)
}

// AddError adds an error diagnostic.
func (d *Diagnostics) AddError(code, message, sheet string, row int, key string) {
	d.Add(Diagnostic{Severity: DiagnosticError, Code: code, Message: message, Sheet: sheet, Row: row, Key: key})
}

// AddWarning adds a warning diagnostic.
func (d *Diagnostics) AddWarning(code, message, sheet string, row int, key string) {
	d.Add(Diagnostic{Severity: DiagnosticWarning, Code: code, Message: message, Sheet: sheet, Row: row, Key: key})
}

// AddInfo adds an info diagnostic.
func (d *Diagnostics) AddInfo(code, message, sheet string, row int, key string) {
	d.Add(Diagnostic{Severity: DiagnosticInfo, Code: code, Message: message, Sheet: sheet, Row: row, Key: key})
}

// Len returns the number of diagnostics.
func (d *Diagnostics) Len() int {
	return len(d.Items)
}

// Count returns how many diagnostics carry the given code.
func (d *Diagnostics) Count(code string) int {
	n := 0

	for _, it := range d.Items {
		if it.Code == code {
			n++
		}
	}

	return n
}

// Errors returns the error diagnostics in report order.
func (d *Diagnostics) Errors() []Diagnostic {
	return d.bySeverity(DiagnosticError)
}

// Warnings returns the warning diagnostics in report order.
func (d *Diagnostics) Warnings() []Diagnostic {
	return d.bySeverity(DiagnosticWarning)
}

func (d *Diagnostics) bySeverity(s DiagnosticSeverity) []Diagnostic {
	var out []Diagnostic

	for _, it := range d.Items {
		if it.Severity == s {
			out = append(out, it)
		}
	}

	return out
}

// HasErrors returns true if there are any error diagnostics.
func (d *Diagnostics) HasErrors() bool {
	for _, it := range d.Items {
		if it.Severity == DiagnosticError {
			return true
		}
	}

	return false
}

// Merge appends another Diagnostics instance after this one.
func (d *Diagnostics) Merge(other Diagnostics) {
	d.Items = append(d.Items, other.Items...)
}

// Messages renders every diagnostic, in order. When withSheet is true the
// sheet name is included so row numbers from different sheets can be told apart.
func (d *Diagnostics) Messages(withSheet bool) []string {
	out := make([]string, 0, len(d.Items))
	for _, it := range d.Items {
		out = append(out, it.Render(withSheet))
	}

	return out
}

// Error returns a combined error from all error diagnostics, or nil if there are none.
func (d *Diagnostics) Error() error {
	errs := d.Errors()
	if len(errs) == 0 {
		return nil
	}

	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, e.String())
	}

	return errors.New(strings.Join(parts, "; "))
}

// String returns the diagnostic with its code and location.
func (d Diagnostic) String() string {
	msg := d.Message
	if d.Code != "" {
		msg = fmt.Sprintf("[%s] %s", d.Code, msg)
	}

	if loc := d.location(true); loc != "" {
		return loc + ": " + msg
	}

	return msg
}

// Render returns the user-facing text: location prefix, message and
// suggestions, without the machine code.
func (d Diagnostic) Render(withSheet bool) string {
	msg := d.Message
	if len(d.Suggestions) > 0 {
		msg = fmt.Sprintf("%s (did you mean %s?)", msg, quoteAll(d.Suggestions))
	}

	if loc := d.location(withSheet); loc != "" {
		return loc + ": " + msg
	}

	return msg
}

func (d Diagnostic) location(withSheet bool) string {
	switch {
	case withSheet && d.Sheet != "" && d.Row > 0:
		return fmt.Sprintf("Sheet '%s' row %d", d.Sheet, d.Row)
	case withSheet && d.Sheet != "":
		return fmt.Sprintf("Sheet '%s'", d.Sheet)
	case d.Row > 0:
		return fmt.Sprintf("Row %d", d.Row)
	default:
		return ""
	}
}

func quoteAll(ss []string) string {
	q := make([]string, len(ss))
	for i, s := range ss {
		q[i] = "'" + s + "'"
	}

	return strings.Join(q, " or ")
}
