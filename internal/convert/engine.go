package convert

import (
	"fmt"
	"slices"
	"strings"

	"sheetjson/internal/coerce"
	"sheetjson/internal/diagnostic"
	"sheetjson/internal/keypath"
	"sheetjson/internal/match"
	"sheetjson/internal/schema"
	"sheetjson/internal/sheet"
)

// Canonical column names read by the rule engine.
const (
	ColumnKey      = "key"
	ColumnValue    = "value"
	ColumnRequired = "required"
	ColumnType     = "type"
)

// maxSuggestions bounds the "did you mean" list of an unknown key.
const maxSuggestions = 2

// engine applies row rules for one conversion. With a nil schema it runs the
// plain config path: no aliases, no defaults, no nesting, every key kept.
type engine struct {
	sch   *schema.Schema
	data  map[string]any
	seen  map[string]bool
	diags *diagnostic.Diagnostics
}

func newEngine(sch *schema.Schema, diags *diagnostic.Diagnostics) *engine {
	return &engine{
		sch:   sch,
		data:  map[string]any{},
		seen:  map[string]bool{},
		diags: diags,
	}
}

// sheet runs every row of s through the rules. Sheets without the key and
// value columns are reported and skipped.
func (e *engine) sheet(s sheet.Sheet) {
	if !s.HasHeader() {
		reportNoHeader(e.diags, s.Name)
		return
	}

	if len(s.Rows) == 0 {
		e.diags.AddWarning(diagnostic.CodeNoRows, "no data rows.", s.Name, 0, "")
		return
	}

	rows := s.Rows
	headers := s.Headers

	if e.sch != nil {
		headers, rows = e.normalizeHeaders(s)
	}

	if !slices.Contains(headers, ColumnKey) || !slices.Contains(headers, ColumnValue) {
		e.diags.AddError(diagnostic.CodeMissingColumns,
			fmt.Sprintf("columns '%s' and '%s' are required.", ColumnKey, ColumnValue),
			s.Name, 0, "")

		return
	}

	for _, row := range rows {
		e.row(s.Name, row)
	}
}

// reportNoHeader notes a worksheet skipped for lack of a header row.
func reportNoHeader(diags *diagnostic.Diagnostics, sheetName string) {
	diags.AddWarning(diagnostic.CodeMissingHeader,
		"the first row must contain headers — sheet ignored.", sheetName, 0, "")
}

// normalizeHeaders renames every column to its canonical name. When two
// headers resolve to the same name the leftmost one is kept.
func (e *engine) normalizeHeaders(s sheet.Sheet) ([]string, []sheet.Row) {
	resolver := e.sch.Resolver()

	canonical := make([]string, len(s.Headers))
	owner := map[string]string{}
	headers := make([]string, 0, len(s.Headers))

	for i, h := range s.Headers {
		c := resolver.Header(h)

		if first, taken := owner[c]; taken {
			e.diags.AddWarning(diagnostic.CodeHeaderCollision,
				fmt.Sprintf("header '%s' and header '%s' both map to column '%s' — using '%s'.", first, h, c, first),
				s.Name, 1, "")

			canonical[i] = ""

			continue
		}

		owner[c] = h
		canonical[i] = c
		headers = append(headers, c)
	}

	rows := make([]sheet.Row, len(s.Rows))

	for i, row := range s.Rows {
		out := sheet.NewRow(row.Line)

		for j, h := range s.Headers {
			if canonical[j] == "" {
				continue
			}

			out.Set(canonical[j], row.Value(h))
		}

		// Cells past the header row carry generated names; keep them as-is.
		for _, k := range row.Keys() {
			if !out.Has(k) && !slices.Contains(s.Headers, k) {
				out.Set(k, row.Value(k))
			}
		}

		rows[i] = out
	}

	return headers, rows
}

// row applies the rule pipeline to one data row.
func (e *engine) row(sheetName string, row sheet.Row) {
	line := row.Line

	rawKey := strings.TrimSpace(row.Value(ColumnKey).String())
	if rawKey == "" {
		e.diags.AddWarning(diagnostic.CodeEmptyKey, "empty key — ignored.", sheetName, line, "")
		return
	}

	key := rawKey
	rule := schema.Rule{}
	declared := false

	if e.sch != nil {
		key = e.sch.Resolver().Key(rawKey)
		rule, declared = e.sch.Rule(key)
	}

	required := strings.ToLower(strings.TrimSpace(row.Value(ColumnRequired).String())) == "yes" || rule.Required

	value := row.Value(ColumnValue)
	if value.IsEmpty() && rule.HasDefault {
		value = rule.Default
	}

	if required && value.IsEmpty() {
		e.diags.AddError(diagnostic.CodeMissingValue,
			fmt.Sprintf("missing required value for '%s'.", key),
			sheetName, line, key)
	}

	converted, issue := coerce.Convert(value, e.expectedType(rule, row), key)
	if issue != nil {
		e.diags.AddError(diagnostic.CodeTypeMismatch, issue.Message, sheetName, line, key)
	}

	if e.seen[key] {
		e.diags.AddWarning(diagnostic.CodeDuplicateKey,
			fmt.Sprintf("duplicate key '%s' — overwriting previous value.", key),
			sheetName, line, key)
	}

	e.seen[key] = true

	if e.sch == nil {
		e.data[key] = converted
		return
	}

	if !declared && !e.sch.AllowExtraKeys {
		e.diags.Add(diagnostic.Diagnostic{
			Severity:    diagnostic.DiagnosticWarning,
			Code:        diagnostic.CodeUnknownKey,
			Message:     fmt.Sprintf("key '%s' not defined in schema — ignored.", key),
			Sheet:       sheetName,
			Row:         line,
			Key:         key,
			Suggestions: match.Suggest(key, e.sch.KeyNames(), maxSuggestions),
		})

		return
	}

	keypath.Set(e.data, key, converted)
}

// expectedType prefers the schema's type, then the row's type hint, then string.
func (e *engine) expectedType(rule schema.Rule, row sheet.Row) coerce.Type {
	if rule.Type != "" {
		return rule.Type
	}

	if t := coerce.ParseType(row.Value(ColumnType).String()); t != "" {
		return t
	}

	return coerce.TypeString
}

// requiredPostCheck reports schema-required keys that no row supplied.
func (e *engine) requiredPostCheck() {
	if e.sch == nil {
		return
	}

	for _, key := range e.sch.RequiredKeys() {
		if e.seen[key] {
			continue
		}

		e.diags.AddError(diagnostic.CodeRequiredKeyMissing,
			fmt.Sprintf("schema required key '%s' missing — add a row with this key or provide a default.", key),
			"", 0, key)
	}
}

