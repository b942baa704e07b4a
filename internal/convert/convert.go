package convert

import (
	"errors"
	"fmt"

	"sheetjson/internal/diagnostic"
	"sheetjson/internal/schema"
	"sheetjson/internal/sheet"
)

// Convert runs one conversion over sheets, in workbook order. sch is required
// for ModeConfigSchema and ignored otherwise.
func Convert(sheets []sheet.Sheet, mode Mode, sch *schema.Schema) (*Result, error) {
	if !mode.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMode, string(mode))
	}

	if mode.NeedsSchema() && sch == nil {
		return nil, ErrSchemaRequired
	}

	res := &Result{Mode: mode}
	for _, s := range sheets {
		res.SheetNames = append(res.SheetNames, s.Name)
	}

	switch mode {
	case ModeRows:
		convertRows(res, sheets)
	case ModeConfig:
		convertConfig(res, sheets, nil)
	case ModeConfigSchema:
		res.Diagnostics.Merge(sch.Warnings)
		convertConfig(res, sheets, sch)
	}

	return res, nil
}

// ConvertText is Convert with the mode and schema still in their raw form, as
// received from a CLI flag or an upload. schemaText may be nil unless the mode
// needs a schema.
func ConvertText(sheets []sheet.Sheet, modeName string, schemaText []byte) (*Result, error) {
	mode, err := ParseMode(modeName)
	if err != nil {
		return nil, err
	}

	var sch *schema.Schema

	if mode.NeedsSchema() {
		if len(schemaText) == 0 {
			return nil, ErrSchemaRequired
		}

		sch, err = schema.Parse(schemaText)
		if err != nil {
			if errors.Is(err, ErrInvalidSchema) {
				return nil, err
			}

			return nil, fmt.Errorf("%w: %w", ErrInvalidSchema, err)
		}
	}

	return Convert(sheets, mode, sch)
}

func convertRows(res *Result, sheets []sheet.Sheet) {
	res.OK = true
	res.Rows = make(map[string][]sheet.Row, len(sheets))

	for _, s := range sheets {
		if !s.HasHeader() {
			reportNoHeader(&res.Diagnostics, s.Name)
			continue
		}

		rows := s.Rows
		if rows == nil {
			rows = []sheet.Row{}
		}

		res.Rows[s.Name] = rows

		if len(s.Rows) == 0 {
			res.Diagnostics.AddInfo(diagnostic.CodeNoRows, "no data rows.", s.Name, 0, "")
		}
	}
}

func convertConfig(res *Result, sheets []sheet.Sheet, sch *schema.Schema) {
	e := newEngine(sch, &res.Diagnostics)

	for _, s := range sheets {
		e.sheet(s)
	}

	e.requiredPostCheck()

	res.Data = e.data
	res.OK = len(e.data) > 0

	if !res.OK {
		res.Data = map[string]any{}
		res.Diagnostics.AddError(diagnostic.CodeNoEntries, "no valid entries generated.", "", 0, "")
	}
}
