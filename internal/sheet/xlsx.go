package sheet

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"sheetjson/internal/cell"
)

// XLSX reads every non-empty worksheet of an Office Open XML workbook.
// Formula cells yield their cached result; no formula is evaluated.
type XLSX struct{}

// Read implements Reader.
func (XLSX) Read(r io.Reader) ([]Sheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	defer func() { _ = f.Close() }()

	names := f.GetSheetList()
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrUnreadable)
	}

	sheets := make([]Sheet, 0, len(names))

	for _, name := range names {
		grid, err := readGrid(f, name)
		if err != nil {
			return nil, err
		}

		// Untouched worksheets are skipped.
		if len(grid) == 0 {
			continue
		}

		s, err := FromGrid(name, grid)
		if errors.Is(err, ErrNoHeader) {
			// Reported per sheet; the workbook fails only when no sheet has a header.
			sheets = append(sheets, Sheet{Name: name, NoHeader: true})
			continue
		}

		if err != nil {
			return nil, err
		}

		sheets = append(sheets, s)
	}

	if !slices.ContainsFunc(sheets, Sheet.HasHeader) {
		return nil, fmt.Errorf("workbook: %w", ErrNoHeader)
	}

	return sheets, nil
}

func readGrid(f *excelize.File, name string) ([][]cell.Value, error) {
	rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: sheet %q: %v", ErrUnreadable, name, err)
	}

	grid := make([][]cell.Value, len(rows))

	for i, row := range rows {
		grid[i] = make([]cell.Value, len(row))

		for j, raw := range row {
			if raw == "" {
				continue
			}

			axis, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				return nil, fmt.Errorf("%w: sheet %q: %v", ErrUnreadable, name, err)
			}

			typ, err := f.GetCellType(name, axis)
			if err != nil {
				return nil, fmt.Errorf("%w: sheet %q cell %s: %v", ErrUnreadable, name, axis, err)
			}

			grid[i][j] = typedValue(f, name, axis, raw, typ)
		}
	}

	return grid, nil
}

// typedValue maps a raw cell string to a cell.Value using the stored cell
// type. Numbers are stored untyped by most writers, so untyped cells that
// parse as a float become Number.
func typedValue(f *excelize.File, sheetName, axis, raw string, typ excelize.CellType) cell.Value {
	switch typ {
	case excelize.CellTypeBool:
		return cell.Bool(raw == "1" || strings.EqualFold(raw, "true"))
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeFormula, excelize.CellTypeError:
		return cell.Text(raw)
	case excelize.CellTypeDate:
		if formatted, err := f.GetCellValue(sheetName, axis); err == nil {
			return cell.Text(formatted)
		}

		return cell.Text(raw)
	default:
		if n, err := strconv.ParseFloat(raw, 64); err == nil {
			return cell.Number(n)
		}

		return cell.Text(raw)
	}
}
