package sheet

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"sheetjson/internal/cell"
)

var (
	// ErrUnreadable reports bytes that are not a readable spreadsheet.
	ErrUnreadable = errors.New("unable to read spreadsheet")
	// ErrNoHeader reports a sheet whose first row has no header names.
	ErrNoHeader = errors.New("the first row must contain headers")
	// ErrUnsupportedFormat reports an upload that is neither .xlsx nor .csv.
	ErrUnsupportedFormat = errors.New("only .xlsx and .csv files are supported")
)

// Sheet is one worksheet: its header names and its non-blank data rows.
type Sheet struct {
	Name    string
	Headers []string
	Rows    []Row
	// NoHeader marks a worksheet of a multi-sheet workbook whose first row
	// is blank. It has no headers and no rows; converters report and skip it.
	NoHeader bool
}

// HasHeader reports whether the sheet can be converted.
func (s Sheet) HasHeader() bool {
	return !s.NoHeader
}

// Reader decodes raw upload bytes into sheets, in workbook order.
type Reader interface {
	Read(r io.Reader) ([]Sheet, error)
}

// Read dispatches on the file extension of filename.
func Read(filename string, r io.Reader) ([]Sheet, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		return XLSX{}.Read(r)
	case ".csv":
		return CSV{SheetName: strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))}.Read(r)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Base(filename))
	}
}

// Supported reports whether filename has an extension Read understands.
func Supported(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm", ".csv":
		return true
	default:
		return false
	}
}

// FromGrid builds a sheet from a cell grid whose first row is the header and
// whose row i sits on spreadsheet line i+1. Blank header cells and cells
// beyond the header are named col_<index>, with a 0-based column index.
func FromGrid(name string, grid [][]cell.Value) (Sheet, error) {
	return FromLines(name, grid, nil)
}

// FromLines is FromGrid for sources where grid rows do not map one-to-one to
// lines, such as CSV with blank lines or multi-line quoted fields. lines[i]
// is the line grid[i] starts on; a nil lines falls back to i+1.
func FromLines(name string, grid [][]cell.Value, lines []int) (Sheet, error) {
	if lines != nil && len(lines) != len(grid) {
		return Sheet{}, fmt.Errorf("sheet %q: %d line numbers for %d rows", name, len(lines), len(grid))
	}

	lineOf := func(i int) int {
		if lines == nil {
			return i + 1
		}

		return lines[i]
	}

	if len(grid) == 0 {
		return Sheet{}, fmt.Errorf("sheet %q: %w", name, ErrNoHeader)
	}

	headers := make([]string, len(grid[0]))
	anyHeader := false

	for i, v := range grid[0] {
		h := strings.TrimSpace(v.String())
		if h == "" {
			h = columnName(i)
		} else {
			anyHeader = true
		}

		headers[i] = h
	}

	if !anyHeader {
		return Sheet{}, fmt.Errorf("sheet %q: %w", name, ErrNoHeader)
	}

	s := Sheet{Name: name, Headers: headers}

	for i, cells := range grid[1:] {
		row := NewRow(lineOf(i + 1))

		for j := range max(len(cells), len(headers)) {
			var v cell.Value
			if j < len(cells) {
				v = cells[j]
			}

			h := columnName(j)
			if j < len(headers) {
				h = headers[j]
			}

			row.Set(h, v)
		}

		if !row.IsBlank() {
			s.Rows = append(s.Rows, row)
		}
	}

	return s, nil
}

func columnName(i int) string {
	return fmt.Sprintf("col_%d", i)
}
