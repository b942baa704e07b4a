package sheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"sheetjson/internal/cell"
)

// CSV reads a comma-separated file as a single sheet. Every non-empty field
// is Text; type coercion parses numbers and booleans later.
type CSV struct {
	// SheetName names the resulting sheet; "Sheet1" when empty.
	SheetName string
	// Comma overrides the field delimiter.
	Comma rune
}

// Read implements Reader.
func (c CSV) Read(r io.Reader) ([]Sheet, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	if c.Comma != 0 {
		cr.Comma = c.Comma
	}

	var (
		grid  [][]cell.Value
		lines []int
	)

	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
		}

		if len(grid) == 0 && len(rec) > 0 {
			rec[0] = strings.TrimPrefix(rec[0], "\ufeff")
		}

		row := make([]cell.Value, len(rec))
		for i, field := range rec {
			row[i] = cell.Text(field)
		}

		// encoding/csv skips blank lines and joins quoted line breaks, so the
		// record index is not the line number.
		line, _ := cr.FieldPos(0)

		grid = append(grid, row)
		lines = append(lines, line)
	}

	name := c.SheetName
	if name == "" {
		name = "Sheet1"
	}

	s, err := FromLines(name, grid, lines)
	if err != nil {
		return nil, err
	}

	return []Sheet{s}, nil
}
