package sheet

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"sheetjson/internal/cell"
)

func workbook(t *testing.T, sheets map[string][][]any, order ...string) *bytes.Buffer {
	t.Helper()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	for i, name := range order {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", name))
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}

		for r, row := range sheets[name] {
			axis, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)

			values := row
			require.NoError(t, f.SetSheetRow(name, axis, &values))
		}
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	return buf
}

func TestXLSX_ReadTypedCells(t *testing.T) {
	buf := workbook(t, map[string][][]any{
		"Config": {
			{"key", "value", "type"},
			{"timeout", 30, "int"},
			{"ratio", 0.5, nil},
			{"debug", true, "bool"},
			{"port", "8080", "int"},
		},
	}, "Config")

	sheets, err := XLSX{}.Read(buf)
	require.NoError(t, err)
	require.Len(t, sheets, 1)

	s := sheets[0]
	assert.Equal(t, "Config", s.Name)
	assert.Equal(t, []string{"key", "value", "type"}, s.Headers)
	require.Len(t, s.Rows, 4)

	assert.Equal(t, cell.Number(30), s.Rows[0].Value("value"))
	assert.Equal(t, cell.Number(0.5), s.Rows[1].Value("value"))
	assert.True(t, s.Rows[1].Value("type").IsEmpty())
	assert.Equal(t, cell.Bool(true), s.Rows[2].Value("value"))
	assert.Equal(t, cell.Text("8080"), s.Rows[3].Value("value"))
	assert.Equal(t, 5, s.Rows[3].Line)
}

func TestXLSX_ReadAllSheetsInOrder(t *testing.T) {
	buf := workbook(t, map[string][][]any{
		"API":      {{"key", "value"}, {"api_url", "https://x.test"}},
		"Features": {{"key", "value"}, {"beta", "yes"}},
	}, "API", "Features")

	sheets, err := Read("config.xlsx", buf)
	require.NoError(t, err)
	require.Len(t, sheets, 2)
	assert.Equal(t, "API", sheets[0].Name)
	assert.Equal(t, "Features", sheets[1].Name)
}

func TestXLSX_SkipsEmptySheets(t *testing.T) {
	buf := workbook(t, map[string][][]any{
		"Config": {{"key", "value"}, {"a", 1}},
		"Notes":  nil,
	}, "Config", "Notes")

	sheets, err := XLSX{}.Read(buf)
	require.NoError(t, err)
	require.Len(t, sheets, 1)
	assert.Equal(t, "Config", sheets[0].Name)
}

func TestXLSX_HeaderlessSheetIsMarked(t *testing.T) {
	buf := workbook(t, map[string][][]any{
		"Config": {{"key", "value"}, {"timeout", 30}},
		"Notes":  {{nil}, {nil}, {"remember to rotate the token"}},
	}, "Config", "Notes")

	sheets, err := XLSX{}.Read(buf)
	require.NoError(t, err)
	require.Len(t, sheets, 2)

	assert.True(t, sheets[0].HasHeader())
	assert.Len(t, sheets[0].Rows, 1)

	assert.Equal(t, "Notes", sheets[1].Name)
	assert.True(t, sheets[1].NoHeader)
	assert.Empty(t, sheets[1].Rows)
}

func TestXLSX_NoHeader(t *testing.T) {
	buf := workbook(t, map[string][][]any{
		"Config": {{nil, nil}, {"a", 1}},
	}, "Config")

	_, err := XLSX{}.Read(buf)
	require.ErrorIs(t, err, ErrNoHeader)
}

func TestXLSX_Unreadable(t *testing.T) {
	_, err := XLSX{}.Read(bytes.NewReader([]byte("definitely not a zip container")))
	require.ErrorIs(t, err, ErrUnreadable)
}
