package sheet

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sheetjson/internal/cell"
)

func TestCSV_Read(t *testing.T) {
	in := "\ufeffkey,value,type\ntimeout,30,int\n,,\n\"api.url\",\"https://x.test\",url\nshort\n"

	sheets, err := CSV{SheetName: "cfg"}.Read(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, sheets, 1)

	s := sheets[0]
	assert.Equal(t, "cfg", s.Name)
	assert.Equal(t, []string{"key", "value", "type"}, s.Headers)
	require.Len(t, s.Rows, 3)

	assert.Equal(t, cell.Text("30"), s.Rows[0].Value("value"))
	assert.Equal(t, cell.Text("https://x.test"), s.Rows[1].Value("value"))
	assert.Equal(t, cell.Text("short"), s.Rows[2].Value("key"))
	assert.True(t, s.Rows[2].Value("value").IsEmpty())
}

func TestCSV_LineNumbers(t *testing.T) {
	tests := []struct {
		name      string
		in        string
		wantLines []int
	}{
		{
			name:      "blank line before a row",
			in:        "key,value,required\n\nfoo,,yes\n",
			wantLines: []int{3},
		},
		{
			name:      "multi-line quoted field",
			in:        "key,value\nnote,\"first\nsecond\"\n,orphan\n",
			wantLines: []int{2, 4},
		},
		{
			name:      "leading blank lines",
			in:        "\n\nkey,value\na,1\n",
			wantLines: []int{4},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sheets, err := CSV{}.Read(strings.NewReader(tt.in))
			require.NoError(t, err)

			var got []int
			for _, r := range sheets[0].Rows {
				got = append(got, r.Line)
			}

			assert.Equal(t, tt.wantLines, got)
		})
	}
}

func TestCSV_Semicolon(t *testing.T) {
	sheets, err := CSV{Comma: ';'}.Read(strings.NewReader("key;value\na;1\n"))
	require.NoError(t, err)
	assert.Equal(t, "Sheet1", sheets[0].Name)
	assert.Equal(t, cell.Text("1"), sheets[0].Rows[0].Value("value"))
}

func TestCSV_Empty(t *testing.T) {
	_, err := CSV{}.Read(strings.NewReader(""))
	require.ErrorIs(t, err, ErrNoHeader)
}
