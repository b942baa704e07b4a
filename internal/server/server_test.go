package server

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"math"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"sheetjson/internal/stats"
)

func newTestServer(t *testing.T, maxUpload int64) (*Server, *stats.Memory) {
	t.Helper()

	sink := stats.NewMemory()
	srv := New(Options{
		MaxUploadBytes: maxUpload,
		Stats:          sink,
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	return srv, sink
}

type part struct {
	field, filename, content string
}

func multipartBody(t *testing.T, parts ...part) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer

	mw := multipart.NewWriter(&buf)

	for _, p := range parts {
		if p.filename == "" {
			require.NoError(t, mw.WriteField(p.field, p.content))
			continue
		}

		w, err := mw.CreateFormFile(p.field, p.filename)
		require.NoError(t, err)

		_, err = io.WriteString(w, p.content)
		require.NoError(t, err)
	}

	require.NoError(t, mw.Close())

	return &buf, mw.FormDataContentType()
}

func do(t *testing.T, srv http.Handler, target string, parts ...part) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	body, ctype := multipartBody(t, parts...)
	req := httptest.NewRequest(http.MethodPost, target, body)
	req.Header.Set("Content-Type", ctype)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())

	return rec, out
}

func xlsxBook(t *testing.T, rows ...[]any) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, row := range rows {
		axis, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", axis, &row))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	return buf.String()
}

const configCSV = "key,value,type\nserver.port,8080,int\ndebug,yes,bool\n"

func TestStatus(t *testing.T) {
	srv, _ := newTestServer(t, 0)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "ok", "message": "sheetjson is running"}`, rec.Body.String())
}

func TestConvert_Rows(t *testing.T) {
	srv, sink := newTestServer(t, 0)

	book := xlsxBook(t, []any{"name", "age"}, []any{"Ada", 36}, []any{nil, nil}, []any{"Linus", nil})

	rec, out := do(t, srv, "/convert", part{field: "file", filename: "people.xlsx", content: book})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Equal(t, map[string]any{
		"Sheet1": []any{
			map[string]any{"name": "Ada", "age": float64(36)},
			map[string]any{"name": "Linus", "age": nil},
		},
	}, out["rows"])
	assert.Equal(t, []any{}, out["messages"])

	counts, _ := sink.Counts(context.Background())
	assert.Equal(t, map[string]int64{"rows": 1}, counts)
}

func TestConvert_Config(t *testing.T) {
	srv, _ := newTestServer(t, 0)

	rec, out := do(t, srv, "/convert/config", part{field: "file", filename: "c.csv", content: configCSV})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Equal(t, map[string]any{"server.port": float64(8080), "debug": true}, out["data"])
}

func TestConvert_RowNumbersFollowFileLines(t *testing.T) {
	srv, _ := newTestServer(t, 0)

	rec, out := do(t, srv, "/convert/config",
		part{field: "file", filename: "c.csv", content: "key,value,required\n\nfoo,,yes\n"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Equal(t, []any{"Row 3: missing required value for 'foo'."}, out["messages"])
}

func TestConvert_WorkbookWithHeaderlessSheet(t *testing.T) {
	srv, _ := newTestServer(t, 0)

	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"key", "value"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"timeout", 30}))

	_, err := f.NewSheet("Notes")
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue("Notes", "A3", "remember to rotate the token"))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	rec, out := do(t, srv, "/convert/config", part{field: "file", filename: "app.xlsx", content: buf.String()})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Equal(t, map[string]any{"timeout": float64(30)}, out["data"])
	assert.Contains(t, out["messages"], "Sheet 'Notes': the first row must contain headers — sheet ignored.")
}

func TestWriteJSON_UnencodableValueIs500(t *testing.T) {
	rec := httptest.NewRecorder()
	writeJSON(rec, http.StatusOK, map[string]any{"data": math.NaN()})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Contains(t, out["detail"], "could not encode response")
}

func TestConvert_ConfigSchema(t *testing.T) {
	srv, sink := newTestServer(t, 0)

	schemaDoc := `
columns:
  key: [Parameter]
keys:
  server.port: {type: int, required: true}
  server.host: {default: localhost}
`
	csv := "Parameter,value\nserver.port,8080\nserver.host,\nextra,1\n"

	tests := []struct {
		name   string
		target string
		parts  []part
	}{
		{
			name:   "dedicated route, schema file",
			target: "/convert/config_schema",
			parts: []part{
				{field: "file", filename: "c.csv", content: csv},
				{field: "schema", filename: "schema.yaml", content: schemaDoc},
			},
		},
		{
			name:   "mode query, schema field",
			target: "/convert?mode=schema",
			parts: []part{
				{field: "file", filename: "c.csv", content: csv},
				{field: "schema", content: schemaDoc},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, out := do(t, srv, tt.target, tt.parts...)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			assert.Equal(t, map[string]any{
				"server": map[string]any{"port": float64(8080), "host": "localhost"},
			}, out["data"])
			assert.Equal(t, []any{"Row 4: key 'extra' not defined in schema — ignored."}, out["messages"])
		})
	}

	counts, _ := sink.Counts(context.Background())
	assert.Equal(t, int64(2), counts["config_schema"])
}

func TestConvert_EmptyResultIs400WithMessages(t *testing.T) {
	srv, sink := newTestServer(t, 0)

	rec, out := do(t, srv, "/convert/config", part{field: "file", filename: "c.csv", content: "key,value\n,orphan\n"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Equal(t, map[string]any{
		"messages": []any{"Row 2: empty key — ignored.", "no valid entries generated."},
	}, out["detail"])

	counts, _ := sink.Counts(context.Background())
	assert.Empty(t, counts)
}

func TestConvert_StructuralErrors(t *testing.T) {
	srv, _ := newTestServer(t, 0)

	tests := []struct {
		name       string
		target     string
		parts      []part
		wantDetail string
	}{
		{
			name:       "missing file",
			target:     "/convert",
			parts:      []part{{field: "other", content: "x"}},
			wantDetail: "a 'file' upload is required",
		},
		{
			name:       "unsupported extension",
			target:     "/convert",
			parts:      []part{{field: "file", filename: "book.ods", content: "x"}},
			wantDetail: "only .xlsx and .csv files are supported",
		},
		{
			name:       "unreadable workbook",
			target:     "/convert",
			parts:      []part{{field: "file", filename: "book.xlsx", content: "not a zip"}},
			wantDetail: "unable to read spreadsheet",
		},
		{
			name:       "bad mode",
			target:     "/convert?mode=xml",
			parts:      []part{{field: "file", filename: "c.csv", content: configCSV}},
			wantDetail: "invalid mode name",
		},
		{
			name:       "schema missing",
			target:     "/convert/config_schema",
			parts:      []part{{field: "file", filename: "c.csv", content: configCSV}},
			wantDetail: "schema required when mode=config_schema",
		},
		{
			name:   "schema wrong shape",
			target: "/convert/config_schema",
			parts: []part{
				{field: "file", filename: "c.csv", content: configCSV},
				{field: "schema", content: `{"columns": [], "keys": {}}`},
			},
			wantDetail: "invalid schema shape",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, out := do(t, srv, tt.target, tt.parts...)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			detail, ok := out["detail"].(string)
			require.True(t, ok, rec.Body.String())
			assert.True(t, strings.HasPrefix(detail, tt.wantDetail), detail)
		})
	}
}

func TestConvert_UploadTooLarge(t *testing.T) {
	srv, _ := newTestServer(t, 1024)

	big := "key,value\n" + strings.Repeat("k,v\n", 1000)

	rec, out := do(t, srv, "/convert", part{field: "file", filename: "big.csv", content: big})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, out["detail"], "upload exceeds 1024 bytes")
}

func TestStats(t *testing.T) {
	srv, sink := newTestServer(t, 0)
	require.NoError(t, sink.Increment(context.Background(), "config"))

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"conversions": {"config": 1}}`, rec.Body.String())
}

func TestMethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t, 0)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/convert", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestListenAndServe_StopsOnCancel(t *testing.T) {
	srv, _ := newTestServer(t, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.NoError(t, srv.ListenAndServe(ctx, "127.0.0.1:0"))
}
