package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"sheetjson/internal/common"
	"sheetjson/internal/convert"
	"sheetjson/internal/sheet"
)

const (
	formFile   = "file"
	formSchema = "schema"
)

type statusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// errorResponse carries either a plain string or a messages object.
type errorResponse struct {
	Detail any `json:"detail"`
}

type messagesDetail struct {
	Messages []string `json:"messages"`
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{Status: "ok", Message: "sheetjson is running"})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	counts, err := s.stats.Counts(r.Context())
	if err != nil {
		s.log.Error("read stats", "err", err)
		writeError(w, http.StatusInternalServerError, "could not read usage counters")

		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"conversions": counts})
}

// handleConvert returns a handler for mode. An empty mode reads the "mode"
// query parameter and falls back to rows.
func (s *Server) handleConvert(mode string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		modeName := common.FirstNonEmpty(mode, r.URL.Query().Get("mode"), string(convert.ModeRows))

		if r.ContentLength > s.maxUpload {
			s.fail(w, r, modeName, fmt.Errorf("upload exceeds %d bytes", s.maxUpload))
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)

		up, err := s.readUpload(r)
		if err != nil {
			s.fail(w, r, modeName, err)
			return
		}

		res, err := convert.ConvertText(up.sheets, modeName, up.schema)
		if err != nil {
			s.fail(w, r, modeName, err)
			return
		}

		out := res.Output()

		s.log.Info("convert",
			"mode", res.Mode,
			"file", up.filename,
			"sheets", len(up.sheets),
			"rows", countRows(up.sheets),
			"messages", res.Diagnostics.Len(),
			"errors", len(res.Diagnostics.Errors()),
			"warnings", len(res.Diagnostics.Warnings()),
			"ok", res.OK,
			"duration", time.Since(start),
		)

		for _, d := range res.Diagnostics.Items {
			s.log.Debug("diagnostic", "file", up.filename, "detail", d.String())
		}

		if !res.OK {
			writeJSON(w, http.StatusBadRequest, errorResponse{Detail: messagesDetail{Messages: out.Messages}})
			return
		}

		if err := s.stats.Increment(r.Context(), res.Mode.String()); err != nil {
			s.log.Warn("increment stats", "mode", res.Mode, "err", err)
		}

		writeJSON(w, http.StatusOK, out)
	}
}

type upload struct {
	filename string
	sheets   []sheet.Sheet
	schema   []byte
}

var errMissingFile = errors.New("a 'file' upload is required")

func (s *Server) readUpload(r *http.Request) (*upload, error) {
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, fmt.Errorf("upload exceeds %d bytes", tooLarge.Limit)
		}

		return nil, fmt.Errorf("invalid multipart form: %w", err)
	}

	f, hdr, err := r.FormFile(formFile)
	if err != nil {
		return nil, errMissingFile
	}
	defer f.Close()

	if !sheet.Supported(hdr.Filename) {
		return nil, sheet.ErrUnsupportedFormat
	}

	sheets, err := sheet.Read(hdr.Filename, f)
	if err != nil {
		return nil, err
	}

	schemaText, err := readSchema(r)
	if err != nil {
		return nil, err
	}

	return &upload{filename: filepath.Base(hdr.Filename), sheets: sheets, schema: schemaText}, nil
}

// readSchema takes the schema from a "schema" file part or, failing that, a
// "schema" form value.
func readSchema(r *http.Request) ([]byte, error) {
	f, _, err := r.FormFile(formSchema)
	if err == nil {
		defer f.Close()

		b, err := io.ReadAll(f)
		if err != nil {
			return nil, fmt.Errorf("read schema upload: %w", err)
		}

		return b, nil
	}

	if v := strings.TrimSpace(r.FormValue(formSchema)); v != "" {
		return []byte(v), nil
	}

	return nil, nil
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, mode string, err error) {
	s.log.Warn("convert rejected", "mode", mode, "path", r.URL.Path, "err", err)
	writeError(w, http.StatusBadRequest, err.Error())
}

func countRows(sheets []sheet.Sheet) int {
	n := 0
	for _, s := range sheets {
		n += len(s.Rows)
	}

	return n
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}

// writeJSON encodes v before writing the header, so an unencodable value
// becomes a 500 instead of an empty 200.
func writeJSON(w http.ResponseWriter, status int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		b, _ = json.Marshal(errorResponse{Detail: "could not encode response: " + err.Error()})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_, _ = w.Write(append(b, '\n'))
}
