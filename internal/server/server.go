package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"sheetjson/internal/stats"
)

// DefaultMaxUploadBytes limits request bodies when Options leaves it unset.
const DefaultMaxUploadBytes = 10 << 20

// Options configures a Server.
type Options struct {
	// MaxUploadBytes caps the request body size.
	MaxUploadBytes int64
	// Stats receives one increment per successful conversion. Nil keeps
	// counters in memory.
	Stats  stats.Sink
	Logger *slog.Logger
}

// Server serves the conversion API.
type Server struct {
	maxUpload int64
	stats     stats.Sink
	log       *slog.Logger
	mux       *http.ServeMux
}

func New(opts Options) *Server {
	s := &Server{
		maxUpload: opts.MaxUploadBytes,
		stats:     opts.Stats,
		log:       opts.Logger,
		mux:       http.NewServeMux(),
	}

	if s.maxUpload <= 0 {
		s.maxUpload = DefaultMaxUploadBytes
	}

	if s.stats == nil {
		s.stats = stats.NewMemory()
	}

	if s.log == nil {
		s.log = slog.Default()
	}

	s.routes()

	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /status", s.handleStatus)
	s.mux.HandleFunc("GET /stats", s.handleStats)
	s.mux.HandleFunc("POST /convert", s.handleConvert(""))
	s.mux.HandleFunc("POST /convert/config", s.handleConvert("config"))
	s.mux.HandleFunc("POST /convert/config_schema", s.handleConvert("config_schema"))
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		s.log.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
