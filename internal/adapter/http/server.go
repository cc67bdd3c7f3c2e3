package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/weather-widget/internal/report"
)

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// ReportSource returns the most recently published snapshot.
type ReportSource interface {
	Current() (report.Snapshot, bool)
}

// HistoryReader returns recent snapshots, newest first.
type HistoryReader interface {
	Recent(ctx context.Context, n int) ([]report.Snapshot, error)
}

// Options selects the report views the server exposes.
type Options struct {
	Reports ReportSource
	// History is nil when history recording is disabled.
	History HistoryReader
	// HistoryLimit is the default and maximum for /history?limit.
	HistoryLimit int
	// ShowWeatherURL is the page /show redirects to.
	ShowWeatherURL string
}

// Server exposes health, readiness, metrics and report endpoints.
type Server struct {
	httpServer *http.Server
	opts       Options
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics and the
// report views.
func NewServer(addr string, ready ReadinessChecker, opts Options, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = 100
	}

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		opts:   opts,
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /report", s.handleReport)
	mux.HandleFunc("GET /report.txt", s.handleReportText)
	mux.HandleFunc("GET /history", s.handleHistory)
	mux.HandleFunc("GET /show", s.handleShow)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func (s *Server) handleReport(w http.ResponseWriter, _ *http.Request) {
	snap, ok := s.current()
	if !ok {
		writeError(w, http.StatusNotFound, "no report published yet")
		return
	}
	writeJSON(w, http.StatusOK, snap.Document())
}

func (s *Server) handleReportText(w http.ResponseWriter, _ *http.Request) {
	snap, ok := s.current()
	if !ok {
		http.Error(w, "no report published yet", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Icon-Label", snap.IconLabel())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(snap.Text() + "\n"))
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.opts.History == nil {
		writeError(w, http.StatusNotFound, "history is disabled")
		return
	}

	limit := s.opts.HistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, s.opts.HistoryLimit)
	}

	snaps, err := s.opts.History.Recent(r.Context(), limit)
	if err != nil {
		s.logger.Error("read report history", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to read history")
		return
	}

	docs := make([]report.Document, len(snaps))
	for i, snap := range snaps {
		docs[i] = snap.Document()
	}
	writeJSON(w, http.StatusOK, docs)
}

// handleShow sends the browser to the full forecast page, the widget's
// click-through.
func (s *Server) handleShow(w http.ResponseWriter, r *http.Request) {
	if s.opts.ShowWeatherURL == "" {
		writeError(w, http.StatusNotFound, "no forecast page configured")
		return
	}
	http.Redirect(w, r, s.opts.ShowWeatherURL, http.StatusFound)
}

func (s *Server) current() (report.Snapshot, bool) {
	if s.opts.Reports == nil {
		return report.Snapshot{}, false
	}
	return s.opts.Reports.Current()
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
