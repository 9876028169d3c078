package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/fire-tally-service/internal/tally"
)

// CacheMonitor is the view of the tally cache the health endpoints need.
type CacheMonitor interface {
	sharedobs.ReadinessChecker
	Status() tally.Status
}

// Server exposes health, readiness, cache status, and metrics HTTP endpoints.
type Server struct {
	httpServer *http.Server
	cache      CacheMonitor
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /status, and
// /metrics routes. Readiness holds once the cache has loaded a bundle.
func NewServer(addr string, cache CacheMonitor, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		cache:  cache,
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(cache))
	mux.HandleFunc("GET /status", s.handleStatus)
	mux.Handle("GET /metrics", promhttp.Handler())

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

type statusResponse struct {
	State       tally.State `json:"state"`
	BundleID    string      `json:"bundle_id,omitempty"`
	FetchedAt   *time.Time  `json:"fetched_at,omitempty"`
	AgeSeconds  float64     `json:"age_seconds"`
	LastError   string      `json:"last_error,omitempty"`
	LastErrorAt *time.Time  `json:"last_error_at,omitempty"`
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	st := s.cache.Status()
	resp := statusResponse{
		State:      st.State,
		BundleID:   st.BundleID,
		AgeSeconds: st.Age.Seconds(),
	}
	if !st.FetchedAt.IsZero() {
		resp.FetchedAt = &st.FetchedAt
	}
	if st.LastError != nil {
		resp.LastError = st.LastError.Error()
		resp.LastErrorAt = &st.LastErrorAt
	}

	code := http.StatusOK
	if st.State == tally.StateEmpty || st.State == tally.StateFailed {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort health response
}
