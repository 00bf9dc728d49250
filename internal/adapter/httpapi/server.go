// Package httpapi exposes the dashboard API: projection and statistics
// reads, filter selection, occurrence submission, the confirmed bulk
// clear, reverse geocoding for map clicks, and the PDF report, plus
// health, readiness, and metrics endpoints.
package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/CelsoAntunesNogueira/alertadefesacivil/internal/domain"
	"github.com/CelsoAntunesNogueira/alertadefesacivil/internal/observability"
	"github.com/CelsoAntunesNogueira/alertadefesacivil/internal/store"
)

// Collection is the slice of the live collection the API writes to.
// Reads go through the store's synced snapshot instead.
type Collection interface {
	Add(ctx context.Context, rec domain.IncidentRecord) (string, error)
	Clear(ctx context.Context) error
}

// Server hosts the dashboard API.
type Server struct {
	httpServer *http.Server
	store      *store.Store
	collection Collection // nil when the live collection is disabled
	geocoder   domain.Geocoder

	photoMaxBytes int64
	metrics       *observability.Metrics
	logger        *slog.Logger
}

// NewServer wires the routes. collection may be nil when the deployment
// runs CSV-only; submission and clear then answer 503.
func NewServer(addr string, st *store.Store, collection Collection, geocoder domain.Geocoder, photoMaxBytes int64, metrics *observability.Metrics, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		store:         st,
		collection:    collection,
		geocoder:      geocoder,
		photoMaxBytes: photoMaxBytes,
		metrics:       metrics,
		logger:        logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/projection", s.handleProjection)
	mux.HandleFunc("GET /api/stats", s.handleStats)
	mux.HandleFunc("PUT /api/filter", s.handleSetFilter)
	mux.HandleFunc("POST /api/occurrences", s.handleSubmit)
	mux.HandleFunc("DELETE /api/occurrences", s.handleClear)
	mux.HandleFunc("GET /api/reverse", s.handleReverse)
	mux.HandleFunc("GET /api/report", s.handleReport)

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

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	if !s.store.Synchronized() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  "no snapshot applied yet",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
