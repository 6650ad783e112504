package httpadapter

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/fire-detection-etl/internal/domain"
)

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// Server exposes health, readiness, metrics, and on-demand scoring endpoints.
type Server struct {
	httpServer *http.Server
	scorer     domain.Scorer
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics, and
// /v1/score routes. Pass a nil scorer to disable the scoring endpoint.
func NewServer(addr string, ready ReadinessChecker, scorer domain.Scorer, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		scorer: scorer,
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("POST /v1/score", s.handleScore)

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

// scoreResponse is the body returned by POST /v1/score.
type scoreResponse struct {
	ID    string       `json:"id"`
	Score domain.Score `json:"score"`
}

// handleScore parses a raw detection record from the request body, enriches
// it, and scores it with the loaded model. Labeling and region enrichment are
// pipeline-only; this endpoint answers from the payload alone.
func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	if s.scorer == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "no model loaded",
		})
		return
	}

	body := http.MaxBytesReader(w, r.Body, 1<<20)
	payload, err := io.ReadAll(body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "read body: " + err.Error()})
		return
	}

	det, err := domain.ParseRawDetection(domain.RawEvent{Value: payload})
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	det = domain.EnrichDetection(det)

	score, err := s.scorer.ScoreDetection(r.Context(), det)
	if err != nil {
		s.logger.Error("score request failed", "detection_id", det.ID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "scoring failed"})
		return
	}

	writeJSON(w, http.StatusOK, scoreResponse{ID: det.ID, Score: score})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort health response
}
