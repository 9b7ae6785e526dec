// Package httpapi exposes the batch pipeline over HTTP alongside
// health, readiness, and metrics endpoints.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/location-mapper/internal/domain"
	"github.com/couchcryptid/location-mapper/internal/pipeline"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// BatchService runs batches and reports readiness.
type BatchService interface {
	CheckReadiness(ctx context.Context) error
	Process(ctx context.Context, records []domain.LocationRecord, progress pipeline.ProgressFunc) (pipeline.BatchOutput, error)
}

// Server exposes the batch endpoint plus health, readiness, and metrics routes.
type Server struct {
	httpServer *http.Server
	service    BatchService
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics, and
// POST /v1/batches routes.
func NewServer(addr string, service BatchService, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:        addr,
			Handler:     mux,
			ReadTimeout: 10 * time.Second,
			// Batches run synchronously inside the request; geocoding a
			// large batch through the rate limiter takes minutes.
			WriteTimeout: 30 * time.Minute,
			IdleTimeout:  60 * time.Second,
		},
		service: service,
		logger:  logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("POST /v1/batches", s.handleBatch)
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

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.service.CheckReadiness(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// batchRequest is the POST /v1/batches payload.
type batchRequest struct {
	Records []domain.LocationRecord `json:"records"`
}

// batchResponse mirrors pipeline.BatchOutput minus the redundant
// success/failure partitions, which the caller can rebuild from results.
type batchResponse struct {
	Report    domain.BatchReport         `json:"report"`
	Results   []domain.GeocodeResult     `json:"results"`
	Clusters  []domain.ClusterAssignment `json:"clusters"`
	Placed    []domain.PlacedPoint       `json:"placed"`
	Cancelled bool                       `json:"cancelled"`
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body: " + err.Error()})
		return
	}

	out, err := s.service.Process(r.Context(), req.Records, nil)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, pipeline.ErrEmptyBatch) {
			status = http.StatusBadRequest
		}
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, batchResponse{
		Report:    out.Report,
		Results:   out.Results,
		Clusters:  out.Clusters,
		Placed:    out.Placed,
		Cancelled: out.Cancelled,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
