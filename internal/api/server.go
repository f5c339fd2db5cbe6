// Package api exposes the HTTP interface for serve mode: a manual run
// trigger, health endpoints, and Prometheus metrics.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/mizutanik/refurbwatch/internal/config"
	"github.com/mizutanik/refurbwatch/internal/metrics"
	"github.com/mizutanik/refurbwatch/internal/watch"
)

// Runner triggers one storefront check.
type Runner interface {
	Run(ctx context.Context) (watch.Report, error)
}

// Server wires HTTP handlers to the watcher runner.
type Server struct {
	router chi.Router
	runner Runner
	logger *zap.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(runner Runner, cfg config.ServerConfig, logger *zap.Logger) *Server {
	s := &Server{
		runner: runner,
		logger: logger,
	}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(loggingMiddleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	if cfg.Auth.Enabled {
		r.Use(apiKeyMiddleware(cfg.Auth.APIKey))
	}

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/check", s.runCheck)
	})

	s.router = r
	return s
}

// Handler returns the router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, _ *http.Request) {
	// The runner holds no long-lived downstream connections to probe.
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// runCheck performs a run synchronously and returns the report. A fetch
// failure answers 502 with the report body; the process keeps serving.
func (s *Server) runCheck(w http.ResponseWriter, r *http.Request) {
	report, err := s.runner.Run(r.Context())
	if err != nil {
		writeJSON(w, http.StatusBadGateway, checkResponse{Report: report, Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, checkResponse{Report: report})
}

type checkResponse struct {
	Report watch.Report `json:"report"`
	Error  string       `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		// The status line is already gone; nothing sensible to do.
		return
	}
}
