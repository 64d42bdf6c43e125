// Package http serves the operational endpoints of the storm intel service.
package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/storm-intel-service/internal/aggregator"
)

const readinessTimeout = 2 * time.Second

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// ProviderInventory lists the storm data providers the service was built with.
type ProviderInventory interface {
	Inventory() []aggregator.ProviderInfo
}

// Server exposes health, readiness, provider and metrics endpoints.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /providers and
// /metrics routes. inventory may be nil, in which case /providers is not
// registered.
func NewServer(addr string, ready ReadinessChecker, inventory ProviderInventory, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady(ready))
	if inventory != nil {
		mux.HandleFunc("GET /providers", s.handleProviders(inventory))
	}
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown drains connections within the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

type providersResponse struct {
	Providers  []aggregator.ProviderInfo `json:"providers"`
	Configured int                       `json:"configured"`
}

// handleProviders reports which storm data providers will be consulted.
// An instance with none configured still answers 200; every assessment it
// produces will just say so in its message.
func (s *Server) handleProviders(inventory ProviderInventory) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		resp := providersResponse{Providers: inventory.Inventory()}
		for _, p := range resp.Providers {
			if p.Configured {
				resp.Configured++
			}
		}
		s.writeJSON(w, http.StatusOK, resp)
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Debug("write response failed", "error", err)
	}
}
