// Package health provides the HTTP liveness and readiness endpoints.
//
// Docker and Kubernetes poll these endpoints to monitor the daemon.
// /healthz answers 200 as long as the process serves HTTP; /readyz answers
// 200 once the transports are started. Both report the state of each
// component (processor, transcriber, transports).
package health

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// Component states.
const (
	StatusOK           = "ok"
	StatusNotAvailable = "not_available"
	StatusDisabled     = "disabled"
)

// Report is the body of both endpoints.
type Report struct {
	Status     string            `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Components map[string]string `json:"components,omitempty"`
}

// Server is a lightweight HTTP server that exposes /healthz and /readyz.
type Server struct {
	port   int
	ready  atomic.Bool
	server *http.Server

	mu         sync.RWMutex
	components map[string]string
}

// New creates a new health check server.
func New(port int) *Server {
	return &Server{port: port, components: make(map[string]string)}
}

// SetReady marks the daemon as ready to accept traffic.
func (s *Server) SetReady(ready bool) {
	s.ready.Store(ready)
}

// SetComponent records the state of a named component.
func (s *Server) SetComponent(name, status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.components[name] = status
}

func (s *Server) report(status string) Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Report{Status: status, Timestamp: time.Now(), Components: maps.Clone(s.components)}
}

// Handler returns the health routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeReport(w, http.StatusOK, s.report("healthy"))
	})

	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if !s.ready.Load() {
			writeReport(w, http.StatusServiceUnavailable, s.report("not_ready"))
			return
		}
		writeReport(w, http.StatusOK, s.report("ready"))
	})

	return mux
}

// ListenAndServe starts the health check HTTP server.
// It blocks until the context is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	slog.Info("health server listening", "port", s.port)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	if err := s.server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("health server: %w", err)
	}
	return nil
}

func writeReport(w http.ResponseWriter, status int, r Report) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(r)
}
