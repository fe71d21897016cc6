// Package health exposes the running session over HTTP: liveness, a
// best-effort statistics snapshot, and Prometheus metrics.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vietddude/dispatcher/internal/core/session"
)

// Server provides HTTP endpoints for observing a session.
type Server struct {
	sess   *session.Session
	server *http.Server
}

// NewServer creates a new health server for one session.
func NewServer(sess *session.Session, port int) *Server {
	mux := http.NewServeMux()
	s := &Server{
		sess: sess,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: mux,
		},
	}

	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/report", s.handleReport)
	mux.Handle("/metrics", promhttp.Handler())

	return s
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Stop stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	state := s.sess.State()
	response := map[string]string{"state": string(state)}

	w.Header().Set("Content-Type", "application/json")
	if state == session.StateCircuitTripped {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}
	json.NewEncoder(w).Encode(response)
}

// handleReport serves the statistics snapshot: best-effort while the
// session is Running, final once it is terminal.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	report := s.sess.Report()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}
