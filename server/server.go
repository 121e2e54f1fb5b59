// Package server exposes the orchestrator over a small REST surface:
// POST /query for commands, GET /health for liveness, GET / for service
// information.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/tailored-agentic-units/foreman/observability"
	"github.com/tailored-agentic-units/foreman/orchestrator"
)

// Event types emitted by the HTTP layer.
const (
	EventRequest  observability.EventType = "server.request"
	EventListen   observability.EventType = "server.listen"
	EventShutdown observability.EventType = "server.shutdown"
)

// Info describes the running service on GET /.
type Info struct {
	Name    string   `json:"name"`
	Version string   `json:"version"`
	Agents  []string `json:"agents"`
}

// QueryRequest is the POST /query payload.
type QueryRequest struct {
	UserInput string `json:"user_input"`
	SessionID string `json:"session_id,omitempty"`
}

// QueryResponse is the POST /query reply.
type QueryResponse struct {
	Response  string   `json:"response"`
	SessionID string   `json:"session_id"`
	Agents    []string `json:"agents,omitempty"`
	Partial   bool     `json:"partial,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Server serves the REST API backed by an orchestrator.
type Server struct {
	cfg      *Config
	orch     *orchestrator.Orchestrator
	info     Info
	observer observability.Observer
	mux      *http.ServeMux
}

// New creates a Server. observer may be nil.
func New(cfg *Config, orch *orchestrator.Orchestrator, info Info, observer observability.Observer) (*Server, error) {
	if orch == nil {
		return nil, errors.New("orchestrator is required")
	}

	s := &Server{
		cfg:      DefaultConfig().Merge(cfg),
		orch:     orch,
		info:     info,
		observer: observer,
		mux:      http.NewServeMux(),
	}

	s.mux.HandleFunc("POST /query", s.handleQuery)
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /{$}", s.handleInfo)

	return s, nil
}

// Handler returns the routing handler, primarily for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Run listens until ctx is cancelled, then drains in-flight requests
// within the configured shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.mux,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errChan := make(chan error, 1)
	go func() {
		observability.Emit(ctx, s.observer, EventListen, observability.LevelInfo, "server",
			map[string]any{"addr": s.cfg.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	observability.Emit(context.Background(), s.observer, EventShutdown, observability.LevelInfo, "server", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	if req.UserInput == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "user_input is required"})
		return
	}

	observability.Emit(r.Context(), s.observer, EventRequest, observability.LevelVerbose, "server",
		map[string]any{"path": r.URL.Path, "session": req.SessionID})

	response, err := s.orch.Handle(r.Context(), orchestrator.Command{
		Text:      req.UserInput,
		SessionID: req.SessionID,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, QueryResponse{
		Response:  response.Reply,
		SessionID: response.SessionID,
		Agents:    response.Agents,
		Partial:   response.Partial,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.info)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
