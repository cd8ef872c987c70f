// Package http exposes the engine over a JSON REST API. Each workflow id is
// one session; handlers go through the session manager so concurrent requests
// on the same workflow serialize.
package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mosaicflow/mosaic/internal/logging"
	"github.com/mosaicflow/mosaic/pkg/domain"
	"github.com/mosaicflow/mosaic/pkg/session"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server wires the session manager to the REST surface.
type Server struct {
	sessions *session.Manager
	logger   *slog.Logger
}

// Option configures the server.
type Option func(*Server)

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// NewHandler creates the HTTP handler for the API.
func NewHandler(sessions *session.Manager, opts ...Option) http.Handler {
	s := &Server{
		sessions: sessions,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Get("/healthz", s.health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/workflows", func(r chi.Router) {
		r.Get("/", s.listWorkflows)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.getWorkflow)
			r.Put("/", s.putWorkflow)
			r.Delete("/", s.deleteWorkflow)
			r.Post("/execute", s.executeAll)
			r.Post("/execute/{nodeID}", s.executeNode)
			r.Post("/stop", s.stop)
		})
	})

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listWorkflows(w http.ResponseWriter, r *http.Request) {
	ids, err := s.sessions.List(r.Context())
	if err != nil {
		s.fail(w, http.StatusInternalServerError, "list workflows", err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"workflows": ids})
}

type graphResponse struct {
	ID    string        `json:"id"`
	Nodes []domain.Node `json:"nodes"`
	Edges []domain.Edge `json:"edges"`
}

func (s *Server) getWorkflow(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sess, err := s.sessions.LoadOrStart(r.Context(), id)
	if err != nil {
		s.fail(w, http.StatusInternalServerError, "load workflow", err)
		return
	}
	writeJSON(w, http.StatusOK, graphResponse{
		ID:    id,
		Nodes: sess.Engine.Nodes(),
		Edges: sess.Engine.Edges(),
	})
}

type putWorkflowRequest struct {
	Name  string        `json:"name"`
	Nodes []domain.Node `json:"nodes"`
	Edges []domain.Edge `json:"edges"`
}

func (s *Server) putWorkflow(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var body putWorkflowRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.fail(w, http.StatusBadRequest, "decode workflow body", err)
		return
	}

	sess, err := s.sessions.LoadOrStart(r.Context(), id)
	if err != nil {
		s.fail(w, http.StatusInternalServerError, "load workflow", err)
		return
	}

	sess.Engine.Load(domain.Workflow{ID: id, Name: body.Name, Nodes: body.Nodes, Edges: body.Edges})
	if err := s.sessions.Save(r.Context(), id, body.Name); err != nil {
		s.fail(w, http.StatusInternalServerError, "save workflow", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id})
}

func (s *Server) deleteWorkflow(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.sessions.Delete(r.Context(), id); err != nil {
		s.fail(w, http.StatusConflict, "delete workflow", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) executeAll(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sess, err := s.sessions.LoadOrStart(r.Context(), id)
	if err != nil {
		s.fail(w, http.StatusInternalServerError, "load workflow", err)
		return
	}

	report := sess.Engine.ExecuteAll(r.Context())
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) executeNode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	nodeID := chi.URLParam(r, "nodeID")

	sess, err := s.sessions.LoadOrStart(r.Context(), id)
	if err != nil {
		s.fail(w, http.StatusInternalServerError, "load workflow", err)
		return
	}

	sess.AddPending(nodeID)
	result := sess.Engine.ExecuteNode(r.Context(), nodeID)
	sess.RemovePending(nodeID)

	status := http.StatusOK
	if !result.Success {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, result)
}

func (s *Server) stop(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sess, err := s.sessions.LoadOrStart(r.Context(), id)
	if err != nil {
		s.fail(w, http.StatusInternalServerError, "load workflow", err)
		return
	}
	sess.Engine.Stop()
	writeJSON(w, http.StatusAccepted, map[string]string{"id": id, "status": "stopping"})
}

func (s *Server) fail(w http.ResponseWriter, status int, op string, err error) {
	s.logger.Error(op, "err", err)
	writeJSON(w, status, map[string]string{"error": fmt.Sprintf("%s: %v", op, err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("response encode failed", "err", err)
	}
}
