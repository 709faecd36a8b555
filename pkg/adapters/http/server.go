// Package http exposes the engine over a JSON API: start runs, fetch
// results, read per-run progress trails.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/weftlabs/weft/pkg/domain"
	"github.com/weftlabs/weft/pkg/ports"
)

// Runner is the engine surface the server needs: one synchronous workflow
// invocation per request.
type Runner interface {
	Run(ctx context.Context, initial domain.Update) (*domain.Result, error)
}

// Server handles the run API for a single pipeline.
type Server struct {
	pipeline string
	runner   Runner
	store    ports.RunStore
	logger   *slog.Logger
}

// NewHandler creates the HTTP handler for one pipeline engine. The store is
// required: finished runs are served from it.
func NewHandler(pipeline string, runner Runner, store ports.RunStore, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Server{pipeline: pipeline, runner: runner, store: store, logger: logger}

	r := chi.NewRouter()
	r.Get("/healthz", s.health)
	r.Route("/v1/runs", func(r chi.Router) {
		r.Post("/", s.startRun)
		r.Get("/", s.listRuns)
		r.Get("/{runID}", s.getRun)
		r.Get("/{runID}/events", s.getRunEvents)
	})
	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "pipeline": s.pipeline})
}

type startRunRequest struct {
	Initial map[string]any `json:"initial"`
}

// startRun executes the workflow synchronously and returns the result. A
// degraded run is still HTTP 200: the caller inspects status and error
// fields, the same contract as the library API.
func (s *Server) startRun(w http.ResponseWriter, r *http.Request) {
	var body startRunRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		s.logger.Warn("startRun: invalid request body", "err", err)
		return
	}

	result, err := s.runner.Run(r.Context(), domain.Update(body.Initial))
	if err != nil {
		// Construction-level errors only (e.g. unknown initial field).
		http.Error(w, err.Error(), http.StatusBadRequest)
		s.logger.Warn("startRun: rejected", "err", err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) listRuns(w http.ResponseWriter, r *http.Request) {
	ids, err := s.store.List(r.Context())
	if err != nil {
		http.Error(w, "failed to list runs", http.StatusInternalServerError)
		s.logger.Error("listRuns failed", "err", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": ids})
}

func (s *Server) getRun(w http.ResponseWriter, r *http.Request) {
	result, ok := s.loadRun(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) getRunEvents(w http.ResponseWriter, r *http.Request) {
	result, ok := s.loadRun(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"run_id": result.RunID,
		"events": result.Events,
	})
}

func (s *Server) loadRun(w http.ResponseWriter, r *http.Request) (*domain.Result, bool) {
	runID := chi.URLParam(r, "runID")
	result, err := s.store.Load(r.Context(), runID)
	if errors.Is(err, domain.ErrRunNotFound) {
		http.Error(w, "run not found", http.StatusNotFound)
		return nil, false
	}
	if err != nil {
		http.Error(w, "failed to load run", http.StatusInternalServerError)
		s.logger.Error("loadRun failed", "run_id", runID, "err", err)
		return nil, false
	}
	return result, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
