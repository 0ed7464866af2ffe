// Package api exposes the engine's published statuses over a small
// read-only REST surface for presentation collaborators.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/joescharf/shipgate/internal/engine"
	"github.com/joescharf/shipgate/internal/models"
)

// Server provides the REST API handlers.
type Server struct {
	engine *engine.Engine
}

// NewServer creates a new API server over the given engine.
func NewServer(e *engine.Engine) *Server {
	return &Server{engine: e}
}

// Router returns an http.Handler for the API routes.
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/projects", s.listProjects)
	mux.HandleFunc("GET /api/v1/status", s.statusOverview)
	mux.HandleFunc("GET /api/v1/status/{owner}/{name}", s.statusProject)
	mux.HandleFunc("POST /api/v1/refresh", s.refresh)

	return corsMiddleware(mux)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) listProjects(w http.ResponseWriter, r *http.Request) {
	projects := s.engine.Projects()
	if projects == nil {
		projects = []models.TrackedProject{}
	}
	writeJSON(w, http.StatusOK, projects)
}

// statusOverview returns every published status, ordered by repo id.
func (s *Server) statusOverview(w http.ResponseWriter, r *http.Request) {
	snapshot := s.engine.Snapshot()
	batchID, refreshedAt := s.engine.LastRefresh()

	statuses := make([]*models.ProjectStatus, 0, len(snapshot))
	for _, st := range snapshot {
		statuses = append(statuses, st)
	}
	sort.Slice(statuses, func(i, j int) bool { return statuses[i].Repo < statuses[j].Repo })

	writeJSON(w, http.StatusOK, map[string]any{
		"batch_id":     batchID,
		"refreshed_at": refreshedAt,
		"statuses":     statuses,
	})
}

func (s *Server) statusProject(w http.ResponseWriter, r *http.Request) {
	repo := r.PathValue("owner") + "/" + r.PathValue("name")
	st, ok := s.engine.Status(repo)
	if !ok {
		writeError(w, http.StatusNotFound, "no status for "+repo)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// refresh is the manual-refresh override: it runs one full batch
// inline and returns the result.
func (s *Server) refresh(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	batch := s.engine.RefreshAll(r.Context())
	slog.Info("manual refresh", "batch", batch.ID, "projects", len(batch.Statuses), "elapsed", time.Since(start))
	writeJSON(w, http.StatusOK, batch)
}
