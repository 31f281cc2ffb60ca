package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/hweitzel/mixdesign/internal/store"
)

// Server hosts the design generation HTTP API
type Server struct {
	jobManager *JobManager
	store      store.Store
	dataDir    string
	httpServer *http.Server
}

// New creates a Server backed by the given store. Iteration traces are
// written under dataDir next to the persisted designs.
func New(addr, dataDir string, st store.Store) *Server {
	s := &Server{
		jobManager: NewJobManager(),
		store:      st,
		dataDir:    dataDir,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/designs", s.handleDesigns)
	mux.HandleFunc("/api/v1/designs/", s.handleDesignByID)
	mux.HandleFunc("/api/v1/health", s.handleHealth)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      loggingMiddleware(corsMiddleware(mux)),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // SSE streams stay open
	}

	return s
}

// ListenAndServe starts the HTTP server
func (s *Server) ListenAndServe() error {
	slog.Info("starting server", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Handler returns the server's root handler, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) handleDesigns(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateDesign(w, r)
	case http.MethodGet:
		s.handleListDesigns(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleCreateDesign(w http.ResponseWriter, r *http.Request) {
	var config JobConfig
	if err := json.NewDecoder(r.Body).Decode(&config); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	applyDefaults(&config)

	if _, err := config.GenerateConfig().Check(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	job := s.jobManager.CreateJob(config)
	go s.runJob(job.ID)

	slog.Info("created design job", "id", job.ID,
		"mixtures", config.Mixtures, "components", len(config.Xmin),
		"algorithm", config.Algorithm)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(job)
}

func (s *Server) handleListDesigns(w http.ResponseWriter, r *http.Request) {
	jobs := s.jobManager.ListJobs()
	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].StartTime.After(jobs[j].StartTime)
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(jobs)
}

func (s *Server) handleDesignByID(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/designs/")
	parts := strings.Split(path, "/")
	id := parts[0]
	if id == "" {
		http.Error(w, "missing design id", http.StatusBadRequest)
		return
	}

	if len(parts) > 1 {
		switch parts[1] {
		case "events":
			s.handleJobStream(w, r, id)
		case "matrix.csv":
			s.handleMatrixCSV(w, r, id)
		default:
			http.Error(w, "not found", http.StatusNotFound)
		}
		return
	}

	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	job, exists := s.jobManager.GetJob(id)
	if !exists {
		http.Error(w, "design not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(job)
}

func (s *Server) handleMatrixCSV(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	saved, err := s.store.LoadDesign(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "design not found", http.StatusNotFound)
		} else {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="matrix.csv"`)
	if err := store.WriteCSV(w, saved.Names, saved.Matrix); err != nil {
		slog.Error("failed to write matrix csv", "id", id, "error", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func applyDefaults(config *JobConfig) {
	if config.MaxIter <= 0 {
		config.MaxIter = 30
	}
	if config.Algorithm == "" {
		config.Algorithm = "adaptive"
	}
	if config.PopSize <= 0 {
		config.PopSize = 20
	}
	if config.Seed == 0 {
		config.Seed = time.Now().UnixNano()
	}
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start))
	})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
