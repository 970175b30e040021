package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/mpvbuild/internal/logging"
	"github.com/aretw0/mpvbuild/internal/packager"
	"github.com/aretw0/mpvbuild/pkg/observability"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server publishes a dist tree: its manifest, its artifacts and metrics.
type Server struct {
	distRoot string
	metrics  *observability.Metrics
	logger   *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithMetrics serves m on /metrics. A dist collector is registered on it.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithLogger configures a logger for the Server.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a Server for distRoot.
func NewServer(distRoot string, opts ...Option) *Server {
	s := &Server{
		distRoot: distRoot,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler builds the HTTP routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok\n"))
	})
	r.Get("/manifest", s.manifestJSON)
	r.Get("/manifest.md", s.manifestMarkdown)
	r.Get("/artifacts/*", s.artifact)

	if s.metrics != nil {
		if err := s.metrics.Registry().Register(NewDistCollector(s.distRoot)); err != nil {
			s.logger.Warn("dist collector not registered", "error", err)
		}
		r.Handle("/metrics", s.metrics.Handler())
	}

	return enableCORS(r)
}

func (s *Server) manifestJSON(w http.ResponseWriter, r *http.Request) {
	m, err := packager.GenerateManifest(s.distRoot)
	if err != nil {
		http.Error(w, "failed to read dist tree", http.StatusInternalServerError)
		s.logger.Error("manifest generation failed", "error", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(m); err != nil {
		s.logger.Error("manifest encode failed", "error", err)
	}
}

func (s *Server) manifestMarkdown(w http.ResponseWriter, r *http.Request) {
	m, err := packager.GenerateManifest(s.distRoot)
	if err != nil {
		http.Error(w, "failed to read dist tree", http.StatusInternalServerError)
		s.logger.Error("manifest generation failed", "error", err)
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Write([]byte(m.Markdown()))
}

func (s *Server) artifact(w http.ResponseWriter, r *http.Request) {
	rel := chi.URLParam(r, "*")
	clean := filepath.Clean("/" + rel)
	if rel == "" || strings.Contains(rel, "..") {
		http.Error(w, "invalid artifact path", http.StatusBadRequest)
		return
	}

	path := filepath.Join(s.distRoot, filepath.FromSlash(clean))
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", "attachment; filename=\""+filepath.Base(path)+"\"")
	http.ServeFile(w, r, path)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request", "method", r.Method, "path", r.URL.Path, "status", ww.Status(), "bytes", ww.BytesWritten())
	})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
