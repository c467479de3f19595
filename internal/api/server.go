package api

import (
	"log/slog"
	"net/http"

	"github.com/dgallion1/epd2doc/internal/board"
	"github.com/dgallion1/epd2doc/internal/config"
	"github.com/dgallion1/epd2doc/internal/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server is the HTTP API server for epd2doc.
type Server struct {
	router   chi.Router
	metrics  *metrics.PrometheusCollector
	renderer func(size int) board.Renderer
	runs     *runStore
	log      *slog.Logger
	cfg      config.Config
}

// NewServer creates and configures the HTTP server. m may be nil.
func NewServer(log *slog.Logger, cfg config.Config, m *metrics.PrometheusCollector) *Server {
	s := &Server{
		metrics: m,
		renderer: func(size int) board.Renderer {
			return board.NewBridge(size)
		},
		runs: newRunStore(maxTrackedRuns),
		log:  log,
		cfg:  cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log, s.metrics))

	// Public endpoints.
	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	// Authenticated when an API key is configured.
	r.Group(func(r chi.Router) {
		if s.cfg.APIKey != "" {
			r.Use(AuthMiddleware(s.cfg.APIKey, s.log))
		}

		r.Post("/api/convert", s.handleConvert)
		r.Get("/api/runs/{runID}", s.handleRunStatus)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
