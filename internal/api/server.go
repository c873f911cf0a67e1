package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/draftmill/draftmill/internal/config"
	"github.com/draftmill/draftmill/internal/configsvc"
	"github.com/draftmill/draftmill/internal/convert"
	"github.com/draftmill/draftmill/internal/queue"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Version is reported by /health and the CLI.
const Version = "0.1.0"

// Server is the HTTP API server for draftmill.
type Server struct {
	router chi.Router
	engine *convert.Engine
	queue  *queue.Queue
	cfgsvc *configsvc.Service
	log    *slog.Logger
	cfg    config.Service
}

// NewServer creates and configures the HTTP server.
func NewServer(engine *convert.Engine, q *queue.Queue, cfgsvc *configsvc.Service, log *slog.Logger, cfg config.Service) *Server {
	s := &Server{
		engine: engine,
		queue:  q,
		cfgsvc: cfgsvc,
		log:    log,
		cfg:    cfg,
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
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// API endpoints, bearer-authenticated when a token is configured.
	r.Group(func(r chi.Router) {
		if s.cfg.APIToken != "" {
			r.Use(AuthMiddleware(s.cfg.APIToken, s.log))
		}

		r.Post("/api/convert", s.handleConvert)
		r.Post("/api/convert/upload", s.handleConvertUpload)
		r.Post("/api/convert/download", s.handleConvertDownload)

		r.Post("/api/config/validate", s.handleConfigValidate)
		r.Post("/api/config/update", s.handleConfigUpdate)
		r.Post("/api/config/preview", s.handleConfigPreview)

		r.Post("/api/convert/async", s.handleConvertAsync)
		r.Get("/api/tasks/{taskID}/status", s.handleTaskStatus)
		r.Get("/api/tasks/{taskID}/download", s.handleTaskDownload)

		r.Get("/api/stats", s.handleStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"service": "draftmill",
		"version": Version,
	})
}
