// Package server provides the HTTP server and routing for the chart service.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/aristath/chartpresets/internal/database"
	"github.com/aristath/chartpresets/internal/modules/charts"
	chartshandlers "github.com/aristath/chartpresets/internal/modules/charts/handlers"
	"github.com/aristath/chartpresets/internal/modules/datasets"
	datasetshandlers "github.com/aristath/chartpresets/internal/modules/datasets/handlers"
	"github.com/aristath/chartpresets/internal/scheduler"
)

// Config holds server configuration
type Config struct {
	Log            zerolog.Logger
	ChartsDB       *database.DB
	DatasetsDB     *database.DB
	Charts         *charts.Service
	Datasets       *datasets.Service // nil unless the reference dataset service is mounted
	Scheduler      *scheduler.Scheduler
	DataDir        string
	Port           int
	DevMode        bool
	AllowedOrigins []string
}

// Server represents the HTTP server
type Server struct {
	router         *chi.Mux
	server         *http.Server
	log            zerolog.Logger
	cfg            Config
	systemHandlers *SystemHandlers
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}

	s := &Server{
		router: chi.NewRouter(),
		log:    cfg.Log.With().Str("component", "server").Logger(),
		cfg:    cfg,
		systemHandlers: NewSystemHandlers(
			cfg.Log,
			cfg.DataDir,
			[]*database.DB{cfg.ChartsDB, cfg.DatasetsDB},
			cfg.Charts,
			cfg.Scheduler,
		),
	}

	s.setupMiddleware(cfg.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) setupMiddleware(devMode bool) {
	// Recovery from panics
	s.router.Use(middleware.Recoverer)

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)

	// CORS
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Compress responses
	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	chartHandler := chartshandlers.NewHandler(s.cfg.Charts, s.log)
	chartHandler.SetOriginPatterns(s.cfg.AllowedOrigins)

	s.router.Route("/api", func(r chi.Router) {
		// The chart stream is long-lived and stays outside the request timeout.
		chartHandler.RegisterStreamRoutes(r)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(60 * time.Second))

			chartHandler.RegisterRoutes(r)

			if s.cfg.Datasets != nil {
				datasetshandlers.NewHandler(s.cfg.Datasets, s.log).RegisterRoutes(r)
			}

			r.Route("/system", func(r chi.Router) {
				r.Get("/status", s.systemHandlers.HandleSystemStatus)
				r.Get("/database/stats", s.systemHandlers.HandleDatabaseStats)
				r.Get("/jobs", s.systemHandlers.HandleJobsStatus)
				r.Post("/jobs/{name}/run", func(w http.ResponseWriter, r *http.Request) {
					s.systemHandlers.HandleRunJob(w, r, chi.URLParam(r, "name"))
				})
			})
		})
	})
}

// Router returns the HTTP handler, for tests and embedding.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Int("port", s.cfg.Port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := map[string]string{}
	for _, db := range []*database.DB{s.cfg.ChartsDB, s.cfg.DatasetsDB} {
		if db == nil {
			continue
		}
		if err := db.HealthCheck(ctx); err != nil {
			checks[db.Name()] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		checks[db.Name()] = "ok"
	}

	health := "healthy"
	if status != http.StatusOK {
		health = "degraded"
	}
	writeJSON(s.log, w, status, map[string]interface{}{
		"status":    health,
		"service":   "chartpresets",
		"databases": checks,
	})
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
