// Package server provides the HTTP server and routing for the dashboard.
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

	"github.com/vmi/dashboard/internal/database"
	"github.com/vmi/dashboard/internal/modules/baseline"
	baselinehandlers "github.com/vmi/dashboard/internal/modules/baseline/handlers"
	"github.com/vmi/dashboard/internal/modules/contributions"
	contributionshandlers "github.com/vmi/dashboard/internal/modules/contributions/handlers"
	"github.com/vmi/dashboard/internal/modules/holdings"
	holdingshandlers "github.com/vmi/dashboard/internal/modules/holdings/handlers"
	"github.com/vmi/dashboard/internal/modules/metrics"
	metricshandlers "github.com/vmi/dashboard/internal/modules/metrics/handlers"
	"github.com/vmi/dashboard/internal/modules/prices"
	priceshandlers "github.com/vmi/dashboard/internal/modules/prices/handlers"
	"github.com/vmi/dashboard/internal/modules/transactions"
	transactionshandlers "github.com/vmi/dashboard/internal/modules/transactions/handlers"
	"github.com/vmi/dashboard/internal/scheduler"
)

// JobLister reports the background jobs for the status endpoint
type JobLister interface {
	Jobs() []scheduler.JobInfo
}

// Config holds server configuration
type Config struct {
	Log           zerolog.Logger
	DB            *database.DB
	Holdings      *holdings.Service
	Transactions  *transactions.Service
	Baseline      *baseline.Service
	Prices        *prices.Service
	Metrics       *metrics.Service
	Contributions *contributions.Repository
	Jobs          JobLister // optional
	Port          int
	UserID        int64 // every request acts for this user
	DevMode       bool
}

// Server represents the HTTP server
type Server struct {
	router  *chi.Mux
	server  *http.Server
	log     zerolog.Logger
	cfg     Config
	started time.Time
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:  chi.NewRouter(),
		log:     cfg.Log.With().Str("component", "server").Logger(),
		cfg:     cfg,
		started: time.Now(),
	}

	s.setupMiddleware(cfg.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler returns the root handler, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupMiddleware(devMode bool) {
	// Recovery from panics
	s.router.Use(middleware.Recoverer)

	// Request ID
	s.router.Use(middleware.RequestID)

	// Real IP
	s.router.Use(middleware.RealIP)

	// Logging
	s.router.Use(s.loggingMiddleware)

	// Quote fan-outs are bounded by the client timeout; this caps everything else
	s.router.Use(middleware.Timeout(60 * time.Second))

	// CORS
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Compress responses
	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/system/status", s.handleSystemStatus)

		if s.cfg.Holdings != nil {
			holdingshandlers.NewHandler(s.cfg.Holdings, s.cfg.UserID, s.log).RegisterRoutes(r)
		}
		if s.cfg.Transactions != nil {
			transactionshandlers.NewHandler(s.cfg.Transactions, s.cfg.UserID, s.log).RegisterRoutes(r)
		}
		if s.cfg.Baseline != nil {
			baselinehandlers.NewHandler(s.cfg.Baseline, s.cfg.UserID, s.log).RegisterRoutes(r)
		}
		if s.cfg.Contributions != nil {
			contributionshandlers.NewHandler(s.cfg.Contributions, s.cfg.UserID, s.log).RegisterRoutes(r)
		}
		if s.cfg.Prices != nil {
			priceshandlers.NewHandler(s.cfg.Prices, s.log).RegisterRoutes(r)
		}
		if s.cfg.Metrics != nil {
			metricshandlers.NewHandler(s.cfg.Metrics, s.log).RegisterRoutes(r)
		}
	})
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
