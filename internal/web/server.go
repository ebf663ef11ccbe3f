// Package web provides the HTTP server and JSON handlers for the roster
// reconciliation service.
package web

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/seaboard-labs/rosterd/internal/config"
	"github.com/seaboard-labs/rosterd/internal/roster"
	"github.com/seaboard-labs/rosterd/internal/web/middleware"
)

// ImportService is the slice of the reconciliation engine the web layer
// depends on.
type ImportService interface {
	Import(ctx context.Context, raw, defaultRole string) *roster.ImportResult
	Preview(raw string) (*roster.PreviewResult, error)
}

// Pinger reports backend storage health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server is the HTTP server for the roster service.
type Server struct {
	importer ImportService
	runs     roster.RunStore // nil when run history is disabled
	db       Pinger          // nil in tests
	limiter  *roster.ImportLimiter
	cfg      *config.Config
	router   *chi.Mux
	server   *http.Server
}

// NewServer creates a Server. runs and db may be nil.
func NewServer(importer ImportService, runs roster.RunStore, db Pinger, cfg *config.Config) *Server {
	s := &Server{
		importer: importer,
		runs:     runs,
		db:       db,
		limiter:  roster.NewImportLimiter(cfg.Import.MaxConcurrent, cfg.Import.MaxSlotWait),
		cfg:      cfg,
		router:   chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(chimw.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	s.router.Use(chimw.Timeout(s.cfg.Server.RequestTimeout))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api/roster", func(r chi.Router) {
		r.Use(middleware.APIKeyAuth(&s.cfg.Security))

		r.Post("/import", s.handleImport)
		r.Post("/preview", s.handlePreview)
		r.Get("/runs", s.handleListRuns)
	})
}

// Start runs the HTTP server until it is shut down.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight imports to
// release their slots before returning.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	if err := s.server.Shutdown(ctx); err != nil {
		return err
	}
	return s.limiter.WaitForDrain(ctx)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}
