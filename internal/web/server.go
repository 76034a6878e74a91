// Package web exposes the pipeline over HTTP: a status page, the current
// manifest, a sync webhook and the run history.
package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/JonMunkholm/langtool/internal/config"
	"github.com/JonMunkholm/langtool/internal/core"
	appmw "github.com/JonMunkholm/langtool/internal/web/middleware"
)

// Runner executes one full pipeline run. *core.Pipeline implements it.
type Runner interface {
	Run(ctx context.Context) (*core.Locales, error)
}

// RunLister lists recorded runs. *history.Store implements it.
type RunLister interface {
	ListRuns(ctx context.Context, limit int) ([]core.RunRecord, error)
}

// Server is the HTTP server of the serve command.
type Server struct {
	runner       Runner
	runs         RunLister
	manifestPath string
	runTimeout   time.Duration

	gate        *runGate
	syncLimiter *rate.Limiter

	router *chi.Mux
	server *http.Server
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithRunLister enables GET /api/runs.
func WithRunLister(l RunLister) ServerOption {
	return func(s *Server) { s.runs = l }
}

// NewServer creates a server that runs runner on POST /api/sync.
func NewServer(runner Runner, cfg *config.Config, opts ...ServerOption) *Server {
	perMinute := cfg.Server.SyncPerMinute
	if perMinute <= 0 {
		perMinute = 1
	}

	s := &Server{
		runner:       runner,
		manifestPath: cfg.Output.ManifestPath,
		runTimeout:   cfg.Run.Timeout,
		gate:         newRunGate(),
		syncLimiter:  rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute),
		router:       chi.NewRouter(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.setupMiddleware()
	s.setupRoutes(&cfg.Security)

	s.server = &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(appmw.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(securityHeaders)
}

func (s *Server) setupRoutes(sec *config.SecurityConfig) {
	s.router.Get("/healthz", s.handleHealth)
	s.router.Get("/", s.handleStatusPage)

	s.router.Route("/api", func(r chi.Router) {
		r.Use(appmw.APIKeyAuth(sec))

		r.Get("/manifest", s.handleManifest)
		r.Post("/sync", s.handleSync)
		r.Get("/runs", s.handleRuns)
	})
}

// Start listens on the configured address until Shutdown is called.
// After Shutdown it returns http.ErrServerClosed, even if it was never
// listening.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown waits for an active sync, then stops the listener. The listener
// is stopped even when ctx expires before the sync finishes.
func (s *Server) Shutdown(ctx context.Context) error {
	drainErr := s.gate.WaitForDrain(ctx)
	if err := s.server.Shutdown(ctx); err != nil {
		return err
	}
	if drainErr != nil {
		return fmt.Errorf("sync still running at shutdown: %w", drainErr)
	}
	return nil
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}
