package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/webfusionlab/webfusion/internal/handler"
	"github.com/webfusionlab/webfusion/internal/mailer"
	"github.com/webfusionlab/webfusion/internal/ratelimit"
	"github.com/webfusionlab/webfusion/internal/server/middleware"
	"github.com/webfusionlab/webfusion/internal/service"
	"github.com/webfusionlab/webfusion/internal/store"
)

// Config holds the HTTP server configuration.
type Config struct {
	Host            string
	Port            int
	ShutdownTimeout time.Duration
	CORSOrigins     []string
	Version         string
}

// DefaultConfig returns a Config with sensible development defaults.
func DefaultConfig() Config {
	return Config{
		Host:            "0.0.0.0",
		Port:            3000,
		ShutdownTimeout: 30 * time.Second,
		CORSOrigins:     []string{"http://localhost:3000", "http://localhost:3001"},
		Version:         "dev",
	}
}

// Deps are the long-lived services the routes are built on. They are
// constructed once at startup and shared by every request.
type Deps struct {
	Store    *store.Store
	Tokens   *service.TokenService
	Accounts *service.AccountService
	Mailer   *mailer.Mailer
	Limiter  *ratelimit.Limiter
}

// Server is the top-level HTTP server. It owns the Chi router and the
// http.Server; the dependencies in Deps are owned by the caller.
type Server struct {
	cfg        Config
	deps       Deps
	router     chi.Router
	httpServer *http.Server
	logger     *slog.Logger
}

// New creates a new Server, wires up all routes and middleware, and returns
// it ready to listen. Call ListenAndServe to start accepting connections.
// A nil Limiter means the default zones.
func New(cfg Config, deps Deps, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if deps.Limiter == nil {
		deps.Limiter = ratelimit.New(nil, ratelimit.DefaultZones()...)
	}
	s := &Server{
		cfg:    cfg,
		deps:   deps,
		logger: logger,
	}
	s.setupRouter()
	return s
}

func (s *Server) setupRouter() {
	r := chi.NewRouter()

	// --- Global middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(s.logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", handler.SetupTokenHeader, "X-Requested-With"},
		ExposedHeaders:   []string{"X-Request-ID", "Retry-After", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(chimw.Compress(5))

	system := handler.NewSystemHandler(s.deps.Store, s.cfg.Version, s.logger)
	admin := handler.NewAdminHandler(s.deps.Accounts, s.deps.Store, s.logger)
	public := handler.NewPublicHandler(s.deps.Store, s.logger)
	contact := handler.NewContactHandler(s.deps.Mailer, s.logger)
	limiter := s.deps.Limiter

	r.NotFound(system.NotFound)
	r.MethodNotAllowed(system.MethodNotAllowed)

	// --- Health checks (no auth, not rate limited) ---
	r.Get("/healthz", system.Healthz)
	r.Get("/readyz", system.Readyz)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(limiter, ratelimit.ZoneGeneral))

		r.Get("/", system.Root)

		r.Route("/api", func(r chi.Router) {
			r.Route("/admin", func(r chi.Router) {
				// Login and registration are unauthenticated and share the
				// stricter auth zone.
				r.Group(func(r chi.Router) {
					r.Use(middleware.RateLimit(limiter, ratelimit.ZoneAuth))
					admin.Routes(r)
				})

				r.Group(func(r chi.Router) {
					r.Use(middleware.Authenticate(s.deps.Tokens))
					admin.ProtectedRoutes(r)
				})
			})

			r.Route("/public", public.Routes)

			r.Route("/contact", func(r chi.Router) {
				r.Use(middleware.RateLimit(limiter, ratelimit.ZoneEmail))
				contact.Routes(r)
			})
		})
	})

	s.router = r
}

// ListenAndServe starts the HTTP server and blocks until a SIGINT or SIGTERM
// is received. It then performs a graceful shutdown, draining in-flight
// requests. Closing the store is left to the caller.
func (s *Server) ListenAndServe() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Listen for shutdown signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start server in background goroutine
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Wait for shutdown signal or server error
	select {
	case err := <-errCh:
		return fmt.Errorf("server listen: %w", err)
	case <-ctx.Done():
		s.logger.Info("shutdown signal received, draining connections...")
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	s.logger.Info("server stopped")
	return nil
}

// Router returns the underlying Chi router, useful for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ServeHTTP implements http.Handler, delegating to the router.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
