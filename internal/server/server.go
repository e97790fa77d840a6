package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mazurov/bloglist-server/internal/apierrors"
	"github.com/mazurov/bloglist-server/internal/auth"
	"github.com/mazurov/bloglist-server/internal/config"
	"github.com/mazurov/bloglist-server/internal/server/middleware"
	"github.com/mazurov/bloglist-server/internal/storage"
)

// HandlerSet contains all HTTP handlers
type HandlerSet struct {
	Health http.HandlerFunc

	// Blog handlers
	ListBlogs  http.HandlerFunc
	GetBlog    http.HandlerFunc
	CreateBlog http.HandlerFunc
	UpdateBlog http.HandlerFunc
	DeleteBlog http.HandlerFunc

	// User handlers
	ListUsers  http.HandlerFunc
	CreateUser http.HandlerFunc

	// Login handler
	Login http.HandlerFunc
}

// Server represents the HTTP server
type Server struct {
	config     *config.Config
	logger     *slog.Logger
	store      storage.Store
	tokens     *auth.Tokens
	httpServer *http.Server
	handlers   HandlerSet
}

// NewServer creates a new server instance. The store and token service are
// injected; the server owns their lifecycle from start to shutdown.
func NewServer(cfg *config.Config, logger *slog.Logger, store storage.Store, tokens *auth.Tokens) *Server {
	return &Server{
		config: cfg,
		logger: logger,
		store:  store,
		tokens: tokens,
	}
}

// SetHandlers sets all handlers (called from the CLI layer to avoid an
// import cycle)
func (s *Server) SetHandlers(handlers HandlerSet) {
	s.handlers = handlers
}

// Start starts the HTTP server
func (s *Server) Start() error {
	router := s.Router()

	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("Starting server",
		"host", s.config.Server.Host,
		"port", s.config.Server.Port,
		"token_ttl", s.config.Auth.TokenTTL.String())

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	// Setup graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Wait for shutdown signal or server error
	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		s.logger.Info("Shutdown signal received", "signal", sig.String())
		return s.Shutdown()
	}
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown() error {
	s.logger.Info("Initiating graceful shutdown")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("Server shutdown failed", "error", err)
		return err
	}

	// Close storage
	if err := s.store.Close(); err != nil {
		s.logger.Error("Storage close failed", "error", err)
		return err
	}

	s.logger.Info("Server stopped gracefully")
	return nil
}

// Router configures the HTTP router with middleware and routes
func (s *Server) Router() *chi.Mux {
	router := chi.NewRouter()

	// Global middleware (applied to all routes)
	router.Use(middleware.Logging(s.logger))
	router.Use(middleware.Metrics())
	router.Use(middleware.NewRateLimiter(s.config.RateLimit.RequestsPerMinute))
	router.Use(middleware.CORS())
	router.Use(middleware.TokenExtractor())

	// Mutating blog operations run behind the identity resolver
	requireUser := middleware.RequireUser(s.tokens, s.store, s.logger)

	// Unknown endpoints
	unknownEndpoint := func(w http.ResponseWriter, r *http.Request) {
		apierrors.WriteError(w, http.StatusNotFound, apierrors.MsgUnknownEndpoint)
	}
	router.NotFound(unknownEndpoint)
	router.MethodNotAllowed(unknownEndpoint)

	router.Method(http.MethodGet, "/metrics", promhttp.Handler())

	router.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handlers.Health)

		r.Route("/blogs", func(r chi.Router) {
			r.Get("/", s.handlers.ListBlogs)
			r.With(requireUser).Post("/", s.handlers.CreateBlog)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handlers.GetBlog)
				r.With(requireUser).Put("/", s.handlers.UpdateBlog)
				r.With(requireUser).Delete("/", s.handlers.DeleteBlog)
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", s.handlers.ListUsers)
			r.Post("/", s.handlers.CreateUser)
		})

		r.Post("/login", s.handlers.Login)
	})

	return router
}
