// Package server wires the HTTP router, middleware and handlers together and
// runs the HTTP server.
//
// DEPENDENCY INJECTION FLOW:
//
//	cmd/blog-api creates:  config → logger → store (OpenStore)
//	server.New creates:    PostService(store) → PostHandler(service)
//
// This is the "composition root": every dependency is assembled here, so the
// handler, service and repository packages never construct each other.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sakif/blog-api/internal/config"
	"github.com/sakif/blog-api/internal/handler"
	"github.com/sakif/blog-api/internal/middleware"
	"github.com/sakif/blog-api/internal/repository"
	"github.com/sakif/blog-api/internal/service"
)

// Server represents the HTTP server and all its dependencies.
//
// The Server owns the store: it is closed when Start returns.
type Server struct {
	router *chi.Mux
	config *config.ServerEnvironment
	logger *slog.Logger
	store  repository.Store
}

// New builds a Server around an already-open store.
func New(cfg *config.ServerEnvironment, store repository.Store, logger *slog.Logger) *Server {
	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		store:  store,
	}
	s.setupRoutes()
	return s
}

// Handler exposes the router, e.g. for httptest.NewServer.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
// GET    /healthz      → store health
// GET    /posts        → list posts (bare JSON array)
// GET    /posts/{id}   → single post
// POST   /posts        → create post (201)
// PUT    /posts/{id}   → partial update (204)
// DELETE /posts/{id}   → delete post (204)
//
// MIDDLEWARE ORDER:
// 1. RequestID     : assigns an id used by the request logger
// 2. EchoRequestID : returns that id in X-Request-Id
// 3. RealIP        : client IP from proxy headers
// 4. Logger        : one structured line per request
// 5. Recoverer     : a panic becomes a 500 instead of a crash
// 6. CORS          : only when ALLOWED_ORIGINS is set
// 7. RateLimit     : global token bucket, 429 when exhausted
// 8. RequestSize   : caps request bodies at MAX_REQUEST_BODY
func (s *Server) setupRoutes() {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(middleware.EchoRequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)

	if len(s.config.AllowedOrigins) > 0 {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.config.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
			ExposedHeaders: []string{"X-Request-Id"},
			MaxAge:         300,
		}))
	}

	s.router.Use(middleware.RateLimit(s.config.RateLimitRPS, s.config.RateLimitBurst, s.logger))
	s.router.Use(chimiddleware.RequestSize(s.config.MaxRequestBody))

	healthHandler := handler.NewHealthHandler(s.store, s.config.StoreConnectTimeout, s.logger)
	s.router.Get("/healthz", healthHandler.HandleHealth)

	postService := service.NewPostService(s.store, s.logger)
	postHandler := handler.NewPostHandler(postService, s.logger)

	s.router.Route("/posts", func(r chi.Router) {
		r.Get("/", postHandler.HandleList)
		r.Post("/", postHandler.HandleCreate)
		r.Get("/{id}", postHandler.HandleGet)
		r.Put("/{id}", postHandler.HandleUpdate)
		r.Delete("/{id}", postHandler.HandleDelete)
	})
}

// Start runs the HTTP server until ctx is cancelled (the caller wires ctx to
// SIGINT/SIGTERM), then shuts down gracefully:
//  1. stop accepting new connections
//  2. wait up to SERVER_SHUTDOWN_TIMEOUT for in-flight requests
//  3. close the store
func (s *Server) Start(ctx context.Context) error {
	defer func() {
		if err := s.store.Close(); err != nil {
			s.logger.Error("closing store", slog.String("error", err.Error()))
		}
	}()

	srv := &http.Server{
		Addr:         s.config.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.String("addr", srv.Addr),
			slog.String("store", s.config.Store),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case <-ctx.Done():
		s.logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ServerShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
