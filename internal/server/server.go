package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/mattjoyce/skillset-echo/internal/links"
)

// Gate authenticates requests before they reach a handler.
// *webhook.Authenticator satisfies it.
type Gate interface {
	Middleware(maxBodySize int64, logger *slog.Logger) func(http.Handler) http.Handler
	RequireSignature() bool
}

// Config holds HTTP server settings.
type Config struct {
	Name        string
	Version     string
	Listen      string
	MaxBodySize int64

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// ResponseDelay pauses test endpoints before they answer.
	ResponseDelay time.Duration

	// Fingerprint identifies the loaded configuration in GET /.
	Fingerprint string
}

// Server is the skillset test harness.
type Server struct {
	config   Config
	gate     Gate
	resolver links.Resolver
	logger   *slog.Logger
	server   *http.Server
	now      func() time.Time
}

// New creates a new server instance.
func New(config Config, gate Gate, resolver links.Resolver, logger *slog.Logger) *Server {
	if config.Name == "" {
		config.Name = "skillset-echo"
	}
	if config.ReadTimeout == 0 {
		config.ReadTimeout = 10 * time.Second
	}
	if config.WriteTimeout == 0 {
		config.WriteTimeout = 10 * time.Second
	}
	if config.IdleTimeout == 0 {
		config.IdleTimeout = 60 * time.Second
	}
	if config.ShutdownTimeout == 0 {
		config.ShutdownTimeout = 5 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		config:   config,
		gate:     gate,
		resolver: resolver,
		logger:   logger,
		now:      time.Now,
	}
}

// Handler returns the routed handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.setupRoutes()
}

// Start starts the HTTP server (blocking).
func (s *Server) Start(ctx context.Context) error {
	router := s.setupRoutes()

	s.server = &http.Server{
		Addr:         s.config.Listen,
		Handler:      router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	s.logger.Info("server starting",
		"listen", s.config.Listen,
		"link_mode", s.resolver.Mode,
		"require_signature", s.gate.RequireSignature(),
	)
	if !s.gate.RequireSignature() {
		s.logger.Warn("require_signature is disabled; unsigned requests will be accepted")
	}

	// Run server in goroutine
	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Wait for context cancellation or server error
	select {
	case <-ctx.Done():
		s.logger.Info("server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return ctx.Err()
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}
}

// setupRoutes configures the HTTP router.
func (s *Server) setupRoutes() *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(cors.AllowAll().Handler)

	r.NotFound(s.handleNotFound)
	r.MethodNotAllowed(s.handleMethodNotAllowed)

	// Unauthenticated endpoints.
	r.Get("/health", s.handleHealth)
	r.Get("/", s.handleInfo)

	// Signed test endpoints.
	r.Route("/api/test", func(r chi.Router) {
		r.Use(s.gate.Middleware(s.config.MaxBodySize, s.logger.With("component", "webhook")))
		r.Post("/debug", s.handleDebug)
		r.Post("/file-links", s.handleFileLinks)
		r.Post("/greeting", s.handleGreeting)
		r.Post("/analyze", s.handleAnalyze)
	})

	return r
}

// loggingMiddleware logs HTTP requests. Bodies and signature headers are
// never logged.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// delay waits for ResponseDelay, returning false if the request went away first.
func (s *Server) delay(ctx context.Context) bool {
	if s.config.ResponseDelay <= 0 {
		return true
	}
	t := time.NewTimer(s.config.ResponseDelay)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
