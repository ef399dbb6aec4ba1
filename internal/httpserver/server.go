package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/davidbz/llmrelay/internal/config"
	"github.com/davidbz/llmrelay/internal/httpserver/middleware"
	"github.com/davidbz/llmrelay/internal/observability"
)

// Server represents the HTTP server.
type Server struct {
	config      config.ServerConfig
	handler     *Handler
	middlewares middleware.Middleware

	once sync.Once
	srv  *http.Server
}

// NewServer creates a new HTTP server.
func NewServer(
	cfg *config.ServerConfig,
	handler *Handler,
	middlewares middleware.Middleware,
) *Server {
	return &Server{
		config:      *cfg,
		handler:     handler,
		middlewares: middlewares,
	}
}

// Routes returns the routed handler wrapped in the middleware chain.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/v1/generate", s.handler.HandleGenerate)
	mux.HandleFunc("/v1/status", s.handler.HandleStatus)
	mux.HandleFunc("/health", s.handler.HandleHealth)

	if s.middlewares == nil {
		return mux
	}
	return s.middlewares(mux)
}

func (s *Server) httpServer() *http.Server {
	s.once.Do(func() {
		s.srv = &http.Server{
			Addr:         fmt.Sprintf(":%d", s.config.Port),
			Handler:      s.Routes(),
			ReadTimeout:  time.Duration(s.config.ReadTimeout) * time.Second,
			WriteTimeout: time.Duration(s.config.WriteTimeout) * time.Second,
		}
	})
	return s.srv
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	ctx := context.Background()
	observability.FromContext(ctx).Info("starting HTTP server", observability.Int("port", s.config.Port))

	if err := s.httpServer().ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	observability.FromContext(ctx).Info("shutting down HTTP server")

	if err := s.httpServer().Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	return nil
}
