package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/oraclewow/oracle-backend/pkg/config"
	"github.com/oraclewow/oracle-backend/pkg/logger"
)

// Server represents the HTTP API server
// ⭐ SSOT: API server settings live in this file only
type Server struct {
	httpServer *http.Server
	logger     *logger.Logger
	config     *config.Config
}

// New creates a new API server
func New(cfg *config.Config, log *logger.Logger, router http.Handler) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         ":" + cfg.Port,
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: writeTimeout(cfg),
			IdleTimeout:  60 * time.Second,
		},
		logger: log,
		config: cfg,
	}
}

// writeTimeout must outlast the slowest synchronous endpoint:
// POST /api/backtest/run blocks for the full polling budget
// (PollInterval x MaxAttempts) before the result is written, and a cold
// screening run waits on provider rate gates.
func writeTimeout(cfg *config.Config) time.Duration {
	pollBudget := cfg.Backtest.PollInterval * time.Duration(cfg.Backtest.MaxAttempts)
	timeout := pollBudget + 30*time.Second
	if timeout < 120*time.Second {
		timeout = 120 * time.Second
	}
	return timeout
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.WithFields(map[string]interface{}{
		"port": s.config.Port,
		"env":  s.config.Env,
	}).Info("Starting API server")

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down API server")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	return nil
}
