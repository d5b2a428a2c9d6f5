// Package httpapi serves the estimator to the landing page as JSON.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"cabino/internal/config"

	"go.uber.org/zap"
)

type Server struct {
	server          *http.Server
	limiter         *RateLimiter
	shutdownTimeout time.Duration
	logger          *zap.Logger
}

// Routes wires the handlers; the estimate and webhook endpoints are rate
// limited per client IP.
func Routes(h *Handler, limiter *RateLimiter, logger *zap.Logger) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/api/estimate", RateLimitMiddleware(limiter, http.HandlerFunc(h.Estimate)))
	mux.Handle("/api/crm/webhook", RateLimitMiddleware(limiter, http.HandlerFunc(h.CRMWebhook)))
	mux.HandleFunc("/api/catalog", h.Catalog)
	mux.HandleFunc("/api/stats", h.Stats)
	mux.HandleFunc("/healthz", h.Health)

	return LoggingMiddleware(logger, mux)
}

func NewServer(cfg config.HTTPConfig, h *Handler, logger *zap.Logger) *Server {
	limiter := NewRateLimiter(cfg.RateCapacity, cfg.RateRefill)
	return &Server{
		server: &http.Server{
			Addr:         cfg.Addr,
			Handler:      Routes(h, limiter, logger),
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
		limiter:         limiter,
		shutdownTimeout: cfg.ShutdownTimeout,
		logger:          logger,
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	defer s.limiter.Stop()

	serverErr := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP API listening", zap.String("addr", s.server.Addr))
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err, ok := <-serverErr:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
		s.logger.Info("Shutting down HTTP API")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	return nil
}
