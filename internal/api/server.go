package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/codergirlprerna/t20-predictor/backend/pkg/config"
	"github.com/codergirlprerna/t20-predictor/backend/pkg/logger"
)

// Server serves the REST and websocket surface
// ⭐ SSOT: HTTP server settings come from config.APIConfig
type Server struct {
	httpServer *http.Server
	logger     *logger.Logger
	cfg        config.APIConfig
	env        string

	// closed in order before the listener stops accepting
	onShutdown []func()
	listener   net.Listener
}

// New builds a server on cfg.Port with the configured timeouts
func New(cfg *config.Config, log *logger.Logger, router http.Handler) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         ":" + cfg.Port,
			Handler:      router,
			ReadTimeout:  cfg.API.ReadTimeout,
			WriteTimeout: cfg.API.WriteTimeout,
			IdleTimeout:  cfg.API.IdleTimeout,
		},
		logger: log.WithComponent("api"),
		cfg:    cfg.API,
		env:    cfg.Env,
	}
}

// OnShutdown registers fn to run when Run begins shutting down. Long-lived
// connections such as websockets are not tracked by http.Server.Shutdown
// and must be closed here.
func (s *Server) OnShutdown(fn func()) {
	s.onShutdown = append(s.onShutdown, fn)
}

// Listen binds the configured address; Addr is valid afterwards
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.httpServer.Addr, err)
	}
	s.listener = ln
	return nil
}

// Addr returns the bound address, or the configured one before Listen
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.httpServer.Addr
}

// Run serves until ctx is cancelled, then runs the shutdown hooks and
// drains in-flight requests within HTTP_SHUTDOWN_TIMEOUT.
func (s *Server) Run(ctx context.Context) error {
	if s.listener == nil {
		if err := s.Listen(); err != nil {
			return err
		}
	}

	s.logger.WithFields(map[string]interface{}{
		"addr": s.Addr(),
		"env":  s.env,
	}).Info("Starting API server")

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("serve: %w", err)
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down API server")
	for _, fn := range s.onShutdown {
		fn()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil {
		return err
	}

	s.logger.Info("API server stopped")
	return nil
}
