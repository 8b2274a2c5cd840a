package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/tduarte/shorts-server/internal/logger"
	"github.com/tduarte/shorts-server/internal/model"
)

var _ model.Server = (*Server)(nil)

// Server runs the HTTP API on a listener produced by the security layer.
type Server struct {
	httpServer *http.Server
	addr       string
	logger     *logger.Logger
}

func NewServer(addr string, handler http.Handler, l *logger.Logger) *Server {
	return &Server{
		httpServer: &http.Server{Handler: handler},
		addr:       addr,
		logger:     l,
	}
}

// Start blocks serving requests until Stop is called or the listener fails.
func (s *Server) Start(securityLayer model.SecurityLayer) error {
	listener, err := securityLayer.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}

	s.logger.Info("http server listening", "addr", s.addr)
	if err := s.httpServer.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

// Stop drains in-flight requests and shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) Address() string {
	return s.addr
}
