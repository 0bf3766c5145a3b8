package web

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"github.com/mirrorproxy/flexo/internal/cache"
)

// Server is the HTTP front-end: it owns the hub and exposes the order and
// SSE endpoints over a single listener.
type Server struct {
	addr string

	hub *Hub

	httpServer   *http.Server
	httpListener net.Listener
}

// New creates a Server wired to jc. Does not start listening; call
// Start().
func New(cfg Config, jc *cache.JobContext) (*Server, error) {
	if cfg.Addr == "" {
		cfg.Addr = ":7878"
	}

	hub := NewHub()

	mux := http.NewServeMux()
	mux.HandleFunc("/orders/", OrderHandler(jc, hub, cfg.CacheDir))
	mux.HandleFunc("/events/", EventsHandler(hub))

	return &Server{
		addr: cfg.Addr,
		hub:  hub,
		httpServer: &http.Server{
			Addr:    cfg.Addr,
			Handler: mux,
		},
	}, nil
}

// Start begins listening; the HTTP server runs in its own goroutine.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("web: listen: %w", err)
	}
	s.httpListener = listener
	s.addr = listener.Addr().String()

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			_ = err
		}
	}()
	return nil
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("web: shutdown: %w", err)
	}
	return nil
}

// Addr returns the HTTP listen address, resolved to its actual ephemeral
// port once Start has run.
func (s *Server) Addr() string {
	return s.addr
}
