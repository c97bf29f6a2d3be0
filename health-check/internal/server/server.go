package server

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/junoblue/launch/pkg/health"
	pkglog "github.com/junoblue/launch/pkg/log"
)

// Server answers GET /health over TLS. Every other path is a 404.
type Server struct {
	srv    *http.Server
	logger zerolog.Logger
}

// Handler builds the routing for checker.
func Handler(checker *health.Checker, logger zerolog.Logger) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /health", checker)
	mux.HandleFunc("/", http.NotFound)
	return pkglog.HTTPMiddleware(logger)(mux)
}

// New returns a server listening on addr with the given certificate.
func New(addr string, cert tls.Certificate, checker *health.Checker, logger zerolog.Logger) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           Handler(checker, logger),
			ReadHeaderTimeout: 5 * time.Second,
			TLSConfig: &tls.Config{
				Certificates: []tls.Certificate{cert},
				MinVersion:   tls.VersionTLS12,
			},
		},
		logger: logger,
	}
}

// Serve accepts TLS connections on ln until Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info().Str("addr", ln.Addr().String()).Msg("health check server listening")
	if err := s.srv.ServeTLS(ln, "", ""); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// ListenAndServe binds the configured address and serves on it.
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Shutdown stops accepting connections and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
