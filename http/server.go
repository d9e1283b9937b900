package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/quic-go/quic-go/http3"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	DefaultReadHeaderTimeout = 10 * time.Second
	DefaultShutdownTimeout   = 5 * time.Second
)

type Server struct {
	Name            string
	Router          *Router
	Logger          *slog.Logger
	ShutdownTimeout time.Duration

	// HTTP/3 is served next to TCP when both files are set.
	HTTP3CertFile string
	HTTP3KeyFile  string

	// OnListen is called once the listener is bound, before serving starts.
	OnListen func(addr net.Addr)

	httpServer  *http.Server
	http3Server *http3.Server
}

func NewServer(name string, router *Router) *Server {
	return &Server{
		Name:            name,
		Router:          router,
		Logger:          router.Logger,
		ShutdownTimeout: DefaultShutdownTimeout,
	}
}

func (s *Server) http3Enabled() bool {
	return s.HTTP3CertFile != "" && s.HTTP3KeyFile != ""
}

func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}

	return s.Serve(ctx, listener)
}

// Serve freezes the router and serves on listener until ctx is cancelled or
// a listener fails. On cancellation it shuts down gracefully and returns nil.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	s.Router.Freeze()

	var handler http.Handler = s.Router
	if s.http3Enabled() {
		s.http3Server = &http3.Server{
			Addr:    listener.Addr().String(),
			Handler: otelhttp.NewHandler(s.Router, s.Name+"-h3"),
		}
		handler = s.advertiseHTTP3(handler)
	}

	s.httpServer = &http.Server{
		Handler:           otelhttp.NewHandler(handler, s.Name),
		ReadHeaderTimeout: DefaultReadHeaderTimeout,
		ErrorLog:          slog.NewLogLogger(s.Logger.Handler(), slog.LevelWarn),
	}

	if s.OnListen != nil {
		s.OnListen(listener.Addr())
	}

	serverErrCh := make(chan error, 2)

	go func() {
		s.Logger.Info("http server listening", "addr", listener.Addr().String())
		serverErrCh <- s.httpServer.Serve(listener)
	}()

	if s.http3Server != nil {
		go func() {
			s.Logger.Info("http3 server listening", "addr", s.http3Server.Addr)
			serverErrCh <- s.http3Server.ListenAndServeTLS(s.HTTP3CertFile, s.HTTP3KeyFile)
		}()
	}

	select {
	case err := <-serverErrCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		shutdownErr := s.Shutdown(context.Background())
		return errors.Join(err, shutdownErr)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.ShutdownTimeout)
	defer cancel()

	return s.Shutdown(shutdownCtx)
}

func (s *Server) advertiseHTTP3(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := s.http3Server.SetQUICHeaders(w.Header()); err != nil {
			s.Logger.Debug("alt-svc not set", "error", err)
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.Logger.Info("shutting down", "server", s.Name)

	var err error
	if s.httpServer != nil {
		if shutdownErr := s.httpServer.Shutdown(ctx); shutdownErr != nil {
			err = errors.Join(err, fmt.Errorf("http shutdown: %w", shutdownErr))
		}
	}
	if s.http3Server != nil {
		if closeErr := s.http3Server.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("http3 close: %w", closeErr))
		}
	}

	return err
}
