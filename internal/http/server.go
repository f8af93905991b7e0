package http

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/jaekwang-park/todo-list/internal/service"
)

// readHeaderTimeout caps slow header delivery independently of ReadTimeout.
const readHeaderTimeout = 5 * time.Second

type ServerOptions struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	AllowOrigins []string
}

// Server owns the listener for the To-Do API.
type Server struct {
	srv    *http.Server
	logger *slog.Logger
}

func NewServer(opts ServerOptions, logger *slog.Logger, todoSvc *service.TodoService) *Server {
	srv := &http.Server{
		Addr:              net.JoinHostPort("", opts.Port),
		Handler:           NewRouter(todoSvc, logger, opts.AllowOrigins),
		ReadHeaderTimeout: min(readHeaderTimeout, opts.ReadTimeout),
		ReadTimeout:       opts.ReadTimeout,
		WriteTimeout:      opts.WriteTimeout,
		IdleTimeout:       opts.IdleTimeout,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}
	return &Server{srv: srv, logger: logger}
}

// Start blocks serving requests. It returns http.ErrServerClosed after
// Shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server listening", "addr", s.srv.Addr)
	return s.srv.ListenAndServe()
}

// Shutdown stops accepting connections and waits for in-flight requests
// until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("http server draining")
	return s.srv.Shutdown(ctx)
}
