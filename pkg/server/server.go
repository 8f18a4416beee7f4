package server

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/toast/internal/errors"
	"github.com/vango-dev/toast/pkg/toast"
)

// Server exposes a toast.Store over HTTP and a WebSocket change stream.
type Server struct {
	store  *toast.Store
	config *Config
	hub    *hub
	router chi.Router

	upgrader websocket.Upgrader
	tracer   trace.Tracer
	logger   *slog.Logger

	metrics     http.Handler
	unsubscribe func()

	mu         sync.Mutex
	httpServer *http.Server
	streams    sync.WaitGroup
}

// New creates a server for store. A nil config uses DefaultConfig.
// The server subscribes to the store right away; call Shutdown to release it.
func New(store *toast.Store, config *Config) *Server {
	config = config.withDefaults()

	s := &Server{
		store:  store,
		config: config,
		hub:    newHub(config.MaxClients, config.ClientBuffer, config.Logger),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     config.CheckOrigin,
		},
		tracer: otel.Tracer(config.TracerName),
		logger: config.Logger,
	}
	if config.Metrics != nil {
		s.metrics = config.Metrics.Handler()
	}
	s.router = s.routes()
	s.unsubscribe = store.Subscribe(s.hub.broadcast)
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	r.Use(s.corsHandler())

	r.Route("/api", func(r chi.Router) {
		r.Use(s.traceRequests)

		// Bodies must be JSON, so cross-site form posts never reach a handler.
		withJSON := r.With(middleware.AllowContentType("application/json"))

		r.Get("/toasts", s.listToasts)
		withJSON.Post("/toasts", s.createToast)
		r.Delete("/toasts", s.clearToasts)
		withJSON.Put("/toasts/{id}", s.updateToast)
		r.Delete("/toasts/{id}", s.dismissToast)

		r.Get("/defaults", s.getDefaults)
		withJSON.Patch("/defaults", s.patchDefaults)
	})

	r.Get("/ws", s.handleStream)
	r.Get("/healthz", s.health)
	r.Get(s.config.MetricsPath, s.serveMetrics)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, errors.Newf(errors.CategoryTransport, "no route for %s %s", r.Method, r.URL.Path).
			WithStatus(http.StatusNotFound))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, errors.Newf(errors.CategoryTransport, "method %s not allowed", r.Method).
			WithStatus(http.StatusMethodNotAllowed))
	})

	return r
}

// Handler returns the HTTP handler serving the API, the stream and metrics.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run listens on the configured address and serves until ctx is done,
// then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return errors.New("E302").WithDetailf("listen on %s", s.config.Address).Wrap(err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	httpServer := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: s.config.ReadHeaderTimeout,
		ReadTimeout:       s.config.ReadTimeout,
		WriteTimeout:      s.config.WriteTimeout,
	}
	s.mu.Lock()
	s.httpServer = httpServer
	s.mu.Unlock()

	// Error channel for Serve
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("server starting", "address", ln.Addr().String())
		errCh <- httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if err != http.ErrServerClosed {
			return errors.New("E302").Wrap(err)
		}
		return nil
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")
	}

	return s.Shutdown(context.WithoutCancel(ctx))
}

// Shutdown closes stream clients, stops following the store and shuts the
// HTTP server down.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	s.unsubscribe()
	s.hub.close()

	s.mu.Lock()
	httpServer := s.httpServer
	s.mu.Unlock()

	if httpServer != nil {
		if err := httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return errors.New("E302").WithDetail("graceful shutdown").Wrap(err)
		}
	}

	// Hijacked stream connections are not tracked by http.Server.
	done := make(chan struct{})
	go func() {
		s.streams.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		s.logger.Warn("stream clients still open after shutdown timeout")
	}

	s.logger.Info("server shutdown complete")
	return nil
}

// Clients returns the number of connected stream clients.
func (s *Server) Clients() int {
	return s.hub.len()
}

// Store returns the served store.
func (s *Server) Store() *toast.Store {
	return s.store
}

// Config returns the server configuration.
func (s *Server) Config() *Config {
	return s.config
}

// Logger returns the server logger.
func (s *Server) Logger() *slog.Logger {
	return s.logger
}
