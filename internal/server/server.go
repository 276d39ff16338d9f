package server

import (
	"bufio"
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/wagiedev/uci-service-go/internal/mcp"
	"github.com/wagiedev/uci-service-go/internal/supervisor"
)

const (
	// shutdownTimeout bounds graceful shutdown after the context is done.
	shutdownTimeout = 10 * time.Second

	readHeaderTimeout = 10 * time.Second
)

// Engine is the supervisor surface the HTTP layer needs.
type Engine interface {
	mcp.Engine
	Stats() supervisor.Stats
	Restart(ctx context.Context) error
}

// Compile-time verification that the supervisor satisfies Engine.
var _ Engine = (*supervisor.Supervisor)(nil)

// Server serves the HTTP API.
type Server struct {
	log     *slog.Logger
	engine  Engine
	version string
	tools   *mcp.Toolset
	router  *httprouter.Router
}

// Option configures a Server.
type Option func(*Server)

// WithVersion sets the version reported by the banner and the MCP endpoint.
func WithVersion(version string) Option {
	return func(s *Server) {
		s.version = version
	}
}

// WithTools mounts tools on /mcp instead of the default engine toolset.
func WithTools(tools *mcp.Toolset) Option {
	return func(s *Server) {
		s.tools = tools
	}
}

// New creates a server for engine.
func New(log *slog.Logger, engine Engine, opts ...Option) *Server {
	s := &Server{
		log:     log.With("component", "http"),
		engine:  engine,
		version: "dev",
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.tools == nil {
		s.tools = mcp.EngineTools(engine, s.version)
	}

	s.router = s.routes()

	return s
}

func (s *Server) routes() *httprouter.Router {
	router := httprouter.New()

	router.GET("/", s.home)
	router.GET("/get_best_move", s.bestMove)
	router.GET("/health", s.health)
	router.GET("/stats", s.stats)
	router.POST("/engine/restart", s.restart)
	router.GET("/ws", s.analyzeWS)

	mcpHandler := mcp.HTTPHandler(s.tools)
	for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodDelete} {
		router.Handler(method, "/mcp", mcpHandler)
	}

	router.GlobalOPTIONS = http.HandlerFunc(preflight)
	router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})
	router.PanicHandler = func(w http.ResponseWriter, r *http.Request, v any) {
		s.log.Error("Panic in handler", "path", r.URL.Path, "panic", v)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}

	return router
}

// Handler returns the root handler with CORS and request logging applied.
func (s *Server) Handler() http.Handler {
	return s.logRequests(allowAnyOrigin(s.router))
}

// ListenAndServe serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}

	return s.Serve(ctx, listener)
}

// Serve serves on listener until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)

	go func() {
		s.log.Info("HTTP server listening", "addr", listener.Addr().String())
		errCh <- httpServer.Serve(listener)
	}()

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return err
	case <-ctx.Done():
	}

	s.log.Info("Shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	return nil
}

func allowAnyOrigin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		next.ServeHTTP(w, r)
	})
}

func preflight(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Access-Control-Request-Method") != "" {
		header := w.Header()
		header.Set("Access-Control-Allow-Methods", header.Get("Allow"))
		header.Set("Access-Control-Allow-Headers", "*")
		header.Set("Access-Control-Max-Age", "600")
	}

	w.WriteHeader(http.StatusNoContent)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// Flush supports streamed MCP responses.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Hijack supports the websocket handshake.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, stderrors.New("response writer does not support hijacking")
	}

	return h.Hijack()
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		s.log.Debug("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}
