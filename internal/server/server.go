// Package server implements kuvia serve: a local HTTP server for a gallery
// directory. It renders the gallery page, answers image list requests for
// directories below the served root, serves the image files themselves and,
// when watching, tells connected pages to reload after images change.
package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/kuvia/kuvia/internal/config"
	"github.com/kuvia/kuvia/internal/logging"
	"github.com/kuvia/kuvia/internal/page"
	"github.com/kuvia/kuvia/internal/scanner"
	"github.com/kuvia/kuvia/internal/watcher"
)

const (
	// ImageListPath answers with the JSON image list of a directory.
	ImageListPath = "/imagelist.json"
	// LiveReloadPath is the websocket endpoint of the live reload client.
	LiveReloadPath = "/livereload"
	// HealthPath reports server status.
	HealthPath = "/healthz"

	watchDebounce   = 300 * time.Millisecond
	shutdownTimeout = 5 * time.Second
)

// Server serves one gallery root.
type Server struct {
	config   *config.Config
	logger   logging.Logger
	scanner  *scanner.Scanner
	renderer *page.Renderer
	hub      *Hub
	watcher  *watcher.FileWatcher

	httpServer   *http.Server
	serverMutex  sync.RWMutex
	shutdownOnce sync.Once
}

// New creates a server for cfg. A nil logger discards log output.
func New(cfg *config.Config, logger logging.Logger) (*Server, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	logger = logger.WithComponent("server")

	s := &Server{
		config:   cfg,
		logger:   logger,
		scanner:  scanner.New(logger),
		renderer: page.NewRenderer(logger),
		hub:      NewHub(logger),
	}

	if cfg.Server.Watch {
		fw, err := watcher.NewFileWatcher(watchDebounce, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create file watcher: %w", err)
		}
		s.watcher = fw
	}

	return s, nil
}

// Handler returns the HTTP handler with every route and middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET "+ImageListPath, s.handleImageList)
	mux.HandleFunc("GET "+HealthPath, s.handleHealth)
	mux.Handle("GET "+LiveReloadPath, s.hub)
	mux.HandleFunc("GET /", s.handleImage)

	return s.addMiddleware(mux)
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	addr := net.JoinHostPort(s.config.Server.Host, fmt.Sprintf("%d", s.config.Server.Port))
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, listener)
}

// Serve is Start on an existing listener.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	hubCtx, stopHub := context.WithCancel(ctx)
	hubDone := make(chan struct{})
	go func() {
		defer close(hubDone)
		s.hub.Run(hubCtx)
	}()
	defer func() {
		stopHub()
		<-hubDone
		// Hijacked live reload connections are not tracked by http.Server.
		s.hub.Wait()
	}()

	if s.watcher != nil {
		if err := s.setupFileWatcher(hubCtx); err != nil {
			_ = s.watcher.Stop()
			return err
		}
	}

	s.serverMutex.Lock()
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	server := s.httpServer
	s.serverMutex.Unlock()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve(listener)
	}()

	s.logger.Info(ctx, "Serving gallery",
		"url", "http://"+listener.Addr().String(),
		"root", s.config.Server.Root,
		"watch", s.config.Server.Watch)

	select {
	case err := <-errCh:
		_ = s.Shutdown(context.Background())
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	stopHub()
	if err := s.Shutdown(shutdownCtx); err != nil {
		return err
	}
	<-errCh
	return nil
}

func (s *Server) setupFileWatcher(ctx context.Context) error {
	types := s.config.Scan.Types
	watched := []string{}
	if s.config.Page.Template != "" {
		watched = append(watched, s.config.Page.Template)
	}

	s.watcher.AddFilter(watcher.NoHiddenFilter)
	s.watcher.AddFilter(watcher.AnyFilter(
		watcher.ImageFilter(types),
		watcher.FilesFilter(watched...),
	))
	s.watcher.AddHandler(s.handleFileChange)

	if err := s.watcher.AddRecursive(s.config.Server.Root); err != nil {
		return fmt.Errorf("failed to watch %s: %w", s.config.Server.Root, err)
	}
	for _, f := range watched {
		if err := s.watcher.AddPath(f); err != nil {
			s.logger.Warn(ctx, err, "Failed to watch file", "path", f)
		}
	}

	return s.watcher.Start(ctx)
}

func (s *Server) handleFileChange(events []watcher.ChangeEvent) error {
	ctx := context.Background()
	for _, e := range events {
		s.logger.Debug(ctx, "Gallery file changed", "path", e.Path, "type", e.Type.String())
	}
	s.hub.Broadcast(ReloadMessage)
	return nil
}

// Shutdown stops the HTTP server, the watcher and every live reload
// connection. It is safe to call more than once.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.logger.Info(ctx, "Shutting down server")

		if s.watcher != nil {
			if err := s.watcher.Stop(); err != nil {
				s.logger.Warn(ctx, err, "Failed to stop file watcher")
			}
		}

		s.serverMutex.RLock()
		server := s.httpServer
		s.serverMutex.RUnlock()

		if server != nil {
			shutdownErr = server.Shutdown(ctx)
		}
	})

	return shutdownErr
}

// addMiddleware sets security headers and logs requests.
func (s *Server) addMiddleware(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "same-origin")

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		handler.ServeHTTP(rec, r)

		s.logger.Debug(r.Context(), "Request served",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Hijack is required by the websocket upgrade.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	return hj.Hijack()
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}
