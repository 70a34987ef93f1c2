// Package inspect serves a running engine's state over HTTP: Prometheus
// metrics, the committed fiber tree as JSON, the host tree as HTML, and a
// WebSocket feed of encoded commit frames.
package inspect

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/fiber/internal/errors"
	"github.com/vango-dev/fiber/pkg/fiber"
)

// TreeFunc returns the committed fiber tree. Engines are single-threaded, so
// implementations typically hop onto the scheduler loop to read it.
type TreeFunc func(ctx context.Context) (*fiber.TreeNode, error)

// HTMLFunc returns the host tree serialized as HTML.
type HTMLFunc func(ctx context.Context) (string, error)

// Config configures a Server.
type Config struct {
	// Addr is the listen address (e.g., "localhost:7070").
	Addr string

	// Gatherer is scraped by /metrics. Default: prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer

	// Tree backs /tree. Nil disables the route.
	Tree TreeFunc

	// HTML backs /html. Nil disables the route.
	HTML HTMLFunc

	// Logger receives request and feed logs. Default: slog.Default().
	Logger *slog.Logger
}

// Server is the inspector HTTP server.
type Server struct {
	cfg    Config
	logger *slog.Logger
	feed   *Feed
	router chi.Router
}

// New creates a server and its routes.
func New(cfg Config) *Server {
	if cfg.Gatherer == nil {
		cfg.Gatherer = prometheus.DefaultGatherer
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "inspect")

	s := &Server{
		cfg:    cfg,
		logger: logger,
		feed:   NewFeed(logger),
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, "ok")
	})
	r.Handle("/metrics", promhttp.HandlerFor(s.cfg.Gatherer, promhttp.HandlerOpts{}))
	if s.cfg.Tree != nil {
		r.Get("/tree", s.handleTree)
	}
	if s.cfg.HTML != nil {
		r.Get("/html", s.handleHTML)
	}
	r.Get("/ws", s.feed.HandleWebSocket)
	return r
}

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	tree, err := s.cfg.Tree(r.Context())
	if err != nil {
		s.logger.Warn("tree snapshot failed", "error", err)
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(tree); err != nil {
		s.logger.Debug("writing tree", "error", err)
	}
}

func (s *Server) handleHTML(w http.ResponseWriter, r *http.Request) {
	html, err := s.cfg.HTML(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	io.WriteString(w, html)
}

// Handler returns the server's router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Feed returns the commit frame feed.
func (s *Server) Feed() *Feed {
	return s.feed
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return errors.New("E150").Wrap(err).
			WithDetail("Could not listen on " + s.cfg.Addr).
			WithSuggestion("Choose another port with --port or inspect.port in vfiber.json")
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.Serve(ln)
	}()
	s.logger.Info("inspector listening", "addr", ln.Addr().String())

	select {
	case err := <-errc:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.New("E150").Wrap(err)
	case <-ctx.Done():
	}

	s.feed.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.New("E150").Wrap(err)
	}
	return nil
}
