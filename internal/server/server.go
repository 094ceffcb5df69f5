// Package server serves the browser editor. Every request carries the whole
// document buffer, so nothing is kept between requests.
package server

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mcncl/jsonedit/internal/config"
	"github.com/mcncl/jsonedit/internal/form"
	"github.com/mcncl/jsonedit/internal/log"
)

const (
	maxUploadSize   = 10 << 20 // 10 MB
	shutdownTimeout = 5 * time.Second
)

// Server is the HTTP front end of the editor.
type Server struct {
	cfg      *config.Config
	docCfg   *config.Config // cfg with the buffer indent
	host     string
	port     int
	readOnly bool
	renderer *form.Renderer
	logger   *zap.SugaredLogger
}

// Option configures a Server.
type Option func(*Server)

// WithConfig takes the address, read-only flag, edit limits and form
// settings from cfg. The buffer is always indented with config.DefaultIndent.
func WithConfig(cfg *config.Config) Option {
	return func(s *Server) {
		s.cfg = cfg
		s.host = cfg.Server.Host
		s.port = cfg.Server.Port
		s.readOnly = cfg.Server.ReadOnly
	}
}

// WithAddr sets the listen address.
func WithAddr(host string, port int) Option {
	return func(s *Server) {
		s.host = host
		s.port = port
	}
}

// WithReadOnly disables every route that changes a document.
func WithReadOnly(readOnly bool) Option {
	return func(s *Server) { s.readOnly = readOnly }
}

// WithLogger replaces the "server" logger.
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(s *Server) { s.logger = logger }
}

// New creates a Server. Options are applied in order, so a later WithAddr
// overrides the address from an earlier WithConfig.
func New(opts ...Option) *Server {
	cfg := config.NewConfig()
	s := &Server{
		cfg:      cfg,
		host:     cfg.Server.Host,
		port:     cfg.Server.Port,
		readOnly: cfg.Server.ReadOnly,
		logger:   log.Named("server"),
	}
	for _, opt := range opts {
		opt(s)
	}
	docCfg := *s.cfg
	docCfg.Document.Indent = config.DefaultIndent
	s.docCfg = &docCfg
	s.renderer = form.NewRenderer(form.WithConfig(s.cfg), form.WithReadOnly(s.readOnly))
	return s
}

// Addr returns host:port.
func (s *Server) Addr() string {
	return net.JoinHostPort(s.host, strconv.Itoa(s.port))
}

// Handler returns the routes of the editor.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /new", s.handleNew("{}"))
	mux.HandleFunc("GET /new-array", s.handleNew("[]"))
	mux.HandleFunc("GET /upload", s.handleUploadPage)
	mux.HandleFunc("POST /upload", s.handleUpload)
	mux.HandleFunc("/edit", s.handleEdit)
	mux.HandleFunc("POST /action", s.handleAction)
	mux.HandleFunc("POST /save", s.handleSave)
	mux.HandleFunc("GET /flatten", s.handleFlattenPage)
	mux.HandleFunc("POST /flatten", s.handleFlatten)
	mux.HandleFunc("GET /compare", s.handleComparePage)
	mux.HandleFunc("POST /compare", s.handleCompare)
	mux.HandleFunc("GET /from-schema", s.handleFromSchemaPage)
	mux.HandleFunc("POST /from-schema", s.handleFromSchema)
	return mux
}

// Run listens on Addr and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.Addr())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.Addr(), err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		s.logger.Infof("serving on http://%s", ln.Addr())
		if err := srv.Serve(ln); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	eg.Go(func() error {
		<-ctx.Done()
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return eg.Wait()
}
