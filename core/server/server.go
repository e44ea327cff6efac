package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/fbz-tec/docvault/core/documents"
	"github.com/fbz-tec/docvault/core/store"
	"github.com/fbz-tec/docvault/core/telemetry"
	"github.com/fbz-tec/docvault/core/uploads"
	"github.com/fbz-tec/docvault/internal/logger"
)

const (
	// DefaultShutdownTimeout bounds how long in-flight requests may run after
	// the server is asked to stop.
	DefaultShutdownTimeout = 10 * time.Second

	maxJSONBody = 1 << 20
)

// Server is the docvault REST API.
type Server struct {
	store     store.Store
	docs      *documents.Service
	uploads   *uploads.Uploader
	collector telemetry.Collector
	gatherer  prometheus.Gatherer
	handler   http.Handler

	shutdownTimeout time.Duration
}

type Option func(*Server)

// WithCollector records request metrics through c.
func WithCollector(c telemetry.Collector) Option {
	return func(s *Server) {
		if c != nil {
			s.collector = c
		}
	}
}

// WithGatherer sets the registry served on /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		if g != nil {
			s.gatherer = g
		}
	}
}

func WithShutdownTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.shutdownTimeout = d
		}
	}
}

// New builds the API on top of st and up.
func New(st store.Store, up *uploads.Uploader, opts ...Option) (*Server, error) {
	docs, err := documents.NewService(st, documents.DefaultCacheSize)
	if err != nil {
		return nil, err
	}

	s := &Server{
		store:           st,
		docs:            docs,
		uploads:         up,
		collector:       telemetry.Noop(),
		gatherer:        prometheus.DefaultGatherer,
		shutdownTimeout: DefaultShutdownTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/documents", s.listDocuments)
	mux.HandleFunc("POST /api/documents", s.createDocument)
	mux.HandleFunc("GET /api/documents/{id}", s.getDocument)
	mux.HandleFunc("PUT /api/documents/{id}", s.updateDocument)
	mux.HandleFunc("DELETE /api/documents/{id}", s.deleteDocument)
	mux.HandleFunc("POST /api/uploads", s.upload)
	mux.HandleFunc("GET /files/{name}", s.serveFile)
	mux.HandleFunc("GET /healthz", s.health)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	s.handler = s.instrument(mux)
	return s, nil
}

// Handler returns the API with logging and metrics applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves on addr until ctx is cancelled, then drains in-flight requests
// and closes the store's connection.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("API listening on %s (backend: %s)", ln.Addr(), s.store.Backend())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down API")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutdownTimeout)
		defer cancel()

		err := srv.Shutdown(shutdownCtx)
		if cerr := s.store.Close(shutdownCtx); cerr != nil {
			logger.Warn("Closing %s connection: %v", s.store.Backend(), cerr)
		}
		if err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}
