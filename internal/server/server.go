// Package server is the HTTP service: it computes waterfall charts from
// posted payloads and serves stored dashboards.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/waterfall/pkg/pipeline"
	"github.com/matzehuels/waterfall/pkg/store"
)

// Options configures a Server.
type Options struct {
	Runner       *pipeline.Runner
	Store        store.Store
	Logger       *log.Logger
	Defaults     pipeline.Options    // render defaults applied to every request
	Gatherer     prometheus.Gatherer // served on /metrics; nil uses the default registry
	MaxBodyBytes int64
	Timeout      time.Duration // per-request handler timeout; zero disables
}

// Server routes API requests to the pipeline and the store.
type Server struct {
	runner   *pipeline.Runner
	store    store.Store
	logger   *log.Logger
	defaults pipeline.Options
	gatherer prometheus.Gatherer
	maxBody  int64
	timeout  time.Duration
}

// New returns a server. Runner and Store are required.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 1 << 20
	}
	return &Server{
		runner:   opts.Runner,
		store:    opts.Store,
		logger:   opts.Logger,
		defaults: opts.Defaults,
		gatherer: opts.Gatherer,
		maxBody:  opts.MaxBodyBytes,
		timeout:  opts.Timeout,
	}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(recoverer(s.logger))
	r.Use(httpMetrics)

	r.Get("/healthz", s.handleHealth)
	r.Get("/version", s.handleVersion)
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		if s.timeout > 0 {
			r.Use(middleware.Timeout(s.timeout))
		}
		r.Post("/waterfall", s.handleWaterfall)

		r.Route("/dashboards", func(r chi.Router) {
			r.Post("/", s.handleCreateDashboard)
			r.Get("/", s.handleListDashboards)
			r.Get("/{id}", s.handleGetDashboard)
			r.Delete("/{id}", s.handleDeleteDashboard)
			r.Get("/{id}/waterfall.{format}", s.handleDashboardWaterfall)
		})
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully within shutdownTimeout.
func (s *Server) ListenAndServe(ctx context.Context, addr string, readTimeout, writeTimeout, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      writeTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down", "timeout", shutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
