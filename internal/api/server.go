// Package api serves narratives, trends and refresh controls over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/signalvane/signalvane/core"
	"github.com/signalvane/signalvane/internal/contract"
	"github.com/signalvane/signalvane/schema"
	"golang.org/x/sync/errgroup"
)

// shutdownTimeout bounds graceful shutdown of in-flight requests.
const shutdownTimeout = 10 * time.Second

// RefreshFunc runs one refresh check for cfg.
type RefreshFunc func(ctx context.Context, cfg *contract.Config) (schema.RefreshOutcome, error)

// Server is the SignalVane HTTP API.
type Server struct {
	cfg      *contract.Config
	echo     *echo.Echo
	gatherer prometheus.Gatherer
	refresh  RefreshFunc

	refreshMu sync.Mutex // one pipeline run at a time
}

// Option customizes a Server.
type Option func(*Server)

// WithGatherer exposes metrics from g instead of the default Prometheus registry.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) { s.gatherer = g }
}

// WithRefreshFunc replaces the refresh pipeline, mainly for tests.
func WithRefreshFunc(fn RefreshFunc) Option {
	return func(s *Server) { s.refresh = fn }
}

// NewServer builds the echo router for cfg. Refreshes go through the fetch cache
// and archive of mgr.
func NewServer(cfg *contract.Config, mgr contract.CacheManager, opts ...Option) *Server {
	s := &Server{
		cfg:      cfg,
		gatherer: prometheus.DefaultGatherer,
		refresh: func(ctx context.Context, cfg *contract.Config) (schema.RefreshOutcome, error) {
			return core.GetRefreshResults(ctx, cfg, mgr)
		},
	}
	for _, opt := range opts {
		opt(s)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.errorHandler(e.DefaultHTTPErrorHandler)

	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	e.GET("/", s.handleRoot)
	e.GET("/narratives", s.handleNarratives)
	e.GET("/narratives/:name", s.handleNarrative)
	e.GET("/trends", s.handleTrends)
	e.GET("/ideas", s.handleIdeas)
	e.GET("/snapshot", s.handleSnapshot)
	e.GET("/history/:name", s.handleHistory)
	e.POST("/refresh", s.handleRefresh)
	e.GET("/health", s.handleHealth)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))

	s.echo = e
	return s
}

// Handler returns the router as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves on cfg.ListenAddr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	fmt.Fprintf(os.Stderr, "🚀 SignalVane API listening on %s\n", s.cfg.ListenAddr)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := s.echo.Start(s.cfg.ListenAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.echo.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// StartAPIServer serves the API until ctx is cancelled.
func StartAPIServer(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	return NewServer(cfg, mgr).Start(ctx)
}
