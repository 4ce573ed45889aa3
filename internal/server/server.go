// Package server hosts uploaded profiles over HTTP and renders viewports of
// their flame charts on request.
//
// Profiles are kept in memory for the lifetime of the process. Rendered
// artifacts go through the pipeline runner, so a configured artifact cache
// is shared with the CLI.
//
// # Routes
//
//	GET    /healthz
//	POST   /profiles                   upload a profile (raw body)
//	GET    /profiles                   list uploaded profiles
//	GET    /profiles/{id}              profile and layout summary
//	DELETE /profiles/{id}
//	GET    /profiles/{id}/render.png   render a viewport
//	GET    /profiles/{id}/render.svg   call tree through graphviz
//	GET    /profiles/{id}/render.dot   call tree as DOT source
//	GET    /profiles/{id}/search       list frames matching ?q=
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/flamechart/pkg/pipeline"
)

// DefaultMaxUploadBytes bounds profile uploads when Config leaves it unset.
const DefaultMaxUploadBytes = 64 << 20

// shutdownTimeout bounds graceful shutdown once the context is cancelled.
const shutdownTimeout = 10 * time.Second

// Config configures a [Server].
type Config struct {
	Addr           string
	MaxUploadBytes int64

	// Defaults seeds the pipeline options of every request. Query
	// parameters override it.
	Defaults pipeline.Options

	Logger *log.Logger
}

// Server serves the profile API.
type Server struct {
	cfg    Config
	runner *pipeline.Runner
	store  *store
	logger *log.Logger
	router chi.Router
}

// New creates a server rendering through runner.
func New(runner *pipeline.Runner, cfg Config) *Server {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard)
	}
	s := &Server{
		cfg:    cfg,
		runner: runner,
		store:  newStore(),
		logger: cfg.Logger,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestID)
	r.Use(s.observe)

	r.Get("/healthz", s.handleHealth)
	r.Route("/profiles", func(r chi.Router) {
		r.Post("/", s.handleUpload)
		r.Get("/", s.handleList)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleInfo)
			r.Delete("/", s.handleDelete)
			r.Get("/render.png", s.handleRender(pipeline.FormatPNG))
			r.Get("/render.svg", s.handleRender(pipeline.FormatSVG))
			r.Get("/render.dot", s.handleRender(pipeline.FormatDOT))
			r.Get("/search", s.handleSearch)
		})
	})
	return r
}

// Handler returns the HTTP handler serving all routes.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves on cfg.Addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("listening", "addr", s.cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
