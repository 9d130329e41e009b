// Package server exposes the build pipeline over HTTP.
//
// The API accepts behavior documents, runs the parse → build → layout
// pipeline, and persists the result in a build store so graphs and layouts
// can be fetched separately by the rendering collaborator.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/flowatlas/flowatlas/pkg/pipeline"
	"github.com/flowatlas/flowatlas/pkg/store"
)

// Server wires the pipeline runner and build store into an HTTP handler.
type Server struct {
	Runner *pipeline.Runner
	Store  store.Store
	Logger *log.Logger

	// Options is the baseline pipeline configuration; requests may
	// override engine and vocabulary.
	Options pipeline.Options
}

// New creates a server. A nil store falls back to in-memory storage.
func New(runner *pipeline.Runner, st store.Store, logger *log.Logger) *Server {
	if st == nil {
		st = store.NewMemoryStore()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Server{Runner: runner, Store: st, Logger: logger}
}

// Handler builds the chi router with all routes and middleware.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/builds", func(r chi.Router) {
			r.Post("/", s.createBuild)
			r.Get("/", s.listBuilds)
			r.Route("/{buildID}", func(r chi.Router) {
				r.Get("/", s.getBuild)
				r.Get("/graph", s.getGraph)
				r.Get("/layout", s.getLayout)
				r.Delete("/", s.deleteBuild)
			})
		})
	})

	return r
}

// ListenAndServe runs the HTTP server until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	s.Logger.Info("listening", "addr", addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
