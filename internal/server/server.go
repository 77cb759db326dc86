// Package server exposes the metadata pipeline over HTTP as a small
// read-only explorer API.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/kdutta/mysqlmeta/internal/logger"
	"github.com/kdutta/mysqlmeta/internal/meta"
)

// Config holds the HTTP listener settings.
type Config struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Server serves the explorer API.
type Server struct {
	meta *meta.Metadata
	log  *logger.Logger
	http *http.Server
}

// New builds the server; Start brings up the listener.
func New(cfg Config, md *meta.Metadata, log *logger.Logger) *Server {
	s := &Server{meta: md, log: log}
	s.http = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

// Handler builds the route tree.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/databases", s.handleDatabases)
		r.Get("/tables", s.handleTables)
		r.Get("/columns", s.handleColumns)
		r.Get("/tables/{table}/keys/primary", s.handlePrimaryKeys)
		r.Get("/tables/{table}/keys/imported", s.handleImportedKeys)
		r.Get("/tables/{table}/keys/exported", s.handleExportedKeys)
		r.Get("/tables/{table}/indexes", s.handleIndexes)
		r.Get("/tables/{table}/bestrow", s.handleBestRow)
		r.Get("/routines", s.handleRoutines)
		r.Get("/typeinfo", s.handleTypeInfo)
		r.Get("/keywords", s.handleKeywords)
	})
	return r
}

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.log.With().Str("addr", s.http.Addr).Logger().Info("http server listening")
	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// requestLogger emits one structured line per request.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.HTTPEvent().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}
