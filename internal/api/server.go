// Package api serves the library as JSON over HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/Nomadcxx/mediashelf/internal/activity"
	"github.com/Nomadcxx/mediashelf/internal/config"
	"github.com/Nomadcxx/mediashelf/internal/database"
	"github.com/Nomadcxx/mediashelf/internal/logging"
	"github.com/Nomadcxx/mediashelf/internal/movie"
	"github.com/Nomadcxx/mediashelf/internal/scanner"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/text/language"
)

// Server implements the API
type Server struct {
	lib  *movie.Library
	db   *database.MediaDB
	cfg  config.ServerConfig
	lang language.Tag
	log  *logging.Logger

	journal    *activity.Logger
	scanStatus func() scanner.Status
}

type Option func(*Server)

// WithDatabase enables /api/v1/stats from the database instead of memory.
func WithDatabase(db *database.MediaDB) Option {
	return func(s *Server) {
		s.db = db
	}
}

func WithLogger(l *logging.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// WithActivity enables /api/v1/activity.
func WithActivity(j *activity.Logger) Option {
	return func(s *Server) {
		s.journal = j
	}
}

// WithScanStatus adds the periodic scanner state to /health.
func WithScanStatus(fn func() scanner.Status) Option {
	return func(s *Server) {
		s.scanStatus = fn
	}
}

// WithLanguage sets the collation language used for title sorting.
func WithLanguage(tag language.Tag) Option {
	return func(s *Server) {
		s.lang = tag
	}
}

// NewServer creates a new API server
func NewServer(lib *movie.Library, cfg config.ServerConfig, opts ...Option) *Server {
	s := &Server{
		lib:  lib,
		cfg:  cfg,
		lang: language.English,
		log:  logging.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the HTTP handler with CORS and the API routes
func (s *Server) Handler() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	if len(s.cfg.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.cfg.CORSOrigins,
			AllowedMethods: []string{"GET", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
	}

	r.Get("/health", s.HandleHealth)
	r.Mount("/api/v1", s.apiRouter())
	return r
}

// apiRouter returns a router with API routes
func (s *Server) apiRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.SetHeader("Content-Type", "application/json"))

	r.Get("/moviesets", s.HandleMovieSets)
	r.Get("/tree", s.HandleTree)
	r.Get("/movies/{id}", s.HandleMovie)
	r.Get("/stats", s.HandleStats)
	r.Get("/classify", s.HandleClassify)
	r.Get("/channels", s.HandleChannels)
	r.Get("/activity", s.HandleActivity)
	return r
}

// requestLogger logs every request through the application logger.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug("api", "Request",
			logging.F("method", r.Method),
			logging.F("path", r.URL.Path),
			logging.F("status", ww.Status()),
			logging.F("duration_ms", time.Since(start).Milliseconds()),
			logging.F("request_id", middleware.GetReqID(r.Context())))
	})
}

// HTTPServer wraps Handler in an http.Server listening on the configured address.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
}
