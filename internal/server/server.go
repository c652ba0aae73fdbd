// Package server provides the HTTP API for Kotae.
package server

import (
	"context"
	"embed"
	"html/template"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hyperjump/kotae/internal/config"
	"github.com/hyperjump/kotae/internal/keyword"
	"github.com/hyperjump/kotae/internal/modelhub"
	"github.com/hyperjump/kotae/internal/search"
	"github.com/hyperjump/kotae/internal/storage"
	"github.com/hyperjump/kotae/internal/watcher"
	"github.com/hyperjump/kotae/pkg/utils"
	"go.uber.org/zap"
)

//go:embed templates/index.html
var templateFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

const maxBodyBytes = 1 << 20

// Server is the HTTP server for the Kotae API.
type Server struct {
	engine    *search.Engine
	handles   *modelhub.Handles
	config    *config.Config
	logger    *zap.Logger
	chunks    keyword.ChunkIndex
	suggester *keyword.Suggester
	journal   storage.Journal
	stale     *watcher.Staleness
	server    *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithChunkIndex enables GET /api/v1/chunks/search.
func WithChunkIndex(idx *keyword.BleveIndex) Option {
	return func(s *Server) {
		if idx != nil {
			s.chunks = idx
			s.suggester = keyword.NewSuggester(idx)
		}
	}
}

// WithJournal adds journal counters to the status endpoint.
func WithJournal(j storage.Journal) Option {
	return func(s *Server) { s.journal = j }
}

// WithStaleness reports corpus changes seen since ingestion.
func WithStaleness(st *watcher.Staleness) Option {
	return func(s *Server) { s.stale = st }
}

// NewServer creates a server with the given dependencies.
func NewServer(engine *search.Engine, handles *modelhub.Handles, cfg *config.Config, logger *zap.Logger, opts ...Option) *Server {
	s := &Server{
		engine:  engine,
		handles: handles,
		config:  cfg,
		logger:  utils.LoggerOrNop(logger),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	timeout := time.Duration(s.config.Server.RequestTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 120 * time.Second
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(timeout))
	r.Use(middleware.Compress(5))

	r.Get("/", s.handleIndex)
	r.Post("/ask", s.handleAsk)
	r.Get("/health", s.handleHealth)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Post("/retrieve", s.handleRetrieve)
		r.Get("/chunks/search", s.handleChunkSearch)
	})
	return r
}

// Listen binds the configured address without serving yet, so the port is
// claimed before models finish loading.
func (s *Server) Listen() (net.Listener, error) {
	return net.Listen("tcp", s.config.Server.Addr())
}

// Serve serves on l and blocks until the server stops.
func (s *Server) Serve(l net.Listener) error {
	s.logger.Info("Starting server", zap.String("addr", l.Addr().String()))
	return s.server.Serve(l)
}

// Start listens on the configured address and blocks until the server stops.
func (s *Server) Start() error {
	l, err := s.Listen()
	if err != nil {
		return err
	}
	return s.Serve(l)
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// requestLogger logs each request through zap instead of chi's stdlib logger.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}
