package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"playden/internal/config"
	"playden/internal/logging"
	"playden/internal/media/ffprobe"
	"playden/internal/pipeline"
	"playden/internal/store"
)

// Jobs is the queue surface the HTTP layer needs.
type Jobs interface {
	Enqueue(job pipeline.Job)
	Active() int
	QueueDepth() int
}

// Server exposes the upload, status, and playback API over HTTP.
type Server struct {
	cfg    *config.Config
	store  *store.Store
	jobs   Jobs
	logger *slog.Logger

	// probe is swapped out in tests.
	probe func(ctx context.Context, binary, path string) (ffprobe.Info, error)

	listener net.Listener
	server   *http.Server
}

// New constructs the HTTP server and wires its routes.
func New(cfg *config.Config, st *store.Store, jobs Jobs, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	srv := &Server{
		cfg:    cfg,
		store:  st,
		jobs:   jobs,
		logger: logging.NewComponentLogger(logger, "server"),
		probe:  ffprobe.Probe,
	}

	router := mux.NewRouter()
	router.HandleFunc("/api/upload", srv.handleUpload).Methods(http.MethodPost)
	router.HandleFunc("/api/videos", srv.handleListVideos).Methods(http.MethodGet)
	router.HandleFunc("/api/videos/{id}", srv.handleGetVideo).Methods(http.MethodGet)
	router.HandleFunc("/api/videos/{id}", srv.handleDeleteVideo).Methods(http.MethodDelete)
	router.HandleFunc("/api/videos/{id}/status", srv.handleVideoStatus).Methods(http.MethodGet)
	router.HandleFunc("/api/videos/{id}/watch", srv.handleWatch).Methods(http.MethodPost)
	router.HandleFunc("/api/status", srv.handleStatus).Methods(http.MethodGet)
	router.HandleFunc("/videos/{id}/{file}", srv.handleVideoFile).Methods(http.MethodGet)
	router.HandleFunc("/healthz", srv.handleHealthz).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	srv.server = &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Minute,
		WriteTimeout:      10 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}
	return srv
}

// Handler returns the routed handler, primarily for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start begins serving on the configured bind address. Serving happens on a
// background goroutine; ctx cancellation triggers a graceful shutdown.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.cfg.Paths.Bind)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Paths.Bind, err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("http server listening", logging.String("address", listener.Addr().String()))
	return nil
}

// Addr returns the bound address, valid after Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop shuts the server down gracefully.
func (s *Server) Stop() {
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}
