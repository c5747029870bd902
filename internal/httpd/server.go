package httpd

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"demoforge/internal/config"
	"demoforge/internal/logging"
	"demoforge/internal/orchestrator"
	"demoforge/internal/services"
	"demoforge/internal/store"
)

// Server exposes the session API over HTTP.
type Server struct {
	cfg    *config.Config
	orch   *orchestrator.Orchestrator
	store  *store.Store
	logger *slog.Logger

	httpServer *http.Server
	listener   net.Listener
}

// New constructs the HTTP server.
func New(cfg *config.Config, orch *orchestrator.Orchestrator, st *store.Store, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		cfg:    cfg,
		orch:   orch,
		store:  st,
		logger: logger.With(logging.String(logging.FieldComponent, "httpd")),
	}
}

// Handler builds the full route table with CORS and logging middleware.
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()
	apiRouter := router.PathPrefix("/api").Subrouter()

	apiRouter.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	apiRouter.HandleFunc("/sessions", s.handleCreateSession).Methods(http.MethodPost)
	apiRouter.HandleFunc("/sessions", s.handleListSessions).Methods(http.MethodGet)
	apiRouter.HandleFunc("/sessions/{id}/status", s.handleStatus).Methods(http.MethodGet)
	apiRouter.HandleFunc("/sessions/{id}", s.handleStatus).Methods(http.MethodGet)
	apiRouter.HandleFunc("/sessions/{id}/uploads", s.handleUpload).Methods(http.MethodPost)
	apiRouter.HandleFunc("/sessions/{id}/results", s.handleResult).Methods(http.MethodPost)
	apiRouter.HandleFunc("/sessions/{id}/retry", s.handleRetry).Methods(http.MethodPost)
	apiRouter.HandleFunc("/sessions/{id}", s.handleDelete).Methods(http.MethodDelete)

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)
	return cors(s.requestLogging(router))
}

// Start binds the configured address and serves until Shutdown.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.cfg.Paths.APIBind)
	if err != nil {
		return err
	}
	s.listener = listener
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("api listening", logging.String("addr", listener.Addr().String()))

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server stopped", logging.Error(err))
		}
	}()
	return nil
}

// Addr returns the bound address, valid after Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// requestLogging mints a correlation id for each request, exposes it on the
// response, and carries it on the context so downstream log lines share it.
func (s *Server) requestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.NewString()
		ctx := services.WithRequestID(r.Context(), requestID)
		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
		logging.WithContext(ctx, s.logger).Debug("request",
			logging.String("method", r.Method),
			logging.String("path", r.URL.Path),
			logging.Duration("elapsed", time.Since(start)))
	})
}
