package http

// this is entry point of the http request handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"gitlab.com/fog-offload.net/internal/core/ports/primary"
	"gitlab.com/fog-offload.net/internal/handlers"
	"gitlab.com/fog-offload.net/internal/handlers/response"
)

// RouteRegistrar mounts a handler group on the router
type RouteRegistrar func(r *mux.Router)

// HealthFunc reports extra fields for GET /health
type HealthFunc func(ctx context.Context) map[string]interface{}

type Server struct {
	router       *mux.Router
	handler      http.Handler
	srv          *http.Server
	Port         int
	ServiceName  string
	WriteTimeout time.Duration
	logger       primary.Logger
}

// NewServer creates a server. writeTimeout must cover the slowest handler,
// which for the manager is a full forward round trip.
func NewServer(port int, serviceName string, writeTimeout time.Duration, logger primary.Logger) *Server {
	return &Server{
		Port:         port,
		ServiceName:  serviceName,
		WriteTimeout: writeTimeout,
		logger:       logger,
	}
}

// Init builds the router with /health, /metrics and the given route groups
func (s *Server) Init(metricsHandler http.Handler, health HealthFunc, registrars ...RouteRegistrar) error {
	r := mux.NewRouter()
	r.Use(handlers.New(s.logger).LoggingMiddleware)

	r.HandleFunc("/health", func(w http.ResponseWriter, req *http.Request) {
		body := map[string]interface{}{"status": "ok", "service": s.ServiceName}
		if health != nil {
			for k, v := range health(req.Context()) {
				body[k] = v
			}
		}
		response.WriteSuccess(w, body)
	}).Methods("GET")

	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler).Methods("GET")
	}

	for _, register := range registrars {
		register(r)
	}

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		response.WriteError(w, http.StatusNotFound, "not found")
	})

	s.router = r
	s.handler = cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}).Handler(r)
	return nil
}

// Handler is the fully wrapped handler, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start serves in the background. The returned channel yields the listen
// error, if any, and is closed when the server stops.
func (s *Server) Start() <-chan error {
	s.srv = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.Port),
		Handler:      s.handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: s.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		s.logger.Info("Server listening", "service", s.ServiceName, "addr", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Server error", "error", err)
			errCh <- err
		}
	}()
	return errCh
}

// Stop drains in-flight requests until ctx expires
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Shutting down http server...", "service", s.ServiceName)
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}
