// Package server provides the HTTP server implementation.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/vyrodovalexey/product-catalog/internal/config"
	"github.com/vyrodovalexey/product-catalog/internal/handler"
	"github.com/vyrodovalexey/product-catalog/internal/middleware"
	"github.com/vyrodovalexey/product-catalog/internal/service"
	"github.com/vyrodovalexey/product-catalog/internal/store"
)

// Server represents the HTTP server.
type Server struct {
	httpServer *http.Server
	router     *mux.Router
	config     *config.Config
	logger     *zap.Logger
	store      store.Store
}

// New creates a Server that serves the catalog API backed by st.
func New(
	cfg *config.Config,
	logger *zap.Logger,
	st store.Store,
	tp trace.TracerProvider,
	propagator propagation.TextMapPropagator,
) *Server {
	s := &Server{
		router: mux.NewRouter(),
		config: cfg,
		logger: logger,
		store:  st,
	}

	s.setupMiddleware(tp, propagator)
	s.setupRoutes(tp.Tracer(service.TracerName))
	s.setupHTTPServer()

	return s
}

// setupMiddleware installs the route-aware middleware on the router.
// Order: first applied is outermost.
func (s *Server) setupMiddleware(tp trace.TracerProvider, propagator propagation.TextMapPropagator) {
	s.router.Use(mux.MiddlewareFunc(middleware.Tracing(tp, propagator)))

	if s.config.MetricsEnabled {
		s.router.Use(mux.MiddlewareFunc(middleware.Metrics()))
	}

	s.router.Use(mux.MiddlewareFunc(middleware.Logging(s.logger)))
}

// setupRoutes configures the API routes.
func (s *Server) setupRoutes(tracer trace.Tracer) {
	products := service.NewProductService(s.store, s.logger, tracer)
	reviews := service.NewReviewService(s.store, s.store, s.logger, tracer)
	limits := handler.PageLimits{DefaultSize: s.config.DefaultPageSize, MaxSize: s.config.MaxPageSize}

	handler.NewRESTHandler(products, reviews, s.store, limits, s.logger).RegisterRoutes(s.router)

	if s.config.MetricsEnabled {
		s.router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	}
}

// setupHTTPServer configures the HTTP server. Recovery, request IDs and
// CORS wrap the router so they also cover unmatched routes and preflights.
func (s *Server) setupHTTPServer() {
	cors := middleware.CORS(
		s.config.CORSOrigins,
		[]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		[]string{"Content-Type", middleware.RequestIDHeader, "traceparent"},
	)

	s.httpServer = &http.Server{
		Addr:              s.config.Address(),
		Handler:           middleware.Chain(middleware.Recovery(s.logger), middleware.RequestID(), cors)(s.router),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}
}

// Start starts the HTTP server. It returns nil after Shutdown.
func (s *Server) Start() error {
	s.logger.Info("starting server",
		zap.String("address", s.config.Address()),
		zap.String("db_driver", s.config.DBDriver),
		zap.Bool("metrics_enabled", s.config.MetricsEnabled),
	)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server listen and serve: %w", err)
	}

	return nil
}

// Shutdown drains in-flight requests, then closes the store.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down server")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	if err := s.store.Close(); err != nil {
		return fmt.Errorf("close store: %w", err)
	}

	s.logger.Info("server shutdown complete")
	return nil
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}
