package server

import (
	"log/slog"
	"net/http"

	"github.com/trytocodeee/Indian-Unemployment-Dashboard/internal/handlers"
	"github.com/trytocodeee/Indian-Unemployment-Dashboard/internal/metrics"
	"github.com/trytocodeee/Indian-Unemployment-Dashboard/internal/middleware"
	"github.com/trytocodeee/Indian-Unemployment-Dashboard/internal/services"
)

type Server struct {
	dashboard *services.Dashboard
	mux       *http.ServeMux
	handler   http.Handler
	logger    *slog.Logger
	metrics   *metrics.Manager

	adminToken string

	pages     *handlers.PageHandlers
	api       *handlers.APIHandlers
	sse       *handlers.SSEHandlers
	downloads *handlers.DownloadHandlers
	charts    *handlers.ChartHandlers
}

type Option func(*Server)

// WithMetrics exposes /metrics and records per-route request metrics.
func WithMetrics(m *metrics.Manager) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithAdminToken requires a bearer token on the /admin routes.
func WithAdminToken(token string) Option {
	return func(s *Server) {
		s.adminToken = token
	}
}

func NewServer(dashboard *services.Dashboard, logger *slog.Logger, opts ...Option) *Server {
	s := &Server{
		dashboard: dashboard,
		mux:       http.NewServeMux(),
		logger:    logger,
		pages:     handlers.NewPageHandlers(dashboard, logger),
		api:       handlers.NewAPIHandlers(dashboard, logger),
		sse:       handlers.NewSSEHandlers(dashboard, logger),
		downloads: handlers.NewDownloadHandlers(dashboard, logger),
		charts:    handlers.NewChartHandlers(dashboard, logger),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.setupRoutes()
	s.handler = middleware.Instrument(s.metrics)(s.mux)
	return s
}

func (s *Server) setupRoutes() {
	admin := middleware.RequireToken(s.adminToken, s.logger)

	// Dashboard routes
	s.mux.HandleFunc("GET /{$}", s.pages.HandleDashboard)
	s.mux.HandleFunc("GET /health", s.api.HandleHealth)
	s.mux.Handle("GET /admin/stats", admin(http.HandlerFunc(s.api.HandleStats)))
	s.mux.Handle("POST /admin/reload", admin(http.HandlerFunc(s.api.HandleReload)))

	// REST API endpoints
	s.mux.HandleFunc("GET /api/regions", s.api.HandleRegions)
	s.mux.HandleFunc("GET /api/view", s.api.HandleView)
	s.mux.HandleFunc("GET /api/summary", s.api.HandleSummary)
	s.mux.HandleFunc("GET /api/compare", s.api.HandleCompare)

	// Datastar SSE endpoint
	s.mux.HandleFunc("GET /sse/dashboard", s.sse.HandleDashboard)

	// Files
	s.mux.HandleFunc("GET /download/csv", s.downloads.HandleCSV)
	s.mux.HandleFunc("GET /download/xlsx", s.downloads.HandleXLSX)
	s.mux.HandleFunc("GET /charts/trend.png", s.charts.HandleTrend)
	s.mux.HandleFunc("GET /charts/compare.png", s.charts.HandleCompare)

	if s.metrics != nil {
		s.mux.Handle("GET /metrics", s.metrics.Handler())
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}
