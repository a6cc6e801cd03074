// Package server exposes the pipeline over HTTP. Analyze and extract runs
// stream their progress events as server-sent events.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/nationwide-haul/call-tracker/internal/config"
	"github.com/nationwide-haul/call-tracker/internal/llm"
	"github.com/nationwide-haul/call-tracker/internal/metrics"
	"github.com/nationwide-haul/call-tracker/internal/pipeline"
	"github.com/nationwide-haul/call-tracker/internal/roster"
)

// ProviderFactory builds the model providers for one request's credential.
type ProviderFactory interface {
	New(sel llm.Selector, apiKey string) (*llm.Providers, error)
}

// Server holds the shared, read-only dependencies of every request.
type Server struct {
	cfg     config.ServerConfig
	opts    pipeline.Options
	factory ProviderFactory
	roster  *roster.Roster
	metrics *metrics.Metrics
}

// New creates a Server.
func New(cfg *config.Config, factory ProviderFactory, r *roster.Roster, m *metrics.Metrics) *Server {
	return &Server{
		cfg: cfg.Server,
		opts: pipeline.Options{
			BatchSize:       cfg.Pipeline.BatchSize,
			MinDurationSecs: cfg.Pipeline.MinDurationSecs,
		},
		factory: factory,
		roster:  r,
		metrics: m,
	}
}

// Routes returns the HTTP handler.
func (s *Server) Routes() http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(requestLogger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	router.Get("/health", s.handleHealth)
	router.Handle("/metrics", s.metrics.Handler())

	router.Route("/api", func(r chi.Router) {
		r.Post("/analyze", s.handleAnalyze)
		r.Post("/extract", s.handleExtract)
	})

	return router
}

// requestLogger logs one line per request once it finishes.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			zap.L().Info("server: request",
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("remote_addr", r.RemoteAddr),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
