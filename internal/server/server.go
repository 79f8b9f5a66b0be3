// internal/server/server.go

package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"trendpulse/internal/adapter/eventbus"
	"trendpulse/internal/config"
	"trendpulse/internal/domain/trend"
	"trendpulse/internal/server/handlers"
)

// Server represents the HTTP server
type Server struct {
	server *http.Server
	router *chi.Mux
}

// NewServer creates the read API server. The WebSocket stream is only
// mounted when an event bus connection is given.
func NewServer(
	cfg config.ServerConfig,
	summaries handlers.SummaryReader,
	accounts []trend.AccountConfig,
	bus eventbus.Conn,
	summarySubject string,
	logger *slog.Logger,
) *Server {
	router := chi.NewRouter()

	// Middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	// CORS configuration
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CorsOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	trendHandler := handlers.NewTrendHandler(summaries, accounts)

	// Routes
	router.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))

		// Health check
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("OK"))
		})

		r.Route("/v1", func(r chi.Router) {
			r.Route("/trends", func(r chi.Router) {
				r.Get("/", trendHandler.GetSummary)
				r.Get("/topics", trendHandler.GetTrendingTopics)
				r.Get("/categories/{category}", trendHandler.GetCategory)
			})

			r.Get("/accounts", trendHandler.GetAccounts)
		})
	})

	router.Handle("/metrics", promhttp.Handler())

	// WebSocket stream of new summaries
	if bus != nil {
		router.Get("/ws/trends", handlers.TrendWebSocketHandler(bus, summarySubject, summaries, logger))
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return &Server{
		server: httpServer,
		router: router,
	}
}

// Handler returns the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe starts the HTTP server
func (s *Server) ListenAndServe() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
