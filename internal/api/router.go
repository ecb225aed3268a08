// Package api wires the HTTP surface: routing, middleware and handlers.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/asheworth/portfolio-analyzer/internal/api/handlers"
	custommiddleware "github.com/asheworth/portfolio-analyzer/internal/api/middleware"
	"github.com/asheworth/portfolio-analyzer/internal/config"
	"github.com/asheworth/portfolio-analyzer/internal/service"
)

// NewRouter creates and configures the HTTP router
func NewRouter(systemService *service.SystemService, analysisService *service.AnalysisService, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(systemService)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		// Analysis namespace
		r.Route("/analysis", func(r chi.Router) {
			analysisHandler := handlers.NewAnalysisHandler(analysisService)
			r.Post("/", analysisHandler.Run)
			r.Get("/latest", analysisHandler.Latest)
			r.Get("/report", analysisHandler.Report)
		})
	})

	return r
}
