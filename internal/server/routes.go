package server

import (
	"github.com/gofiber/fiber/v3/middleware/adaptor"
)

// RegisterRoutes registers all application routes.
func (s *Server) RegisterRoutes() {
	// Frontend routes
	s.App.Get("/", s.Index)
	s.App.Post("/analyze", s.AnalyzePage)

	// API routes
	api := s.App.Group("/api/v1")
	api.Post("/analyze", s.AnalyzeAPI)
	api.Get("/categories", s.Categories)
	api.Get("/questions", s.Questions)

	// Probes and metrics
	s.App.Get("/healthz", s.Liveness)
	s.App.Get("/readyz", s.Readiness)
	if s.metrics != nil {
		s.App.Get("/metrics", adaptor.HTTPHandler(s.metrics.Handler()))
	}
}
