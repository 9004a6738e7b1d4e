package server

import (
	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

// Liveness handles the /healthz endpoint for Kubernetes liveness probes.
func (s *Server) Liveness(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "ok",
	})
}

// Readiness handles the /readyz endpoint for Kubernetes readiness probes.
// Returns 200 OK once the phrase table is compiled and the question set loads.
func (s *Server) Readiness(c fiber.Ctx) error {
	if _, err := s.pipeline.Questions(); err != nil {
		s.logger.Warn("readiness check failed", zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "error",
			"error":  "question set unavailable",
		})
	}

	return c.JSON(fiber.Map{
		"status":     "ok",
		"categories": len(s.pipeline.Categories()),
		"qa_enabled": s.pipeline.Answerer().IsEnabled(),
	})
}
