package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/illegalcall/codecraft/internal/models"
	"github.com/illegalcall/codecraft/internal/session"
	"github.com/illegalcall/codecraft/pkg/metrics"
)

func (s *Server) handleGenerate(c *fiber.Ctx) error {
	user, err := session.UserFromCtx(c)
	if err != nil {
		return s.handleUnauthorized(c, err)
	}

	var req models.GenerateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	result, err := s.generator.Generate(c.UserContext(), req)
	if err != nil {
		var validationErr *models.ValidationError
		if errors.As(err, &validationErr) {
			metrics.Generations.WithLabelValues(metrics.ResultInvalid).Inc()
			return badRequest(c, err)
		}
		metrics.Generations.WithLabelValues(metrics.ResultError).Inc()
		s.logger.Error("Code generation failed", "user_id", user.ID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	metrics.Generations.WithLabelValues(metrics.ResultSuccess).Inc()
	if err := s.db.Redis.Incr(c.UserContext(), usageKey(user.ID)).Err(); err != nil {
		s.logger.Error("Failed to record generation usage", "user_id", user.ID, "error", err)
	}

	return c.JSON(result)
}
