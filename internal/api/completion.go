package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/illegalcall/codecraft/internal/models"
	"github.com/illegalcall/codecraft/pkg/metrics"
)

// handleCompletion forwards a prompt to the completion provider and returns its reply.
func (s *Server) handleCompletion(c *fiber.Ctx) error {
	var req models.CompletionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := req.Validate(); err != nil {
		metrics.Completions.WithLabelValues(metrics.ResultInvalid).Inc()
		return badRequest(c, err)
	}

	reply, err := s.completer.CompleteChat(c.UserContext(), req.Prompt)
	if err != nil {
		s.logger.Error("Completion request failed", "error", err)
		metrics.Completions.WithLabelValues(metrics.ResultError).Inc()
		// The upstream message is passed through unchanged.
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	metrics.Completions.WithLabelValues(metrics.ResultSuccess).Inc()
	return c.JSON(models.CompletionResponse{Reply: reply})
}

// handleAuthCheck only checks that a username was sent. It issues no session.
func (s *Server) handleAuthCheck(c *fiber.Ctx) error {
	var req models.AuthCheckRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := req.Validate(); err != nil {
		return badRequest(c, err)
	}

	return c.JSON(models.AuthCheckResponse{
		Success: true,
		User:    models.AuthCheckUser{Username: req.Username},
	})
}
