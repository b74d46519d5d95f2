package api

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/illegalcall/codecraft/internal/models"
	"github.com/illegalcall/codecraft/internal/pkg/supabase"
	"github.com/illegalcall/codecraft/internal/session"
)

func (s *Server) handleLoginRedirect(c *fiber.Ctx) error {
	return c.Redirect(s.cfg.Identity.LoginURL, fiber.StatusFound)
}

func (s *Server) handleLogin(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := req.Validate(); err != nil {
		return badRequest(c, err)
	}

	s.logger.Info("Authentication attempt", "email", req.Email)

	if s.identity == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Authentication service is not configured",
		})
	}

	user, err := s.identity.Authenticate(c.UserContext(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, supabase.ErrInvalidCredentials) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid credentials",
			})
		}

		s.logger.Error("Authentication error", "error", err)

		errorMessage := "Authentication service error"
		if !s.cfg.Server.IsProduction() {
			errorMessage = fmt.Sprintf("Authentication error: %v", err)
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": errorMessage,
		})
	}

	token, expiresAt, err := s.sessions.Issue(user)
	if err != nil {
		s.logger.Error("Failed to issue session", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to generate token",
		})
	}

	c.Cookie(&fiber.Cookie{
		Name:     session.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HTTPOnly: true,
		Secure:   s.cfg.Server.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	s.logger.Info("User successfully authenticated", "user_id", user.ID, "email", user.Email)

	return c.JSON(models.LoginResponse{
		Token:     token,
		TokenType: "Bearer",
	})
}

func (s *Server) handleLogout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     session.CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.Redirect("/", fiber.StatusFound)
}

func (s *Server) handleCurrentUser(c *fiber.Ctx) error {
	user, err := session.UserFromCtx(c)
	if err != nil {
		return s.handleUnauthorized(c, err)
	}
	return c.JSON(user)
}

// handleUsage reports the generation quota. The counter is the larger of the
// identity provider's figure and the local meter.
func (s *Server) handleUsage(c *fiber.Ctx) error {
	user, err := session.UserFromCtx(c)
	if err != nil {
		return s.handleUnauthorized(c, err)
	}

	used := user.GenerationsUsed
	if metered, err := s.db.Redis.Get(c.UserContext(), usageKey(user.ID)).Int(); err == nil && metered > used {
		used = metered
	}
	user.GenerationsUsed = used

	return c.JSON(models.Usage{
		Plan:      user.PlanName(),
		Used:      used,
		Limit:     user.Limit(),
		Remaining: user.Remaining(),
	})
}

func usageKey(userID string) string {
	return fmt.Sprintf("usage:%s:generations", userID)
}
