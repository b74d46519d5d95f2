package api

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/illegalcall/codecraft/internal/models"
	"github.com/illegalcall/codecraft/internal/projects"
	"github.com/illegalcall/codecraft/internal/session"
	"github.com/illegalcall/codecraft/pkg/kafka"
	"github.com/illegalcall/codecraft/pkg/metrics"
)

// marshalJSON is swapped in tests.
var marshalJSON = json.Marshal

func (s *Server) handleListProjects(c *fiber.Ctx) error {
	user, err := session.UserFromCtx(c)
	if err != nil {
		return s.handleUnauthorized(c, err)
	}

	list, err := s.projects.List(c.UserContext(), user.ID)
	if err != nil {
		s.logger.Error("Error fetching projects", "user_id", user.ID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch projects"})
	}

	return c.JSON(list)
}

func (s *Server) handleCreateProject(c *fiber.Ctx) error {
	user, err := session.UserFromCtx(c)
	if err != nil {
		return s.handleUnauthorized(c, err)
	}

	var req models.CreateProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := req.Validate(); err != nil {
		return badRequest(c, err)
	}

	project, err := s.projects.Create(c.UserContext(), user.ID, req)
	if err != nil {
		s.logger.Error("Failed to create project", "user_id", user.ID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create project",
		})
	}

	s.logger.Info("Project created", "project_id", project.ID, "user_id", user.ID)
	return c.Status(fiber.StatusCreated).JSON(project)
}

func (s *Server) handleGetProject(c *fiber.Ctx) error {
	user, err := session.UserFromCtx(c)
	if err != nil {
		return s.handleUnauthorized(c, err)
	}

	project, status, err := s.lookupProject(c, user.ID)
	if err != nil {
		return c.Status(status).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(project)
}

// handleDeployProject marks the project as building, parks the HTML in Redis
// and queues a deploy job for the worker.
func (s *Server) handleDeployProject(c *fiber.Ctx) error {
	user, err := session.UserFromCtx(c)
	if err != nil {
		return s.handleUnauthorized(c, err)
	}

	project, status, err := s.lookupProject(c, user.ID)
	if err != nil {
		return c.Status(status).JSON(fiber.Map{"error": err.Error()})
	}

	var req models.DeployRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := req.Validate(); err != nil {
		return badRequest(c, err)
	}

	payload, err := marshalJSON(models.DeployPayload{HTML: req.HTML})
	if err != nil {
		s.logger.Error("Failed to encode deploy payload", "project_id", project.ID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to queue deployment",
		})
	}
	if err := s.projects.SavePayload(c.UserContext(), project.ID, payload, s.cfg.Storage.TTL); err != nil {
		s.logger.Error("Failed to store deploy payload", "project_id", project.ID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to queue deployment",
		})
	}

	if err := s.projects.SetStatus(c.UserContext(), project.ID, models.StatusBuilding, nil); err != nil {
		s.logger.Error("Failed to mark project building", "project_id", project.ID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to set project status",
		})
	}
	project.Status = models.StatusBuilding

	job, err := marshalJSON(models.DeployJob{
		ProjectID:   project.ID,
		OwnerID:     user.ID,
		RequestedAt: time.Now().UTC(),
	})
	if err != nil {
		s.logger.Error("Failed to encode deploy job", "project_id", project.ID, "error", err)
		if resetErr := s.projects.SetStatus(c.UserContext(), project.ID, models.StatusDraft, nil); resetErr != nil {
			s.logger.Error("Failed to reset project status", "project_id", project.ID, "error", resetErr)
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to queue deployment",
		})
	}
	if _, _, err := s.producer.SendMessage(kafka.DeployMessage(s.cfg.Kafka.Topic, project.ID.String(), job)); err != nil {
		s.logger.Error("Failed to queue deploy job", "project_id", project.ID, "error", err)
		if resetErr := s.projects.SetStatus(c.UserContext(), project.ID, models.StatusDraft, nil); resetErr != nil {
			s.logger.Error("Failed to reset project status", "project_id", project.ID, "error", resetErr)
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to queue deployment",
		})
	}

	metrics.DeploysQueued.Inc()
	s.logger.Info("Deploy job queued", "project_id", project.ID, "user_id", user.ID)
	return c.Status(fiber.StatusAccepted).JSON(project)
}

// lookupProject resolves :id for ownerID and returns the HTTP status to use on failure.
func (s *Server) lookupProject(c *fiber.Ctx, ownerID string) (*models.Project, int, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return nil, fiber.StatusBadRequest, errors.New("Invalid project ID")
	}

	project, err := s.projects.Get(c.UserContext(), ownerID, id)
	if err != nil {
		if errors.Is(err, projects.ErrNotFound) {
			return nil, fiber.StatusNotFound, errors.New("Project not found")
		}
		s.logger.Error("Failed to fetch project", "project_id", id, "error", err)
		return nil, fiber.StatusInternalServerError, errors.New("Failed to fetch project")
	}
	return project, 0, nil
}
