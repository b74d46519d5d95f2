package api

import (
	"context"
	"log/slog"

	"github.com/IBM/sarama"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cache"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	jwtware "github.com/gofiber/jwt/v3"

	"github.com/illegalcall/codecraft/internal/completion"
	"github.com/illegalcall/codecraft/internal/config"
	"github.com/illegalcall/codecraft/internal/generation"
	"github.com/illegalcall/codecraft/internal/models"
	"github.com/illegalcall/codecraft/internal/projects"
	"github.com/illegalcall/codecraft/internal/session"
	"github.com/illegalcall/codecraft/internal/storage"
	"github.com/illegalcall/codecraft/pkg/database"
	"github.com/illegalcall/codecraft/pkg/metrics"
)

const banner = "CodeCraft AI Platform API is running ✅"

// IdentityProvider authenticates an account and returns its User.
type IdentityProvider interface {
	Authenticate(ctx context.Context, email, password string) (models.User, error)
}

type Server struct {
	app       *fiber.App
	cfg       *config.Config
	db        *database.Clients
	producer  sarama.SyncProducer
	completer completion.Completer
	generator *generation.Service
	identity  IdentityProvider
	projects  *projects.Repository
	sessions  *session.Manager
	storage   storage.Storage
	logger    *slog.Logger
}

func NewServer(
	cfg *config.Config,
	db *database.Clients,
	producer sarama.SyncProducer,
	completer completion.Completer,
	identity IdentityProvider,
	store storage.Storage,
	log *slog.Logger,
) *Server {
	if log == nil {
		log = slog.Default()
	}

	app := fiber.New(fiber.Config{
		AppName: "codecraft",
	})

	// Middleware
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Server.CORSOrigins,
	}))
	app.Use(limiter.New(limiter.Config{
		Max:        cfg.Server.MaxRequests,
		Expiration: cfg.Server.RequestTimeout,
	}))

	server := &Server{
		app:       app,
		cfg:       cfg,
		db:        db,
		producer:  producer,
		completer: completer,
		generator: generation.NewService(completer, log),
		identity:  identity,
		projects:  projects.NewRepository(db),
		sessions:  session.NewManager(cfg.JWT.Secret, cfg.JWT.Expiration),
		storage:   store,
		logger:    log,
	}

	// Routes
	server.setupRoutes()

	return server
}

func (s *Server) setupRoutes() {
	// Only public, user independent responses are cached.
	cached := cache.New(cache.Config{
		Expiration:   s.cfg.Server.CacheExpiration,
		CacheControl: true,
	})

	s.app.Get("/", cached, s.handleIndex)
	s.app.Post("/openai", s.handleCompletion)
	s.app.Post("/auth", s.handleAuthCheck)
	s.app.Get("/metrics", metrics.Handler())
	if s.storage != nil {
		s.app.Static("/sites", s.storage.Root())
	}

	api := s.app.Group("/api")

	// Public routes
	api.Get("/login", s.handleLoginRedirect)
	api.Post("/login", s.handleLogin)
	api.Get("/logout", s.handleLogout)
	api.Get("/templates", cached, s.handleTemplates)

	// Protected routes
	protected := api.Group("", jwtware.New(jwtware.Config{
		SigningKey:     []byte(s.cfg.JWT.Secret),
		TokenLookup:    "header:Authorization,cookie:" + session.CookieName,
		ErrorHandler:   s.handleUnauthorized,
		SuccessHandler: session.Attach,
	}))
	protected.Get("/auth/user", s.handleCurrentUser)
	protected.Get("/usage", s.handleUsage)
	protected.Get("/projects", s.handleListProjects)
	protected.Post("/projects", s.handleCreateProject)
	protected.Get("/projects/:id", s.handleGetProject)
	protected.Post("/projects/:id/deploy", s.handleDeployProject)
	protected.Post("/generate", s.handleGenerate)
}

// App exposes the fiber application, mainly for app.Test in tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Start() error {
	return s.app.Listen(s.cfg.Server.Port)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) handleIndex(c *fiber.Ctx) error {
	return c.SendString(banner)
}

func (s *Server) handleTemplates(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"templates": models.Templates})
}

func (s *Server) handleUnauthorized(c *fiber.Ctx, err error) error {
	s.logger.Info("Rejected unauthenticated request", "path", c.Path(), "error", err)
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": "Unauthorized",
	})
}

// badRequest renders validation failures as 400 {error}.
func badRequest(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": err.Error(),
	})
}
