package routes

import (
	"context"
	"strings"
	"time"

	"aigc.wiki/configs"
	"aigc.wiki/configs/configsdatabase"
	"aigc.wiki/middlewares"
	"aigc.wiki/pkg/apperrors"
	"aigc.wiki/pkg/token"
	"aigc.wiki/repositories"
	"aigc.wiki/services"
	"aigc.wiki/views"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	recoverMiddleware "github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"
)

// BodyLimit is above the upload limit so oversized images reach the upload
// validation and get a JSON 400 instead of a bare 413.
const BodyLimit = 16 << 20

// Deps are the shared collaborators the routes are built from.
type Deps struct {
	Config configs.Config
	DB     *gorm.DB
	Tokens *token.Service
	// AccessLog enables the request logger middleware.
	AccessLog bool
}

// app holds the wired services for the route registrars.
type app struct {
	deps    Deps
	gate    *middlewares.AuthGate
	auth    services.IAuthService
	cards   services.ICardService
	uploads services.IUploadService
}

// New builds the fiber application with every route registered.
func New(deps Deps) *fiber.App {
	f := fiber.New(fiber.Config{
		AppName:      "aigc.wiki",
		Views:        views.NewEngine(),
		ErrorHandler: apperrors.ErrorHandler,
		BodyLimit:    BodyLimit,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	})
	SetupRoutes(f, deps)
	return f
}

// SetupRoutes sets up the global middleware and all route groups.
func SetupRoutes(f *fiber.App, deps Deps) {
	a := &app{
		deps:    deps,
		gate:    middlewares.NewAuthGate(deps.Tokens),
		auth:    services.NewAuthService(repositories.NewAdminRepository(deps.DB), deps.Tokens),
		cards:   services.NewCardService(repositories.NewCardRepository(deps.DB)),
		uploads: services.NewUploadService(deps.Config.UploadDir, deps.Config.UploadURLPrefix),
	}

	f.Use(recoverMiddleware.New())
	if deps.AccessLog {
		f.Use(logger.New())
	}

	f.Get("/healthz", a.health)

	registerAuthRoutes(f, a)
	registerAPIRoutes(f, a)
	registerPanelRoutes(f, a)
	registerPublicRoutes(f, a)

	f.Use(notFoundHandler)
}

func (a *app) health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()
	if err := configsdatabase.Ping(ctx, a.deps.DB); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

func notFoundHandler(c *fiber.Ctx) error {
	if c.Accepts(fiber.MIMEApplicationJSON, fiber.MIMETextHTML) == fiber.MIMETextHTML && !isAPI(c) {
		return c.Status(fiber.StatusNotFound).Render("errors/404", fiber.Map{"Title": "Not found"}, "layouts/main")
	}
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "resource not found"})
}

func isAPI(c *fiber.Ctx) bool {
	p := c.Path()
	return p == "/api" || strings.HasPrefix(p, "/api/")
}
