package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"task-service/internal/service"
)

const ServiceName = "task-service"

type Services struct {
	Auth    service.AuthService
	Users   service.UserService
	Tasks   service.TaskService
	Avatars service.AvatarService
}

func SetupRoutes(app *fiber.App, services Services) {
	userHandler := NewUserHandler(services.Auth, services.Users)
	taskHandler := NewTaskHandler(services.Tasks)
	avatarHandler := NewAvatarHandler(services.Avatars)
	requireAuth := AuthMiddleware(services.Auth)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": ServiceName})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	users := app.Group("/users")
	users.Post("/", userHandler.Signup)
	users.Post("/login", userHandler.Login)
	users.Post("/logout", requireAuth, userHandler.Logout)
	users.Post("/logoutAll", requireAuth, userHandler.LogoutAll)

	users.Get("/me", requireAuth, userHandler.Me)
	users.Patch("/me", requireAuth, userHandler.UpdateMe)
	users.Delete("/me", requireAuth, userHandler.DeleteMe)
	users.Get("/me/sessions", requireAuth, userHandler.Sessions)
	users.Post("/me/avatar", requireAuth, avatarHandler.Upload)
	users.Delete("/me/avatar", requireAuth, avatarHandler.Delete)

	users.Get("/:id", userHandler.GetUser)
	users.Get("/:id/avatar", avatarHandler.Get)

	tasks := app.Group("/tasks", requireAuth)
	tasks.Post("/", taskHandler.Create)
	tasks.Get("/", taskHandler.List)
	tasks.Get("/:id", taskHandler.Get)
	tasks.Patch("/:id", taskHandler.Update)
	tasks.Delete("/:id", taskHandler.Delete)
}

// NewApp builds the fiber application with the shared error handler and the
// metrics middleware. Callers add tracing and static assets.
func NewApp(services Services, middleware ...fiber.Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      ServiceName,
		ErrorHandler: ErrorHandler,
	})

	app.Use(PrometheusMiddleware())
	for _, m := range middleware {
		app.Use(m)
	}

	SetupRoutes(app, services)

	return app
}
