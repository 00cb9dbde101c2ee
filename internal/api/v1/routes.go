package v1

import (
	"task-manager-api/internal/api/v1/handlers"
	"task-manager-api/internal/config"
	"task-manager-api/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(app *fiber.App, deps *config.Dependencies) {
	h := handlers.New(deps)

	app.Get("/", handlers.Welcome)
	app.Get("/health", handlers.Health)
	app.Get("/metrics", handlers.Metrics())

	api := app.Group("/api/v1")
	authenticated := middleware.Authenticate(deps.Resolver)
	active := middleware.RequireActive()
	admin := middleware.RequireAdmin()

	// Auth
	authRoutes := api.Group("/auth")
	authRoutes.Post("/register", h.Register)
	authRoutes.Post("/login", h.Login)
	authRoutes.Post("/logout", authenticated, active, h.Logout)

	// User
	userRoutes := api.Group("/users", authenticated, active)
	userRoutes.Get("/", admin, h.GetAllUsers)
	userRoutes.Get("/me", h.Me)
	userRoutes.Patch("/me", h.UpdateMe)
	userRoutes.Get("/:id", admin, h.GetUser)
	userRoutes.Patch("/:id", admin, h.UpdateUser)
	userRoutes.Delete("/:id", h.DeleteUser)

	// Task
	taskRoutes := api.Group("/tasks", authenticated, active)
	taskRoutes.Post("/", h.CreateTask)
	taskRoutes.Get("/", h.ListTasks)
	taskRoutes.Get("/:id", h.GetTask)
	taskRoutes.Put("/:id", h.UpdateTask)
	taskRoutes.Patch("/:id", h.UpdateTask)
	taskRoutes.Delete("/:id", h.DeleteTask)

	// Live task events
	api.Get("/ws/tasks", handlers.RequireUpgrade, authenticated, active, h.TaskEvents())
}
