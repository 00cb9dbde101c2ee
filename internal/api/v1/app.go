package v1

import (
	"time"

	"task-manager-api/configs"
	"task-manager-api/internal/api/v1/handlers"
	"task-manager-api/internal/config"
	"task-manager-api/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// NewApp builds the fiber app with the global middleware and every route.
func NewApp(cfg configs.Config, deps *config.Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "task-manager-api",
		ErrorHandler: handlers.ErrorHandler,
	})

	app.Use(middleware.ErrorHandler())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	if cfg.RateLimitPerMinute > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        cfg.RateLimitPerMinute,
			Expiration: 1 * time.Minute,
			LimitReached: func(c *fiber.Ctx) error {
				return fiber.NewError(fiber.StatusTooManyRequests, "Too many requests")
			},
		}))
	}

	RegisterRoutes(app, deps)
	return app
}
