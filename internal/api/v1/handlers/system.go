package handlers

import (
	"task-manager-api/internal/auth"
	"task-manager-api/internal/middleware"
	"task-manager-api/internal/models"
	ws "task-manager-api/internal/websocket"
	"task-manager-api/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/websocket/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Health is the liveness check.
func Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok", "service": "backend"})
}

func Welcome(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"message": "Welcome to the Task Manager API"})
}

// Metrics serves the Prometheus exposition format.
func Metrics() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}

// RequireUpgrade rejects plain HTTP requests on websocket routes.
func RequireUpgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	return c.Next()
}

// TaskEvents streams changes to the tasks the caller may read. It must sit
// behind Authenticate so the account and token are in Locals at upgrade time.
// The handler does not return before both pumps are done with the connection.
func (h *Handler) TaskEvents() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		user, ok := conn.Locals(middleware.UserLocal).(*models.User)
		if !ok || user == nil {
			_ = conn.Close()
			return
		}
		raw, _ := conn.Locals(middleware.TokenLocal).(string)
		claims, _ := conn.Locals(middleware.ClaimsLocal).(*auth.Claims)

		client := ws.NewClient(conn, user.ID, raw, claims)
		h.deps.Hub.Register(client)
		logger.SystemLogger.Info("websocket client connected", zap.Int64("user_id", user.ID))

		readDone := make(chan struct{})
		go func() {
			defer close(readDone)
			client.ReadPump()
			h.deps.Hub.Unregister(client)
		}()

		client.WritePump()
		<-readDone
		logger.SystemLogger.Info("websocket client disconnected", zap.Int64("user_id", user.ID))
	})
}
