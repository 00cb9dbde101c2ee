package middleware

import (
	"fmt"
	"runtime/debug"
	"strconv"
	"time"

	"task-manager-api/pkg/logger"
	"task-manager-api/pkg/metrics"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ErrorHandler recovers panics, resolves handler errors through the app's
// error handler and then logs and counts the finished request.
func ErrorHandler() fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		start := time.Now()

		defer func() {
			if r := recover(); r != nil {
				logger.ErrorLogger.Error(fmt.Sprintf("Recovered from panic: %v", r),
					zap.String("stack", string(debug.Stack())),
					zap.String("url", c.OriginalURL()),
				)
				err = c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"message": "Internal server error",
					"success": false,
					"status":  fiber.StatusInternalServerError,
				})
			}
			observe(c, start)
		}()

		if chainErr := c.Next(); chainErr != nil {
			if handleErr := c.App().ErrorHandler(c, chainErr); handleErr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}
		return nil
	}
}

func observe(c *fiber.Ctx, start time.Time) {
	elapsed := time.Since(start)
	status := c.Response().StatusCode()
	route := c.Route().Path

	logger.RequestLogger.Info("Request completed",
		zap.String("method", c.Method()),
		zap.String("url", c.OriginalURL()),
		zap.Int("status", status),
		zap.Duration("latency", elapsed),
		zap.String("ip", c.IP()),
	)
	metrics.HTTPRequests.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
	metrics.HTTPDuration.WithLabelValues(c.Method(), route).Observe(elapsed.Seconds())
}
