package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"floryn/internal/logger"
	"floryn/internal/metrics"
)

// RequestID propagates or assigns X-Request-ID and stores it in the request
// context for logging.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqID := c.Get(fiber.HeaderXRequestID)
		if reqID == "" {
			reqID = uuid.New().String()
		}

		c.SetUserContext(logger.WithRequestID(c.UserContext(), reqID))
		c.Set(fiber.HeaderXRequestID, reqID)
		return c.Next()
	}
}

// AccessLog writes one structured line per request and records HTTP metrics.
// Errors returned down the chain are rendered first so the logged status is
// the one the client receives.
func AccessLog() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		done := metrics.RequestStarted()
		defer done()

		if err := c.Next(); err != nil {
			if handlerErr := c.App().ErrorHandler(c, err); handlerErr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		duration := time.Since(start)
		metrics.RecordHTTPRequest(c.Method(), c.Route().Path, status, duration)

		log := logger.FromCtx(c.UserContext())
		fields := []zap.Field{
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.String("ip", c.IP()),
			zap.Duration("duration_ms", duration),
		}
		if status >= fiber.StatusInternalServerError {
			log.Error("request failed", fields...)
		} else {
			log.Info("incoming request", fields...)
		}
		return nil
	}
}
