package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"floryn/internal/apperror"
	"floryn/internal/logger"
)

// statusByKind is the only place error kinds meet HTTP status codes.
var statusByKind = map[apperror.Kind]int{
	apperror.KindValidation:         fiber.StatusBadRequest,
	apperror.KindDuplicateEmail:     fiber.StatusBadRequest,
	apperror.KindWeakPassword:       fiber.StatusBadRequest,
	apperror.KindInvalidEmail:       fiber.StatusBadRequest,
	apperror.KindIncompleteOrder:    fiber.StatusBadRequest,
	apperror.KindInvalidStatus:      fiber.StatusBadRequest,
	apperror.KindInvalidCredentials: fiber.StatusUnauthorized,
	apperror.KindUnauthenticated:    fiber.StatusUnauthorized,
	apperror.KindTokenInvalid:       fiber.StatusUnauthorized,
	apperror.KindTokenExpired:       fiber.StatusUnauthorized,
	apperror.KindForbidden:          fiber.StatusForbidden,
	apperror.KindNotFound:           fiber.StatusNotFound,
	apperror.KindRateLimited:        fiber.StatusTooManyRequests,
	apperror.KindPersistence:        fiber.StatusInternalServerError,
}

// StatusFor returns the HTTP status of err. Unclassified errors are 500.
func StatusFor(err error) int {
	if status, ok := statusByKind[apperror.KindOf(err)]; ok {
		return status
	}
	return fiber.StatusInternalServerError
}

// respondError writes err as a JSON body. Client errors carry their message,
// server errors a generic message and the classified cause, never internals.
func respondError(c *fiber.Ctx, err error) error {
	status := StatusFor(err)

	if status >= fiber.StatusInternalServerError {
		logger.FromCtx(c.UserContext()).Error("request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		return c.Status(status).JSON(fiber.Map{
			"message": "Internal server error",
			"error":   apperror.MessageOf(err),
		})
	}

	body := fiber.Map{"message": apperror.MessageOf(err)}
	var fields fieldErrors
	if errors.As(err, &fields) {
		body["errors"] = map[string]string(fields)
	}
	return c.Status(status).JSON(body)
}

// ErrorHandler renders errors returned from handlers and middleware.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(fiber.Map{"message": fiberErr.Message})
	}
	return respondError(c, err)
}
