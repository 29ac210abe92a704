/**
 * @description
 * Cross-cutting HTTP middleware.
 * Request IDs and the application-wide error handler.
 *
 * @dependencies
 * - github.com/gofiber/fiber/v2: HTTP Context
 * - github.com/google/uuid: request id generation
 *
 * @notes
 * - Handlers write their own 404/422 bodies; this handler only sees errors they
 *   return (unknown routes, recovered panics, framework errors).
 */

package middleware

import (
	"errors"

	"github.com/foodprices-project/backend/internal/logger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/google/uuid"
)

// RequestIDHeader carries the per-request id in both directions
const RequestIDHeader = "X-Request-ID"

// RequestID tags each request with an id, reusing a caller-supplied one
func RequestID() fiber.Handler {
	return requestid.New(requestid.Config{
		Header:    RequestIDHeader,
		Generator: uuid.NewString,
	})
}

// ErrorHandler renders errors that escape handlers.
// fiber.Error keeps its status; anything else is an internal fault.
func ErrorHandler(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		status = fe.Code
	}

	if status >= fiber.StatusInternalServerError {
		logger.WithFields(logger.Fields{
			"request_id": c.Locals(requestid.ConfigDefault.ContextKey),
			"method":     c.Method(),
			"path":       c.Path(),
		}).Errorf("unhandled error: %v", err)
		return c.Status(status).JSON(fiber.Map{
			"detail": fiber.Map{
				"error_code": status,
				"message":    "Internal Server Error",
			},
		})
	}

	return c.Status(status).JSON(fiber.Map{"detail": utils.StatusMessage(status)})
}
