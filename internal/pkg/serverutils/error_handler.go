package serverutils

import (
	"errors"

	"lola-discovery-be/internal/pkg/logger"
	"lola-discovery-be/pkg/flow"

	"github.com/gofiber/fiber/v2"
)

// StatusFor maps an error returned by a handler to its HTTP status.
func StatusFor(err error) int {
	var fe *fiber.Error
	switch {
	case errors.Is(err, flow.ErrSessionNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, flow.ErrSessionAlreadyCompleted):
		return fiber.StatusConflict
	case errors.Is(err, flow.ErrInvalidQuestion),
		errors.Is(err, flow.ErrQuestionOutOfOrder),
		flow.IsValidation(err):
		return fiber.StatusBadRequest
	case errors.Is(err, flow.ErrRateLimited):
		return fiber.StatusTooManyRequests
	case errors.As(err, &fe):
		return fe.Code
	}
	return fiber.StatusInternalServerError
}

// ErrorHandlerMiddleware turns handler errors into the JSON envelope. Internal
// failures are logged and answered with a generic message.
func ErrorHandlerMiddleware(log logger.ILogger) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		code := StatusFor(err)
		message := err.Error()
		if code >= fiber.StatusInternalServerError {
			log.Error("HTTP", "Request failed", map[string]interface{}{
				"method": ctx.Method(),
				"path":   ctx.Path(),
				"error":  err.Error(),
			})
			message = "Internal server error"
		}

		return ctx.Status(code).JSON(ErrorResponse(code, message))
	}
}
