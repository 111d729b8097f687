package serverutils

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware converts errors bubbled up from controllers into a
// uniform JSON envelope. APIError and fiber.Error keep their status codes,
// anything else is a 500.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		status := fiber.StatusInternalServerError
		message := err.Error()

		var apiErr *APIError
		var fiberErr *fiber.Error
		switch {
		case errors.As(err, &apiErr):
			status = apiErr.Code
			message = apiErr.Message
		case errors.As(err, &fiberErr):
			status = fiberErr.Code
			message = fiberErr.Message
		}

		return ctx.Status(status).JSON(ErrorResponse(message))
	}
}
