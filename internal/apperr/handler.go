package apperr

import (
	"errors"

	"fintrack-backend/internal/logger"
	"fintrack-backend/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// Handler is the fiber ErrorHandler. Unknown errors are logged and answered
// with a generic 500 so internals never reach the client.
func Handler(log zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var verr validation.Errors
		if errors.As(err, &verr) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":   "Validation failed",
				"message": verr.Error(),
				"fields":  verr,
			})
		}

		if e, ok := As(err); ok {
			if e.Status >= fiber.StatusInternalServerError {
				reqLog(c, log).Error().Err(err).Str("path", c.Path()).Msg(e.Title)
			}
			return c.Status(e.Status).JSON(fiber.Map{
				"error":   e.Title,
				"message": e.Message,
			})
		}

		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{
				"error":   fe.Message,
				"message": fe.Message,
			})
		}

		reqLog(c, log).Error().Err(err).Str("path", c.Path()).Msg("unexpected error")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Internal server error",
			"message": "Something went wrong",
		})
	}
}

func reqLog(c *fiber.Ctx, fallback zerolog.Logger) *zerolog.Logger {
	if l := logger.FromContext(c.UserContext()); l.GetLevel() != zerolog.Disabled {
		return &l
	}
	return &fallback
}
