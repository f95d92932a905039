package auth

import (
	"strings"

	"fintrack-backend/internal/apperr"
	"fintrack-backend/internal/config"

	"github.com/gofiber/fiber/v2"
)

const CtxUserIDKey = "user_id"

func JWTMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return fiber.NewError(fiber.StatusUnauthorized, "Authorization header must be 'Bearer <token>'")
		}

		claims, err := ParseToken(cfg.JWTSecret, strings.TrimSpace(parts[1]))
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid or expired token")
		}

		c.Locals(CtxUserIDKey, claims.UserID)
		return c.Next()
	}
}

// UserID returns the authenticated user id set by JWTMiddleware.
func UserID(c *fiber.Ctx) (uint, error) {
	id, ok := c.Locals(CtxUserIDKey).(uint)
	if !ok || id == 0 {
		return 0, apperr.Unauthorized("Unauthorized")
	}
	return id, nil
}
