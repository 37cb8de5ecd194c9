package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/flashframe/flashframe-backend/internal/models"
)

// RequirePermission gates a route on a single permission. Root users pass
// unconditionally.
func RequirePermission(permission models.Permission) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims := Claims(c)
		if claims == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse("invalid token"))
		}
		if !claims.HasPermission(string(permission)) {
			return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("missing permission"))
		}
		return c.Next()
	}
}
