package middleware

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"

	"github.com/flashframe/flashframe-backend/internal/models"
)

// CsrfHeader carries the anti-forgery token the client read from its
// non-HttpOnly cookie.
const CsrfHeader = "X-XSRF-TOKEN"

// CsrfMiddleware requires the request header to match the csrf claim
// baked into the session token. Runs after AuthMiddleware on mutating
// routes.
func CsrfMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims := Claims(c)
		if claims == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse("invalid token"))
		}

		header := c.Get(CsrfHeader)
		if header == "" || subtle.ConstantTimeCompare([]byte(header), []byte(claims.Csrf)) != 1 {
			return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("invalid csrf token"))
		}
		return c.Next()
	}
}
