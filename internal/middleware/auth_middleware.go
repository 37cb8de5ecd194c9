package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/flashframe/flashframe-backend/internal/models"
	"github.com/flashframe/flashframe-backend/pkg/jwt"
	"github.com/flashframe/flashframe-backend/pkg/session"
)

// ClaimsKey is where the auth middleware stores the validated claims for
// downstream handlers.
const ClaimsKey = "claims"

// AuthMiddleware validates the bearer token and checks its session
// version against the live one. A version mismatch means the user signed
// out everywhere (or was expired) after the token was issued.
func AuthMiddleware(sessions *session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse("authorization header is required"))
		}
		if !strings.HasPrefix(authHeader, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse("invalid authorization header format"))
		}

		claims, err := jwt.ValidateToken(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse("invalid token"))
		}

		version, err := sessions.Version(c.Context(), claims.Organization, claims.Username)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse("could not verify session"))
		}
		if version != claims.SessionVersion {
			return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse("session is no longer valid"))
		}

		c.Locals(ClaimsKey, claims)
		return c.Next()
	}
}

// Claims returns the validated claims placed by AuthMiddleware.
func Claims(c *fiber.Ctx) *jwt.AuthClaims {
	claims, _ := c.Locals(ClaimsKey).(*jwt.AuthClaims)
	return claims
}
