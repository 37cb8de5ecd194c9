package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/flashframe/flashframe-backend/internal/models"
	"github.com/flashframe/flashframe-backend/internal/service"
)

// respondError maps a service failure onto the response envelope. Typed
// service errors carry their own status, reason and action; anything else
// is an internal error.
func respondError(c *fiber.Ctx, err error) error {
	var svcErr *service.Error
	if errors.As(err, &svcErr) {
		return c.Status(svcErr.Status).JSON(models.Response{
			Success: false,
			Error:   true,
			Message: svcErr.Message,
			Reason:  svcErr.Reason,
			Action:  svcErr.Action,
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse("internal server error"))
}
