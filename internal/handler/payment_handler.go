package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/flashframe/flashframe-backend/internal/middleware"
	"github.com/flashframe/flashframe-backend/internal/models"
	"github.com/flashframe/flashframe-backend/internal/service"
)

type PaymentHandler struct {
	paymentService *service.PaymentService
}

func NewPaymentHandler(paymentService *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

func (h *PaymentHandler) ListPackages(c *fiber.Ctx) error {
	packages, err := h.paymentService.ListPackages()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.SuccessResponse(packages, ""))
}

func (h *PaymentHandler) Checkout(c *fiber.Ctx) error {
	packageID, err := strconv.ParseUint(c.Params("packageID"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("invalid package id"))
	}

	claims := middleware.Claims(c)
	email := c.Query("email")

	session, err := h.paymentService.Checkout(claims.Organization, email, uint(packageID))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.SuccessResponse(session, "checkout session created"))
}

// StripeWebhook is called by Stripe, not by clients; it authenticates via
// the signature header instead of a session token.
func (h *PaymentHandler) StripeWebhook(c *fiber.Ctx) error {
	signature := c.Get("Stripe-Signature")
	if err := h.paymentService.HandleWebhook(c.Body(), signature); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusOK)
}
