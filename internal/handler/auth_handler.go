package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/flashframe/flashframe-backend/internal/middleware"
	"github.com/flashframe/flashframe-backend/internal/models"
	"github.com/flashframe/flashframe-backend/internal/service"
	"github.com/flashframe/flashframe-backend/pkg/jwt"
	"github.com/flashframe/flashframe-backend/pkg/utils"
)

type AuthHandler struct {
	authService *service.AuthService
	validator   *utils.Validator
}

func NewAuthHandler(authService *service.AuthService, validator *utils.Validator) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validator:   validator,
	}
}

func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req models.SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("invalid request body"))
	}
	if err := h.validator.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse(err.Error()))
	}

	user, err := h.authService.Signup(c.Context(), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(models.SuccessResponse(user, "account created"))
}

func (h *AuthHandler) Signin(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("invalid request body"))
	}
	if err := h.validator.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse(err.Error()))
	}

	auth, err := h.authService.Signin(c.Context(), &req)
	if err != nil {
		return respondError(c, err)
	}

	// Readable by the frontend so it can echo the token back in the
	// X-XSRF-TOKEN header.
	c.Cookie(&fiber.Cookie{
		Name:     "XSRF-TOKEN",
		Value:    auth.CsrfToken,
		Expires:  time.Now().Add(jwt.TokenExpiryLogin),
		Secure:   true,
		HTTPOnly: false,
		SameSite: "Strict",
	})

	return c.JSON(models.SuccessResponse(auth, "signed in"))
}

func (h *AuthHandler) Signout(c *fiber.Ctx) error {
	claims := middleware.Claims(c)
	if err := h.authService.Signout(c.Context(), claims.Organization, claims.Username); err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.SuccessResponse(nil, "signed out"))
}

func (h *AuthHandler) IsLoggedIn(c *fiber.Ctx) error {
	claims := middleware.Claims(c)
	return c.JSON(models.SuccessResponse(fiber.Map{
		"organization": claims.Organization,
		"username":     claims.Username,
		"root":         claims.Root,
		"permissions":  claims.Permissions,
	}, ""))
}

func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req models.ForgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("invalid request body"))
	}
	if err := h.validator.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse(err.Error()))
	}

	if err := h.authService.ForgotPassword(c.Context(), req.Username); err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.SuccessResponse(nil, "password reset email sent"))
}

func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req models.ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("invalid request body"))
	}
	if err := h.validator.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse(err.Error()))
	}

	if err := h.authService.ResetPassword(c.Context(), &req); err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.SuccessResponse(nil, "password reset successful"))
}
