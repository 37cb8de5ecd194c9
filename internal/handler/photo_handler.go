package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/flashframe/flashframe-backend/internal/middleware"
	"github.com/flashframe/flashframe-backend/internal/models"
	"github.com/flashframe/flashframe-backend/internal/service"
	"github.com/flashframe/flashframe-backend/pkg/utils"
)

type PhotoHandler struct {
	photoService *service.PhotoService
	validator    *utils.Validator
}

func NewPhotoHandler(photoService *service.PhotoService, validator *utils.Validator) *PhotoHandler {
	return &PhotoHandler{
		photoService: photoService,
		validator:    validator,
	}
}

func (h *PhotoHandler) PresignUploads(c *fiber.Ctx) error {
	var req models.PresignRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("invalid request body"))
	}
	if err := h.validator.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse(err.Error()))
	}

	resp, err := h.photoService.PresignUploads(c.Context(), middleware.Claims(c).Organization, c.Params("id"), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// PublicGallery is unauthenticated: the event is addressed by slug and
// must be public.
func (h *PhotoHandler) PublicGallery(c *fiber.Ctx) error {
	page, err := h.photoService.PublicGallery(c.Context(), c.Params("slug"), c.Query("lastKey"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.SuccessResponse(page, ""))
}

func (h *PhotoHandler) DeletePhotos(c *fiber.Ctx) error {
	var req models.DeletePhotosRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("invalid request body"))
	}
	if err := h.validator.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse(err.Error()))
	}

	if err := h.photoService.DeletePhotos(c.Context(), middleware.Claims(c).Organization, &req); err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.SuccessResponse(nil, "photos deleted"))
}
