package handler

import (
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/flashframe/flashframe-backend/internal/middleware"
	"github.com/flashframe/flashframe-backend/internal/models"
	"github.com/flashframe/flashframe-backend/internal/service"
)

type OrganizationHandler struct {
	orgService *service.OrganizationService
}

func NewOrganizationHandler(orgService *service.OrganizationService) *OrganizationHandler {
	return &OrganizationHandler{orgService: orgService}
}

func (h *OrganizationHandler) GetOrganization(c *fiber.Ctx) error {
	org, err := h.orgService.Get(middleware.Claims(c).Organization)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.SuccessResponse(org, ""))
}

func (h *OrganizationHandler) UpdateOrganization(c *fiber.Ctx) error {
	var req models.UpdateOrganizationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("invalid request body"))
	}

	org, err := h.orgService.Update(middleware.Claims(c).Organization, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.SuccessResponse(org, "organization updated"))
}

func (h *OrganizationHandler) UploadAsset(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("file is required"))
	}

	src, err := file.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("could not read file"))
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("could not read file"))
	}

	kind := c.Params("kind")
	if err := h.orgService.UploadAsset(c.Context(), middleware.Claims(c).Organization, kind, data); err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.SuccessResponse(nil, "asset uploaded"))
}
