package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/flashframe/flashframe-backend/internal/middleware"
	"github.com/flashframe/flashframe-backend/internal/models"
	"github.com/flashframe/flashframe-backend/internal/service"
	"github.com/flashframe/flashframe-backend/pkg/utils"
)

type EventHandler struct {
	eventService *service.EventService
	validator    *utils.Validator
}

func NewEventHandler(eventService *service.EventService, validator *utils.Validator) *EventHandler {
	return &EventHandler{
		eventService: eventService,
		validator:    validator,
	}
}

func (h *EventHandler) CreateEvent(c *fiber.Ctx) error {
	var req models.CreateEventRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("invalid request body"))
	}
	if err := h.validator.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse(err.Error()))
	}

	event, err := h.eventService.CreateEvent(c.Context(), middleware.Claims(c), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(models.SuccessResponse(event, "event created"))
}

func (h *EventHandler) ListEvents(c *fiber.Ctx) error {
	events, err := h.eventService.ListEvents(middleware.Claims(c).Organization)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.SuccessResponse(events, ""))
}

func (h *EventHandler) GetEvent(c *fiber.Ctx) error {
	event, err := h.eventService.GetEvent(middleware.Claims(c).Organization, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.SuccessResponse(event, ""))
}

func (h *EventHandler) UpdateEvent(c *fiber.Ctx) error {
	var req models.UpdateEventRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("invalid request body"))
	}
	if err := h.validator.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse(err.Error()))
	}

	event, err := h.eventService.UpdateEvent(middleware.Claims(c).Organization, c.Params("id"), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.SuccessResponse(event, "event updated"))
}

func (h *EventHandler) DeleteEvent(c *fiber.Ctx) error {
	if err := h.eventService.DeleteEvent(c.Context(), middleware.Claims(c).Organization, c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.SuccessResponse(nil, "event deleted"))
}

func (h *EventHandler) FinishUpload(c *fiber.Ctx) error {
	var req models.FinishUploadRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("invalid request body"))
	}
	if err := h.validator.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse(err.Error()))
	}

	if err := h.eventService.FinishUpload(middleware.Claims(c).Organization, req.EventID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.SuccessResponse(nil, "upload finished"))
}

func (h *EventHandler) AddImages(c *fiber.Ctx) error {
	var req models.AddImagesRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("invalid request body"))
	}
	if err := h.validator.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse(err.Error()))
	}

	event, err := h.eventService.AddImages(middleware.Claims(c).Organization, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.SuccessResponse(event, "photo budget increased"))
}

func (h *EventHandler) UpdateFavorites(c *fiber.Ctx) error {
	var req models.FavoritePhotosRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("invalid request body"))
	}
	if err := h.validator.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse(err.Error()))
	}

	event, err := h.eventService.UpdateFavorites(middleware.Claims(c).Organization, c.Params("id"), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.SuccessResponse(event, "favorites updated"))
}

func (h *EventHandler) EventQRCode(c *fiber.Ctx) error {
	size, err := strconv.Atoi(c.Query("size", "256"))
	if err != nil || size < 64 || size > 1024 {
		size = 256
	}

	png, err := h.eventService.EventQRCode(middleware.Claims(c).Organization, c.Params("id"), size)
	if err != nil {
		return respondError(c, err)
	}

	c.Set(fiber.HeaderContentType, "image/png")
	return c.Send(png)
}
