package handlers

import (
	"errors"

	"github.com/ahmetcoskunkizilkaya/friendpool-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/friendpool-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/friendpool-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type ProfileHandler struct {
	profileService *services.ProfileService
}

func NewProfileHandler(profileService *services.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

func (h *ProfileHandler) Get(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	resp, err := h.profileService.Get(userID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return fail(c, fiber.StatusNotFound, "User not found")
		}
		return internalError(c, "get_profile", err)
	}
	return c.JSON(resp)
}

func (h *ProfileHandler) Update(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	resp, err := h.profileService.Update(userID, &req)
	if err != nil {
		var rejected *services.ContentRejectedError
		switch {
		case errors.As(err, &rejected):
			return fail(c, fiber.StatusBadRequest, rejected.Message)
		case errors.Is(err, services.ErrInvalidDisplayName), errors.Is(err, services.ErrInvalidProfileImage):
			return fail(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, services.ErrUserNotFound):
			return fail(c, fiber.StatusNotFound, "User not found")
		}
		return internalError(c, "update_profile", err)
	}
	return c.JSON(resp)
}
