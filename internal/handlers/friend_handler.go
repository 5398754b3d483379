package handlers

import (
	"errors"

	"github.com/ahmetcoskunkizilkaya/friendpool-backend/internal/directory"
	"github.com/ahmetcoskunkizilkaya/friendpool-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/friendpool-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/friendpool-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type FriendHandler struct {
	friendService *services.FriendService
}

func NewFriendHandler(friendService *services.FriendService) *FriendHandler {
	return &FriendHandler{friendService: friendService}
}

// List handles GET /friends - friends plus incoming and sent pending requests.
func (h *FriendHandler) List(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	return c.JSON(h.friendService.Overview(userID))
}

// SendRequest handles POST /friends - sends a request to the owner of a friend code.
func (h *FriendHandler) SendRequest(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	var req dto.SendFriendRequestRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if req.FriendCode == "" {
		return fail(c, fiber.StatusBadRequest, "Friend code is required")
	}

	resp, err := h.friendService.SendRequest(userID, req.FriendCode)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidFriendCode):
			return fail(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, directory.ErrFriendCodeNotFound):
			return fail(c, fiber.StatusNotFound, "No user with that friend code")
		case errors.Is(err, directory.ErrSelfRequest):
			return fail(c, fiber.StatusBadRequest, "You cannot add yourself as a friend")
		case errors.Is(err, directory.ErrAlreadyFriends):
			return fail(c, fiber.StatusBadRequest, "You are already friends")
		}
		return internalError(c, "send_friend_request", err)
	}
	return c.JSON(resp)
}

// Resolve handles PUT /friends - accepts or rejects an incoming request.
func (h *FriendHandler) Resolve(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	var req dto.ResolveFriendRequestRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if req.RequestID == "" || req.Action == "" {
		return fail(c, fiber.StatusBadRequest, "Request ID and valid action (accept/reject) are required")
	}

	msg, err := h.friendService.Resolve(userID, req.RequestID, req.Action)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidAction), errors.Is(err, services.ErrInvalidRequestID):
			return fail(c, fiber.StatusBadRequest, "Request ID and valid action (accept/reject) are required")
		case errors.Is(err, directory.ErrRequestNotFound):
			return fail(c, fiber.StatusNotFound, "Friend request not found")
		case errors.Is(err, directory.ErrRequestResolved):
			return fail(c, fiber.StatusConflict, "Friend request already resolved")
		}
		return internalError(c, "resolve_friend_request", err)
	}
	return c.JSON(dto.MessageResponse{Message: msg})
}
