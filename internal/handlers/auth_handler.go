package handlers

import (
	"errors"

	"github.com/ahmetcoskunkizilkaya/friendpool-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/friendpool-backend/internal/identity"
	"github.com/ahmetcoskunkizilkaya/friendpool-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/friendpool-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) LoginInfo(c *fiber.Ctx) error {
	return c.JSON(dto.LoginInfoResponse{
		Message: "Friend pool login API",
		Endpoints: map[string]string{
			"POST": "Verify an identity proof and receive a session key",
		},
	})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	resp, err := h.authService.Login(c.UserContext(), &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMissingFields), errors.Is(err, identity.ErrMissingProof):
			return fail(c, fiber.StatusBadRequest, "Missing required fields")
		case errors.Is(err, identity.ErrVerificationFailed):
			return fail(c, fiber.StatusUnauthorized, "Identity verification failed")
		}
		return internalError(c, "login", err)
	}

	return c.JSON(resp)
}

// VerifySession accepts the session key as a bearer token or in the body.
func (h *AuthHandler) VerifySession(c *fiber.Ctx) error {
	token, ok := middleware.BearerToken(c)
	if !ok {
		var req dto.SessionVerifyRequest
		if err := c.BodyParser(&req); err != nil || req.SessionKey == "" {
			return fail(c, fiber.StatusBadRequest, "Session key required")
		}
		token = req.SessionKey
	}

	resp, err := h.authService.VerifySession(token)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidSession):
			return fail(c, fiber.StatusUnauthorized, "Invalid or expired session")
		case errors.Is(err, services.ErrUserNotFound):
			return fail(c, fiber.StatusNotFound, "User not found")
		}
		return internalError(c, "verify_session", err)
	}

	return c.JSON(resp)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	h.authService.Logout(middleware.GetSessionToken(c))
	return c.JSON(dto.MessageResponse{Message: "Logged out successfully"})
}
