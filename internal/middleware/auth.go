package middleware

import (
	"errors"
	"strings"

	"github.com/ahmetcoskunkizilkaya/friendpool-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/friendpool-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	localUserID       = "user_id"
	localSessionToken = "session_token"
)

// SessionProtected rejects requests without a live session before any handler runs.
func SessionProtected(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := BearerToken(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Authorization header required",
			})
		}

		userID, err := auth.Authenticate(token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Invalid or expired session",
			})
		}

		c.Locals(localUserID, userID)
		c.Locals(localSessionToken, token)
		return c.Next()
	}
}

// BearerToken extracts the credential from an "Authorization: Bearer <token>" header.
func BearerToken(c *fiber.Ctx) (string, bool) {
	scheme, token, found := strings.Cut(c.Get(fiber.HeaderAuthorization), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// GetUserID returns the user id stored by SessionProtected.
func GetUserID(c *fiber.Ctx) (uuid.UUID, error) {
	id, ok := c.Locals(localUserID).(uuid.UUID)
	if !ok {
		return uuid.Nil, errors.New("no authenticated user in context")
	}
	return id, nil
}

func GetSessionToken(c *fiber.Ctx) string {
	token, _ := c.Locals(localSessionToken).(string)
	return token
}
