package handlers

import (
	"fmt"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/friendpool-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/friendpool-backend/internal/middleware"
	"github.com/gofiber/fiber/v2"
)

func fail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(dto.ErrorResponse{Error: true, Message: message})
}

// internalError logs err and answers with a generic 500 that leaks nothing.
func internalError(c *fiber.Ctx, action string, err error) error {
	attrs := []any{
		"action", action,
		"error", err.Error(),
		"method", c.Method(),
		"path", c.Path(),
		"request_id", fmt.Sprint(c.Locals("requestid")),
	}
	if userID, idErr := middleware.GetUserID(c); idErr == nil {
		attrs = append(attrs, "user_id", userID.String())
	}
	slog.Error("request failed", attrs...)
	return fail(c, fiber.StatusInternalServerError, "Internal server error")
}
