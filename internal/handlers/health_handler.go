package handlers

import (
	"errors"
	"time"

	"github.com/ahmetcoskunkizilkaya/friendpool-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/friendpool-backend/internal/directory"
	"github.com/ahmetcoskunkizilkaya/friendpool-backend/internal/dto"
	"github.com/gofiber/fiber/v2"
)

type HealthHandler struct {
	store *directory.Store
}

func NewHealthHandler(store *directory.Store) *HealthHandler {
	return &HealthHandler{store: store}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	logDB := "ok"
	if err := database.Ping(); err != nil {
		if errors.Is(err, database.ErrNotConfigured) {
			logDB = "disabled"
		} else {
			logDB = "unhealthy: " + err.Error()
		}
	}

	return c.JSON(dto.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		LogDB:     logDB,
		Store:     h.store.Stats(),
	})
}
