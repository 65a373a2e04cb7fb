package handlers

import (
	"fmt"
	"log/slog"

	"github.com/bearbites/bearbites-backend/internal/dto"
	"github.com/bearbites/bearbites-backend/internal/mailer"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// NotifyHandler exposes the mail fanout as a standalone endpoint, the
// shape the original edge function had: one HTTP call per alert
// creation, CORS-enabled.
type NotifyHandler struct {
	notifier Notifier
}

func NewNotifyHandler(notifier Notifier) *NotifyHandler {
	return &NotifyHandler{notifier: notifier}
}

func (h *NotifyHandler) Notify(c *fiber.Ctx) error {
	var req dto.NotifyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	sent, err := h.notifier.NotifySubscribers(c.Context(), uuid.Nil, mailer.Notification{
		ClubName:       req.ClubName,
		FoodType:       req.FoodType,
		Building:       req.Building,
		Room:           req.Room,
		AvailableUntil: req.AvailableUntil,
	})
	if err != nil {
		slog.Error("standalone fanout failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch subscribers",
		})
	}

	return c.JSON(dto.NotifyResponse{
		Sent:    sent,
		Message: fmt.Sprintf("Sent to %d subscribers", sent),
	})
}
