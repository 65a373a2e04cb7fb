package handlers

import (
	"errors"
	"log/slog"

	"github.com/bearbites/bearbites-backend/internal/dto"
	"github.com/bearbites/bearbites-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type SubscriberHandler struct {
	subscribers *services.SubscriberService
}

func NewSubscriberHandler(subscribers *services.SubscriberService) *SubscriberHandler {
	return &SubscriberHandler{subscribers: subscribers}
}

func (h *SubscriberHandler) Subscribe(c *fiber.Ctx) error {
	var req dto.SubscribeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	if err := h.subscribers.Subscribe(c.Context(), req.Email, req.Name); err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidSubscriberEmail):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: "Please use your UC Berkeley email address",
			})
		case errors.Is(err, services.ErrAlreadySubscribed):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
				Error: true, Message: "This email is already subscribed",
			})
		default:
			slog.Error("subscribe failed", "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Error: true, Message: "Could not subscribe, please try again",
			})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Successfully subscribed to food alerts",
	})
}

func (h *SubscriberHandler) Unsubscribe(c *fiber.Ctx) error {
	email := c.Query("email")
	if email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Missing email",
		})
	}

	if err := h.subscribers.Unsubscribe(c.Context(), email); err != nil {
		slog.Error("unsubscribe failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Could not unsubscribe, please try again",
		})
	}

	return c.JSON(fiber.Map{"message": "You have been unsubscribed."})
}
