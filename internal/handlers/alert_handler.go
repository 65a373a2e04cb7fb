package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bearbites/bearbites-backend/internal/dto"
	"github.com/bearbites/bearbites-backend/internal/feed"
	"github.com/bearbites/bearbites-backend/internal/mailer"
	"github.com/bearbites/bearbites-backend/internal/metrics"
	"github.com/bearbites/bearbites-backend/internal/middleware"
	"github.com/bearbites/bearbites-backend/internal/models"
	"github.com/bearbites/bearbites-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
)

// AlertStore is the alert-service surface the handler needs.
type AlertStore interface {
	Create(ctx context.Context, clubID uuid.UUID, in services.CreateAlertInput) (*models.FoodAlert, error)
	ListByClub(ctx context.Context, clubID uuid.UUID) ([]models.FoodAlert, error)
}

// Notifier fans a created alert out to subscribers.
type Notifier interface {
	NotifySubscribers(ctx context.Context, alertID uuid.UUID, n mailer.Notification) (int, error)
}

type AlertHandler struct {
	alerts   AlertStore
	notifier Notifier
	feed     *feed.Feed
	hub      *feed.Hub
}

func NewAlertHandler(alerts AlertStore, notifier Notifier, f *feed.Feed, hub *feed.Hub) *AlertHandler {
	return &AlertHandler{alerts: alerts, notifier: notifier, feed: f, hub: hub}
}

// List serves the current working set of active alerts, newest first.
func (h *AlertHandler) List(c *fiber.Ctx) error {
	alerts := h.feed.Snapshot()
	return c.JSON(dto.AlertListResponse{Alerts: alerts, Count: len(alerts)})
}

// Mine lists every alert posted by the signed-in club.
func (h *AlertHandler) Mine(c *fiber.Ctx) error {
	clubID, err := middleware.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	alerts, err := h.alerts.ListByClub(c.Context(), clubID)
	if err != nil {
		slog.Error("failed to list club alerts", "user_id", clubID.String(), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Could not load your alerts",
		})
	}
	return c.JSON(dto.AlertListResponse{Alerts: alerts, Count: len(alerts)})
}

// Create persists the alert, then fans out notifications. The two
// steps are deliberately sequential: fanout runs only after the row is
// durably created, exactly once, and a fanout failure never rolls the
// alert back.
func (h *AlertHandler) Create(c *fiber.Ctx) error {
	clubID, err := middleware.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.CreateAlertRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	availableUntil := req.AvailableUntil
	if availableUntil == "" && !req.ExpiresAt.IsZero() {
		availableUntil = req.ExpiresAt.Local().Format("3:04 PM")
	}

	alert, err := h.alerts.Create(c.Context(), clubID, services.CreateAlertInput{
		ClubName:       req.ClubName,
		ContactEmail:   req.ContactEmail,
		FoodType:       req.FoodType,
		Quantity:       req.Quantity,
		AvailableUntil: availableUntil,
		Building:       req.Building,
		Room:           req.Room,
		AdditionalInfo: req.AdditionalInfo,
		ExpiresAt:      req.ExpiresAt,
	})
	if err != nil {
		// Only validation outcomes are the submitter's fault; anything
		// else is a store failure whose detail stays server-side.
		if errors.Is(err, services.ErrAlertInput) || errors.Is(err, services.ErrAlertExpiry) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		slog.Error("alert creation failed", "user_id", clubID.String(), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Could not post your alert, please try again",
		})
	}

	sent, notifyErr := h.notifier.NotifySubscribers(c.Context(), alert.ID, mailer.Notification{
		ClubName:       alert.ClubName,
		FoodType:       alert.FoodType,
		Building:       alert.Building,
		Room:           alert.Room,
		AvailableUntil: alert.AvailableUntil,
	})

	resp := dto.AlertCreatedResponse{Alert: alert, Sent: sent}
	if notifyErr != nil {
		slog.Warn("alert fanout failed", "alert_id", alert.ID.String(), "error", notifyErr)
		resp.Warning = "Your alert was posted, but subscribers could not be notified."
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// Stream pushes alert insert events to the client as server-sent
// events. The hub subscription is dropped when the client goes away.
func (h *AlertHandler) Stream(c *fiber.Ctx) error {
	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")

	ch := h.hub.Subscribe(16)
	metrics.StreamClients.Inc()

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer func() {
			h.hub.Unsubscribe(ch)
			metrics.StreamClients.Dec()
		}()

		keepalive := time.NewTicker(25 * time.Second)
		defer keepalive.Stop()

		for {
			select {
			case alert, ok := <-ch:
				if !ok {
					return
				}
				b, err := json.Marshal(alert)
				if err != nil {
					continue
				}
				if _, err := fmt.Fprintf(w, "event: alert\ndata: %s\n\n", b); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					return
				}
			case <-keepalive.C:
				if _, err := fmt.Fprint(w, ": keepalive\n\n"); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					return
				}
			}
		}
	}))
	return nil
}
