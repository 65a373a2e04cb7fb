package handlers

import (
	"context"
	"errors"
	"log/slog"

	"github.com/bearbites/bearbites-backend/internal/config"
	"github.com/bearbites/bearbites-backend/internal/dto"
	"github.com/bearbites/bearbites-backend/internal/middleware"
	"github.com/bearbites/bearbites-backend/internal/services"
	"github.com/bearbites/bearbites-backend/internal/session"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// ConsentStore records the one-time terms acceptance.
type ConsentStore interface {
	AcceptTerms(ctx context.Context, id uuid.UUID) error
}

type TermsHandler struct {
	profiles   ConsentStore
	controller *session.Controller
	cfg        *config.Config
}

func NewTermsHandler(profiles ConsentStore, controller *session.Controller, cfg *config.Config) *TermsHandler {
	return &TermsHandler{profiles: profiles, controller: controller, cfg: cfg}
}

// Accept records the one-time terms acceptance and resolves the final
// destination. On failure the stored redirect intent is untouched, so
// the user can retry without losing where they were headed.
func (h *TermsHandler) Accept(c *fiber.Ctx) error {
	claims, err := middleware.CurrentClaims(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	if err := h.profiles.AcceptTerms(c.Context(), userID); err != nil {
		if errors.Is(err, services.ErrProfileNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "No club profile found for this account",
			})
		}
		slog.Error("terms acceptance failed", "user_id", userID.String(), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to accept terms. Please try again.",
		})
	}

	// The stored consent changed, so the session claims are stale until
	// re-minted with consented=true.
	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)
	if token, mintErr := mintSessionToken(h.cfg, userID, email, name, true); mintErr != nil {
		slog.Error("failed to re-mint session token after consent", "user_id", userID.String(), "error", mintErr)
	} else {
		setSessionCookie(c, h.cfg, token)
	}

	slot := newCookieSlot(c, h.cfg.RedirectCookie)
	dest := h.controller.FinishConsent(slot)

	return c.JSON(dto.TermsAcceptResponse{
		Message:  "Terms accepted",
		Redirect: dest,
	})
}
