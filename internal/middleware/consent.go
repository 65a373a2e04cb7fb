package middleware

import (
	"errors"
	"net/url"

	"github.com/bearbites/bearbites-backend/internal/dto"
	"github.com/bearbites/bearbites-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

// ConsentRequired blocks privileged actions until terms_accepted is
// true. Enforced at each privileged route, not only at sign-in, so
// every entry point redirects to the consent step with the original
// destination recoverable.
func ConsentRequired(profiles *services.ProfileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := CurrentUserID(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}

		consented, err := profiles.Consented(c.Context(), userID)
		if err != nil && !errors.Is(err, services.ErrProfileNotFound) {
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Error: true, Message: "Could not verify terms acceptance",
			})
		}

		if !consented {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error:    true,
				Message:  "You must accept the terms before posting alerts",
				Redirect: "/terms?redirect=" + url.QueryEscape(c.OriginalURL()),
			})
		}
		return c.Next()
	}
}
