package handlers

import (
	"log/slog"
	"time"

	"github.com/bearbites/bearbites-backend/internal/auth"
	"github.com/bearbites/bearbites-backend/internal/config"
	"github.com/bearbites/bearbites-backend/internal/dto"
	"github.com/bearbites/bearbites-backend/internal/metrics"
	"github.com/bearbites/bearbites-backend/internal/middleware"
	"github.com/bearbites/bearbites-backend/internal/session"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const stateCookie = "oauth_state"

type AuthHandler struct {
	provider   auth.Provider
	controller *session.Controller
	cfg        *config.Config
}

func NewAuthHandler(provider auth.Provider, controller *session.Controller, cfg *config.Config) *AuthHandler {
	return &AuthHandler{provider: provider, controller: controller, cfg: cfg}
}

// Login captures the intended destination and hands off to the
// identity provider. Sign-in always routes through the provider; this
// system never sees credentials.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	slot := newCookieSlot(c, h.cfg.RedirectCookie)
	h.controller.BeginSignIn(slot, c.Query("redirect"))

	state := uuid.NewString()
	c.Cookie(&fiber.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/",
		Expires:  time.Now().Add(10 * time.Minute),
		HTTPOnly: true,
		SameSite: "Lax",
	})

	return c.Redirect(h.provider.LoginURL(state), fiber.StatusFound)
}

// Callback completes the provider round trip and runs the gate chain.
func (h *AuthHandler) Callback(c *fiber.Ctx) error {
	state := c.Query("state")
	if state == "" || state != c.Cookies(stateCookie) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid sign-in state",
		})
	}
	clearCookie(c, stateCookie)

	code := c.Query("code")
	if code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Missing authorization code",
		})
	}

	ident, err := h.provider.Exchange(c.Context(), code)
	if err != nil {
		slog.Error("oauth code exchange failed", "error", err)
		return c.Redirect("/", fiber.StatusFound)
	}

	slot := newCookieSlot(c, h.cfg.RedirectCookie)
	outcome := h.controller.HandleEvent(c.Context(), session.Event{Type: session.EventSignedIn, Identity: ident}, slot)

	if outcome.State == session.StateDenied {
		metrics.SignInsDenied.Inc()
		clearCookie(c, h.cfg.SessionCookie)
		return c.Redirect(outcome.Redirect, fiber.StatusFound)
	}

	token, err := mintSessionToken(h.cfg, ident.ID, ident.Email, ident.BestName(), outcome.State == session.StateActive)
	if err != nil {
		slog.Error("failed to mint session token", "user_id", ident.ID.String(), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Sign-in failed, please try again",
		})
	}
	setSessionCookie(c, h.cfg, token)

	return c.Redirect(outcome.Redirect, fiber.StatusFound)
}

// Logout clears the session and navigates to the application root.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	h.controller.SignOut()
	clearCookie(c, h.cfg.SessionCookie)
	return c.Redirect("/", fiber.StatusFound)
}

// Session reports the current identity, or none.
func (h *AuthHandler) Session(c *fiber.Ctx) error {
	claims, err := middleware.CurrentClaims(c)
	if err != nil {
		return c.JSON(dto.SessionResponse{SignedIn: false})
	}

	sub, _ := claims["sub"].(string)
	id, err := uuid.Parse(sub)
	if err != nil {
		return c.JSON(dto.SessionResponse{SignedIn: false})
	}
	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)
	consented, _ := claims["consented"].(bool)

	return c.JSON(dto.SessionResponse{
		SignedIn: true,
		User: &dto.SessionUser{
			ID:        id,
			Email:     email,
			Name:      name,
			Consented: consented,
		},
	})
}

// mintSessionToken materializes the session as a signed claim set. It
// is re-minted whenever a claim changes server-side, e.g. after the
// consent step flips terms_accepted.
func mintSessionToken(cfg *config.Config, id uuid.UUID, email, name string, consented bool) (string, error) {
	claims := jwt.MapClaims{
		"sub":       id.String(),
		"email":     email,
		"name":      name,
		"consented": consented,
		"iat":       time.Now().Unix(),
		"exp":       time.Now().Add(cfg.SessionExpiry).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.JWTSecret))
}

func setSessionCookie(c *fiber.Ctx, cfg *config.Config, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     cfg.SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(cfg.SessionExpiry),
		HTTPOnly: true,
		SameSite: "Lax",
	})
}

func clearCookie(c *fiber.Ctx, name string) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: "Lax",
	})
}
