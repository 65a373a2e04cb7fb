package handlers

import (
	"time"

	"github.com/bearbites/bearbites-backend/internal/session"
	"github.com/gofiber/fiber/v2"
)

// cookieSlot is the durable, client-side implementation of the
// redirect-intent slot. The value survives the identity-provider round
// trip because it lives in a cookie, under one well-known name.
type cookieSlot struct {
	c    *fiber.Ctx
	name string
	// taken shadows the cookie within the current request, since a
	// cleared cookie is not observable until the next request.
	taken bool
}

func newCookieSlot(c *fiber.Ctx, name string) *cookieSlot {
	return &cookieSlot{c: c, name: name}
}

func (s *cookieSlot) Set(path string) {
	s.taken = false
	s.c.Cookie(&fiber.Cookie{
		Name:     s.name,
		Value:    path,
		Path:     "/",
		Expires:  time.Now().Add(time.Hour),
		HTTPOnly: true,
		SameSite: "Lax",
	})
}

func (s *cookieSlot) Peek() string {
	if s.taken {
		return ""
	}
	return s.c.Cookies(s.name)
}

func (s *cookieSlot) Take() string {
	v := s.Peek()
	s.taken = true
	s.c.Cookie(&fiber.Cookie{
		Name:     s.name,
		Value:    "",
		Path:     "/",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: "Lax",
	})
	return v
}

var _ session.Slot = (*cookieSlot)(nil)
