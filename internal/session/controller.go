// Package session owns the sign-in lifecycle: the domain gate, the
// consent gate and redirect preservation, run as one chain at most once
// per signed-in identity.
package session

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"github.com/bearbites/bearbites-backend/internal/auth"
	"github.com/bearbites/bearbites-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrDomainRejected marks an authenticated identity outside the
// permitted email domain. Not retryable without re-authenticating.
var ErrDomainRejected = errors.New("email domain not permitted")

// Profiles is the profile store surface the gate chain needs.
type Profiles interface {
	Find(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	Create(ctx context.Context, profile *models.Profile) error
}

// EventType identifies a provider state-change notification.
type EventType int

const (
	EventSignedIn EventType = iota
	EventSignedOut
	EventTokenRefreshed
)

// Event is one identity-provider state-change notification.
type Event struct {
	Type     EventType
	Identity *auth.Identity
}

// Outcome is the result of running the gate chain for one identity.
type Outcome struct {
	State    State
	Redirect string
	// Warning carries a non-fatal, user-visible message (e.g. profile
	// creation failed). It never blocks sign-in.
	Warning string
}

// Session is the current authenticated identity, if any.
type Session struct {
	Identity *auth.Identity
	Loading  bool
}

// Controller drives the gate chain: domain check, profile/consent
// check, redirect resolution. A per-identity processed marker
// guarantees the chain runs at most once per signed-in identity id even
// when provider events fire repeatedly (token refresh, duplicate
// callbacks). The marker resets only on sign-out.
type Controller struct {
	emailSuffix string
	profiles    Profiles

	mu        sync.Mutex
	state     State
	session   Session
	processed map[uuid.UUID]struct{}
}

func NewController(emailSuffix string, profiles Profiles) *Controller {
	return &Controller{
		emailSuffix: emailSuffix,
		profiles:    profiles,
		state:       StateUnknown,
		session:     Session{Loading: true},
		processed:   make(map[uuid.UUID]struct{}),
	}
}

// BeginSignIn captures the intended destination before handing off to
// the identity provider. An empty path defaults to the application
// root. A second capture before consumption replaces the first.
func (c *Controller) BeginSignIn(slot Slot, path string) {
	if path == "" {
		path = "/"
	}
	slot.Set(path)

	c.mu.Lock()
	c.state = StateAuthenticating
	c.mu.Unlock()
}

// HandleEvent applies one provider notification. Sign-in style events
// update the session and run the gate chain; sign-out tears the
// session down and resets the processed marker.
func (c *Controller) HandleEvent(ctx context.Context, ev Event, slot Slot) Outcome {
	switch ev.Type {
	case EventSignedOut:
		c.SignOut()
		return Outcome{State: StateUnknown, Redirect: "/"}
	default:
		return c.handleSignedIn(ctx, ev.Identity, slot)
	}
}

// Restore applies the one-time existing-session check performed at
// startup. It races with provider events; both converge on the same
// session, and the processed marker keeps the gate chain single-shot.
func (c *Controller) Restore(ctx context.Context, ident *auth.Identity, slot Slot) Outcome {
	if ident == nil {
		c.mu.Lock()
		c.session = Session{Loading: false}
		c.mu.Unlock()
		return Outcome{State: c.CurrentState()}
	}
	return c.handleSignedIn(ctx, ident, slot)
}

func (c *Controller) handleSignedIn(ctx context.Context, ident *auth.Identity, slot Slot) Outcome {
	if ident == nil {
		return Outcome{State: c.CurrentState()}
	}

	c.mu.Lock()
	c.session = Session{Identity: ident, Loading: false}
	if _, done := c.processed[ident.ID]; done {
		state := c.state
		c.mu.Unlock()
		return Outcome{State: state}
	}
	// Mark before running so a racing duplicate event is a no-op.
	c.processed[ident.ID] = struct{}{}
	c.mu.Unlock()

	return c.runGateChain(ctx, ident, slot)
}

// runGateChain executes domain gate -> consent gate -> redirect
// resolution as a sequence of awaited steps.
func (c *Controller) runGateChain(ctx context.Context, ident *auth.Identity, slot Slot) Outcome {
	// Identity Gate: exact, case-sensitive suffix match.
	if !strings.HasSuffix(ident.Email, c.emailSuffix) {
		slog.Warn("sign-in rejected: email outside permitted domain", "user_id", ident.ID.String())
		c.SignOut()
		c.mu.Lock()
		c.state = StateDenied
		c.mu.Unlock()
		return Outcome{State: StateDenied, Redirect: "/error"}
	}

	// Consent Gate: ensure a profile row exists. Creation failure is
	// non-fatal; the session proceeds with a user-visible warning.
	warning := ""
	profile, err := c.profiles.Find(ctx, ident.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			profile = &models.Profile{
				ID:            ident.ID,
				ClubEmail:     ident.Email,
				ClubName:      ident.BestName(),
				TermsAccepted: false,
			}
			if createErr := c.profiles.Create(ctx, profile); createErr != nil {
				slog.Error("failed to create profile", "user_id", ident.ID.String(), "error", createErr)
				warning = "We could not set up your club profile. Some features may be unavailable."
			}
		} else {
			slog.Error("profile lookup failed", "user_id", ident.ID.String(), "error", err)
			warning = "We could not load your club profile."
		}
	}

	if profile != nil && !profile.TermsAccepted {
		// The consent step is the final consumer of the intent, so it
		// is peeked here, not taken.
		c.mu.Lock()
		c.state = StatePendingConsent
		c.mu.Unlock()

		redirect := "/terms"
		if pending := slot.Peek(); pending != "" {
			redirect += "?redirect=" + url.QueryEscape(pending)
		}
		return Outcome{State: StatePendingConsent, Redirect: redirect, Warning: warning}
	}

	// Redirect Preservation: consume the intent exactly once.
	dest := slot.Take()
	if dest == "" {
		dest = "/"
	}

	c.mu.Lock()
	c.state = StateActive
	c.mu.Unlock()
	return Outcome{State: StateActive, Redirect: dest, Warning: warning}
}

// FinishConsent resolves the final destination after the consent step
// succeeded. It consumes the stored intent; callers must only invoke it
// after the terms_accepted write committed.
func (c *Controller) FinishConsent(slot Slot) string {
	dest := slot.Take()
	if dest == "" {
		dest = "/"
	}

	c.mu.Lock()
	if c.state == StatePendingConsent {
		c.state = StateActive
	}
	c.mu.Unlock()
	return dest
}

// SignOut clears the session, resets the processed marker and returns
// the lifecycle to Unknown.
func (c *Controller) SignOut() {
	c.mu.Lock()
	c.session = Session{Loading: false}
	c.state = StateUnknown
	c.processed = make(map[uuid.UUID]struct{})
	c.mu.Unlock()
}

// Identity returns the current identity, or nil when signed out.
func (c *Controller) Identity() *auth.Identity {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.Identity
}

// Loading reports whether the initial session check has resolved.
func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.Loading
}

func (c *Controller) CurrentState() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}
