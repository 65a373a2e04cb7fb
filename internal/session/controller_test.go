package session

import (
	"context"
	"errors"
	"testing"

	"github.com/bearbites/bearbites-backend/internal/auth"
	"github.com/bearbites/bearbites-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- mocks ---

type mockProfiles struct {
	findFn   func(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	createFn func(ctx context.Context, profile *models.Profile) error

	findCalls   int
	createCalls int
}

func (m *mockProfiles) Find(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	m.findCalls++
	if m.findFn != nil {
		return m.findFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockProfiles) Create(ctx context.Context, profile *models.Profile) error {
	m.createCalls++
	if m.createFn != nil {
		return m.createFn(ctx, profile)
	}
	return nil
}

var _ Profiles = (*mockProfiles)(nil)

func testIdentity(email string) *auth.Identity {
	return &auth.Identity{
		ID:       auth.IdentityID("google", "sub-"+email),
		Email:    email,
		FullName: "Test Club",
	}
}

func consentedProfiles() *mockProfiles {
	return &mockProfiles{
		findFn: func(_ context.Context, id uuid.UUID) (*models.Profile, error) {
			return &models.Profile{ID: id, TermsAccepted: true}, nil
		},
	}
}

// --- tests ---

func TestGateChain_RejectsForeignDomain(t *testing.T) {
	profiles := &mockProfiles{}
	c := NewController("@berkeley.edu", profiles)
	slot := NewMemorySlot()

	out := c.HandleEvent(context.Background(), Event{Type: EventSignedIn, Identity: testIdentity("someone@stanford.edu")}, slot)

	if out.State != StateDenied {
		t.Fatalf("expected StateDenied, got %v", out.State)
	}
	if out.Redirect != "/error" {
		t.Errorf("expected redirect to /error, got %q", out.Redirect)
	}
	if c.Identity() != nil {
		t.Error("expected session to be cleared after rejection")
	}
	if profiles.findCalls != 0 {
		t.Error("profile store must not be touched for a rejected identity")
	}
}

func TestGateChain_SuffixMatchIsCaseSensitive(t *testing.T) {
	c := NewController("@berkeley.edu", consentedProfiles())
	slot := NewMemorySlot()

	out := c.HandleEvent(context.Background(), Event{Type: EventSignedIn, Identity: testIdentity("someone@Berkeley.EDU")}, slot)

	if out.State != StateDenied {
		t.Fatalf("expected case-sensitive rejection, got %v", out.State)
	}
}

func TestGateChain_RunsAtMostOncePerIdentity(t *testing.T) {
	profiles := &mockProfiles{
		findFn: func(_ context.Context, id uuid.UUID) (*models.Profile, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}
	c := NewController("@berkeley.edu", profiles)
	slot := NewMemorySlot()
	ident := testIdentity("club@berkeley.edu")

	c.HandleEvent(context.Background(), Event{Type: EventSignedIn, Identity: ident}, slot)
	c.HandleEvent(context.Background(), Event{Type: EventTokenRefreshed, Identity: ident}, slot)
	c.HandleEvent(context.Background(), Event{Type: EventSignedIn, Identity: ident}, slot)

	if profiles.createCalls != 1 {
		t.Fatalf("expected at most one profile creation, got %d", profiles.createCalls)
	}
}

func TestGateChain_MarkerResetsOnSignOut(t *testing.T) {
	profiles := consentedProfiles()
	c := NewController("@berkeley.edu", profiles)
	slot := NewMemorySlot()
	ident := testIdentity("club@berkeley.edu")

	c.HandleEvent(context.Background(), Event{Type: EventSignedIn, Identity: ident}, slot)
	c.HandleEvent(context.Background(), Event{Type: EventSignedOut}, slot)
	c.HandleEvent(context.Background(), Event{Type: EventSignedIn, Identity: ident}, slot)

	if profiles.findCalls != 2 {
		t.Fatalf("expected gate chain to run again after sign-out, find calls = %d", profiles.findCalls)
	}
}

func TestGateChain_LazyProfileCreation(t *testing.T) {
	var created *models.Profile
	profiles := &mockProfiles{
		findFn: func(_ context.Context, id uuid.UUID) (*models.Profile, error) {
			return nil, gorm.ErrRecordNotFound
		},
		createFn: func(_ context.Context, p *models.Profile) error {
			created = p
			return nil
		},
	}
	c := NewController("@berkeley.edu", profiles)
	slot := NewMemorySlot()
	ident := testIdentity("club@berkeley.edu")

	out := c.HandleEvent(context.Background(), Event{Type: EventSignedIn, Identity: ident}, slot)

	if created == nil {
		t.Fatal("expected missing profile to be created")
	}
	if created.ID != ident.ID {
		t.Error("profile id must equal identity id")
	}
	if created.ClubEmail != "club@berkeley.edu" {
		t.Errorf("unexpected club_email %q", created.ClubEmail)
	}
	if created.ClubName != "Test Club" {
		t.Errorf("expected display name from provider metadata, got %q", created.ClubName)
	}
	if created.TermsAccepted {
		t.Error("new profile must start with terms_accepted=false")
	}
	if out.State != StatePendingConsent {
		t.Fatalf("expected StatePendingConsent for a fresh profile, got %v", out.State)
	}
}

func TestGateChain_ProfileCreationFailureIsNonFatal(t *testing.T) {
	profiles := &mockProfiles{
		findFn: func(_ context.Context, id uuid.UUID) (*models.Profile, error) {
			return nil, gorm.ErrRecordNotFound
		},
		createFn: func(_ context.Context, _ *models.Profile) error {
			return errors.New("insert failed")
		},
	}
	c := NewController("@berkeley.edu", profiles)
	slot := NewMemorySlot()

	out := c.HandleEvent(context.Background(), Event{Type: EventSignedIn, Identity: testIdentity("club@berkeley.edu")}, slot)

	if out.State == StateDenied || out.State == StateUnknown {
		t.Fatalf("profile creation failure must not block sign-in, got %v", out.State)
	}
	if out.Warning == "" {
		t.Error("expected a user-visible warning")
	}
	if c.Identity() == nil {
		t.Error("session must survive profile creation failure")
	}
}

func TestRedirectRoundTrip_ConsentedIdentity(t *testing.T) {
	c := NewController("@berkeley.edu", consentedProfiles())
	slot := NewMemorySlot()

	c.BeginSignIn(slot, "/club-portal")
	out := c.HandleEvent(context.Background(), Event{Type: EventSignedIn, Identity: testIdentity("club@berkeley.edu")}, slot)

	if out.State != StateActive {
		t.Fatalf("expected StateActive, got %v", out.State)
	}
	if out.Redirect != "/club-portal" {
		t.Errorf("expected final navigation to /club-portal, got %q", out.Redirect)
	}
	if slot.Peek() != "" {
		t.Error("intent must be cleared after consumption")
	}
}

func TestRedirectRoundTrip_ThroughConsentStep(t *testing.T) {
	profiles := &mockProfiles{
		findFn: func(_ context.Context, id uuid.UUID) (*models.Profile, error) {
			return &models.Profile{ID: id, TermsAccepted: false}, nil
		},
	}
	c := NewController("@berkeley.edu", profiles)
	slot := NewMemorySlot()

	c.BeginSignIn(slot, "/my-alerts")
	out := c.HandleEvent(context.Background(), Event{Type: EventSignedIn, Identity: testIdentity("club@berkeley.edu")}, slot)

	if out.State != StatePendingConsent {
		t.Fatalf("expected StatePendingConsent, got %v", out.State)
	}
	if out.Redirect != "/terms?redirect=%2Fmy-alerts" {
		t.Errorf("expected consent redirect carrying the intent, got %q", out.Redirect)
	}
	// The consent step, not the controller, is the final consumer.
	if slot.Peek() != "/my-alerts" {
		t.Fatal("intent must survive until the consent step completes")
	}

	dest := c.FinishConsent(slot)
	if dest != "/my-alerts" {
		t.Errorf("expected final navigation to /my-alerts, got %q", dest)
	}
	if slot.Peek() != "" {
		t.Error("intent must be empty after the consent step consumed it")
	}
	if c.CurrentState() != StateActive {
		t.Errorf("expected StateActive after consent, got %v", c.CurrentState())
	}
}

func TestBeginSignIn_DefaultsToRoot(t *testing.T) {
	c := NewController("@berkeley.edu", consentedProfiles())
	slot := NewMemorySlot()

	c.BeginSignIn(slot, "")
	out := c.HandleEvent(context.Background(), Event{Type: EventSignedIn, Identity: testIdentity("club@berkeley.edu")}, slot)

	if out.Redirect != "/" {
		t.Errorf("expected fallback navigation to root, got %q", out.Redirect)
	}
}

func TestRestore_ConvergesWithProviderEvents(t *testing.T) {
	profiles := consentedProfiles()
	c := NewController("@berkeley.edu", profiles)
	slot := NewMemorySlot()
	ident := testIdentity("club@berkeley.edu")

	// Startup restore and a provider event race; whichever order they
	// resolve in, the chain runs once and the session converges.
	c.Restore(context.Background(), ident, slot)
	c.HandleEvent(context.Background(), Event{Type: EventSignedIn, Identity: ident}, slot)

	if profiles.findCalls != 1 {
		t.Fatalf("expected a single gate-chain run, got %d", profiles.findCalls)
	}
	if c.Identity() == nil || c.Identity().ID != ident.ID {
		t.Error("session must converge on the signed-in identity")
	}
	if c.Loading() {
		t.Error("loading must resolve after restore")
	}
}

func TestRestore_NoSession(t *testing.T) {
	c := NewController("@berkeley.edu", &mockProfiles{})
	out := c.Restore(context.Background(), nil, NewMemorySlot())

	if out.State != StateUnknown {
		t.Fatalf("expected StateUnknown without a session, got %v", out.State)
	}
	if c.Loading() {
		t.Error("loading must resolve even without a session")
	}
}
