// Package auth abstracts the external identity provider. The rest of the
// system only sees Identity values and never handles passwords.
package auth

import (
	"context"

	"github.com/google/uuid"
)

// Identity is the provider-supplied view of an authenticated user.
// Immutable from this system's perspective.
type Identity struct {
	ID          uuid.UUID
	Email       string
	FullName    string
	Name        string
	DisplayName string
	AvatarURL   string
}

// BestName returns the best-available display name from provider
// metadata: first non-empty of full name, name, display name.
func (i *Identity) BestName() string {
	for _, s := range []string{i.FullName, i.Name, i.DisplayName} {
		if s != "" {
			return s
		}
	}
	return ""
}

// Provider is an OAuth identity provider. LoginURL starts the external
// authentication flow; Exchange turns the callback code into an Identity.
type Provider interface {
	LoginURL(state string) string
	Exchange(ctx context.Context, code string) (*Identity, error)
}

// identityNamespace maps provider subject ids onto stable local UUIDs,
// so the same provider account always yields the same Identity.ID.
var identityNamespace = uuid.MustParse("8f9e0d4a-2b1c-4e5f-9a6b-7c8d9e0f1a2b")

// IdentityID derives the local id for a provider subject.
func IdentityID(provider, subject string) uuid.UUID {
	return uuid.NewSHA1(identityNamespace, []byte(provider+":"+subject))
}
