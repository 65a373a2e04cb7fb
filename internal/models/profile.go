package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile is the club-facing record for one authenticated identity.
// The primary key is the identity-provider user id, so there is exactly
// one profile per identity. TermsAccepted transitions false->true once
// and never reverts.
type Profile struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ClubEmail     string    `gorm:"not null;size:255" json:"club_email"`
	ClubName      string    `gorm:"size:255" json:"club_name"`
	TermsAccepted bool      `gorm:"not null;default:false" json:"terms_accepted"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
