package models

import (
	"time"

	"github.com/google/uuid"
)

// FoodAlert is one broadcast of free food. Rows are immutable after
// creation; an alert is active iff ExpiresAt is strictly in the future.
type FoodAlert struct {
	ID             uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ClubID         uuid.UUID `gorm:"type:uuid;not null;index" json:"club_id"`
	ClubName       string    `gorm:"not null;size:255" json:"club_name"`
	ContactEmail   string    `gorm:"not null;size:255" json:"contact_email"`
	FoodType       string    `gorm:"not null;size:255" json:"food_type"`
	Quantity       string    `gorm:"size:100" json:"quantity"`
	AvailableUntil string    `gorm:"size:100" json:"available_until"`
	Building       string    `gorm:"not null;size:255" json:"building"`
	Room           string    `gorm:"not null;size:50" json:"room"`
	AdditionalInfo string    `gorm:"type:text" json:"additional_info"`
	CreatedAt      time.Time `gorm:"index" json:"created_at"`
	ExpiresAt      time.Time `gorm:"not null;index" json:"expires_at"`
}

// Active reports whether the alert has not yet expired at t.
func (a *FoodAlert) Active(t time.Time) bool {
	return a.ExpiresAt.After(t)
}
