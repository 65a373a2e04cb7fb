package models

import "time"

// Subscriber is one opted-in student email address.
type Subscriber struct {
	Email     string    `gorm:"primaryKey;size:255" json:"email"`
	Name      string    `gorm:"size:255" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
