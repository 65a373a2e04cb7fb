package dto

import (
	"time"

	"github.com/bearbites/bearbites-backend/internal/models"
)

type CreateAlertRequest struct {
	ClubName       string    `json:"club_name"`
	ContactEmail   string    `json:"contact_email"`
	FoodType       string    `json:"food_type"`
	Quantity       string    `json:"quantity"`
	AvailableUntil string    `json:"available_until"`
	Building       string    `json:"building"`
	Room           string    `json:"room"`
	AdditionalInfo string    `json:"additional_info"`
	ExpiresAt      time.Time `json:"expires_at"`
}

type AlertCreatedResponse struct {
	Alert *models.FoodAlert `json:"alert"`
	Sent  int               `json:"sent"`
	// Warning is set when the alert persisted but the fanout failed;
	// the alert is never rolled back for a notification failure.
	Warning string `json:"warning,omitempty"`
}

type AlertListResponse struct {
	Alerts []models.FoodAlert `json:"alerts"`
	Count  int                `json:"count"`
}
