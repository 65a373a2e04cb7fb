package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bearbites/bearbites-backend/internal/feed"
	"github.com/bearbites/bearbites-backend/internal/metrics"
	"github.com/bearbites/bearbites-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrAlertInput  = errors.New("invalid alert")
	ErrAlertExpiry = errors.New("expiry must be in the future")
)

// AlertService creates food alerts and serves the active set. Creation
// publishes an insert event to the hub only after the row is durably
// written, so feed subscribers never see an alert that failed to
// persist.
type AlertService struct {
	db  *gorm.DB
	hub *feed.Hub
}

func NewAlertService(db *gorm.DB, hub *feed.Hub) *AlertService {
	return &AlertService{db: db, hub: hub}
}

// CreateAlertInput carries the club-portal form fields.
type CreateAlertInput struct {
	ClubName       string
	ContactEmail   string
	FoodType       string
	Quantity       string
	AvailableUntil string
	Building       string
	Room           string
	AdditionalInfo string
	ExpiresAt      time.Time
}

func (in *CreateAlertInput) validate() error {
	switch {
	case in.ClubName == "":
		return fmt.Errorf("%w: club name is required", ErrAlertInput)
	case in.ContactEmail == "":
		return fmt.Errorf("%w: contact email is required", ErrAlertInput)
	case in.FoodType == "":
		return fmt.Errorf("%w: food type is required", ErrAlertInput)
	case in.Building == "":
		return fmt.Errorf("%w: building is required", ErrAlertInput)
	case in.Room == "":
		return fmt.Errorf("%w: room is required", ErrAlertInput)
	}
	return nil
}

func (s *AlertService) Create(ctx context.Context, clubID uuid.UUID, in CreateAlertInput) (*models.FoodAlert, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if !in.ExpiresAt.After(time.Now()) {
		return nil, ErrAlertExpiry
	}

	alert := &models.FoodAlert{
		ID:             uuid.New(),
		ClubID:         clubID,
		ClubName:       in.ClubName,
		ContactEmail:   in.ContactEmail,
		FoodType:       in.FoodType,
		Quantity:       in.Quantity,
		AvailableUntil: in.AvailableUntil,
		Building:       in.Building,
		Room:           in.Room,
		AdditionalInfo: in.AdditionalInfo,
		ExpiresAt:      in.ExpiresAt,
	}

	if err := s.db.WithContext(ctx).Create(alert).Error; err != nil {
		return nil, fmt.Errorf("failed to create alert: %w", err)
	}

	metrics.AlertsCreated.Inc()
	s.hub.Publish(*alert)
	return alert, nil
}

// ListActive returns all alerts with expires_at > now, newest first.
func (s *AlertService) ListActive(ctx context.Context, now time.Time) ([]models.FoodAlert, error) {
	var alerts []models.FoodAlert
	err := s.db.WithContext(ctx).
		Where("expires_at > ?", now).
		Order("created_at DESC").
		Find(&alerts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list active alerts: %w", err)
	}
	return alerts, nil
}

// ListByClub returns every alert the club has posted, newest first.
func (s *AlertService) ListByClub(ctx context.Context, clubID uuid.UUID) ([]models.FoodAlert, error) {
	var alerts []models.FoodAlert
	err := s.db.WithContext(ctx).
		Where("club_id = ?", clubID).
		Order("created_at DESC").
		Find(&alerts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list club alerts: %w", err)
	}
	return alerts, nil
}
