package services

import (
	"context"
	"errors"

	"github.com/bearbites/bearbites-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrProfileNotFound = errors.New("profile not found")

// ProfileService manages club profiles, one per authenticated identity.
type ProfileService struct {
	db *gorm.DB
}

func NewProfileService(db *gorm.DB) *ProfileService {
	return &ProfileService{db: db}
}

func (s *ProfileService) Find(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	var profile models.Profile
	if err := s.db.WithContext(ctx).First(&profile, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (s *ProfileService) Create(ctx context.Context, profile *models.Profile) error {
	return s.db.WithContext(ctx).Create(profile).Error
}

// Consented reports whether the identity has accepted the terms.
func (s *ProfileService) Consented(ctx context.Context, id uuid.UUID) (bool, error) {
	profile, err := s.Find(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrProfileNotFound
		}
		return false, err
	}
	return profile.TermsAccepted, nil
}

// AcceptTerms flips terms_accepted to true for the identity. The flag
// never reverts; re-accepting is a harmless no-op update.
func (s *ProfileService) AcceptTerms(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).Model(&models.Profile{}).
		Where("id = ?", id).
		Update("terms_accepted", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProfileNotFound
	}
	return nil
}
