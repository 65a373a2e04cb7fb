package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bearbites/bearbites-backend/internal/models"
	"gorm.io/gorm"
)

var (
	ErrInvalidSubscriberEmail = errors.New("email must belong to the campus domain")
	ErrAlreadySubscribed      = errors.New("email is already subscribed")
)

// SubscriberService manages the opt-in recipient list.
type SubscriberService struct {
	db          *gorm.DB
	emailSuffix string
}

func NewSubscriberService(db *gorm.DB, emailSuffix string) *SubscriberService {
	return &SubscriberService{db: db, emailSuffix: emailSuffix}
}

func (s *SubscriberService) Subscribe(ctx context.Context, email, name string) error {
	if !strings.HasSuffix(email, s.emailSuffix) {
		return ErrInvalidSubscriberEmail
	}

	var existing models.Subscriber
	if err := s.db.WithContext(ctx).First(&existing, "email = ?", email).Error; err == nil {
		return ErrAlreadySubscribed
	}

	// The existence check above races with concurrent subscribes; the
	// losing insert hits the primary key and resolves as a duplicate.
	sub := models.Subscriber{Email: email, Name: name}
	if err := s.db.WithContext(ctx).Create(&sub).Error; err != nil {
		return translateSubscribeError(err)
	}
	return nil
}

func translateSubscribeError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrAlreadySubscribed
	}
	return fmt.Errorf("failed to create subscriber: %w", err)
}

func (s *SubscriberService) Unsubscribe(ctx context.Context, email string) error {
	return s.db.WithContext(ctx).Delete(&models.Subscriber{}, "email = ?", email).Error
}

// Emails returns the full recipient list. Fanout reads it at dispatch
// time; membership at that moment is authoritative for the alert.
func (s *SubscriberService) Emails(ctx context.Context) ([]string, error) {
	var emails []string
	err := s.db.WithContext(ctx).
		Model(&models.Subscriber{}).
		Pluck("email", &emails).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch subscribers: %w", err)
	}
	return emails, nil
}
