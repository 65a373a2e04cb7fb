package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/bearbites/bearbites-backend/internal/mailer"
	"github.com/bearbites/bearbites-backend/internal/metrics"
	"github.com/bearbites/bearbites-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SubscriberSource yields the recipient list at dispatch time.
type SubscriberSource interface {
	Emails(ctx context.Context) ([]string, error)
}

// MailSender delivers one message to one recipient.
type MailSender interface {
	Send(ctx context.Context, to string, n mailer.Notification) error
}

// FanoutRecorder persists the outcome of one fanout.
type FanoutRecorder interface {
	Record(ctx context.Context, log models.EmailLog) error
}

// NotifyService fans one alert out to every current subscriber,
// best-effort: per-recipient failures are counted, never retried, and
// never abort the batch. It provides no idempotency; callers invoke it
// exactly once per successfully created alert.
type NotifyService struct {
	subs     SubscriberSource
	sender   MailSender
	recorder FanoutRecorder
}

func NewNotifyService(subs SubscriberSource, sender MailSender, recorder FanoutRecorder) *NotifyService {
	return &NotifyService{subs: subs, sender: sender, recorder: recorder}
}

// NotifySubscribers sends one message per subscriber and returns the
// success count. A recipient-list fetch failure is the only total
// failure; it must not affect the already-created alert.
func (s *NotifyService) NotifySubscribers(ctx context.Context, alertID uuid.UUID, n mailer.Notification) (int, error) {
	emails, err := s.subs.Emails(ctx)
	if err != nil {
		metrics.FanoutFailures.Inc()
		return 0, fmt.Errorf("failed to fetch subscribers: %w", err)
	}

	sent := 0
	for _, email := range emails {
		if err := s.sender.Send(ctx, email, n); err != nil {
			slog.Warn("notification delivery failed", "alert_id", alertID.String(), "error", err)
			metrics.EmailSendFailures.Inc()
			continue
		}
		sent++
	}
	metrics.EmailsSent.Add(float64(sent))

	s.record(ctx, alertID, len(emails), sent, n)

	slog.Info("alert fanout completed", "alert_id", alertID.String(), "recipients", len(emails), "sent", sent)
	return sent, nil
}

func (s *NotifyService) record(ctx context.Context, alertID uuid.UUID, recipients, sent int, n mailer.Notification) {
	if s.recorder == nil {
		return
	}
	entry := models.EmailLog{
		AlertID:    alertID,
		Recipients: recipients,
		Sent:       sent,
	}
	if b, err := json.Marshal(n); err == nil {
		entry.Payload = datatypes.JSON(b)
	}
	if err := s.recorder.Record(ctx, entry); err != nil {
		slog.Error("failed to record fanout outcome", "alert_id", alertID.String(), "error", err)
	}
}

// EmailLogStore is the gorm-backed FanoutRecorder.
type EmailLogStore struct {
	db *gorm.DB
}

func NewEmailLogStore(db *gorm.DB) *EmailLogStore {
	return &EmailLogStore{db: db}
}

func (s *EmailLogStore) Record(ctx context.Context, log models.EmailLog) error {
	return s.db.WithContext(ctx).Create(&log).Error
}

var _ FanoutRecorder = (*EmailLogStore)(nil)
