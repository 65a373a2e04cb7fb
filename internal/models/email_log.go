package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// EmailLog records the outcome of one notification fanout. There is no
// retry machinery; the row is the audit trail for what was attempted.
type EmailLog struct {
	ID         uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	AlertID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"alert_id"`
	Recipients int            `gorm:"not null" json:"recipients"`
	Sent       int            `gorm:"not null" json:"sent"`
	Payload    datatypes.JSON `gorm:"type:jsonb;default:'{}'" json:"payload"`
	CreatedAt  time.Time      `json:"created_at"`
}
