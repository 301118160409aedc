package enforcement

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const SeverityInfo = "info"

// FeedbackObject is a review or guest-feedback item that needs an owner's response.
type FeedbackObject struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	OrgID            uuid.UUID      `gorm:"type:uuid;not null;index" json:"org_id"`
	VenueID          uuid.UUID      `gorm:"type:uuid;not null;index" json:"venue_id"`
	BusinessDate     datatypes.Date `gorm:"column:business_date;not null;index" json:"business_date"`
	Title            string         `gorm:"column:title;not null" json:"title"`
	Body             string         `gorm:"column:body;type:text" json:"body,omitempty"`
	Severity         string         `gorm:"column:severity;not null;index" json:"severity"`
	Status           string         `gorm:"column:status;not null;index" json:"status"`
	OwnerRole        string         `gorm:"column:owner_role;not null" json:"owner_role"`
	DueAt            *time.Time     `gorm:"column:due_at" json:"due_at,omitempty"`
	EscalatedAt      *time.Time     `gorm:"column:escalated_at" json:"escalated_at,omitempty"`
	EscalatedTo      string         `gorm:"column:escalated_to" json:"escalated_to,omitempty"`
	EscalationReason string         `gorm:"column:escalation_reason" json:"escalation_reason,omitempty"`
	CreatedAt        time.Time      `gorm:"not null;index" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"not null" json:"updated_at"`
}

func (FeedbackObject) TableName() string { return "feedback_object" }
