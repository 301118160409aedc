package enforcement

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	PriorityUrgent = "urgent"
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

const (
	ItemPending      = "pending"
	ItemOpen         = "open"
	ItemAcknowledged = "acknowledged"
	ItemInProgress   = "in_progress"
	ItemEscalated    = "escalated"
	ItemCompleted    = "completed"
	ItemResolved     = "resolved"
	ItemDismissed    = "dismissed"
)

// ManagerAction is a follow-up task assigned to a venue role.
type ManagerAction struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	OrgID            uuid.UUID      `gorm:"type:uuid;not null;index" json:"org_id"`
	VenueID          uuid.UUID      `gorm:"type:uuid;not null;index" json:"venue_id"`
	BusinessDate     datatypes.Date `gorm:"column:business_date;not null;index" json:"business_date"`
	Title            string         `gorm:"column:title;not null" json:"title"`
	Description      string         `gorm:"column:description;type:text" json:"description,omitempty"`
	Priority         string         `gorm:"column:priority;not null;index" json:"priority"`
	Status           string         `gorm:"column:status;not null;index" json:"status"`
	AssignedRole     string         `gorm:"column:assigned_role;not null" json:"assigned_role"`
	ExpiresAt        *time.Time     `gorm:"column:expires_at" json:"expires_at,omitempty"`
	EscalatedAt      *time.Time     `gorm:"column:escalated_at" json:"escalated_at,omitempty"`
	EscalatedTo      string         `gorm:"column:escalated_to" json:"escalated_to,omitempty"`
	EscalationReason string         `gorm:"column:escalation_reason" json:"escalation_reason,omitempty"`
	CreatedAt        time.Time      `gorm:"not null;index" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"not null" json:"updated_at"`
}

func (ManagerAction) TableName() string { return "manager_action" }

// Expired reports whether the action has passed its expiry and dropped out of the queue.
func (m *ManagerAction) Expired(now time.Time) bool {
	return m.ExpiresAt != nil && !m.ExpiresAt.After(now)
}
