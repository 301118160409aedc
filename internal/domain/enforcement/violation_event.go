package enforcement

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	EventCreated             = "created"
	EventEscalated           = "escalated"
	EventRecurrenceFlagged   = "recurrence_flagged"
	EventStructuralEscalated = "structural_escalation"
	EventSilencePenalty      = "silence_penalty"
	EventStallPenalty        = "stall_penalty"
	EventAcknowledged        = "acknowledged"
	EventActionStarted       = "action_started"
	EventResolved            = "resolved"
	EventWaived              = "waived"
)

// ViolationEvent is the append-only audit trail of a violation. Rows are never
// updated or deleted.
type ViolationEvent struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ViolationID uuid.UUID      `gorm:"type:uuid;not null;index" json:"violation_id"`
	OrgID       uuid.UUID      `gorm:"type:uuid;not null;index" json:"org_id"`
	EventType   string         `gorm:"column:event_type;not null;index" json:"event_type"`
	OccurredAt  time.Time      `gorm:"column:occurred_at;not null;index" json:"occurred_at"`
	Metadata    datatypes.JSON `gorm:"column:metadata;type:jsonb" json:"metadata"`
}

func (ViolationEvent) TableName() string { return "violation_event" }
