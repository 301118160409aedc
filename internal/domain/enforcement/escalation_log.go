package enforcement

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	SourceManagerAction  = "manager_action"
	SourceFeedbackObject = "feedback_object"
)

// EscalationLogEntry records one automatic hand-off of a carry-forward item.
type EscalationLogEntry struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	OrgID        uuid.UUID      `gorm:"type:uuid;not null;index" json:"org_id"`
	SourceTable  string         `gorm:"column:source_table;not null;index:idx_escalation_log_source,priority:1" json:"source_table"`
	SourceID     uuid.UUID      `gorm:"type:uuid;column:source_id;not null;index:idx_escalation_log_source,priority:2" json:"source_id"`
	FromRole     string         `gorm:"column:from_role;not null" json:"from_role"`
	ToRole       string         `gorm:"column:to_role;not null" json:"to_role"`
	Reason       string         `gorm:"column:reason;not null" json:"reason"`
	VenueID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"venue_id"`
	BusinessDate datatypes.Date `gorm:"column:business_date;not null" json:"business_date"`
	CreatedAt    time.Time      `gorm:"not null;index" json:"created_at"`
}

func (EscalationLogEntry) TableName() string { return "escalation_log" }
