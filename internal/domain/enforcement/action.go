package enforcement

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	ActionEscalate = "escalate"
	ActionNotify   = "notify"
)

const ExecutionPending = "pending"

const (
	RoleManager  = "manager"
	RoleGM       = "gm"
	RoleDirector = "director"
	RoleOwner    = "owner"
)

// Action is produced by a transition and executed by an external dispatcher.
type Action struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ViolationID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"violation_id"`
	OrgID           uuid.UUID      `gorm:"type:uuid;not null;index" json:"org_id"`
	ActionType      string         `gorm:"column:action_type;not null" json:"action_type"`
	ActionTarget    string         `gorm:"column:action_target;not null;index" json:"action_target"`
	Message         string         `gorm:"column:message;type:text" json:"message"`
	ActionData      datatypes.JSON `gorm:"column:action_data;type:jsonb" json:"action_data"`
	ScheduledFor    time.Time      `gorm:"column:scheduled_for;not null;index" json:"scheduled_for"`
	ExecutionStatus string         `gorm:"column:execution_status;not null;index" json:"execution_status"`
	CreatedAt       time.Time      `gorm:"not null" json:"created_at"`
}

func (Action) TableName() string { return "violation_action" }

// RoleForLevel maps an escalation level to the role that owns it.
func RoleForLevel(level int) string {
	switch level {
	case 1:
		return RoleGM
	case 2:
		return RoleDirector
	case 3:
		return RoleOwner
	default:
		return RoleManager
	}
}
