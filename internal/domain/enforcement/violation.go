package enforcement

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

const (
	StatusOpen         = "open"
	StatusAcknowledged = "acknowledged"
	StatusInProgress   = "in_progress"
	StatusResolved     = "resolved"
	StatusWaived       = "waived"
)

// MaxEscalationLevel is the top of the violation responsibility ladder (owner).
const MaxEscalationLevel = 3

// SystemicTitlePrefix marks org-level violations synthesized from cross-venue recurrence.
const SystemicTitlePrefix = "Systemic: "

type Violation struct {
	ID                   uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	OrgID                uuid.UUID      `gorm:"type:uuid;not null;index" json:"org_id"`
	VenueID              *uuid.UUID     `gorm:"type:uuid;index" json:"venue_id,omitempty"`
	ViolationType        string         `gorm:"column:violation_type;not null;index" json:"violation_type"`
	Title                string         `gorm:"column:title;not null" json:"title"`
	Description          string         `gorm:"column:description;type:text" json:"description,omitempty"`
	Severity             string         `gorm:"column:severity;not null;index" json:"severity"`
	Status               string         `gorm:"column:status;not null;index" json:"status"`
	EscalationLevel      int            `gorm:"column:escalation_level;not null;default:0" json:"escalation_level"`
	DetectedAt           time.Time      `gorm:"column:detected_at;not null;index" json:"detected_at"`
	AckAt                *time.Time     `gorm:"column:ack_at" json:"ack_at,omitempty"`
	ActionAt             *time.Time     `gorm:"column:action_at" json:"action_at,omitempty"`
	ActionSummary        string         `gorm:"column:action_summary;type:text" json:"action_summary,omitempty"`
	ResolvedAt           *time.Time     `gorm:"column:resolved_at;index" json:"resolved_at,omitempty"`
	EscalatedAt          *time.Time     `gorm:"column:escalated_at" json:"escalated_at,omitempty"`
	SilencePenalizedAt   *time.Time     `gorm:"column:silence_penalized_at" json:"silence_penalized_at,omitempty"`
	StallPenalizedAt     *time.Time     `gorm:"column:stall_penalized_at" json:"stall_penalized_at,omitempty"`
	RecurrenceCount      int            `gorm:"column:recurrence_count;not null;default:0" json:"recurrence_count"`
	VerificationRequired bool           `gorm:"column:verification_required;not null;default:false" json:"verification_required"`
	Metadata             datatypes.JSON `gorm:"column:metadata;type:jsonb" json:"metadata"`
	BusinessDate         datatypes.Date `gorm:"column:business_date;index" json:"business_date"`
	DedupeKey            *string        `gorm:"column:dedupe_key;uniqueIndex" json:"dedupe_key,omitempty"`
	CreatedAt            time.Time      `gorm:"not null;index" json:"created_at"`
	UpdatedAt            time.Time      `gorm:"not null" json:"updated_at"`
}

func (Violation) TableName() string { return "violation" }

// IsTerminalStatus reports whether status freezes a violation.
func IsTerminalStatus(status string) bool {
	return status == StatusResolved || status == StatusWaived
}

func (v *Violation) IsTerminal() bool {
	return v != nil && IsTerminalStatus(v.Status)
}

func (v *Violation) IsSystemic() bool {
	return v != nil && v.VenueID == nil && strings.HasPrefix(v.Title, SystemicTitlePrefix)
}

func (v *Violation) MetadataMap() map[string]any {
	out := map[string]any{}
	if v == nil || len(v.Metadata) == 0 {
		return out
	}
	_ = json.Unmarshal(v.Metadata, &out)
	return out
}

// AttributedTo reports whether the violation metadata names the given manager
// as manager_name or server_name (case-insensitive).
func (v *Violation) AttributedTo(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	meta := v.MetadataMap()
	for _, key := range []string{"manager_name", "server_name"} {
		if s, ok := meta[key].(string); ok && strings.EqualFold(strings.TrimSpace(s), name) {
			return true
		}
	}
	return false
}

// FullLifecycle is true when the resolution passed through acknowledgment and
// a recorded corrective action.
func (v *Violation) FullLifecycle() bool {
	return v != nil && v.AckAt != nil && v.ActionAt != nil && strings.TrimSpace(v.ActionSummary) != ""
}

// ReferenceTime is the clock start for the next time-based escalation.
func (v *Violation) ReferenceTime() time.Time {
	if v.EscalatedAt != nil {
		return *v.EscalatedAt
	}
	return v.DetectedAt
}

func VenueKey(id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	return id.String()
}
