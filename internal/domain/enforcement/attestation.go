package enforcement

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	AttestationDraft     = "draft"
	AttestationSubmitted = "submitted"
	AttestationApproved  = "approved"
)

// Attestation is a manager's nightly shift sign-off for a venue.
type Attestation struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	OrgID        uuid.UUID      `gorm:"type:uuid;not null;index" json:"org_id"`
	VenueID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"venue_id"`
	ManagerID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"manager_id"`
	ManagerName  string         `gorm:"column:manager_name" json:"manager_name"`
	BusinessDate datatypes.Date `gorm:"column:business_date;not null;index" json:"business_date"`
	Status       string         `gorm:"column:status;not null" json:"status"`
	SubmittedAt  *time.Time     `gorm:"column:submitted_at;index" json:"submitted_at,omitempty"`
}

func (Attestation) TableName() string { return "attestation" }

func (a *Attestation) IsSubmitted() bool {
	return a != nil && a.SubmittedAt != nil && (a.Status == AttestationSubmitted || a.Status == AttestationApproved)
}

type Venue struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OrgID  uuid.UUID `gorm:"type:uuid;not null;index" json:"org_id"`
	Name   string    `gorm:"column:name;not null" json:"name"`
	Active bool      `gorm:"column:active;not null;default:true" json:"active"`
}

func (Venue) TableName() string { return "venue" }
