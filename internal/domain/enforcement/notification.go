package enforcement

import "github.com/google/uuid"

// Notification is a fire-and-forget message to the role that now owns an item.
type Notification struct {
	OrgID       uuid.UUID `json:"org_id"`
	VenueID     uuid.UUID `json:"venue_id"`
	TargetRole  string    `json:"target_role"`
	Severity    string    `json:"severity"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	SourceTable string    `json:"source_table"`
	SourceID    uuid.UUID `json:"source_id"`
}
