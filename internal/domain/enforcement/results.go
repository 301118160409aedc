package enforcement

import (
	"time"

	"github.com/google/uuid"
)

// LadderResult reports one escalation-ladder run for an org.
type LadderResult struct {
	OrgID               uuid.UUID `json:"org_id"`
	TimeEscalated       int       `json:"time_escalated"`
	RecurrenceFlagged   int       `json:"recurrence_flagged"`
	StructuralEscalated int       `json:"structural_escalated"`
	SystemicCreated     int       `json:"systemic_created"`
	SilencePenalized    int       `json:"silence_penalized"`
	StallPenalized      int       `json:"stall_penalized"`
	Errors              []string  `json:"errors"`
}

func (r LadderResult) Transitions() int {
	return r.TimeEscalated + r.RecurrenceFlagged + r.StructuralEscalated + r.SystemicCreated + r.SilencePenalized + r.StallPenalized
}

// ScoreResult reports one scoring run for an org and business date.
type ScoreResult struct {
	OrgID           uuid.UUID `json:"org_id"`
	BusinessDate    time.Time `json:"business_date"`
	ManagersScored  int       `json:"managers_scored"`
	ManagersSkipped int       `json:"managers_skipped"`
	VenuesScored    int       `json:"venues_scored"`
	Errors          []string  `json:"errors"`
}

// CarryForwardResult reports one carry-forward sweep across all orgs.
type CarryForwardResult struct {
	ManagerActionsEscalated  int      `json:"manager_actions_escalated"`
	FeedbackObjectsEscalated int      `json:"feedback_objects_escalated"`
	NotificationsSent        int      `json:"notifications_sent"`
	Errors                   []string `json:"errors"`
}
