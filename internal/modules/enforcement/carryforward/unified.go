package carryforward

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/ops-accountability/internal/domain/enforcement"
)

// UnifiedItem is the common queue view of a manager action or a feedback object.
type UnifiedItem struct {
	SourceTable      string    `json:"source_table"`
	SourceID         uuid.UUID `json:"source_id"`
	OrgID            uuid.UUID `json:"org_id"`
	VenueID          uuid.UUID `json:"venue_id"`
	BusinessDate     time.Time `json:"business_date"`
	Title            string    `json:"title"`
	PriorityRank     int       `json:"priority_rank"`
	Severity         string    `json:"severity"`
	Status           string    `json:"status"`
	CurrentOwner     string    `json:"current_owner"`
	AgeHours         float64   `json:"age_hours"`
	EscalatedTo      string    `json:"escalated_to,omitempty"`
	EscalationReason string    `json:"escalation_reason,omitempty"`
}

// escalation is a decided hand-off for one source row.
type escalation struct {
	from   string
	to     string
	reason string
}

// UnifiedSource is implemented only by the two source-table variants.
type UnifiedSource interface {
	Project(now time.Time) UnifiedItem
	decide(now time.Time) (escalation, bool)
	unified()
}

type ManagerActionItem struct{ *types.ManagerAction }

type FeedbackObjectItem struct{ *types.FeedbackObject }

func (ManagerActionItem) unified()  {}
func (FeedbackObjectItem) unified() {}

func ageHours(created, now time.Time) float64 {
	h := now.Sub(created).Hours()
	if h < 0 {
		return 0
	}
	return h
}

func rankOr(m map[string]int, key string) int {
	if r, ok := m[key]; ok {
		return r
	}
	return unknownRank
}

func (m ManagerActionItem) owner() string {
	if strings.TrimSpace(m.EscalatedTo) != "" {
		return m.EscalatedTo
	}
	return m.AssignedRole
}

func (m ManagerActionItem) Project(now time.Time) UnifiedItem {
	severity, ok := managerActionSeverity[m.Priority]
	if !ok {
		severity = types.SeverityInfo
	}
	return UnifiedItem{
		SourceTable:      types.SourceManagerAction,
		SourceID:         m.ID,
		OrgID:            m.OrgID,
		VenueID:          m.VenueID,
		BusinessDate:     types.DateOf(time.Time(m.BusinessDate)),
		Title:            m.Title,
		PriorityRank:     rankOr(managerActionRank, m.Priority),
		Severity:         severity,
		Status:           m.Status,
		CurrentOwner:     m.owner(),
		AgeHours:         ageHours(m.CreatedAt, now),
		EscalatedTo:      m.EscalatedTo,
		EscalationReason: m.EscalationReason,
	}
}

func (m ManagerActionItem) decide(now time.Time) (escalation, bool) {
	age := now.Sub(m.CreatedAt)
	owner := m.owner()
	if age >= corporateOverrideAge {
		return ageOverride(owner, age)
	}
	threshold, ok := managerActionStaleAfter[m.Priority]
	if !ok || age < threshold {
		return escalation{}, false
	}
	next, ok := NextRole(owner)
	if !ok {
		return escalation{}, false
	}
	return escalation{from: owner, to: next, reason: overdueReason(age, m.Priority)}, true
}

func (f FeedbackObjectItem) owner() string {
	if strings.TrimSpace(f.EscalatedTo) != "" {
		return f.EscalatedTo
	}
	return f.OwnerRole
}

func (f FeedbackObjectItem) Project(now time.Time) UnifiedItem {
	return UnifiedItem{
		SourceTable:      types.SourceFeedbackObject,
		SourceID:         f.ID,
		OrgID:            f.OrgID,
		VenueID:          f.VenueID,
		BusinessDate:     types.DateOf(time.Time(f.BusinessDate)),
		Title:            f.Title,
		PriorityRank:     rankOr(feedbackRank, f.Severity),
		Severity:         f.Severity,
		Status:           f.Status,
		CurrentOwner:     f.owner(),
		AgeHours:         ageHours(f.CreatedAt, now),
		EscalatedTo:      f.EscalatedTo,
		EscalationReason: f.EscalationReason,
	}
}

func (f FeedbackObjectItem) decide(now time.Time) (escalation, bool) {
	age := now.Sub(f.CreatedAt)
	owner := f.owner()
	if age >= corporateOverrideAge {
		return ageOverride(owner, age)
	}
	if f.DueAt == nil || !f.DueAt.Before(now) {
		return escalation{}, false
	}
	next, ok := NextRole(owner)
	if !ok {
		return escalation{}, false
	}
	return escalation{from: owner, to: next, reason: overdueReason(age, f.Severity)}, true
}

func ageOverride(owner string, age time.Duration) (escalation, bool) {
	if IsTerminalRole(owner) {
		return escalation{}, false
	}
	return escalation{
		from:   owner,
		to:     RoleCorporate,
		reason: fmt.Sprintf("auto:age_%dh_corporate", int(age.Hours())),
	}, true
}

func overdueReason(age time.Duration, key string) string {
	return fmt.Sprintf("auto:overdue_%dh_%s", int(age.Hours()), key)
}

func escalationUpdates(e escalation, now time.Time) map[string]interface{} {
	return map[string]interface{}{
		"status":            types.ItemEscalated,
		"escalated_at":      now,
		"escalated_to":      e.to,
		"escalation_reason": e.reason,
	}
}
