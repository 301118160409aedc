package carryforward

import (
	"strings"
	"time"

	types "github.com/yungbote/ops-accountability/internal/domain/enforcement"
)

const RoleCorporate = "corporate"

// roleChain is the carry-forward ownership chain. It is separate from the
// violation ladder's level roles.
var roleChain = map[string]string{
	"venue_manager": "gm",
	"gm":            RoleCorporate,
	"agm":           "gm",
	"Manager":       "GM",
	"GM":            RoleCorporate,
}

// NextRole returns the role an item moves to from current. It reports false
// for terminal and unknown roles.
func NextRole(current string) (string, bool) {
	if IsTerminalRole(current) {
		return "", false
	}
	next, ok := roleChain[strings.TrimSpace(current)]
	return next, ok
}

func IsTerminalRole(role string) bool {
	return strings.EqualFold(strings.TrimSpace(role), RoleCorporate)
}

// Age past which any open item goes straight to corporate.
const corporateOverrideAge = 168 * time.Hour

var managerActionStaleAfter = map[string]time.Duration{
	types.PriorityUrgent: 24 * time.Hour,
	types.PriorityHigh:   48 * time.Hour,
	types.PriorityMedium: 72 * time.Hour,
	types.PriorityLow:    168 * time.Hour,
}

var managerActionRank = map[string]int{
	types.PriorityUrgent: 1,
	types.PriorityHigh:   2,
	types.PriorityMedium: 3,
	types.PriorityLow:    4,
}

var managerActionSeverity = map[string]string{
	types.PriorityUrgent: types.SeverityCritical,
	types.PriorityHigh:   types.SeverityWarning,
	types.PriorityMedium: types.SeverityWarning,
	types.PriorityLow:    types.SeverityInfo,
}

var feedbackRank = map[string]int{
	types.SeverityCritical: 1,
	types.SeverityWarning:  3,
	types.SeverityInfo:     4,
}

const unknownRank = 5
