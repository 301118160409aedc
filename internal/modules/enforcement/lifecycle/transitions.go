package lifecycle

import (
	types "github.com/yungbote/ops-accountability/internal/domain/enforcement"
)

// legal lists the statuses reachable from each non-terminal status. Waiving is
// allowed from anywhere before resolution; resolving requires corrective action.
var legal = map[string][]string{
	types.StatusOpen:         {types.StatusAcknowledged, types.StatusWaived},
	types.StatusAcknowledged: {types.StatusInProgress, types.StatusWaived},
	types.StatusInProgress:   {types.StatusResolved, types.StatusWaived},
}

// CanTransition reports whether a violation in status from may move to status to.
func CanTransition(from, to string) bool {
	for _, s := range legal[from] {
		if s == to {
			return true
		}
	}
	return false
}

// NextLevel returns the escalation level one step up, capped at the top of the ladder.
func NextLevel(level int) int {
	if level >= types.MaxEscalationLevel {
		return types.MaxEscalationLevel
	}
	if level < 0 {
		return 1
	}
	return level + 1
}
