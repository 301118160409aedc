package ladder

import (
	"time"

	types "github.com/yungbote/ops-accountability/internal/domain/enforcement"
)

type levelRule struct {
	From  int
	To    int
	After time.Duration
}

// timeRules is the per-severity time ladder. Warnings stop at director.
var timeRules = map[string][]levelRule{
	types.SeverityCritical: {
		{From: 0, To: 1, After: 24 * time.Hour},
		{From: 1, To: 2, After: 48 * time.Hour},
		{From: 2, To: 3, After: 72 * time.Hour},
	},
	types.SeverityWarning: {
		{From: 0, To: 1, After: 72 * time.Hour},
		{From: 1, To: 2, After: 120 * time.Hour},
	},
}

func ruleFor(severity string, level int) (levelRule, bool) {
	for _, r := range timeRules[severity] {
		if r.From == level {
			return r, true
		}
	}
	return levelRule{}, false
}

// Unacknowledged-open limits since detection.
var silenceLimits = map[string]time.Duration{
	types.SeverityCritical: 4 * time.Hour,
	types.SeverityWarning:  12 * time.Hour,
}

// Acknowledged-without-action limits since ack.
var stallLimits = map[string]time.Duration{
	types.SeverityCritical: 24 * time.Hour,
	types.SeverityWarning:  48 * time.Hour,
}

const (
	recurrenceWindow    = 14 * 24 * time.Hour
	recurrenceThreshold = 3

	structuralWindow    = 7 * 24 * time.Hour
	structuralThreshold = 2
	structuralLevel     = 2

	systemicWindow     = 14 * 24 * time.Hour
	systemicVenueCount = 3
	systemicLevel      = 2
	systemicWindowDays = 14
)

const (
	passTimeBased  = "time_based"
	passRecurrence = "recurrence"
	passSystemic   = "systemic"
	passSilence    = "silence"
	passStall      = "stall"
)
