package enforcement

import (
	"time"

	"github.com/google/uuid"
)

// EnforcementSettings holds per-org scoring bounds. Zero fields fall back to
// DefaultSystemBounds.
type EnforcementSettings struct {
	OrgID                  uuid.UUID `gorm:"type:uuid;primaryKey" json:"org_id"`
	WindowDays             int       `gorm:"column:window_days" json:"window_days"`
	MinAttestations        int       `gorm:"column:min_attestations" json:"min_attestations"`
	ExpectedAttestations   int       `gorm:"column:expected_attestations" json:"expected_attestations"`
	BreachFrequencyCap     int       `gorm:"column:breach_frequency_cap" json:"breach_frequency_cap"`
	ResolutionCeilingHours float64   `gorm:"column:resolution_ceiling_hours" json:"resolution_ceiling_hours"`
	ResolutionSpanHours    float64   `gorm:"column:resolution_span_hours" json:"resolution_span_hours"`
	UpdatedAt              time.Time `gorm:"not null" json:"updated_at"`
}

func (EnforcementSettings) TableName() string { return "enforcement_settings" }

// SystemBounds are the resolved scoring bounds for one org.
type SystemBounds struct {
	WindowDays             int
	MinAttestations        int
	ExpectedAttestations   int
	BreachFrequencyCap     int
	ResolutionCeilingHours float64
	ResolutionSpanHours    float64
}

func DefaultSystemBounds() SystemBounds {
	return SystemBounds{
		WindowDays:             30,
		MinAttestations:        3,
		ExpectedAttestations:   26,
		BreachFrequencyCap:     10,
		ResolutionCeilingHours: 72,
		ResolutionSpanHours:    60,
	}
}

// Bounds overlays non-zero settings on the defaults.
func (s *EnforcementSettings) Bounds() SystemBounds {
	b := DefaultSystemBounds()
	if s == nil {
		return b
	}
	if s.WindowDays > 0 {
		b.WindowDays = s.WindowDays
	}
	if s.MinAttestations > 0 {
		b.MinAttestations = s.MinAttestations
	}
	if s.ExpectedAttestations > 0 {
		b.ExpectedAttestations = s.ExpectedAttestations
	}
	if s.BreachFrequencyCap > 0 {
		b.BreachFrequencyCap = s.BreachFrequencyCap
	}
	if s.ResolutionCeilingHours > 0 {
		b.ResolutionCeilingHours = s.ResolutionCeilingHours
	}
	if s.ResolutionSpanHours > 0 {
		b.ResolutionSpanHours = s.ResolutionSpanHours
	}
	return b
}

// DateOf truncates t to its UTC calendar day.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
