package enforcement

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// CommandScore is the averaged shift-command rating, each field on a 0-10 scale.
type CommandScore struct {
	Overall      float64 `json:"overall"`
	Composure    float64 `json:"composure,omitempty"`
	Clarity      float64 `json:"clarity,omitempty"`
	Delegation   float64 `json:"delegation,omitempty"`
	SampleShifts int     `json:"sample_shifts,omitempty"`
}

// ManagerSignalProfile is a behavioral summary maintained outside this engine.
// It is read-only here.
type ManagerSignalProfile struct {
	ID                     uuid.UUID                        `gorm:"type:uuid;primaryKey" json:"id"`
	OrgID                  uuid.UUID                        `gorm:"type:uuid;not null;index:idx_signal_profile_manager,priority:1" json:"org_id"`
	ManagerID              uuid.UUID                        `gorm:"type:uuid;not null;index:idx_signal_profile_manager,priority:2" json:"manager_id"`
	WindowDays             int                              `gorm:"column:window_days;not null" json:"window_days"`
	CommitmentsFulfilled   int                              `gorm:"column:commitments_fulfilled;not null;default:0" json:"commitments_fulfilled"`
	CommitmentsUnfulfilled int                              `gorm:"column:commitments_unfulfilled;not null;default:0" json:"commitments_unfulfilled"`
	AvoidanceRate          float64                          `gorm:"column:avoidance_rate;not null;default:0" json:"avoidance_rate"`
	BlameShiftRate         float64                          `gorm:"column:blame_shift_rate;not null;default:0" json:"blame_shift_rate"`
	CorrectiveActionRate   float64                          `gorm:"column:corrective_action_rate;not null;default:0" json:"corrective_action_rate"`
	AvgCommandScore        datatypes.JSONType[CommandScore] `gorm:"column:avg_command_score;type:jsonb" json:"avg_command_score"`
	ComputedAt             time.Time                        `gorm:"column:computed_at;not null;index" json:"computed_at"`
}

func (ManagerSignalProfile) TableName() string { return "manager_signal_profile" }

// FollowThroughRate returns fulfilled/(fulfilled+unfulfilled) and false when
// there were no commitments at all.
func (p *ManagerSignalProfile) FollowThroughRate() (float64, bool) {
	if p == nil {
		return 0, false
	}
	total := p.CommitmentsFulfilled + p.CommitmentsUnfulfilled
	if total <= 0 {
		return 0, false
	}
	return float64(p.CommitmentsFulfilled) / float64(total), true
}
