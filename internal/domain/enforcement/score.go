package enforcement

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	EntityManager = "manager"
	EntityVenue   = "venue"
)

// ScoreComponent is one weighted input of a composite score. Raw is in [0,1].
type ScoreComponent struct {
	Raw      float64 `json:"raw"`
	Weighted float64 `json:"weighted"`
	Weight   float64 `json:"weight"`
}

// EnforcementScore is keyed by (org_id, entity_type, entity_id, business_date);
// reruns replace the row.
type EnforcementScore struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	OrgID        uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_enforcement_score_key,priority:1" json:"org_id"`
	EntityType   string         `gorm:"column:entity_type;not null;uniqueIndex:idx_enforcement_score_key,priority:2" json:"entity_type"`
	EntityID     uuid.UUID      `gorm:"type:uuid;column:entity_id;not null;uniqueIndex:idx_enforcement_score_key,priority:3" json:"entity_id"`
	BusinessDate datatypes.Date `gorm:"column:business_date;not null;uniqueIndex:idx_enforcement_score_key,priority:4" json:"business_date"`
	Score        float64        `gorm:"column:score;not null" json:"score"`
	Components   datatypes.JSON `gorm:"column:components;type:jsonb" json:"components"`
	WindowDays   int            `gorm:"column:window_days;not null" json:"window_days"`
	ComputedAt   time.Time      `gorm:"column:computed_at;not null" json:"computed_at"`
}

func (EnforcementScore) TableName() string { return "enforcement_score" }
