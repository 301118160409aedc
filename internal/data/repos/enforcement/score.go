package enforcement

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/ops-accountability/internal/domain/enforcement"
	"github.com/yungbote/ops-accountability/internal/pkg/dbctx"
	"github.com/yungbote/ops-accountability/internal/pkg/logger"
)

type scoreRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewScoreRepo(db *gorm.DB, baseLog *logger.Logger) ScoreRepo {
	return &scoreRepo{db: db, log: baseLog.With("repo", "ScoreRepo")}
}

// Upsert replaces existing rows on (org_id, entity_type, entity_id, business_date).
func (r *scoreRepo) Upsert(dbc dbctx.Context, scores []*types.EnforcementScore) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(scores) == 0 {
		return nil
	}
	for _, s := range scores {
		if s != nil && s.ID == uuid.Nil {
			s.ID = uuid.New()
		}
	}
	return transaction.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "org_id"},
				{Name: "entity_type"},
				{Name: "entity_id"},
				{Name: "business_date"},
			},
			DoUpdates: clause.AssignmentColumns([]string{"score", "components", "window_days", "computed_at"}),
		}).
		Create(&scores).Error
}

func (r *scoreRepo) ListByDate(dbc dbctx.Context, orgID uuid.UUID, businessDate time.Time) ([]*types.EnforcementScore, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.EnforcementScore
	err := transaction.WithContext(dbc.Ctx).
		Where("org_id = ? AND business_date = ?", orgID, datatypes.Date(types.DateOf(businessDate))).
		Order("entity_type ASC, score DESC").
		Find(&out).Error
	return out, err
}
