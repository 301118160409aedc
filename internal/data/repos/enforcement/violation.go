package enforcement

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/ops-accountability/internal/domain/enforcement"
	"github.com/yungbote/ops-accountability/internal/pkg/dbctx"
	"github.com/yungbote/ops-accountability/internal/pkg/logger"
)

var terminalStatuses = []string{types.StatusResolved, types.StatusWaived}

type violationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewViolationRepo(db *gorm.DB, baseLog *logger.Logger) ViolationRepo {
	return &violationRepo{
		db:  db,
		log: baseLog.With("repo", "ViolationRepo"),
	}
}

func (r *violationRepo) tx(dbc dbctx.Context) *gorm.DB {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx)
}

func (r *violationRepo) Create(dbc dbctx.Context, v *types.Violation) (bool, error) {
	if v == nil {
		return false, nil
	}
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	q := r.tx(dbc)
	if v.DedupeKey != nil {
		q = q.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "dedupe_key"}},
			DoNothing: true,
		})
	}
	res := q.Create(v)
	if isUniqueViolation(res.Error) {
		r.log.Debug("Violation already exists", "violation_type", v.ViolationType)
		return false, nil
	}
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *violationRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Violation, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var out types.Violation
	err := r.tx(dbc).Where("id = ?", id).Limit(1).Find(&out).Error
	if err != nil {
		return nil, err
	}
	if out.ID == uuid.Nil {
		return nil, nil
	}
	return &out, nil
}

func (r *violationRepo) ListOpen(dbc dbctx.Context, orgID uuid.UUID) ([]*types.Violation, error) {
	var out []*types.Violation
	err := r.tx(dbc).
		Where("org_id = ? AND status NOT IN ?", orgID, terminalStatuses).
		Order("detected_at ASC").
		Find(&out).Error
	return out, err
}

func (r *violationRepo) ListDetectedSince(dbc dbctx.Context, orgID uuid.UUID, since time.Time) ([]*types.Violation, error) {
	var out []*types.Violation
	err := r.tx(dbc).
		Where("org_id = ? AND detected_at >= ?", orgID, since).
		Order("detected_at ASC").
		Find(&out).Error
	return out, err
}

func (r *violationRepo) ListResolvedSince(dbc dbctx.Context, orgID uuid.UUID, since time.Time) ([]*types.Violation, error) {
	var out []*types.Violation
	err := r.tx(dbc).
		Where("org_id = ? AND status = ? AND resolved_at IS NOT NULL AND resolved_at >= ?", orgID, types.StatusResolved, since).
		Order("resolved_at ASC").
		Find(&out).Error
	return out, err
}

func (r *violationRepo) FindSystemic(dbc dbctx.Context, orgID uuid.UUID, violationType string, since time.Time) (*types.Violation, error) {
	var out types.Violation
	err := r.tx(dbc).
		Where("org_id = ? AND venue_id IS NULL AND violation_type = ? AND title LIKE ? AND detected_at >= ?",
			orgID, violationType, types.SystemicTitlePrefix+"%", since).
		Order("detected_at DESC").
		Limit(1).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	if out.ID == uuid.Nil {
		return nil, nil
	}
	return &out, nil
}

func (r *violationRepo) UpdateIfState(dbc dbctx.Context, id uuid.UUID, pre Precondition, updates map[string]interface{}) (bool, error) {
	if id == uuid.Nil || len(updates) == 0 {
		return false, nil
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now().UTC()
	}
	q := r.tx(dbc).
		Model(&types.Violation{}).
		Where("id = ? AND status NOT IN ?", id, terminalStatuses)
	if len(pre.Statuses) == 1 {
		q = q.Where("status = ?", pre.Statuses[0])
	} else if len(pre.Statuses) > 1 {
		q = q.Where("status IN ?", pre.Statuses)
	}
	if pre.EscalationLevel != nil {
		q = q.Where("escalation_level = ?", *pre.EscalationLevel)
	}
	if pre.RecurrenceCount != nil {
		q = q.Where("recurrence_count = ?", *pre.RecurrenceCount)
	}
	if pre.SilenceUnpenalized {
		q = q.Where("silence_penalized_at IS NULL")
	}
	if pre.StallUnpenalized {
		q = q.Where("stall_penalized_at IS NULL")
	}
	res := q.Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
