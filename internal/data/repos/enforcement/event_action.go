package enforcement

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/ops-accountability/internal/domain/enforcement"
	"github.com/yungbote/ops-accountability/internal/pkg/dbctx"
	"github.com/yungbote/ops-accountability/internal/pkg/logger"
)

type violationEventRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewViolationEventRepo(db *gorm.DB, baseLog *logger.Logger) ViolationEventRepo {
	return &violationEventRepo{db: db, log: baseLog.With("repo", "ViolationEventRepo")}
}

func (r *violationEventRepo) Append(dbc dbctx.Context, e *types.ViolationEvent) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if e == nil {
		return nil
	}
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}
	return transaction.WithContext(dbc.Ctx).Create(e).Error
}

func (r *violationEventRepo) ListByViolation(dbc dbctx.Context, violationID uuid.UUID) ([]*types.ViolationEvent, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.ViolationEvent
	err := transaction.WithContext(dbc.Ctx).
		Where("violation_id = ?", violationID).
		Order("occurred_at ASC").
		Find(&out).Error
	return out, err
}

type actionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewActionRepo(db *gorm.DB, baseLog *logger.Logger) ActionRepo {
	return &actionRepo{db: db, log: baseLog.With("repo", "ActionRepo")}
}

func (r *actionRepo) Create(dbc dbctx.Context, a *types.Action) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if a == nil {
		return nil
	}
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.ExecutionStatus == "" {
		a.ExecutionStatus = types.ExecutionPending
	}
	return transaction.WithContext(dbc.Ctx).Create(a).Error
}

func (r *actionRepo) ListByViolation(dbc dbctx.Context, violationID uuid.UUID) ([]*types.Action, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Action
	err := transaction.WithContext(dbc.Ctx).
		Where("violation_id = ?", violationID).
		Order("created_at ASC").
		Find(&out).Error
	return out, err
}
