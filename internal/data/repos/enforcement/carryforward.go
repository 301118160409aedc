package enforcement

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/yungbote/ops-accountability/internal/domain/enforcement"
	"github.com/yungbote/ops-accountability/internal/pkg/dbctx"
	"github.com/yungbote/ops-accountability/internal/pkg/logger"
)

type managerActionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewManagerActionRepo(db *gorm.DB, baseLog *logger.Logger) ManagerActionRepo {
	return &managerActionRepo{db: db, log: baseLog.With("repo", "ManagerActionRepo")}
}

func (r *managerActionRepo) ListEscalationCandidates(dbc dbctx.Context) ([]*types.ManagerAction, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.ManagerAction
	err := transaction.WithContext(dbc.Ctx).
		Where("status IN ?", EscalatableManagerActionStatuses).
		Where("expires_at IS NULL OR expires_at > ?", time.Now().UTC()).
		Order("created_at ASC").
		Find(&out).Error
	return out, err
}

func (r *managerActionRepo) ListOpenForVenue(dbc dbctx.Context, orgID uuid.UUID, venueID uuid.UUID, onOrBefore time.Time) ([]*types.ManagerAction, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.ManagerAction
	err := transaction.WithContext(dbc.Ctx).
		Where("org_id = ? AND venue_id = ? AND status IN ? AND business_date <= ?",
			orgID, venueID, OpenManagerActionStatuses, datatypes.Date(types.DateOf(onOrBefore))).
		Find(&out).Error
	return out, err
}

func (r *managerActionRepo) UpdateIfStatus(dbc dbctx.Context, id uuid.UUID, expectedStatus string, updates map[string]interface{}) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil || len(updates) == 0 {
		return false, nil
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now().UTC()
	}
	res := transaction.WithContext(dbc.Ctx).
		Model(&types.ManagerAction{}).
		Where("id = ? AND status = ?", id, expectedStatus).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

type feedbackObjectRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFeedbackObjectRepo(db *gorm.DB, baseLog *logger.Logger) FeedbackObjectRepo {
	return &feedbackObjectRepo{db: db, log: baseLog.With("repo", "FeedbackObjectRepo")}
}

func (r *feedbackObjectRepo) ListEscalationCandidates(dbc dbctx.Context) ([]*types.FeedbackObject, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.FeedbackObject
	err := transaction.WithContext(dbc.Ctx).
		Where("status IN ?", EscalatableFeedbackObjectStatuses).
		Order("created_at ASC").
		Find(&out).Error
	return out, err
}

func (r *feedbackObjectRepo) ListOpenForVenue(dbc dbctx.Context, orgID uuid.UUID, venueID uuid.UUID, onOrBefore time.Time) ([]*types.FeedbackObject, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.FeedbackObject
	err := transaction.WithContext(dbc.Ctx).
		Where("org_id = ? AND venue_id = ? AND status IN ? AND business_date <= ?",
			orgID, venueID, OpenFeedbackObjectStatuses, datatypes.Date(types.DateOf(onOrBefore))).
		Find(&out).Error
	return out, err
}

func (r *feedbackObjectRepo) UpdateIfStatus(dbc dbctx.Context, id uuid.UUID, expectedStatus string, updates map[string]interface{}) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil || len(updates) == 0 {
		return false, nil
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now().UTC()
	}
	res := transaction.WithContext(dbc.Ctx).
		Model(&types.FeedbackObject{}).
		Where("id = ? AND status = ?", id, expectedStatus).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

type escalationLogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEscalationLogRepo(db *gorm.DB, baseLog *logger.Logger) EscalationLogRepo {
	return &escalationLogRepo{db: db, log: baseLog.With("repo", "EscalationLogRepo")}
}

func (r *escalationLogRepo) Append(dbc dbctx.Context, e *types.EscalationLogEntry) error {
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
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	return transaction.WithContext(dbc.Ctx).Create(e).Error
}

func (r *escalationLogRepo) ListBySource(dbc dbctx.Context, sourceTable string, sourceID uuid.UUID) ([]*types.EscalationLogEntry, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.EscalationLogEntry
	err := transaction.WithContext(dbc.Ctx).
		Where("source_table = ? AND source_id = ?", sourceTable, sourceID).
		Order("created_at ASC").
		Find(&out).Error
	return out, err
}

type attestationGate struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAttestationGate(db *gorm.DB, baseLog *logger.Logger) AttestationGate {
	return &attestationGate{db: db, log: baseLog.With("repo", "AttestationGate")}
}

// CanSubmit calls the can_submit_attestation stored procedure on Postgres.
// Other dialects evaluate the same rule inline.
func (g *attestationGate) CanSubmit(dbc dbctx.Context, orgID uuid.UUID, venueID uuid.UUID, businessDate time.Time) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = g.db
	}
	day := datatypes.Date(types.DateOf(businessDate))
	q := transaction.WithContext(dbc.Ctx)
	if q.Dialector != nil && q.Dialector.Name() == "postgres" {
		var ok bool
		if err := q.Raw("SELECT can_submit_attestation(?, ?, ?)", orgID, venueID, day).Scan(&ok).Error; err != nil {
			return false, err
		}
		return ok, nil
	}

	var blockingFeedback int64
	if err := q.Model(&types.FeedbackObject{}).
		Where("org_id = ? AND venue_id = ? AND severity = ? AND status IN ? AND business_date <= ?",
			orgID, venueID, types.SeverityCritical, OpenFeedbackObjectStatuses, day).
		Count(&blockingFeedback).Error; err != nil {
		return false, err
	}
	var blockingActions int64
	if err := q.Model(&types.ManagerAction{}).
		Where("org_id = ? AND venue_id = ? AND priority = ? AND status IN ? AND business_date <= ?",
			orgID, venueID, types.PriorityUrgent, OpenManagerActionStatuses, day).
		Count(&blockingActions).Error; err != nil {
		return false, err
	}
	return blockingFeedback == 0 && blockingActions == 0, nil
}
