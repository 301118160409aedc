package enforcement

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/ops-accountability/internal/domain/enforcement"
	"github.com/yungbote/ops-accountability/internal/pkg/dbctx"
	"github.com/yungbote/ops-accountability/internal/pkg/logger"
)

type attestationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAttestationRepo(db *gorm.DB, baseLog *logger.Logger) AttestationRepo {
	return &attestationRepo{db: db, log: baseLog.With("repo", "AttestationRepo")}
}

func (r *attestationRepo) ListSubmittedSince(dbc dbctx.Context, orgID uuid.UUID, since time.Time) ([]*types.Attestation, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Attestation
	err := transaction.WithContext(dbc.Ctx).
		Where("org_id = ? AND submitted_at IS NOT NULL AND submitted_at >= ? AND status IN ?",
			orgID, since, []string{types.AttestationSubmitted, types.AttestationApproved}).
		Find(&out).Error
	return out, err
}

type venueRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewVenueRepo(db *gorm.DB, baseLog *logger.Logger) VenueRepo {
	return &venueRepo{db: db, log: baseLog.With("repo", "VenueRepo")}
}

func (r *venueRepo) ListActive(dbc dbctx.Context, orgID uuid.UUID) ([]*types.Venue, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Venue
	err := transaction.WithContext(dbc.Ctx).
		Where("org_id = ? AND active = ?", orgID, true).
		Order("name ASC").
		Find(&out).Error
	return out, err
}

func (r *venueRepo) ListOrgIDs(dbc dbctx.Context) ([]uuid.UUID, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []uuid.UUID
	err := transaction.WithContext(dbc.Ctx).
		Model(&types.Venue{}).
		Where("active = ?", true).
		Distinct().
		Order("org_id ASC").
		Pluck("org_id", &out).Error
	return out, err
}

type signalProfileRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSignalProfileRepo(db *gorm.DB, baseLog *logger.Logger) SignalProfileRepo {
	return &signalProfileRepo{db: db, log: baseLog.With("repo", "SignalProfileRepo")}
}

func (r *signalProfileRepo) GetLatest(dbc dbctx.Context, orgID uuid.UUID, managerID uuid.UUID) (*types.ManagerSignalProfile, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out types.ManagerSignalProfile
	err := transaction.WithContext(dbc.Ctx).
		Where("org_id = ? AND manager_id = ?", orgID, managerID).
		Order("computed_at DESC").
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

type settingsRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSettingsRepo(db *gorm.DB, baseLog *logger.Logger) SettingsRepo {
	return &settingsRepo{db: db, log: baseLog.With("repo", "SettingsRepo")}
}

func (r *settingsRepo) Get(dbc dbctx.Context, orgID uuid.UUID) (*types.EnforcementSettings, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out types.EnforcementSettings
	err := transaction.WithContext(dbc.Ctx).
		Where("org_id = ?", orgID).
		Limit(1).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	if out.OrgID == uuid.Nil {
		return nil, nil
	}
	return &out, nil
}
