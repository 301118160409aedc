package enforcement

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/ops-accountability/internal/domain/enforcement"
	"github.com/yungbote/ops-accountability/internal/pkg/dbctx"
	"github.com/yungbote/ops-accountability/internal/pkg/logger"
)

// Precondition is the expected prior state of a violation for a conditional
// write. Every conditional write also requires a non-terminal status, so a
// resolved or waived violation can never be mutated through UpdateIfState.
type Precondition struct {
	Statuses           []string
	EscalationLevel    *int
	RecurrenceCount    *int
	SilenceUnpenalized bool
	StallUnpenalized   bool
}

type ViolationRepo interface {
	// Create inserts v. It reports false without error when a row with the same
	// dedupe key already exists.
	Create(dbc dbctx.Context, v *types.Violation) (bool, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Violation, error)
	ListOpen(dbc dbctx.Context, orgID uuid.UUID) ([]*types.Violation, error)
	ListDetectedSince(dbc dbctx.Context, orgID uuid.UUID, since time.Time) ([]*types.Violation, error)
	ListResolvedSince(dbc dbctx.Context, orgID uuid.UUID, since time.Time) ([]*types.Violation, error)
	FindSystemic(dbc dbctx.Context, orgID uuid.UUID, violationType string, since time.Time) (*types.Violation, error)
	// UpdateIfState applies updates only when the row still matches pre. It
	// reports whether a row was changed; false means another writer got there first.
	UpdateIfState(dbc dbctx.Context, id uuid.UUID, pre Precondition, updates map[string]interface{}) (bool, error)
}

type ViolationEventRepo interface {
	Append(dbc dbctx.Context, e *types.ViolationEvent) error
	ListByViolation(dbc dbctx.Context, violationID uuid.UUID) ([]*types.ViolationEvent, error)
}

type ActionRepo interface {
	Create(dbc dbctx.Context, a *types.Action) error
	ListByViolation(dbc dbctx.Context, violationID uuid.UUID) ([]*types.Action, error)
}

type ScoreRepo interface {
	Upsert(dbc dbctx.Context, scores []*types.EnforcementScore) error
	ListByDate(dbc dbctx.Context, orgID uuid.UUID, businessDate time.Time) ([]*types.EnforcementScore, error)
}

type AttestationRepo interface {
	ListSubmittedSince(dbc dbctx.Context, orgID uuid.UUID, since time.Time) ([]*types.Attestation, error)
}

type VenueRepo interface {
	ListActive(dbc dbctx.Context, orgID uuid.UUID) ([]*types.Venue, error)
	// ListOrgIDs returns every org with at least one active venue.
	ListOrgIDs(dbc dbctx.Context) ([]uuid.UUID, error)
}

type SignalProfileRepo interface {
	// GetLatest returns nil when the manager has no profile.
	GetLatest(dbc dbctx.Context, orgID uuid.UUID, managerID uuid.UUID) (*types.ManagerSignalProfile, error)
}

type SettingsRepo interface {
	// Get returns nil when the org has no overrides.
	Get(dbc dbctx.Context, orgID uuid.UUID) (*types.EnforcementSettings, error)
}

type ManagerActionRepo interface {
	ListEscalationCandidates(dbc dbctx.Context) ([]*types.ManagerAction, error)
	ListOpenForVenue(dbc dbctx.Context, orgID uuid.UUID, venueID uuid.UUID, onOrBefore time.Time) ([]*types.ManagerAction, error)
	UpdateIfStatus(dbc dbctx.Context, id uuid.UUID, expectedStatus string, updates map[string]interface{}) (bool, error)
}

type FeedbackObjectRepo interface {
	ListEscalationCandidates(dbc dbctx.Context) ([]*types.FeedbackObject, error)
	ListOpenForVenue(dbc dbctx.Context, orgID uuid.UUID, venueID uuid.UUID, onOrBefore time.Time) ([]*types.FeedbackObject, error)
	UpdateIfStatus(dbc dbctx.Context, id uuid.UUID, expectedStatus string, updates map[string]interface{}) (bool, error)
}

type EscalationLogRepo interface {
	Append(dbc dbctx.Context, e *types.EscalationLogEntry) error
	ListBySource(dbc dbctx.Context, sourceTable string, sourceID uuid.UUID) ([]*types.EscalationLogEntry, error)
}

// AttestationGate decides whether unresolved critical items block submission.
type AttestationGate interface {
	CanSubmit(dbc dbctx.Context, orgID uuid.UUID, venueID uuid.UUID, businessDate time.Time) (bool, error)
}

// Transactor runs fn inside one store transaction.
type Transactor interface {
	InTx(dbc dbctx.Context, fn func(dbc dbctx.Context) error) error
}

// Manager-action and feedback statuses that are still in the carry-forward queue.
var (
	OpenManagerActionStatuses  = []string{types.ItemPending, types.ItemInProgress, types.ItemEscalated}
	OpenFeedbackObjectStatuses = []string{types.ItemOpen, types.ItemAcknowledged, types.ItemInProgress, types.ItemEscalated}

	EscalatableManagerActionStatuses  = []string{types.ItemPending, types.ItemInProgress}
	EscalatableFeedbackObjectStatuses = []string{types.ItemOpen, types.ItemAcknowledged, types.ItemInProgress}
)

// Repos is the full set of enforcement repositories.
type Repos struct {
	Tx             Transactor
	Violations     ViolationRepo
	Events         ViolationEventRepo
	Actions        ActionRepo
	Scores         ScoreRepo
	Attestations   AttestationRepo
	Venues         VenueRepo
	Profiles       SignalProfileRepo
	Settings       SettingsRepo
	ManagerActions ManagerActionRepo
	Feedback       FeedbackObjectRepo
	EscalationLog  EscalationLogRepo
	Gate           AttestationGate
}

func NewRepos(db *gorm.DB, baseLog *logger.Logger) Repos {
	return Repos{
		Tx:             NewTransactor(db),
		Violations:     NewViolationRepo(db, baseLog),
		Events:         NewViolationEventRepo(db, baseLog),
		Actions:        NewActionRepo(db, baseLog),
		Scores:         NewScoreRepo(db, baseLog),
		Attestations:   NewAttestationRepo(db, baseLog),
		Venues:         NewVenueRepo(db, baseLog),
		Profiles:       NewSignalProfileRepo(db, baseLog),
		Settings:       NewSettingsRepo(db, baseLog),
		ManagerActions: NewManagerActionRepo(db, baseLog),
		Feedback:       NewFeedbackObjectRepo(db, baseLog),
		EscalationLog:  NewEscalationLogRepo(db, baseLog),
		Gate:           NewAttestationGate(db, baseLog),
	}
}

type transactor struct {
	db *gorm.DB
}

func NewTransactor(db *gorm.DB) Transactor {
	return &transactor{db: db}
}

func (t *transactor) InTx(dbc dbctx.Context, fn func(dbc dbctx.Context) error) error {
	base := dbc.Tx
	if base == nil {
		base = t.db
	}
	return base.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		return fn(dbctx.Context{Ctx: dbc.Ctx, Tx: tx})
	})
}
