package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	repos "github.com/yungbote/ops-accountability/internal/data/repos/enforcement"
	types "github.com/yungbote/ops-accountability/internal/domain/enforcement"
	"github.com/yungbote/ops-accountability/internal/modules/enforcement/carryforward"
	"github.com/yungbote/ops-accountability/internal/modules/enforcement/ladder"
	"github.com/yungbote/ops-accountability/internal/modules/enforcement/lifecycle"
	"github.com/yungbote/ops-accountability/internal/modules/enforcement/scoring"
	"github.com/yungbote/ops-accountability/internal/observability"
	"github.com/yungbote/ops-accountability/internal/pkg/dbctx"
	apperrors "github.com/yungbote/ops-accountability/internal/pkg/errors"
	"github.com/yungbote/ops-accountability/internal/pkg/logger"
)

// EnforcementService is the entry point for schedulers, the worker, and the
// operator HTTP surface.
type EnforcementService interface {
	ListOrgs(ctx context.Context) ([]uuid.UUID, error)

	RunEscalationLadder(ctx context.Context, orgID uuid.UUID) (types.LadderResult, error)
	ComputeEnforcementScores(ctx context.Context, orgID uuid.UUID, businessDate time.Time) (types.ScoreResult, error)
	RunCarryForward(ctx context.Context) (types.CarryForwardResult, error)

	GetPreshiftSummary(ctx context.Context, orgID, venueID uuid.UUID, businessDate time.Time) (*carryforward.PreshiftSummary, error)
	GetQueue(ctx context.Context, orgID, venueID uuid.UUID, businessDate time.Time) ([]carryforward.UnifiedItem, error)
	ListScores(ctx context.Context, orgID uuid.UUID, businessDate time.Time) ([]*types.EnforcementScore, error)
	GetViolation(ctx context.Context, id uuid.UUID) (*ViolationDetail, error)

	Acknowledge(ctx context.Context, id uuid.UUID) (bool, error)
	StartAction(ctx context.Context, id uuid.UUID, summary string) (bool, error)
	Resolve(ctx context.Context, id uuid.UUID) (bool, error)
	Waive(ctx context.Context, id uuid.UUID, reason string) (bool, error)
}

type ViolationDetail struct {
	Violation *types.Violation         `json:"violation"`
	Events    []*types.ViolationEvent `json:"events"`
	Actions   []*types.Action         `json:"actions"`
}

type EnforcementDeps struct {
	Repos        repos.Repos
	Machine      *lifecycle.Machine
	Ladder       *ladder.Ladder
	Scoring      *scoring.Engine
	CarryForward *carryforward.Unifier
	Metrics      *observability.Metrics
	Log          *logger.Logger
	// StoreTimeout bounds read paths. Batch runs use the caller's context.
	StoreTimeout time.Duration
}

type enforcementService struct {
	repos        repos.Repos
	machine      *lifecycle.Machine
	ladder       *ladder.Ladder
	scoring      *scoring.Engine
	carry        *carryforward.Unifier
	metrics      *observability.Metrics
	log          *logger.Logger
	storeTimeout time.Duration
	tracer       trace.Tracer
}

func NewEnforcementService(deps EnforcementDeps) (EnforcementService, error) {
	if deps.Machine == nil || deps.Ladder == nil || deps.Scoring == nil || deps.CarryForward == nil {
		return nil, fmt.Errorf("enforcement service missing deps")
	}
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	timeout := deps.StoreTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &enforcementService{
		repos:        deps.Repos,
		machine:      deps.Machine,
		ladder:       deps.Ladder,
		scoring:      deps.Scoring,
		carry:        deps.CarryForward,
		metrics:      deps.Metrics,
		log:          log.With("service", "EnforcementService"),
		storeTimeout: timeout,
		tracer:       observability.Tracer(),
	}, nil
}

func requireID(name string, id uuid.UUID) error {
	if id == uuid.Nil {
		return fmt.Errorf("%s is required: %w", name, apperrors.ErrInvalidArgument)
	}
	return nil
}

func endSpan(span trace.Span, errs []string) {
	span.SetAttributes(attribute.Int("enforcement.errors", len(errs)))
	if len(errs) > 0 {
		span.SetStatus(codes.Error, errs[0])
	}
	span.End()
}

func (s *enforcementService) ListOrgs(ctx context.Context) ([]uuid.UUID, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()
	ids, err := s.repos.Venues.ListOrgIDs(dbctx.Of(ctx))
	if err != nil {
		return nil, fmt.Errorf("list orgs: %w", err)
	}
	return ids, nil
}

func (s *enforcementService) RunEscalationLadder(ctx context.Context, orgID uuid.UUID) (types.LadderResult, error) {
	if err := requireID("org_id", orgID); err != nil {
		return types.LadderResult{OrgID: orgID}, err
	}
	ctx, span := s.tracer.Start(ctx, "enforcement.ladder", trace.WithAttributes(attribute.String("org_id", orgID.String())))
	start := time.Now()
	res := s.ladder.Run(ctx, orgID)
	span.SetAttributes(attribute.Int("enforcement.transitions", res.Transitions()))
	endSpan(span, res.Errors)
	s.metrics.ObserveLadder(res, time.Since(start))

	s.log.Info("Escalation ladder finished",
		"org_id", orgID,
		"transitions", res.Transitions(),
		"systemic_created", res.SystemicCreated,
		"errors", len(res.Errors),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return res, ctx.Err()
}

func (s *enforcementService) ComputeEnforcementScores(ctx context.Context, orgID uuid.UUID, businessDate time.Time) (types.ScoreResult, error) {
	if err := requireID("org_id", orgID); err != nil {
		return types.ScoreResult{OrgID: orgID}, err
	}
	if businessDate.IsZero() {
		return types.ScoreResult{OrgID: orgID}, fmt.Errorf("business_date is required: %w", apperrors.ErrInvalidArgument)
	}
	day := types.DateOf(businessDate)
	ctx, span := s.tracer.Start(ctx, "enforcement.scores", trace.WithAttributes(
		attribute.String("org_id", orgID.String()),
		attribute.String("business_date", day.Format("2006-01-02")),
	))
	start := time.Now()
	res := s.scoring.Compute(ctx, orgID, day)
	span.SetAttributes(
		attribute.Int("enforcement.managers_scored", res.ManagersScored),
		attribute.Int("enforcement.venues_scored", res.VenuesScored),
	)
	endSpan(span, res.Errors)
	s.metrics.ObserveScores(res, time.Since(start))

	s.log.Info("Enforcement scores computed",
		"org_id", orgID,
		"business_date", day.Format("2006-01-02"),
		"managers_scored", res.ManagersScored,
		"managers_skipped", res.ManagersSkipped,
		"venues_scored", res.VenuesScored,
		"errors", len(res.Errors),
	)
	return res, ctx.Err()
}

func (s *enforcementService) RunCarryForward(ctx context.Context) (types.CarryForwardResult, error) {
	ctx, span := s.tracer.Start(ctx, "enforcement.carry_forward")
	start := time.Now()
	res := s.carry.Run(ctx)
	span.SetAttributes(
		attribute.Int("enforcement.manager_actions_escalated", res.ManagerActionsEscalated),
		attribute.Int("enforcement.feedback_objects_escalated", res.FeedbackObjectsEscalated),
		attribute.Int("enforcement.notifications_sent", res.NotificationsSent),
	)
	endSpan(span, res.Errors)
	s.metrics.ObserveCarryForward(res, time.Since(start))

	s.log.Info("Carry-forward sweep finished",
		"manager_actions_escalated", res.ManagerActionsEscalated,
		"feedback_objects_escalated", res.FeedbackObjectsEscalated,
		"notifications_sent", res.NotificationsSent,
		"errors", len(res.Errors),
	)
	return res, ctx.Err()
}

func (s *enforcementService) GetPreshiftSummary(ctx context.Context, orgID, venueID uuid.UUID, businessDate time.Time) (*carryforward.PreshiftSummary, error) {
	if err := requireID("org_id", orgID); err != nil {
		return nil, err
	}
	if err := requireID("venue_id", venueID); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()
	ctx, span := s.tracer.Start(ctx, "enforcement.preshift_summary")
	defer span.End()
	out, err := s.carry.GetPreshiftSummary(ctx, orgID, venueID, types.DateOf(businessDate))
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return out, nil
}

func (s *enforcementService) GetQueue(ctx context.Context, orgID, venueID uuid.UUID, businessDate time.Time) ([]carryforward.UnifiedItem, error) {
	if err := requireID("org_id", orgID); err != nil {
		return nil, err
	}
	if err := requireID("venue_id", venueID); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()
	return s.carry.GetQueue(ctx, orgID, venueID, types.DateOf(businessDate))
}

func (s *enforcementService) ListScores(ctx context.Context, orgID uuid.UUID, businessDate time.Time) ([]*types.EnforcementScore, error) {
	if err := requireID("org_id", orgID); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()
	rows, err := s.repos.Scores.ListByDate(dbctx.Of(ctx), orgID, types.DateOf(businessDate))
	if err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}
	return rows, nil
}

func (s *enforcementService) GetViolation(ctx context.Context, id uuid.UUID) (*ViolationDetail, error) {
	if err := requireID("violation_id", id); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()
	dbc := dbctx.Of(ctx)
	v, err := s.repos.Violations.GetByID(dbc, id)
	if err != nil {
		return nil, fmt.Errorf("get violation: %w", err)
	}
	if v == nil {
		return nil, fmt.Errorf("violation %s: %w", id, apperrors.ErrNotFound)
	}
	events, err := s.repos.Events.ListByViolation(dbc, id)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	actions, err := s.repos.Actions.ListByViolation(dbc, id)
	if err != nil {
		return nil, fmt.Errorf("list actions: %w", err)
	}
	return &ViolationDetail{Violation: v, Events: events, Actions: actions}, nil
}

func (s *enforcementService) Acknowledge(ctx context.Context, id uuid.UUID) (bool, error) {
	if err := requireID("violation_id", id); err != nil {
		return false, err
	}
	return s.machine.Acknowledge(ctx, id)
}

func (s *enforcementService) StartAction(ctx context.Context, id uuid.UUID, summary string) (bool, error) {
	if err := requireID("violation_id", id); err != nil {
		return false, err
	}
	return s.machine.StartAction(ctx, id, summary)
}

func (s *enforcementService) Resolve(ctx context.Context, id uuid.UUID) (bool, error) {
	if err := requireID("violation_id", id); err != nil {
		return false, err
	}
	return s.machine.Resolve(ctx, id)
}

func (s *enforcementService) Waive(ctx context.Context, id uuid.UUID, reason string) (bool, error) {
	if err := requireID("violation_id", id); err != nil {
		return false, err
	}
	return s.machine.Waive(ctx, id, reason)
}
