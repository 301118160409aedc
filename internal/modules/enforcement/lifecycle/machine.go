// Package lifecycle applies violation state changes. Every change is a
// conditional write on the expected prior state plus exactly one audit event
// and one action, committed together. A write that finds the row already
// moved is reported as not applied, never as an error.
package lifecycle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	repos "github.com/yungbote/ops-accountability/internal/data/repos/enforcement"
	types "github.com/yungbote/ops-accountability/internal/domain/enforcement"
	"github.com/yungbote/ops-accountability/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/ops-accountability/internal/pkg/errors"
	"github.com/yungbote/ops-accountability/internal/pkg/logger"
)

var ErrInvalidTransition = errors.New("invalid violation transition")

// Transition describes one guarded mutation of an existing violation.
type Transition struct {
	ViolationID  uuid.UUID
	OrgID        uuid.UUID
	Expect       repos.Precondition
	Updates      map[string]interface{}
	Event        string
	EventMeta    map[string]any
	ActionType   string
	ActionTarget string
	Message      string
	ActionData   map[string]any
}

type Machine struct {
	repos repos.Repos
	log   *logger.Logger
	now   func() time.Time
}

func NewMachine(r repos.Repos, baseLog *logger.Logger) *Machine {
	return &Machine{
		repos: r,
		log:   baseLog.With("component", "ViolationStateMachine"),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (m *Machine) WithClock(now func() time.Time) *Machine {
	if now != nil {
		m.now = now
	}
	return m
}

func (m *Machine) Now() time.Time { return m.now() }

// Apply performs t. It reports false when the precondition no longer holds.
func (m *Machine) Apply(ctx context.Context, t Transition) (bool, error) {
	if t.ViolationID == uuid.Nil || len(t.Updates) == 0 || t.Event == "" {
		return false, fmt.Errorf("apply transition: %w", pkgerrors.ErrInvalidArgument)
	}
	now := m.now()
	applied := false
	err := m.repos.Tx.InTx(dbctx.Of(ctx), func(dbc dbctx.Context) error {
		ok, err := m.repos.Violations.UpdateIfState(dbc, t.ViolationID, t.Expect, t.Updates)
		if err != nil {
			return fmt.Errorf("conditional update: %w", err)
		}
		if !ok {
			return nil
		}
		if err := m.repos.Events.Append(dbc, &types.ViolationEvent{
			ID:          uuid.New(),
			ViolationID: t.ViolationID,
			OrgID:       t.OrgID,
			EventType:   t.Event,
			OccurredAt:  now,
			Metadata:    JSON(t.EventMeta),
		}); err != nil {
			return fmt.Errorf("append event: %w", err)
		}
		if err := m.repos.Actions.Create(dbc, m.action(t.ViolationID, t.OrgID, t.ActionType, t.ActionTarget, t.Message, t.ActionData, now)); err != nil {
			return fmt.Errorf("create action: %w", err)
		}
		applied = true
		return nil
	})
	if err != nil {
		return false, err
	}
	if applied {
		m.log.Debug("violation transition applied", "violation_id", t.ViolationID, "event", t.Event, "target", t.ActionTarget)
	}
	return applied, nil
}

// Open inserts a violation synthesized by the engine together with its
// created event and first action. It reports false when a violation with the
// same dedupe key already exists.
func (m *Machine) Open(ctx context.Context, v *types.Violation, target, message string) (bool, error) {
	if v == nil || v.OrgID == uuid.Nil {
		return false, fmt.Errorf("open violation: %w", pkgerrors.ErrInvalidArgument)
	}
	now := m.now()
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	if v.Status == "" {
		v.Status = types.StatusOpen
	}
	if v.DetectedAt.IsZero() {
		v.DetectedAt = now
	}
	created := false
	err := m.repos.Tx.InTx(dbctx.Of(ctx), func(dbc dbctx.Context) error {
		ok, err := m.repos.Violations.Create(dbc, v)
		if err != nil {
			return fmt.Errorf("create violation: %w", err)
		}
		if !ok {
			return nil
		}
		meta := map[string]any{
			"severity":         v.Severity,
			"escalation_level": v.EscalationLevel,
			"violation_type":   v.ViolationType,
		}
		if err := m.repos.Events.Append(dbc, &types.ViolationEvent{
			ID:          uuid.New(),
			ViolationID: v.ID,
			OrgID:       v.OrgID,
			EventType:   types.EventCreated,
			OccurredAt:  now,
			Metadata:    JSON(meta),
		}); err != nil {
			return fmt.Errorf("append event: %w", err)
		}
		if err := m.repos.Actions.Create(dbc, m.action(v.ID, v.OrgID, types.ActionEscalate, target, message, meta, now)); err != nil {
			return fmt.Errorf("create action: %w", err)
		}
		created = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return created, nil
}

func (m *Machine) action(violationID, orgID uuid.UUID, actionType, target, message string, data map[string]any, now time.Time) *types.Action {
	if actionType == "" {
		actionType = types.ActionNotify
	}
	if target == "" {
		target = types.RoleManager
	}
	return &types.Action{
		ID:              uuid.New(),
		ViolationID:     violationID,
		OrgID:           orgID,
		ActionType:      actionType,
		ActionTarget:    target,
		Message:         message,
		ActionData:      JSON(data),
		ScheduledFor:    now,
		ExecutionStatus: types.ExecutionPending,
		CreatedAt:       now,
	}
}

// ---- manual transitions ----

func (m *Machine) Acknowledge(ctx context.Context, id uuid.UUID) (bool, error) {
	return m.manual(ctx, id, types.StatusAcknowledged, types.EventAcknowledged, func(v *types.Violation, now time.Time) map[string]interface{} {
		return map[string]interface{}{"status": types.StatusAcknowledged, "ack_at": now}
	}, nil)
}

// StartAction records the corrective action taken and moves the violation to in_progress.
func (m *Machine) StartAction(ctx context.Context, id uuid.UUID, summary string) (bool, error) {
	summary = strings.TrimSpace(summary)
	if summary == "" {
		return false, fmt.Errorf("start action: empty summary: %w", pkgerrors.ErrInvalidArgument)
	}
	return m.manual(ctx, id, types.StatusInProgress, types.EventActionStarted, func(v *types.Violation, now time.Time) map[string]interface{} {
		return map[string]interface{}{"status": types.StatusInProgress, "action_at": now, "action_summary": summary}
	}, map[string]any{"action_summary": summary})
}

func (m *Machine) Resolve(ctx context.Context, id uuid.UUID) (bool, error) {
	return m.manual(ctx, id, types.StatusResolved, types.EventResolved, func(v *types.Violation, now time.Time) map[string]interface{} {
		return map[string]interface{}{"status": types.StatusResolved, "resolved_at": now}
	}, nil)
}

func (m *Machine) Waive(ctx context.Context, id uuid.UUID, reason string) (bool, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return false, fmt.Errorf("waive: empty reason: %w", pkgerrors.ErrInvalidArgument)
	}
	return m.manual(ctx, id, types.StatusWaived, types.EventWaived, func(v *types.Violation, now time.Time) map[string]interface{} {
		return map[string]interface{}{"status": types.StatusWaived}
	}, map[string]any{"reason": reason})
}

func (m *Machine) manual(
	ctx context.Context,
	id uuid.UUID,
	to string,
	event string,
	updates func(v *types.Violation, now time.Time) map[string]interface{},
	extra map[string]any,
) (bool, error) {
	v, err := m.repos.Violations.GetByID(dbctx.Of(ctx), id)
	if err != nil {
		return false, err
	}
	if v == nil {
		return false, fmt.Errorf("violation %s: %w", id, pkgerrors.ErrNotFound)
	}
	if !CanTransition(v.Status, to) {
		return false, fmt.Errorf("%s -> %s: %w", v.Status, to, ErrInvalidTransition)
	}
	meta := map[string]any{"from_status": v.Status, "to_status": to}
	for k, val := range extra {
		meta[k] = val
	}
	target := types.RoleForLevel(v.EscalationLevel)
	return m.Apply(ctx, Transition{
		ViolationID:  v.ID,
		OrgID:        v.OrgID,
		Expect:       repos.Precondition{Statuses: []string{v.Status}},
		Updates:      updates(v, m.now()),
		Event:        event,
		EventMeta:    meta,
		ActionType:   types.ActionNotify,
		ActionTarget: target,
		Message:      fmt.Sprintf("%s is now %s", v.Title, strings.ReplaceAll(to, "_", " ")),
		ActionData:   meta,
	})
}

// JSON marshals m for a jsonb column. A nil map becomes an empty object.
func JSON(m map[string]any) datatypes.JSON {
	if m == nil {
		return datatypes.JSON([]byte("{}"))
	}
	b, err := json.Marshal(m)
	if err != nil {
		return datatypes.JSON([]byte("{}"))
	}
	return datatypes.JSON(b)
}
