package ladder

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	repos "github.com/yungbote/ops-accountability/internal/data/repos/enforcement"
	types "github.com/yungbote/ops-accountability/internal/domain/enforcement"
	"github.com/yungbote/ops-accountability/internal/modules/enforcement/lifecycle"
	"github.com/yungbote/ops-accountability/internal/pkg/dbctx"
	"github.com/yungbote/ops-accountability/internal/pkg/pointers"
)

// ---- 1. time-based ----

func (l *Ladder) timeBased(ctx context.Context, r *run) error {
	open, err := l.repos.Violations.ListOpen(dbctx.Of(ctx), r.org)
	if err != nil {
		return fmt.Errorf("scan open violations: %w", err)
	}
	l.eachViolation(ctx, r, passTimeBased, open, func(ctx context.Context, v *types.Violation) error {
		rule, ok := ruleFor(v.Severity, v.EscalationLevel)
		if !ok {
			return nil
		}
		elapsed := r.now.Sub(v.ReferenceTime())
		if elapsed < rule.After {
			return nil
		}
		role := types.RoleForLevel(rule.To)
		meta := map[string]any{
			"mechanism":     passTimeBased,
			"from_level":    rule.From,
			"to_level":      rule.To,
			"hours_elapsed": int(elapsed.Hours()),
			"threshold_h":   int(rule.After.Hours()),
		}
		applied, err := l.machine.Apply(ctx, lifecycle.Transition{
			ViolationID:  v.ID,
			OrgID:        v.OrgID,
			Expect:       repos.Precondition{EscalationLevel: pointers.Int(rule.From)},
			Updates:      map[string]interface{}{"escalation_level": rule.To, "escalated_at": r.now},
			Event:        types.EventEscalated,
			EventMeta:    meta,
			ActionType:   types.ActionEscalate,
			ActionTarget: role,
			Message:      escalateMessage(v, role, fmt.Sprintf("open %dh", int(elapsed.Hours()))),
			ActionData:   meta,
		})
		if err != nil {
			return err
		}
		if applied {
			r.count(func(res *types.LadderResult) { res.TimeEscalated++ })
		}
		return nil
	})
	return nil
}

// ---- 2. recurrence + structural ----

type recurrenceGroup struct {
	venueID uuid.UUID
	vtype   string
	members []*types.Violation
}

func (g *recurrenceGroup) latest() *types.Violation {
	var out *types.Violation
	for _, v := range g.members {
		if out == nil || v.DetectedAt.After(out.DetectedAt) {
			out = v
		}
	}
	return out
}

func groupByVenueAndType(vs []*types.Violation) []*recurrenceGroup {
	idx := map[string]*recurrenceGroup{}
	var out []*recurrenceGroup
	for _, v := range vs {
		if v.VenueID == nil {
			continue
		}
		key := v.VenueID.String() + "|" + v.ViolationType
		g, ok := idx[key]
		if !ok {
			g = &recurrenceGroup{venueID: *v.VenueID, vtype: v.ViolationType}
			idx[key] = g
			out = append(out, g)
		}
		g.members = append(g.members, v)
	}
	return out
}

func (l *Ladder) recurrence(ctx context.Context, r *run) error {
	recent, err := l.repos.Violations.ListDetectedSince(dbctx.Of(ctx), r.org, r.now.Add(-recurrenceWindow))
	if err != nil {
		return fmt.Errorf("scan recent violations: %w", err)
	}
	groups := groupByVenueAndType(recent)
	each(ctx, l.limit, groups, func(ctx context.Context, g *recurrenceGroup) error {
		return l.recurrenceGroup(ctx, r, g)
	}, func(g *recurrenceGroup, err error) {
		r.fail(passRecurrence, g.latest().ID, err)
	})
	return nil
}

func (l *Ladder) recurrenceGroup(ctx context.Context, r *run, g *recurrenceGroup) error {
	latest := g.latest()
	if latest == nil || latest.IsTerminal() {
		return nil
	}
	size := len(g.members)

	if size >= recurrenceThreshold && latest.RecurrenceCount < size {
		level := latest.EscalationLevel
		if level < 1 {
			level = 1
		}
		updates := map[string]interface{}{
			"recurrence_count": size,
			"escalation_level": level,
		}
		if level != latest.EscalationLevel {
			updates["escalated_at"] = r.now
		}
		severity := latest.Severity
		if severity == types.SeverityWarning {
			severity = types.SeverityCritical
			updates["severity"] = severity
		}
		role := types.RoleForLevel(level)
		meta := map[string]any{
			"mechanism":      passRecurrence,
			"venue_id":       g.venueID.String(),
			"violation_type": g.vtype,
			"occurrences":    size,
			"previous_count": latest.RecurrenceCount,
			"from_level":     latest.EscalationLevel,
			"to_level":       level,
			"from_severity":  latest.Severity,
			"to_severity":    severity,
			"window_days":    int(recurrenceWindow.Hours() / 24),
		}
		applied, err := l.machine.Apply(ctx, lifecycle.Transition{
			ViolationID: latest.ID,
			OrgID:       latest.OrgID,
			Expect: repos.Precondition{
				RecurrenceCount: pointers.Int(latest.RecurrenceCount),
				EscalationLevel: pointers.Int(latest.EscalationLevel),
			},
			Updates:      updates,
			Event:        types.EventRecurrenceFlagged,
			EventMeta:    meta,
			ActionType:   types.ActionEscalate,
			ActionTarget: role,
			Message:      escalateMessage(latest, role, fmt.Sprintf("%d occurrences in 14 days", size)),
			ActionData:   meta,
		})
		if err != nil {
			return fmt.Errorf("recurrence flag: %w", err)
		}
		if applied {
			r.count(func(res *types.LadderResult) { res.RecurrenceFlagged++ })
		}
	}

	// Structural rule reads the row as it stands after the recurrence flag.
	current, err := l.repos.Violations.GetByID(dbctx.Of(ctx), latest.ID)
	if err != nil {
		return fmt.Errorf("reload: %w", err)
	}
	if current == nil || current.IsTerminal() || current.EscalationLevel >= structuralLevel {
		return nil
	}
	since := r.now.Add(-structuralWindow)
	critical := 0
	for _, v := range g.members {
		m := v
		if v.ID == current.ID {
			m = current
		}
		if m.Severity == types.SeverityCritical && !m.DetectedAt.Before(since) {
			critical++
		}
	}
	if critical < structuralThreshold {
		return nil
	}
	meta := map[string]any{
		"mechanism":      "structural",
		"venue_id":       g.venueID.String(),
		"violation_type": g.vtype,
		"critical_7d":    critical,
		"from_level":     current.EscalationLevel,
		"to_level":       structuralLevel,
	}
	applied, err := l.machine.Apply(ctx, lifecycle.Transition{
		ViolationID:  current.ID,
		OrgID:        current.OrgID,
		Expect:       repos.Precondition{EscalationLevel: pointers.Int(current.EscalationLevel)},
		Updates:      map[string]interface{}{"escalation_level": structuralLevel, "escalated_at": r.now},
		Event:        types.EventStructuralEscalated,
		EventMeta:    meta,
		ActionType:   types.ActionEscalate,
		ActionTarget: types.RoleDirector,
		Message:      escalateMessage(current, types.RoleDirector, fmt.Sprintf("%d critical in 7 days", critical)),
		ActionData:   meta,
	})
	if err != nil {
		return fmt.Errorf("structural escalation: %w", err)
	}
	if applied {
		r.count(func(res *types.LadderResult) { res.StructuralEscalated++ })
	}
	return nil
}

// ---- 3. cross-venue systemic ----

type systemicGroup struct {
	vtype       string
	venues      map[uuid.UUID]struct{}
	occurrences int
}

func (g *systemicGroup) venueIDs() []string {
	out := make([]string, 0, len(g.venues))
	for id := range g.venues {
		out = append(out, id.String())
	}
	sort.Strings(out)
	return out
}

func SystemicDedupeKey(orgID uuid.UUID, violationType string, businessDate string) string {
	return strings.Join([]string{"systemic", orgID.String(), violationType, businessDate}, ":")
}

func (l *Ladder) systemic(ctx context.Context, r *run) error {
	since := r.now.Add(-systemicWindow)
	recent, err := l.repos.Violations.ListDetectedSince(dbctx.Of(ctx), r.org, since)
	if err != nil {
		return fmt.Errorf("scan recent violations: %w", err)
	}
	idx := map[string]*systemicGroup{}
	var groups []*systemicGroup
	for _, v := range recent {
		if v.VenueID == nil {
			continue
		}
		g, ok := idx[v.ViolationType]
		if !ok {
			g = &systemicGroup{vtype: v.ViolationType, venues: map[uuid.UUID]struct{}{}}
			idx[v.ViolationType] = g
			groups = append(groups, g)
		}
		g.venues[*v.VenueID] = struct{}{}
		g.occurrences++
	}

	each(ctx, l.limit, groups, func(ctx context.Context, g *systemicGroup) error {
		if len(g.venues) < systemicVenueCount {
			return nil
		}
		existing, err := l.repos.Violations.FindSystemic(dbctx.Of(ctx), r.org, g.vtype, since)
		if err != nil {
			return fmt.Errorf("find systemic %s: %w", g.vtype, err)
		}
		if existing != nil {
			return nil
		}
		day := types.DateOf(r.now)
		venueIDs := g.venueIDs()
		v := &types.Violation{
			ID:                   uuid.New(),
			OrgID:                r.org,
			ViolationType:        g.vtype,
			Title:                types.SystemicTitlePrefix + g.vtype,
			Description:          fmt.Sprintf("%s recurred at %d venues in the last %d days", g.vtype, len(venueIDs), systemicWindowDays),
			Severity:             types.SeverityCritical,
			Status:               types.StatusOpen,
			EscalationLevel:      systemicLevel,
			DetectedAt:           r.now,
			EscalatedAt:          pointers.Time(r.now),
			VerificationRequired: true,
			Metadata: lifecycle.JSON(map[string]any{
				"venue_ids":   venueIDs,
				"venue_count": len(venueIDs),
				"occurrences": g.occurrences,
				"window_days": systemicWindowDays,
			}),
			BusinessDate: datatypes.Date(day),
			DedupeKey:    pointers.String(SystemicDedupeKey(r.org, g.vtype, day.Format("2006-01-02"))),
			CreatedAt:    r.now,
			UpdatedAt:    r.now,
		}
		created, err := l.machine.Open(ctx, v, types.RoleDirector,
			fmt.Sprintf("%s is recurring across %d venues", g.vtype, len(venueIDs)))
		if err != nil {
			return fmt.Errorf("create systemic %s: %w", g.vtype, err)
		}
		if created {
			r.count(func(res *types.LadderResult) { res.SystemicCreated++ })
		}
		return nil
	}, func(g *systemicGroup, err error) {
		r.fail(passSystemic, uuid.Nil, err)
	})
	return nil
}

// ---- 4. silence ----

func (l *Ladder) silence(ctx context.Context, r *run) error {
	open, err := l.repos.Violations.ListOpen(dbctx.Of(ctx), r.org)
	if err != nil {
		return fmt.Errorf("scan open violations: %w", err)
	}
	l.eachViolation(ctx, r, passSilence, open, func(ctx context.Context, v *types.Violation) error {
		if v.Status != types.StatusOpen || v.SilencePenalizedAt != nil || v.AckAt != nil {
			return nil
		}
		limit, ok := silenceLimits[v.Severity]
		if !ok {
			return nil
		}
		silent := r.now.Sub(v.DetectedAt)
		if silent < limit {
			return nil
		}
		level := lifecycle.NextLevel(v.EscalationLevel)
		updates := map[string]interface{}{
			"severity":              types.SeverityCritical,
			"escalation_level":      level,
			"escalated_at":          r.now,
			"verification_required": true,
			"silence_penalized_at":  r.now,
		}
		role := types.RoleForLevel(level)
		meta := map[string]any{
			"mechanism":     passSilence,
			"from_severity": v.Severity,
			"to_severity":   types.SeverityCritical,
			"from_level":    v.EscalationLevel,
			"to_level":      level,
			"silent_hours":  int(silent.Hours()),
		}
		applied, err := l.machine.Apply(ctx, lifecycle.Transition{
			ViolationID: v.ID,
			OrgID:       v.OrgID,
			Expect: repos.Precondition{
				Statuses:           []string{types.StatusOpen},
				EscalationLevel:    pointers.Int(v.EscalationLevel),
				SilenceUnpenalized: true,
			},
			Updates:      updates,
			Event:        types.EventSilencePenalty,
			EventMeta:    meta,
			ActionType:   types.ActionEscalate,
			ActionTarget: role,
			Message:      escalateMessage(v, role, fmt.Sprintf("unacknowledged %dh", int(silent.Hours()))),
			ActionData:   meta,
		})
		if err != nil {
			return err
		}
		if applied {
			r.count(func(res *types.LadderResult) { res.SilencePenalized++ })
		}
		return nil
	})
	return nil
}

// ---- 5. stall ----

func (l *Ladder) stall(ctx context.Context, r *run) error {
	open, err := l.repos.Violations.ListOpen(dbctx.Of(ctx), r.org)
	if err != nil {
		return fmt.Errorf("scan open violations: %w", err)
	}
	l.eachViolation(ctx, r, passStall, open, func(ctx context.Context, v *types.Violation) error {
		if v.Status != types.StatusAcknowledged || v.AckAt == nil || v.ActionAt != nil || v.StallPenalizedAt != nil {
			return nil
		}
		limit, ok := stallLimits[v.Severity]
		if !ok {
			return nil
		}
		stalled := r.now.Sub(*v.AckAt)
		if stalled < limit {
			return nil
		}
		level := lifecycle.NextLevel(v.EscalationLevel)
		role := types.RoleForLevel(level)
		meta := map[string]any{
			"mechanism":     passStall,
			"from_level":    v.EscalationLevel,
			"to_level":      level,
			"stalled_hours": int(stalled.Hours()),
		}
		applied, err := l.machine.Apply(ctx, lifecycle.Transition{
			ViolationID: v.ID,
			OrgID:       v.OrgID,
			Expect: repos.Precondition{
				Statuses:         []string{types.StatusAcknowledged},
				EscalationLevel:  pointers.Int(v.EscalationLevel),
				StallUnpenalized: true,
			},
			Updates: map[string]interface{}{
				"escalation_level":   level,
				"escalated_at":       r.now,
				"stall_penalized_at": r.now,
			},
			Event:        types.EventStallPenalty,
			EventMeta:    meta,
			ActionType:   types.ActionEscalate,
			ActionTarget: role,
			Message:      escalateMessage(v, role, fmt.Sprintf("acknowledged %dh without action", int(stalled.Hours()))),
			ActionData:   meta,
		})
		if err != nil {
			return err
		}
		if applied {
			r.count(func(res *types.LadderResult) { res.StallPenalized++ })
		}
		return nil
	})
	return nil
}
