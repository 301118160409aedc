// Package scoring computes the Manager Reliability Index and the Unit
// Discipline Score for an org and business date.
package scoring

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"

	repos "github.com/yungbote/ops-accountability/internal/data/repos/enforcement"
	types "github.com/yungbote/ops-accountability/internal/domain/enforcement"
	"github.com/yungbote/ops-accountability/internal/pkg/dbctx"
	"github.com/yungbote/ops-accountability/internal/pkg/logger"
)

type Deps struct {
	Repos       repos.Repos
	Bounds      BoundsSource
	Log         *logger.Logger
	Concurrency int
	Now         func() time.Time
}

type Engine struct {
	repos  repos.Repos
	bounds BoundsSource
	log    *logger.Logger
	limit  int
	now    func() time.Time
}

func New(deps Deps) *Engine {
	e := &Engine{
		repos:  deps.Repos,
		bounds: deps.Bounds,
		log:    deps.Log,
		limit:  deps.Concurrency,
		now:    deps.Now,
	}
	if e.bounds == nil {
		e.bounds = StaticBounds(types.DefaultSystemBounds())
	}
	if e.log == nil {
		e.log = logger.Nop()
	}
	e.log = e.log.With("component", "CompositeScoring")
	if e.limit <= 0 {
		e.limit = 8
	}
	if e.now == nil {
		e.now = func() time.Time { return time.Now().UTC() }
	}
	return e
}

type managerTally struct {
	id    uuid.UUID
	name  string
	count int
}

type tally struct {
	mu  sync.Mutex
	res types.ScoreResult
	log *logger.Logger
}

func (t *tally) fail(kind string, id uuid.UUID, err error) {
	t.log.Warn("score failed", "org_id", t.res.OrgID, "entity_type", kind, "entity_id", id, "error", err)
	t.mu.Lock()
	defer t.mu.Unlock()
	if id == uuid.Nil {
		t.res.Errors = append(t.res.Errors, fmt.Sprintf("%s: %v", kind, err))
		return
	}
	t.res.Errors = append(t.res.Errors, fmt.Sprintf("%s %s: %v", kind, id, err))
}

// Compute scores every eligible manager and every active venue of orgID for
// businessDate. Rows are upserted per entity, so a rerun replaces them.
func (e *Engine) Compute(ctx context.Context, orgID uuid.UUID, businessDate time.Time) types.ScoreResult {
	day := types.DateOf(businessDate)
	t := &tally{
		res: types.ScoreResult{OrgID: orgID, BusinessDate: day, Errors: []string{}},
		log: e.log,
	}
	dbc := dbctx.Of(ctx)

	bounds, err := e.bounds.Bounds(ctx, orgID)
	if err != nil {
		t.fail("bounds", uuid.Nil, err)
		bounds = types.DefaultSystemBounds()
	}
	start, end := window(day, bounds.WindowDays)
	inWindow := func(ts time.Time) bool { return !ts.Before(start) && ts.Before(end) }

	attestations, err := e.repos.Attestations.ListSubmittedSince(dbc, orgID, start)
	if err != nil {
		t.fail("attestations", uuid.Nil, err)
		return t.res
	}
	allResolved, err := e.repos.Violations.ListResolvedSince(dbc, orgID, start)
	if err != nil {
		t.fail("resolved_violations", uuid.Nil, err)
		return t.res
	}
	var resolved []*types.Violation
	for _, v := range allResolved {
		if inWindow(*v.ResolvedAt) {
			resolved = append(resolved, v)
		}
	}
	allDetected, err := e.repos.Violations.ListDetectedSince(dbc, orgID, start)
	if err != nil {
		t.fail("violations", uuid.Nil, err)
		return t.res
	}
	var detected []*types.Violation
	for _, v := range allDetected {
		if inWindow(v.DetectedAt) {
			detected = append(detected, v)
		}
	}

	managers := map[uuid.UUID]*managerTally{}
	venueAttestations := map[uuid.UUID]int{}
	for _, a := range attestations {
		if a.SubmittedAt == nil || !inWindow(*a.SubmittedAt) {
			continue
		}
		venueAttestations[a.VenueID]++
		m, ok := managers[a.ManagerID]
		if !ok {
			m = &managerTally{id: a.ManagerID}
			managers[a.ManagerID] = m
		}
		m.count++
		if name := strings.TrimSpace(a.ManagerName); name != "" {
			m.name = name
		}
	}

	computedAt := e.now()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.limit)

	for _, m := range sortedManagers(managers) {
		m := m
		if m.count < bounds.MinAttestations {
			t.mu.Lock()
			t.res.ManagersSkipped++
			t.mu.Unlock()
			continue
		}
		g.Go(func() error {
			if err := e.scoreManager(gctx, orgID, day, m, resolved, bounds, computedAt); err != nil {
				t.fail(types.EntityManager, m.id, err)
				return nil
			}
			t.mu.Lock()
			t.res.ManagersScored++
			t.mu.Unlock()
			return nil
		})
	}

	venues, err := e.repos.Venues.ListActive(dbc, orgID)
	if err != nil {
		t.fail("venues", uuid.Nil, err)
	}
	byVenue := map[uuid.UUID][]*types.Violation{}
	for _, v := range detected {
		if v.VenueID != nil {
			byVenue[*v.VenueID] = append(byVenue[*v.VenueID], v)
		}
	}
	for _, venue := range venues {
		venue := venue
		g.Go(func() error {
			w := venueWindow{violations: byVenue[venue.ID], attestations: venueAttestations[venue.ID]}
			if err := e.scoreVenue(gctx, orgID, day, venue.ID, w, bounds, computedAt); err != nil {
				t.fail(types.EntityVenue, venue.ID, err)
				return nil
			}
			t.mu.Lock()
			t.res.VenuesScored++
			t.mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	e.log.Info("enforcement scores computed",
		"org_id", orgID,
		"business_date", day.Format("2006-01-02"),
		"managers_scored", t.res.ManagersScored,
		"managers_skipped", t.res.ManagersSkipped,
		"venues_scored", t.res.VenuesScored,
		"errors", len(t.res.Errors),
	)
	return t.res
}

func (e *Engine) scoreManager(ctx context.Context, orgID uuid.UUID, day time.Time, m *managerTally, resolved []*types.Violation, b types.SystemBounds, computedAt time.Time) error {
	profile, err := e.repos.Profiles.GetLatest(dbctx.Of(ctx), orgID, m.id)
	if err != nil {
		return fmt.Errorf("load signal profile: %w", err)
	}
	var mine []*types.Violation
	for _, v := range resolved {
		if v.AttributedTo(m.name) {
			mine = append(mine, v)
		}
	}
	score, components := compose(managerWeights, managerComponents(profile, mine, b))
	return e.upsert(ctx, orgID, types.EntityManager, m.id, day, score, components, b.WindowDays, computedAt)
}

func (e *Engine) scoreVenue(ctx context.Context, orgID uuid.UUID, day time.Time, venueID uuid.UUID, w venueWindow, b types.SystemBounds, computedAt time.Time) error {
	score, components := compose(venueWeights, venueComponents(w, b))
	return e.upsert(ctx, orgID, types.EntityVenue, venueID, day, score, components, b.WindowDays, computedAt)
}

func (e *Engine) upsert(ctx context.Context, orgID uuid.UUID, entityType string, entityID uuid.UUID, day time.Time, score float64, components map[string]types.ScoreComponent, windowDays int, computedAt time.Time) error {
	raw, err := json.Marshal(components)
	if err != nil {
		return fmt.Errorf("encode components: %w", err)
	}
	row := &types.EnforcementScore{
		ID:           uuid.New(),
		OrgID:        orgID,
		EntityType:   entityType,
		EntityID:     entityID,
		BusinessDate: datatypes.Date(day),
		Score:        score,
		Components:   datatypes.JSON(raw),
		WindowDays:   windowDays,
		ComputedAt:   computedAt,
	}
	if err := e.repos.Scores.Upsert(dbctx.Of(ctx), []*types.EnforcementScore{row}); err != nil {
		return fmt.Errorf("upsert score: %w", err)
	}
	return nil
}

func sortedManagers(in map[uuid.UUID]*managerTally) []*managerTally {
	out := make([]*managerTally, 0, len(in))
	for _, m := range in {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id.String() < out[j].id.String() })
	return out
}
