// Package ladder runs the five escalation passes over an org's violations.
package ladder

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	repos "github.com/yungbote/ops-accountability/internal/data/repos/enforcement"
	types "github.com/yungbote/ops-accountability/internal/domain/enforcement"
	"github.com/yungbote/ops-accountability/internal/modules/enforcement/lifecycle"
	"github.com/yungbote/ops-accountability/internal/pkg/logger"
)

type Deps struct {
	Repos       repos.Repos
	Machine     *lifecycle.Machine
	Log         *logger.Logger
	Concurrency int
}

type Ladder struct {
	repos   repos.Repos
	machine *lifecycle.Machine
	log     *logger.Logger
	limit   int
}

func New(deps Deps) *Ladder {
	limit := deps.Concurrency
	if limit <= 0 {
		limit = 8
	}
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	return &Ladder{
		repos:   deps.Repos,
		machine: deps.Machine,
		log:     log.With("component", "EscalationLadder"),
		limit:   limit,
	}
}

// run accumulates one ladder invocation. Counters and errors are shared by
// the worker goroutines of a pass.
type run struct {
	mu  sync.Mutex
	org uuid.UUID
	now time.Time
	res types.LadderResult
	log *logger.Logger
}

func (r *run) count(f func(res *types.LadderResult)) {
	r.mu.Lock()
	f(&r.res)
	r.mu.Unlock()
}

func (r *run) fail(pass string, id uuid.UUID, err error) {
	if id == uuid.Nil {
		r.log.Warn("ladder pass failed", "org_id", r.org, "pass", pass, "error", err)
		r.mu.Lock()
		r.res.Errors = append(r.res.Errors, fmt.Sprintf("%s: %v", pass, err))
		r.mu.Unlock()
		return
	}
	r.log.Warn("ladder item failed", "org_id", r.org, "pass", pass, "violation_id", id, "error", err)
	r.mu.Lock()
	r.res.Errors = append(r.res.Errors, fmt.Sprintf("%s: violation %s: %v", pass, id, err))
	r.mu.Unlock()
}

// Run executes every pass against orgID. Passes run in a fixed order, each on
// a fresh scan, and a failing pass never stops the ones after it.
func (l *Ladder) Run(ctx context.Context, orgID uuid.UUID) types.LadderResult {
	r := &run{
		org: orgID,
		now: l.machine.Now(),
		res: types.LadderResult{OrgID: orgID, Errors: []string{}},
		log: l.log,
	}
	passes := []struct {
		name string
		fn   func(ctx context.Context, r *run) error
	}{
		{passTimeBased, l.timeBased},
		{passRecurrence, l.recurrence},
		{passSystemic, l.systemic},
		{passSilence, l.silence},
		{passStall, l.stall},
	}
	for _, p := range passes {
		if err := ctx.Err(); err != nil {
			r.fail(p.name, uuid.Nil, err)
			continue
		}
		if err := p.fn(ctx, r); err != nil {
			r.fail(p.name, uuid.Nil, err)
		}
	}
	l.log.Info("escalation ladder finished",
		"org_id", orgID,
		"transitions", r.res.Transitions(),
		"errors", len(r.res.Errors),
	)
	return r.res
}

// each fans fn out over items with bounded parallelism. Item errors are
// recorded on r and never cancel siblings.
func each[T any](ctx context.Context, limit int, items []T, fn func(ctx context.Context, item T) error, onErr func(item T, err error)) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, it := range items {
		it := it
		g.Go(func() error {
			if err := fn(gctx, it); err != nil {
				onErr(it, err)
			}
			return nil
		})
	}
	_ = g.Wait()
}

func (l *Ladder) eachViolation(ctx context.Context, r *run, pass string, items []*types.Violation, fn func(ctx context.Context, v *types.Violation) error) {
	each(ctx, l.limit, items, fn, func(v *types.Violation, err error) { r.fail(pass, v.ID, err) })
}

func escalateMessage(v *types.Violation, role string, why string) string {
	return fmt.Sprintf("%s escalated to %s (%s)", v.Title, role, why)
}
