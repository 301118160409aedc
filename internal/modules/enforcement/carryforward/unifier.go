// Package carryforward merges open manager actions and feedback objects into
// one ranked queue, hands stale items up the role chain, and reports the
// preshift summary that gates attestation.
package carryforward

import (
	"context"
	"fmt"
	"sort"
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

// Notifier delivers a notification to the role that now owns an item.
type Notifier interface {
	Notify(ctx context.Context, n types.Notification) error
}

type Deps struct {
	Repos         repos.Repos
	Notifier      Notifier
	Log           *logger.Logger
	Concurrency   int
	NotifyTimeout time.Duration
	Now           func() time.Time
}

type Unifier struct {
	repos         repos.Repos
	notifier      Notifier
	log           *logger.Logger
	limit         int
	notifyTimeout time.Duration
	now           func() time.Time
}

func New(deps Deps) *Unifier {
	u := &Unifier{
		repos:         deps.Repos,
		notifier:      deps.Notifier,
		log:           deps.Log,
		limit:         deps.Concurrency,
		notifyTimeout: deps.NotifyTimeout,
		now:           deps.Now,
	}
	if u.log == nil {
		u.log = logger.Nop()
	}
	u.log = u.log.With("component", "CarryForwardUnifier")
	if u.limit <= 0 {
		u.limit = 8
	}
	if u.notifyTimeout <= 0 {
		u.notifyTimeout = 5 * time.Second
	}
	if u.now == nil {
		u.now = func() time.Time { return time.Now().UTC() }
	}
	return u
}

type sweep struct {
	mu  sync.Mutex
	res types.CarryForwardResult
}

func (s *sweep) add(f func(res *types.CarryForwardResult)) {
	s.mu.Lock()
	f(&s.res)
	s.mu.Unlock()
}

// Run escalates every stale open item across both source tables.
func (u *Unifier) Run(ctx context.Context) types.CarryForwardResult {
	s := &sweep{res: types.CarryForwardResult{Errors: []string{}}}
	now := u.now()

	actions, err := u.repos.ManagerActions.ListEscalationCandidates(dbctx.Of(ctx))
	if err != nil {
		u.log.Warn("manager action scan failed", "error", err)
		s.add(func(res *types.CarryForwardResult) {
			res.Errors = append(res.Errors, fmt.Sprintf("%s: scan: %v", types.SourceManagerAction, err))
		})
	}
	feedback, err := u.repos.Feedback.ListEscalationCandidates(dbctx.Of(ctx))
	if err != nil {
		u.log.Warn("feedback object scan failed", "error", err)
		s.add(func(res *types.CarryForwardResult) {
			res.Errors = append(res.Errors, fmt.Sprintf("%s: scan: %v", types.SourceFeedbackObject, err))
		})
	}

	sources := make([]UnifiedSource, 0, len(actions)+len(feedback))
	for _, a := range actions {
		if a.Expired(now) {
			continue
		}
		sources = append(sources, ManagerActionItem{a})
	}
	for _, f := range feedback {
		sources = append(sources, FeedbackObjectItem{f})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(u.limit)
	for _, src := range sources {
		src := src
		g.Go(func() error {
			u.escalate(gctx, s, src, now)
			return nil
		})
	}
	_ = g.Wait()

	u.log.Info("carry-forward finished",
		"manager_actions_escalated", s.res.ManagerActionsEscalated,
		"feedback_objects_escalated", s.res.FeedbackObjectsEscalated,
		"notifications_sent", s.res.NotificationsSent,
		"errors", len(s.res.Errors),
	)
	return s.res
}

func (u *Unifier) escalate(ctx context.Context, s *sweep, src UnifiedSource, now time.Time) {
	e, ok := src.decide(now)
	if !ok {
		return
	}
	item := src.Project(now)
	fail := func(stage string, err error) {
		u.log.Warn("carry-forward item failed",
			"source_table", item.SourceTable, "source_id", item.SourceID, "org_id", item.OrgID, "stage", stage, "error", err)
		s.add(func(res *types.CarryForwardResult) {
			res.Errors = append(res.Errors, fmt.Sprintf("%s %s: %s: %v", item.SourceTable, item.SourceID, stage, err))
		})
	}

	applied := false
	err := u.repos.Tx.InTx(dbctx.Of(ctx), func(dbc dbctx.Context) error {
		var ok bool
		var err error
		switch item.SourceTable {
		case types.SourceManagerAction:
			ok, err = u.repos.ManagerActions.UpdateIfStatus(dbc, item.SourceID, item.Status, escalationUpdates(e, now))
		default:
			ok, err = u.repos.Feedback.UpdateIfStatus(dbc, item.SourceID, item.Status, escalationUpdates(e, now))
		}
		if err != nil || !ok {
			return err
		}
		if err := u.repos.EscalationLog.Append(dbc, &types.EscalationLogEntry{
			ID:           uuid.New(),
			OrgID:        item.OrgID,
			SourceTable:  item.SourceTable,
			SourceID:     item.SourceID,
			FromRole:     e.from,
			ToRole:       e.to,
			Reason:       e.reason,
			VenueID:      item.VenueID,
			BusinessDate: datatypes.Date(item.BusinessDate),
			CreatedAt:    now,
		}); err != nil {
			return fmt.Errorf("append escalation log: %w", err)
		}
		applied = true
		return nil
	})
	if err != nil {
		fail("escalate", err)
		return
	}
	if !applied {
		return
	}
	s.add(func(res *types.CarryForwardResult) {
		if item.SourceTable == types.SourceManagerAction {
			res.ManagerActionsEscalated++
		} else {
			res.FeedbackObjectsEscalated++
		}
	})

	if u.notifier == nil {
		return
	}
	nctx, cancel := context.WithTimeout(ctx, u.notifyTimeout)
	defer cancel()
	err = u.notifier.Notify(nctx, types.Notification{
		OrgID:       item.OrgID,
		VenueID:     item.VenueID,
		TargetRole:  e.to,
		Severity:    item.Severity,
		Title:       fmt.Sprintf("Escalated to %s: %s", e.to, item.Title),
		Body:        fmt.Sprintf("Open %dh, moved from %s (%s)", int(item.AgeHours), e.from, e.reason),
		SourceTable: item.SourceTable,
		SourceID:    item.SourceID,
	})
	if err != nil {
		fail("notify", err)
		return
	}
	s.add(func(res *types.CarryForwardResult) { res.NotificationsSent++ })
}

// GetQueue returns the venue's open items as of businessDate, most urgent
// first and oldest first within a rank.
func (u *Unifier) GetQueue(ctx context.Context, orgID, venueID uuid.UUID, businessDate time.Time) ([]UnifiedItem, error) {
	dbc := dbctx.Of(ctx)
	day := types.DateOf(businessDate)
	actions, err := u.repos.ManagerActions.ListOpenForVenue(dbc, orgID, venueID, day)
	if err != nil {
		return nil, fmt.Errorf("list manager actions: %w", err)
	}
	feedback, err := u.repos.Feedback.ListOpenForVenue(dbc, orgID, venueID, day)
	if err != nil {
		return nil, fmt.Errorf("list feedback objects: %w", err)
	}
	now := u.now()
	out := make([]UnifiedItem, 0, len(actions)+len(feedback))
	for _, a := range actions {
		out = append(out, ManagerActionItem{a}.Project(now))
	}
	for _, f := range feedback {
		out = append(out, FeedbackObjectItem{f}.Project(now))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].PriorityRank != out[j].PriorityRank {
			return out[i].PriorityRank < out[j].PriorityRank
		}
		return out[i].AgeHours > out[j].AgeHours
	})
	return out, nil
}

type PreshiftSummary struct {
	OrgID              uuid.UUID     `json:"org_id"`
	VenueID            uuid.UUID     `json:"venue_id"`
	BusinessDate       time.Time     `json:"business_date"`
	Total              int           `json:"total"`
	Critical           int           `json:"critical"`
	Warning            int           `json:"warning"`
	Info               int           `json:"info"`
	CarriedForward     int           `json:"carried_forward"`
	NewToday           int           `json:"new_today"`
	Escalated          int           `json:"escalated"`
	AttestationBlocked bool          `json:"attestation_blocked"`
	Items              []UnifiedItem `json:"items"`
}

// GetPreshiftSummary counts the venue's open items for businessDate and asks
// the attestation gate whether submission is blocked.
func (u *Unifier) GetPreshiftSummary(ctx context.Context, orgID, venueID uuid.UUID, businessDate time.Time) (*PreshiftSummary, error) {
	day := types.DateOf(businessDate)
	items, err := u.GetQueue(ctx, orgID, venueID, day)
	if err != nil {
		return nil, err
	}
	sum := &PreshiftSummary{OrgID: orgID, VenueID: venueID, BusinessDate: day, Total: len(items), Items: items}
	for _, it := range items {
		switch it.Severity {
		case types.SeverityCritical:
			sum.Critical++
		case types.SeverityWarning:
			sum.Warning++
		default:
			sum.Info++
		}
		if it.BusinessDate.Before(day) {
			sum.CarriedForward++
		} else if it.BusinessDate.Equal(day) {
			sum.NewToday++
		}
		if it.Status == types.ItemEscalated || it.EscalatedTo != "" {
			sum.Escalated++
		}
	}
	ok, err := u.repos.Gate.CanSubmit(dbctx.Of(ctx), orgID, venueID, day)
	if err != nil {
		return nil, fmt.Errorf("attestation gate: %w", err)
	}
	sum.AttestationBlocked = !ok
	return sum, nil
}
