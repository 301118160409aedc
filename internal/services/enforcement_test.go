package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/ops-accountability/internal/data/repos/memrepo"
	types "github.com/yungbote/ops-accountability/internal/domain/enforcement"
	"github.com/yungbote/ops-accountability/internal/modules/enforcement/carryforward"
	"github.com/yungbote/ops-accountability/internal/modules/enforcement/ladder"
	"github.com/yungbote/ops-accountability/internal/modules/enforcement/lifecycle"
	"github.com/yungbote/ops-accountability/internal/modules/enforcement/scoring"
	"github.com/yungbote/ops-accountability/internal/observability"
	apperrors "github.com/yungbote/ops-accountability/internal/pkg/errors"
	"github.com/yungbote/ops-accountability/internal/pkg/logger"
	"github.com/yungbote/ops-accountability/internal/pkg/pointers"
)

var now = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

type nopNotifier struct{}

func (nopNotifier) Notify(ctx context.Context, n types.Notification) error { return nil }

func newService(t *testing.T) (EnforcementService, *memrepo.Store, *observability.Metrics) {
	t.Helper()
	store := memrepo.New()
	clock := func() time.Time { return now }
	store.Now = clock
	r := store.Repos()
	log := logger.Nop()
	machine := lifecycle.NewMachine(r, log).WithClock(clock)
	metrics := observability.NewMetrics()
	svc, err := NewEnforcementService(EnforcementDeps{
		Repos:   r,
		Machine: machine,
		Ladder:  ladder.New(ladder.Deps{Repos: r, Machine: machine, Log: log}),
		Scoring: scoring.New(scoring.Deps{
			Repos:  r,
			Bounds: scoring.StaticBounds(types.DefaultSystemBounds()),
			Log:    log,
			Now:    clock,
		}),
		CarryForward: carryforward.New(carryforward.Deps{Repos: r, Notifier: nopNotifier{}, Log: log, Now: clock}),
		Metrics:      metrics,
		Log:          log,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, store, metrics
}

func TestNewEnforcementServiceRequiresEngines(t *testing.T) {
	if _, err := NewEnforcementService(EnforcementDeps{}); err == nil {
		t.Fatalf("expected error for missing deps")
	}
}

func TestRunEscalationLadderRejectsNilOrg(t *testing.T) {
	svc, _, _ := newService(t)
	_, err := svc.RunEscalationLadder(context.Background(), uuid.Nil)
	if !errors.Is(err, apperrors.ErrInvalidArgument) {
		t.Fatalf("want ErrInvalidArgument got %v", err)
	}
	if _, err := svc.ComputeEnforcementScores(context.Background(), uuid.New(), time.Time{}); !errors.Is(err, apperrors.ErrInvalidArgument) {
		t.Fatalf("zero date: want ErrInvalidArgument got %v", err)
	}
}

func TestRunEscalationLadderEscalatesAndRecordsMetrics(t *testing.T) {
	svc, store, metrics := newService(t)
	org := uuid.New()
	v := store.PutViolation(&types.Violation{
		OrgID:         org,
		VenueID:       pointers.UUID(uuid.New()),
		ViolationType: "temp_log_missed",
		Title:         "Temp log missed",
		Severity:      types.SeverityCritical,
		Status:        types.StatusAcknowledged,
		AckAt:         pointers.Time(now.Add(-20 * time.Hour)),
		DetectedAt:    now.Add(-25 * time.Hour),
	})

	res, err := svc.RunEscalationLadder(context.Background(), org)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.TimeEscalated != 1 || len(res.Errors) != 0 {
		t.Fatalf("unexpected result %+v", res)
	}
	if got := store.Violation(v.ID).EscalationLevel; got != 1 {
		t.Fatalf("level: want=1 got=%d", got)
	}

	detail, err := svc.GetViolation(context.Background(), v.ID)
	if err != nil {
		t.Fatalf("get violation: %v", err)
	}
	if len(detail.Events) != 1 || len(detail.Actions) != 1 {
		t.Fatalf("events=%d actions=%d", len(detail.Events), len(detail.Actions))
	}

	var b strings.Builder
	if err := metrics.WritePrometheus(&b); err != nil {
		t.Fatalf("metrics: %v", err)
	}
	if !strings.Contains(b.String(), `enforcement_ladder_transitions_total{pass="time_based"} 1`) {
		t.Fatalf("metrics missing transition:\n%s", b.String())
	}
}

func TestGetViolationNotFound(t *testing.T) {
	svc, _, _ := newService(t)
	_, err := svc.GetViolation(context.Background(), uuid.New())
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("want ErrNotFound got %v", err)
	}
}

func TestManualLifecycleThroughService(t *testing.T) {
	svc, store, _ := newService(t)
	v := store.PutViolation(&types.Violation{
		OrgID: uuid.New(), ViolationType: "cash_variance", Title: "Cash variance",
		Severity: types.SeverityWarning, DetectedAt: now.Add(-time.Hour),
	})
	ctx := context.Background()

	if ok, err := svc.Acknowledge(ctx, v.ID); err != nil || !ok {
		t.Fatalf("ack: ok=%v err=%v", ok, err)
	}
	if _, err := svc.Resolve(ctx, v.ID); !errors.Is(err, lifecycle.ErrInvalidTransition) {
		t.Fatalf("resolve from acknowledged: want ErrInvalidTransition got %v", err)
	}
	if ok, err := svc.StartAction(ctx, v.ID, "recounted drawer"); err != nil || !ok {
		t.Fatalf("start: ok=%v err=%v", ok, err)
	}
	if ok, err := svc.Resolve(ctx, v.ID); err != nil || !ok {
		t.Fatalf("resolve: ok=%v err=%v", ok, err)
	}
	if got := store.Violation(v.ID).Status; got != types.StatusResolved {
		t.Fatalf("status=%s", got)
	}
	if _, err := svc.Waive(ctx, v.ID, "late"); !errors.Is(err, lifecycle.ErrInvalidTransition) {
		t.Fatalf("waive resolved: want ErrInvalidTransition got %v", err)
	}
}

func TestListOrgsFromActiveVenues(t *testing.T) {
	svc, store, _ := newService(t)
	a, b := uuid.New(), uuid.New()
	store.PutVenue(&types.Venue{ID: uuid.New(), OrgID: a, Name: "North", Active: true})
	store.PutVenue(&types.Venue{ID: uuid.New(), OrgID: a, Name: "South", Active: true})
	store.PutVenue(&types.Venue{ID: uuid.New(), OrgID: b, Name: "Closed", Active: false})

	orgs, err := svc.ListOrgs(context.Background())
	if err != nil {
		t.Fatalf("list orgs: %v", err)
	}
	if len(orgs) != 1 || orgs[0] != a {
		t.Fatalf("orgs=%v want [%s]", orgs, a)
	}
}

func TestComputeScoresThenList(t *testing.T) {
	svc, store, _ := newService(t)
	org := uuid.New()
	store.PutVenue(&types.Venue{ID: uuid.New(), OrgID: org, Name: "Main", Active: true})

	res, err := svc.ComputeEnforcementScores(context.Background(), org, now)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if res.VenuesScored != 1 {
		t.Fatalf("venues scored=%d", res.VenuesScored)
	}
	rows, err := svc.ListScores(context.Background(), org, now)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 1 || rows[0].EntityType != types.EntityVenue {
		t.Fatalf("rows=%+v", rows)
	}
}
