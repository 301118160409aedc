package enforcementwf

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.temporal.io/sdk/testsuite"

	types "github.com/yungbote/ops-accountability/internal/domain/enforcement"
	"github.com/yungbote/ops-accountability/internal/pkg/logger"
)

type fakeEngine struct {
	mu     sync.Mutex
	orgs   []uuid.UUID
	calls  []string
	scored map[uuid.UUID]time.Time
}

func (f *fakeEngine) record(s string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, s)
}

func (f *fakeEngine) ListOrgs(ctx context.Context) ([]uuid.UUID, error) {
	f.record("orgs")
	return f.orgs, nil
}

func (f *fakeEngine) RunEscalationLadder(ctx context.Context, orgID uuid.UUID) (types.LadderResult, error) {
	f.record("ladder:" + orgID.String())
	return types.LadderResult{OrgID: orgID, TimeEscalated: 2}, nil
}

func (f *fakeEngine) ComputeEnforcementScores(ctx context.Context, orgID uuid.UUID, day time.Time) (types.ScoreResult, error) {
	f.record("scores:" + orgID.String())
	f.mu.Lock()
	f.scored[orgID] = day
	f.mu.Unlock()
	return types.ScoreResult{OrgID: orgID, BusinessDate: day, VenuesScored: 1}, nil
}

func (f *fakeEngine) RunCarryForward(ctx context.Context) (types.CarryForwardResult, error) {
	f.record("carry")
	return types.CarryForwardResult{ManagerActionsEscalated: 1}, nil
}

func newEnv(t *testing.T, eng *fakeEngine) *testsuite.TestWorkflowEnvironment {
	t.Helper()
	var s testsuite.WorkflowTestSuite
	env := s.NewTestWorkflowEnvironment()
	Register(env, &Activities{Log: logger.Nop(), Engine: eng})
	env.SetStartTime(time.Date(2026, 8, 3, 6, 0, 0, 0, time.UTC))
	return env
}

func TestNightlyDiscoversOrgsAndRunsInOrder(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	eng := &fakeEngine{orgs: []uuid.UUID{a, b}, scored: map[uuid.UUID]time.Time{}}
	env := newEnv(t, eng)

	env.ExecuteWorkflow(WorkflowNightly, NightlyInput{})
	if !env.IsWorkflowCompleted() {
		t.Fatalf("workflow did not complete")
	}
	if err := env.GetWorkflowError(); err != nil {
		t.Fatalf("workflow error: %v", err)
	}
	var res NightlyResult
	if err := env.GetWorkflowResult(&res); err != nil {
		t.Fatalf("result: %v", err)
	}

	want := []string{"orgs", "ladder:" + a.String(), "scores:" + a.String(), "ladder:" + b.String(), "scores:" + b.String(), "carry"}
	if strings.Join(eng.calls, ",") != strings.Join(want, ",") {
		t.Fatalf("calls=%v want %v", eng.calls, want)
	}
	if res.BusinessDate != "2026-08-03" {
		t.Fatalf("business_date=%q", res.BusinessDate)
	}
	if len(res.Orgs) != 2 || res.Orgs[0].Ladder == nil || res.Orgs[0].Ladder.TimeEscalated != 2 {
		t.Fatalf("unexpected org runs: %+v", res.Orgs)
	}
	if got := eng.scored[a]; !got.Equal(time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("scored date=%v", got)
	}
	if res.CarryForward == nil || res.CarryForward.ManagerActionsEscalated != 1 {
		t.Fatalf("carry forward missing: %+v", res.CarryForward)
	}
}

func TestNightlyRecordsBadOrgAndContinues(t *testing.T) {
	good := uuid.New()
	eng := &fakeEngine{scored: map[uuid.UUID]time.Time{}}
	env := newEnv(t, eng)

	env.ExecuteWorkflow(WorkflowNightly, NightlyInput{
		OrgIDs:       []string{"not-a-uuid", good.String()},
		BusinessDate: "2026-08-02",
		SkipCarry:    true,
	})
	if err := env.GetWorkflowError(); err != nil {
		t.Fatalf("workflow error: %v", err)
	}
	var res NightlyResult
	if err := env.GetWorkflowResult(&res); err != nil {
		t.Fatalf("result: %v", err)
	}
	if len(res.Orgs) != 2 {
		t.Fatalf("orgs=%d", len(res.Orgs))
	}
	if len(res.Orgs[0].Errors) != 2 {
		t.Fatalf("bad org errors=%v", res.Orgs[0].Errors)
	}
	if res.Orgs[1].Scores == nil || len(res.Orgs[1].Errors) != 0 {
		t.Fatalf("good org run=%+v", res.Orgs[1])
	}
	if res.CarryForward != nil {
		t.Fatalf("carry forward should be skipped")
	}
	for _, c := range eng.calls {
		if c == "orgs" || c == "carry" {
			t.Fatalf("unexpected call %q", c)
		}
	}
}

func TestScoresWorkflowDefaultsDate(t *testing.T) {
	org := uuid.New()
	eng := &fakeEngine{scored: map[uuid.UUID]time.Time{}}
	env := newEnv(t, eng)

	env.ExecuteWorkflow(WorkflowScores, ScoresInput{OrgID: org.String()})
	var res types.ScoreResult
	if err := env.GetWorkflowResult(&res); err != nil {
		t.Fatalf("result: %v", err)
	}
	if res.VenuesScored != 1 || res.BusinessDate.Format(DateLayout) != "2026-08-03" {
		t.Fatalf("unexpected result %+v", res)
	}
}
