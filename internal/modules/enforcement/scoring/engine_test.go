package scoring

import (
	"context"
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/ops-accountability/internal/data/repos/memrepo"
	types "github.com/yungbote/ops-accountability/internal/domain/enforcement"
	"github.com/yungbote/ops-accountability/internal/pkg/logger"
	"github.com/yungbote/ops-accountability/internal/pkg/pointers"
)

var (
	businessDate = time.Date(2026, 7, 20, 0, 0, 0, 0, time.UTC)
	runAt        = time.Date(2026, 7, 21, 4, 0, 0, 0, time.UTC)
)

type fixture struct {
	store *memrepo.Store
	org   uuid.UUID
	venue uuid.UUID
}

func newFixture() *fixture {
	f := &fixture{store: memrepo.New(), org: uuid.New(), venue: uuid.New()}
	f.store.PutVenue(&types.Venue{ID: f.venue, OrgID: f.org, Name: "Harbor Street", Active: true})
	return f
}

func (f *fixture) engine(bounds BoundsSource) *Engine {
	return New(Deps{
		Repos:       f.store.Repos(),
		Bounds:      bounds,
		Log:         logger.Nop(),
		Concurrency: 2,
		Now:         func() time.Time { return runAt },
	})
}

func (f *fixture) attest(managerID uuid.UUID, name string, n int) {
	for i := 0; i < n; i++ {
		at := businessDate.Add(-time.Duration(i)*24*time.Hour + 23*time.Hour)
		f.store.PutAttestation(&types.Attestation{
			OrgID:        f.org,
			VenueID:      f.venue,
			ManagerID:    managerID,
			ManagerName:  name,
			BusinessDate: datatypes.Date(types.DateOf(at)),
			Status:       types.AttestationSubmitted,
			SubmittedAt:  pointers.Time(at),
		})
	}
}

func (f *fixture) score(entityType string, id uuid.UUID) *types.EnforcementScore {
	for _, s := range f.store.Scores() {
		if s.EntityType == entityType && s.EntityID == id {
			return s
		}
	}
	return nil
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func TestWeightsSumToHundred(t *testing.T) {
	for name, ws := range map[string][]weighted{"manager": managerWeights, "venue": venueWeights} {
		sum := 0.0
		for _, w := range ws {
			sum += w.Weight
		}
		if sum != 100 {
			t.Fatalf("%s weights: want=100 got=%v", name, sum)
		}
	}
}

func TestComposeClampsPathologicalInputs(t *testing.T) {
	inputs := []map[string]float64{
		{"follow_through": -3, "command_score": 40, "avoidance_discipline": math.NaN()},
		{"follow_through": 9, "command_score": 9, "avoidance_discipline": 9, "blame_accountability": 9, "corrective_action": 9, "breach_resolution": 9},
		{"follow_through": -1, "command_score": -1, "avoidance_discipline": -1, "blame_accountability": -1, "corrective_action": -1, "breach_resolution": -1},
	}
	for i, raw := range inputs {
		score, comps := compose(managerWeights, raw)
		if score < 0 || score > 100 {
			t.Fatalf("case %d: score out of range: %v", i, score)
		}
		for name, c := range comps {
			if c.Raw < 0 || c.Raw > 1 {
				t.Fatalf("case %d: %s raw out of range: %v", i, name, c.Raw)
			}
		}
	}
	if score, _ := compose(managerWeights, inputs[1]); score != 100 {
		t.Fatalf("saturated: want=100 got=%v", score)
	}
	if score, _ := compose(managerWeights, inputs[2]); score != 0 {
		t.Fatalf("negative: want=0 got=%v", score)
	}
}

func TestManagerAttestationThreshold(t *testing.T) {
	f := newFixture()
	two, three := uuid.New(), uuid.New()
	f.attest(two, "Dana", 2)
	f.attest(three, "Sam", 3)

	res := f.engine(nil).Compute(context.Background(), f.org, businessDate)
	if res.ManagersScored != 1 || res.ManagersSkipped != 1 || len(res.Errors) != 0 {
		t.Fatalf("result: %+v", res)
	}
	if f.score(types.EntityManager, two) != nil {
		t.Fatalf("manager with 2 attestations has a score row")
	}
	if f.score(types.EntityManager, three) == nil {
		t.Fatalf("manager with 3 attestations has no score row")
	}
}

func TestManagerReliabilityIndex(t *testing.T) {
	f := newFixture()
	mgr := uuid.New()
	f.attest(mgr, "Jordan Lee", 5)
	f.store.PutProfile(&types.ManagerSignalProfile{
		OrgID:                  f.org,
		ManagerID:              mgr,
		WindowDays:             30,
		CommitmentsFulfilled:   8,
		CommitmentsUnfulfilled: 2,
		AvoidanceRate:          0.1,
		BlameShiftRate:         0.2,
		CorrectiveActionRate:   0.6,
		AvgCommandScore:        datatypes.NewJSONType(types.CommandScore{Overall: 7}),
		ComputedAt:             runAt.Add(-time.Hour),
	})
	detected := businessDate.Add(-3 * 24 * time.Hour)
	f.store.PutViolation(&types.Violation{
		OrgID:         f.org,
		VenueID:       pointers.UUID(f.venue),
		ViolationType: "comp_exception",
		Title:         "Comp over limit",
		Severity:      types.SeverityWarning,
		Status:        types.StatusResolved,
		DetectedAt:    detected,
		AckAt:         pointers.Time(detected.Add(time.Hour)),
		ActionAt:      pointers.Time(detected.Add(2 * time.Hour)),
		ActionSummary: "recounted drawer with server",
		ResolvedAt:    pointers.Time(detected.Add(12 * time.Hour)),
		Metadata:      datatypes.JSON(`{"manager_name":"jordan lee"}`),
	})

	res := f.engine(nil).Compute(context.Background(), f.org, businessDate)
	if res.ManagersScored != 1 || len(res.Errors) != 0 {
		t.Fatalf("result: %+v", res)
	}
	row := f.score(types.EntityManager, mgr)
	// 0.8*25 + 0.7*25 + 0.9*15 + 0.8*10 + 0.6*10 + 1*15
	if !near(row.Score, 80) {
		t.Fatalf("score: want=80 got=%v", row.Score)
	}
	var comps map[string]types.ScoreComponent
	if err := json.Unmarshal(row.Components, &comps); err != nil {
		t.Fatalf("components: %v", err)
	}
	if len(comps) != 6 || !near(comps["breach_resolution"].Weighted, 15) {
		t.Fatalf("components: %+v", comps)
	}
}

func TestAntiGamingGateWithholdsSpeedCredit(t *testing.T) {
	f := newFixture()
	mgr := uuid.New()
	f.attest(mgr, "Robin", 3)
	detected := businessDate.Add(-2 * 24 * time.Hour)
	f.store.PutViolation(&types.Violation{
		OrgID:      f.org,
		VenueID:    pointers.UUID(f.venue),
		Severity:   types.SeverityWarning,
		Status:     types.StatusResolved,
		DetectedAt: detected,
		AckAt:      pointers.Time(detected.Add(10 * time.Minute)),
		ResolvedAt: pointers.Time(detected.Add(time.Hour)),
		Metadata:   datatypes.JSON(`{"server_name":"Robin"}`),
	})

	f.engine(nil).Compute(context.Background(), f.org, businessDate)
	row := f.score(types.EntityManager, mgr)
	var comps map[string]types.ScoreComponent
	_ = json.Unmarshal(row.Components, &comps)
	if comps["breach_resolution"].Raw != 0 {
		t.Fatalf("breach_resolution without corrective action: want=0 got=%v", comps["breach_resolution"].Raw)
	}
}

func TestManagerNeutralDefaults(t *testing.T) {
	f := newFixture()
	mgr := uuid.New()
	f.attest(mgr, "Alex", 3)

	f.engine(nil).Compute(context.Background(), f.org, businessDate)
	// 0.5 on every profile component, 0.6 resolution speed with full quality.
	if row := f.score(types.EntityManager, mgr); !near(row.Score, 51.5) {
		t.Fatalf("neutral score: want=51.5 got=%v", row.Score)
	}
}

func TestUnitDisciplineScore(t *testing.T) {
	f := newFixture()
	clean := uuid.New()
	f.store.PutVenue(&types.Venue{ID: clean, OrgID: f.org, Name: "Quiet Corner", Active: true})
	f.store.PutVenue(&types.Venue{ID: uuid.New(), OrgID: f.org, Name: "Closed", Active: false})
	for i := 0; i < 26; i++ {
		at := businessDate.Add(-time.Duration(i) * 24 * time.Hour)
		f.store.PutAttestation(&types.Attestation{OrgID: f.org, VenueID: clean, ManagerID: uuid.New(), Status: types.AttestationApproved, SubmittedAt: pointers.Time(at)})
	}

	base := businessDate.Add(-5 * 24 * time.Hour)
	put := func(status string, level int, resolveAfter time.Duration) {
		v := &types.Violation{
			OrgID:           f.org,
			VenueID:         pointers.UUID(f.venue),
			Severity:        types.SeverityWarning,
			Status:          status,
			EscalationLevel: level,
			DetectedAt:      base,
		}
		if resolveAfter > 0 {
			v.ResolvedAt = pointers.Time(base.Add(resolveAfter))
		}
		f.store.PutViolation(v)
	}
	put(types.StatusResolved, 0, 12*time.Hour)
	put(types.StatusResolved, 0, 42*time.Hour)
	put(types.StatusWaived, 0, 0)
	put(types.StatusOpen, 1, 0)

	res := f.engine(nil).Compute(context.Background(), f.org, businessDate)
	if res.VenuesScored != 2 || len(res.Errors) != 0 {
		t.Fatalf("result: %+v", res)
	}
	if row := f.score(types.EntityVenue, clean); !near(row.Score, 100) {
		t.Fatalf("clean venue: want=100 got=%v", row.Score)
	}
	// 0.6*30 + 0.5*20 + 0.75*15 + 0*15 + 0.75*15 + 0.75*5
	if row := f.score(types.EntityVenue, f.venue); !near(row.Score, 54.25) {
		t.Fatalf("busy venue: want=54.25 got=%v", row.Score)
	}
}

func TestRerunReplacesScores(t *testing.T) {
	f := newFixture()
	mgr := uuid.New()
	f.attest(mgr, "Casey", 4)
	eng := f.engine(nil)

	eng.Compute(context.Background(), f.org, businessDate)
	first := f.store.Scores()
	eng.Compute(context.Background(), f.org, businessDate)
	second := f.store.Scores()

	if len(first) != 2 || len(second) != 2 {
		t.Fatalf("rows: first=%d second=%d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID || first[i].Score != second[i].Score {
			t.Fatalf("row %d drifted: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestBoundsFromSettingsAreCached(t *testing.T) {
	f := newFixture()
	mgr := uuid.New()
	f.attest(mgr, "Morgan", 2)
	f.store.PutSettings(&types.EnforcementSettings{OrgID: f.org, MinAttestations: 2})

	now := runAt
	bounds := NewBoundsCache(f.store.Repos().Settings, 30*time.Minute).WithClock(func() time.Time { return now })
	eng := f.engine(bounds)

	if res := eng.Compute(context.Background(), f.org, businessDate); res.ManagersScored != 1 {
		t.Fatalf("with min_attestations=2: %+v", res)
	}

	f.store.PutSettings(&types.EnforcementSettings{OrgID: f.org, MinAttestations: 5})
	if res := eng.Compute(context.Background(), f.org, businessDate); res.ManagersScored != 1 {
		t.Fatalf("cached bounds not used: %+v", res)
	}

	now = now.Add(31 * time.Minute)
	if res := eng.Compute(context.Background(), f.org, businessDate); res.ManagersScored != 0 || res.ManagersSkipped != 1 {
		t.Fatalf("after expiry: %+v", res)
	}
}
