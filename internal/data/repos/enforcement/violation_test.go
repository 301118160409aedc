package enforcement

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/ops-accountability/internal/data/repos/testutil"
	types "github.com/yungbote/ops-accountability/internal/domain/enforcement"
	"github.com/yungbote/ops-accountability/internal/pkg/dbctx"
	"github.com/yungbote/ops-accountability/internal/pkg/pointers"
)

func TestViolationRepoUpdateIfState(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewViolationRepo(db, testutil.Logger(t))

	orgID := uuid.New()
	venueID := uuid.New()
	now := time.Now().UTC()
	v := testutil.SeedViolation(t, ctx, tx, orgID, &venueID, types.SeverityCritical, now.Add(-30*time.Hour))

	applied, err := repo.UpdateIfState(dbc, v.ID, Precondition{EscalationLevel: pointers.Int(0)}, map[string]interface{}{
		"escalation_level": 1,
		"escalated_at":     now,
	})
	if err != nil || !applied {
		t.Fatalf("UpdateIfState: first write want applied got applied=%v err=%v", applied, err)
	}

	// Same precondition again loses: the row is already at level 1.
	applied, err = repo.UpdateIfState(dbc, v.ID, Precondition{EscalationLevel: pointers.Int(0)}, map[string]interface{}{
		"escalation_level": 1,
	})
	if err != nil || applied {
		t.Fatalf("UpdateIfState: stale write want no-op got applied=%v err=%v", applied, err)
	}

	if err := tx.Model(&types.Violation{}).Where("id = ?", v.ID).Update("status", types.StatusResolved).Error; err != nil {
		t.Fatalf("resolve: %v", err)
	}
	applied, err = repo.UpdateIfState(dbc, v.ID, Precondition{}, map[string]interface{}{"escalation_level": 3})
	if err != nil || applied {
		t.Fatalf("UpdateIfState: terminal row must be frozen, got applied=%v err=%v", applied, err)
	}

	got, err := repo.GetByID(dbc, v.ID)
	if err != nil || got == nil {
		t.Fatalf("GetByID: err=%v got=%v", err, got)
	}
	if got.EscalationLevel != 1 {
		t.Fatalf("escalation_level: want=1 got=%d", got.EscalationLevel)
	}
}

func TestViolationRepoCreateDedupe(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	repo := NewViolationRepo(db, testutil.Logger(t))

	orgID := uuid.New()
	now := time.Now().UTC()
	key := "systemic:" + orgID.String() + ":comp_exception:" + now.Format("2006-01-02")
	mk := func() *types.Violation {
		return &types.Violation{
			OrgID:         orgID,
			ViolationType: "comp_exception",
			Title:         types.SystemicTitlePrefix + "comp_exception",
			Severity:      types.SeverityCritical,
			Status:        types.StatusOpen,
			DetectedAt:    now,
			Metadata:      datatypes.JSON([]byte("{}")),
			BusinessDate:  datatypes.Date(types.DateOf(now)),
			DedupeKey:     &key,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
	}
	created, err := repo.Create(dbc, mk())
	if err != nil || !created {
		t.Fatalf("Create: want created got created=%v err=%v", created, err)
	}
	created, err = repo.Create(dbc, mk())
	if err != nil || created {
		t.Fatalf("Create: duplicate dedupe key want skipped got created=%v err=%v", created, err)
	}
	found, err := repo.FindSystemic(dbc, orgID, "comp_exception", now.Add(-14*24*time.Hour))
	if err != nil || found == nil {
		t.Fatalf("FindSystemic: err=%v found=%v", err, found)
	}
}

func TestScoreRepoUpsertReplaces(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	repo := NewScoreRepo(db, testutil.Logger(t))

	orgID := uuid.New()
	entityID := uuid.New()
	day := types.DateOf(time.Now())
	mk := func(score float64) *types.EnforcementScore {
		return &types.EnforcementScore{
			OrgID:        orgID,
			EntityType:   types.EntityVenue,
			EntityID:     entityID,
			BusinessDate: datatypes.Date(day),
			Score:        score,
			Components:   datatypes.JSON([]byte("{}")),
			WindowDays:   30,
			ComputedAt:   time.Now().UTC(),
		}
	}
	if err := repo.Upsert(dbc, []*types.EnforcementScore{mk(50)}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := repo.Upsert(dbc, []*types.EnforcementScore{mk(80)}); err != nil {
		t.Fatalf("Upsert rerun: %v", err)
	}
	rows, err := repo.ListByDate(dbc, orgID, day)
	if err != nil {
		t.Fatalf("ListByDate: %v", err)
	}
	if len(rows) != 1 || rows[0].Score != 80 {
		t.Fatalf("ListByDate: want one row with score 80, got %d rows %+v", len(rows), rows)
	}
}

func TestAttestationGateBlocksOnCriticalFeedback(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	gate := NewAttestationGate(db, testutil.Logger(t))

	orgID := uuid.New()
	venueID := uuid.New()
	today := types.DateOf(time.Now())

	ok, err := gate.CanSubmit(dbc, orgID, venueID, today)
	if err != nil || !ok {
		t.Fatalf("CanSubmit: empty venue want true got ok=%v err=%v", ok, err)
	}

	fo := &types.FeedbackObject{
		ID:           uuid.New(),
		OrgID:        orgID,
		VenueID:      venueID,
		BusinessDate: datatypes.Date(today.AddDate(0, 0, -1)),
		Title:        "Cold food complaint",
		Severity:     types.SeverityCritical,
		Status:       types.ItemOpen,
		OwnerRole:    "venue_manager",
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
	if err := tx.WithContext(ctx).Create(fo).Error; err != nil {
		t.Fatalf("seed feedback: %v", err)
	}
	ok, err = gate.CanSubmit(dbc, orgID, venueID, today)
	if err != nil || ok {
		t.Fatalf("CanSubmit: want blocked got ok=%v err=%v", ok, err)
	}
}
