package enforcement

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/ops-accountability/internal/data/repos/testutil"
	types "github.com/yungbote/ops-accountability/internal/domain/enforcement"
	"github.com/yungbote/ops-accountability/internal/pkg/dbctx"
)

func TestManagerActionRepoUpdateIfStatus(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewManagerActionRepo(db, testutil.Logger(t))

	orgID := uuid.New()
	venueID := uuid.New()
	m := testutil.SeedManagerAction(t, ctx, tx, orgID, venueID, types.PriorityHigh, time.Now().UTC().Add(-50*time.Hour))

	candidates, err := repo.ListEscalationCandidates(dbc)
	if err != nil {
		t.Fatalf("ListEscalationCandidates: %v", err)
	}
	found := false
	for _, c := range candidates {
		if c.ID == m.ID {
			found = true
		}
	}
	if !found {
		t.Fatalf("ListEscalationCandidates: seeded action missing")
	}

	updates := func() map[string]interface{} {
		return map[string]interface{}{"status": types.ItemEscalated, "escalated_to": "gm"}
	}
	applied, err := repo.UpdateIfStatus(dbc, m.ID, types.ItemPending, updates())
	if err != nil || !applied {
		t.Fatalf("UpdateIfStatus: want applied got applied=%v err=%v", applied, err)
	}
	applied, err = repo.UpdateIfStatus(dbc, m.ID, types.ItemPending, updates())
	if err != nil || applied {
		t.Fatalf("UpdateIfStatus: second writer want no-op got applied=%v err=%v", applied, err)
	}
}
