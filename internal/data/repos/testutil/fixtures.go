package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/yungbote/ops-accountability/internal/domain/enforcement"
)

func SeedViolation(tb testing.TB, ctx context.Context, tx *gorm.DB, orgID uuid.UUID, venueID *uuid.UUID, severity string, detectedAt time.Time) *types.Violation {
	tb.Helper()
	v := &types.Violation{
		ID:            uuid.New(),
		OrgID:         orgID,
		VenueID:       venueID,
		ViolationType: "comp_exception",
		Title:         "Comp over threshold",
		Severity:      severity,
		Status:        types.StatusOpen,
		DetectedAt:    detectedAt,
		Metadata:      datatypes.JSON([]byte("{}")),
		BusinessDate:  datatypes.Date(types.DateOf(detectedAt)),
		CreatedAt:     detectedAt,
		UpdatedAt:     detectedAt,
	}
	if err := tx.WithContext(ctx).Create(v).Error; err != nil {
		tb.Fatalf("seed violation: %v", err)
	}
	return v
}

func SeedManagerAction(tb testing.TB, ctx context.Context, tx *gorm.DB, orgID, venueID uuid.UUID, priority string, createdAt time.Time) *types.ManagerAction {
	tb.Helper()
	m := &types.ManagerAction{
		ID:           uuid.New(),
		OrgID:        orgID,
		VenueID:      venueID,
		BusinessDate: datatypes.Date(types.DateOf(createdAt)),
		Title:        "follow up",
		Priority:     priority,
		Status:       types.ItemPending,
		AssignedRole: "venue_manager",
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	}
	if err := tx.WithContext(ctx).Create(m).Error; err != nil {
		tb.Fatalf("seed manager action: %v", err)
	}
	return m
}

func PtrUUID(v uuid.UUID) *uuid.UUID { return &v }

func PtrTime(v time.Time) *time.Time { return &v }
