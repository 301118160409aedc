package enforcement

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

func TestViolationAttributedTo(t *testing.T) {
	v := &Violation{Metadata: datatypes.JSON([]byte(`{"server_name":" Dana Ruiz ","manager_name":"Sam"}`))}
	if !v.AttributedTo("dana ruiz") {
		t.Fatalf("AttributedTo: expected server_name match")
	}
	if !v.AttributedTo("SAM") {
		t.Fatalf("AttributedTo: expected manager_name match")
	}
	if v.AttributedTo("") || v.AttributedTo("Alex") {
		t.Fatalf("AttributedTo: unexpected match")
	}
}

func TestViolationReferenceTime(t *testing.T) {
	detected := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	v := &Violation{DetectedAt: detected}
	if !v.ReferenceTime().Equal(detected) {
		t.Fatalf("ReferenceTime: want=%s got=%s", detected, v.ReferenceTime())
	}
	esc := detected.Add(30 * time.Hour)
	v.EscalatedAt = &esc
	if !v.ReferenceTime().Equal(esc) {
		t.Fatalf("ReferenceTime: want=%s got=%s", esc, v.ReferenceTime())
	}
}

func TestViolationIsSystemic(t *testing.T) {
	venue := uuid.New()
	if (&Violation{VenueID: &venue, Title: SystemicTitlePrefix + "x"}).IsSystemic() {
		t.Fatalf("IsSystemic: venue-scoped violation must not be systemic")
	}
	if !(&Violation{Title: SystemicTitlePrefix + "comp_exception"}).IsSystemic() {
		t.Fatalf("IsSystemic: expected systemic")
	}
}

func TestSettingsBoundsOverlay(t *testing.T) {
	var nilSettings *EnforcementSettings
	if nilSettings.Bounds() != DefaultSystemBounds() {
		t.Fatalf("Bounds: nil settings must yield defaults")
	}
	b := (&EnforcementSettings{MinAttestations: 5}).Bounds()
	if b.MinAttestations != 5 || b.WindowDays != 30 || b.ExpectedAttestations != 26 {
		t.Fatalf("Bounds: unexpected overlay %+v", b)
	}
}

func TestRoleForLevel(t *testing.T) {
	want := map[int]string{0: RoleManager, 1: RoleGM, 2: RoleDirector, 3: RoleOwner, 7: RoleManager}
	for level, role := range want {
		if got := RoleForLevel(level); got != role {
			t.Fatalf("RoleForLevel(%d): want=%s got=%s", level, role, got)
		}
	}
}
