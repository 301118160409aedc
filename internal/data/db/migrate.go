package db

import (
	"fmt"

	"gorm.io/gorm"

	types "github.com/yungbote/ops-accountability/internal/domain/enforcement"
)

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(
		// Violations + audit trail
		&types.Violation{},
		&types.ViolationEvent{},
		&types.Action{},

		// Scoring inputs + outputs
		&types.Venue{},
		&types.Attestation{},
		&types.ManagerSignalProfile{},
		&types.EnforcementSettings{},
		&types.EnforcementScore{},

		// Carry-forward queue
		&types.ManagerAction{},
		&types.FeedbackObject{},
		&types.EscalationLogEntry{},
	); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	if db.Dialector.Name() == "postgres" {
		if err := db.Exec(canSubmitAttestationSQL).Error; err != nil {
			return fmt.Errorf("install can_submit_attestation: %w", err)
		}
	}
	return nil
}

// canSubmitAttestationSQL blocks submission while a venue has unresolved
// critical feedback or urgent manager actions dated on or before the business date.
const canSubmitAttestationSQL = `
CREATE OR REPLACE FUNCTION can_submit_attestation(p_org_id uuid, p_venue_id uuid, p_business_date date)
RETURNS boolean
LANGUAGE sql
STABLE
AS $$
  SELECT NOT EXISTS (
    SELECT 1 FROM feedback_object
     WHERE org_id = p_org_id
       AND venue_id = p_venue_id
       AND severity = 'critical'
       AND status IN ('open', 'acknowledged', 'in_progress', 'escalated')
       AND business_date <= p_business_date
  ) AND NOT EXISTS (
    SELECT 1 FROM manager_action
     WHERE org_id = p_org_id
       AND venue_id = p_venue_id
       AND priority = 'urgent'
       AND status IN ('pending', 'in_progress', 'escalated')
       AND business_date <= p_business_date
  );
$$;
`
