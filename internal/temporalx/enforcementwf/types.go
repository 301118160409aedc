package enforcementwf

import (
	types "github.com/yungbote/ops-accountability/internal/domain/enforcement"
)

const (
	WorkflowLadder       = "enforcement_ladder"
	WorkflowScores       = "enforcement_scores"
	WorkflowCarryForward = "enforcement_carry_forward"
	WorkflowNightly      = "enforcement_nightly"

	ActivityListOrgs     = "enforcement_list_orgs"
	ActivityLadder       = "enforcement_run_ladder"
	ActivityScores       = "enforcement_compute_scores"
	ActivityCarryForward = "enforcement_run_carry_forward"
)

// DateLayout is the business date wire format.
const DateLayout = "2006-01-02"

type OrgInput struct {
	OrgID string `json:"org_id"`
}

type ScoresInput struct {
	OrgID string `json:"org_id"`
	// BusinessDate defaults to the workflow's current UTC date when empty.
	BusinessDate string `json:"business_date,omitempty"`
}

type NightlyInput struct {
	// OrgIDs defaults to every org with an active venue.
	OrgIDs       []string `json:"org_ids,omitempty"`
	BusinessDate string   `json:"business_date,omitempty"`
	SkipCarry    bool     `json:"skip_carry_forward,omitempty"`
}

type OrgRun struct {
	OrgID  string              `json:"org_id"`
	Ladder *types.LadderResult `json:"ladder,omitempty"`
	Scores *types.ScoreResult  `json:"scores,omitempty"`
	Errors []string            `json:"errors,omitempty"`
}

type NightlyResult struct {
	BusinessDate string                    `json:"business_date"`
	Orgs         []OrgRun                  `json:"orgs"`
	CarryForward *types.CarryForwardResult `json:"carry_forward,omitempty"`
	Errors       []string                  `json:"errors,omitempty"`
}
