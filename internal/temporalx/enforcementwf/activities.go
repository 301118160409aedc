package enforcementwf

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.temporal.io/sdk/temporal"

	types "github.com/yungbote/ops-accountability/internal/domain/enforcement"
	"github.com/yungbote/ops-accountability/internal/pkg/logger"
)

// Engine is the slice of the enforcement service the activities drive.
type Engine interface {
	ListOrgs(ctx context.Context) ([]uuid.UUID, error)
	RunEscalationLadder(ctx context.Context, orgID uuid.UUID) (types.LadderResult, error)
	ComputeEnforcementScores(ctx context.Context, orgID uuid.UUID, businessDate time.Time) (types.ScoreResult, error)
	RunCarryForward(ctx context.Context) (types.CarryForwardResult, error)
}

type Activities struct {
	Log    *logger.Logger
	Engine Engine
}

func (a *Activities) ListOrgs(ctx context.Context) ([]string, error) {
	if err := a.ready(); err != nil {
		return nil, err
	}
	ids, err := a.Engine.ListOrgs(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out, nil
}

func (a *Activities) Ladder(ctx context.Context, in OrgInput) (types.LadderResult, error) {
	if err := a.ready(); err != nil {
		return types.LadderResult{}, err
	}
	orgID, err := parseOrg(in.OrgID)
	if err != nil {
		return types.LadderResult{}, err
	}
	res, err := a.Engine.RunEscalationLadder(ctx, orgID)
	if err != nil {
		return res, err
	}
	if len(res.Errors) > 0 && a.Log != nil {
		a.Log.Warn("Ladder finished with errors", "org_id", orgID, "errors", len(res.Errors), "transitions", res.Transitions())
	}
	return res, nil
}

func (a *Activities) Scores(ctx context.Context, in ScoresInput) (types.ScoreResult, error) {
	if err := a.ready(); err != nil {
		return types.ScoreResult{}, err
	}
	orgID, err := parseOrg(in.OrgID)
	if err != nil {
		return types.ScoreResult{}, err
	}
	day, err := parseDate(in.BusinessDate)
	if err != nil {
		return types.ScoreResult{}, err
	}
	return a.Engine.ComputeEnforcementScores(ctx, orgID, day)
}

func (a *Activities) CarryForward(ctx context.Context) (types.CarryForwardResult, error) {
	if err := a.ready(); err != nil {
		return types.CarryForwardResult{}, err
	}
	return a.Engine.RunCarryForward(ctx)
}

func (a *Activities) ready() error {
	if a == nil || a.Engine == nil {
		return fmt.Errorf("enforcementwf: activity not configured")
	}
	return nil
}

func parseOrg(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, temporal.NewNonRetryableApplicationError(fmt.Sprintf("enforcementwf: invalid org_id %q", raw), "invalid_argument", err)
	}
	return id, nil
}

func parseDate(raw string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, temporal.NewNonRetryableApplicationError(fmt.Sprintf("enforcementwf: invalid business_date %q", raw), "invalid_argument", err)
	}
	return t, nil
}
