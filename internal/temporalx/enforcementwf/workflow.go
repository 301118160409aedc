package enforcementwf

import (
	"fmt"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	types "github.com/yungbote/ops-accountability/internal/domain/enforcement"
)

func activityContext(ctx workflow.Context) workflow.Context {
	return workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Minute,
		// Every pass is idempotent, so retrying a whole activity is safe.
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    5 * time.Second,
			BackoffCoefficient: 2,
			MaximumInterval:    2 * time.Minute,
			MaximumAttempts:    3,
		},
	})
}

func LadderWorkflow(ctx workflow.Context, in OrgInput) (types.LadderResult, error) {
	var out types.LadderResult
	err := workflow.ExecuteActivity(activityContext(ctx), ActivityLadder, in).Get(ctx, &out)
	return out, err
}

func ScoresWorkflow(ctx workflow.Context, in ScoresInput) (types.ScoreResult, error) {
	if in.BusinessDate == "" {
		in.BusinessDate = today(ctx)
	}
	var out types.ScoreResult
	err := workflow.ExecuteActivity(activityContext(ctx), ActivityScores, in).Get(ctx, &out)
	return out, err
}

func CarryForwardWorkflow(ctx workflow.Context) (types.CarryForwardResult, error) {
	var out types.CarryForwardResult
	err := workflow.ExecuteActivity(activityContext(ctx), ActivityCarryForward).Get(ctx, &out)
	return out, err
}

// NightlyWorkflow runs the ladder then scoring for each org, then one
// carry-forward sweep. A failing org is recorded and the rest still run.
func NightlyWorkflow(ctx workflow.Context, in NightlyInput) (NightlyResult, error) {
	actx := activityContext(ctx)
	res := NightlyResult{BusinessDate: in.BusinessDate}
	if res.BusinessDate == "" {
		res.BusinessDate = today(ctx)
	}

	orgs := in.OrgIDs
	if len(orgs) == 0 {
		if err := workflow.ExecuteActivity(actx, ActivityListOrgs).Get(ctx, &orgs); err != nil {
			return res, fmt.Errorf("list orgs: %w", err)
		}
	}

	for _, org := range orgs {
		run := OrgRun{OrgID: org}

		var ladder types.LadderResult
		if err := workflow.ExecuteActivity(actx, ActivityLadder, OrgInput{OrgID: org}).Get(ctx, &ladder); err != nil {
			run.Errors = append(run.Errors, "ladder: "+err.Error())
		} else {
			run.Ladder = &ladder
		}

		var scores types.ScoreResult
		scoresIn := ScoresInput{OrgID: org, BusinessDate: res.BusinessDate}
		if err := workflow.ExecuteActivity(actx, ActivityScores, scoresIn).Get(ctx, &scores); err != nil {
			run.Errors = append(run.Errors, "scores: "+err.Error())
		} else {
			run.Scores = &scores
		}
		res.Orgs = append(res.Orgs, run)
	}

	if !in.SkipCarry {
		var cf types.CarryForwardResult
		if err := workflow.ExecuteActivity(actx, ActivityCarryForward).Get(ctx, &cf); err != nil {
			res.Errors = append(res.Errors, "carry_forward: "+err.Error())
		} else {
			res.CarryForward = &cf
		}
	}
	return res, nil
}

func today(ctx workflow.Context) string {
	return workflow.Now(ctx).UTC().Format(DateLayout)
}
