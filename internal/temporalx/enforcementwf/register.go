package enforcementwf

import (
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/workflow"
)

// Registry is satisfied by worker.Worker and the test workflow environment.
type Registry interface {
	RegisterWorkflowWithOptions(w interface{}, options workflow.RegisterOptions)
	RegisterActivityWithOptions(a interface{}, options activity.RegisterOptions)
}

// Register binds every enforcement workflow and activity under its stable name.
func Register(r Registry, acts *Activities) {
	r.RegisterWorkflowWithOptions(LadderWorkflow, workflow.RegisterOptions{Name: WorkflowLadder})
	r.RegisterWorkflowWithOptions(ScoresWorkflow, workflow.RegisterOptions{Name: WorkflowScores})
	r.RegisterWorkflowWithOptions(CarryForwardWorkflow, workflow.RegisterOptions{Name: WorkflowCarryForward})
	r.RegisterWorkflowWithOptions(NightlyWorkflow, workflow.RegisterOptions{Name: WorkflowNightly})

	r.RegisterActivityWithOptions(acts.ListOrgs, activity.RegisterOptions{Name: ActivityListOrgs})
	r.RegisterActivityWithOptions(acts.Ladder, activity.RegisterOptions{Name: ActivityLadder})
	r.RegisterActivityWithOptions(acts.Scores, activity.RegisterOptions{Name: ActivityScores})
	r.RegisterActivityWithOptions(acts.CarryForward, activity.RegisterOptions{Name: ActivityCarryForward})
}
