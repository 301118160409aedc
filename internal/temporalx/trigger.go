package temporalx

import (
	"context"
	"fmt"

	temporalsdkclient "go.temporal.io/sdk/client"
)

// Starter starts named workflows on the configured task queue. Reusing a
// workflow ID collapses repeated triggers for the same run into one.
type Starter struct {
	tc        temporalsdkclient.Client
	taskQueue string
}

func NewStarter(tc temporalsdkclient.Client) (*Starter, error) {
	if tc == nil {
		return nil, fmt.Errorf("temporal client is not configured")
	}
	return &Starter{tc: tc, taskQueue: LoadConfig().TaskQueue}, nil
}

func (s *Starter) Start(ctx context.Context, workflowID, name string, arg interface{}) (string, error) {
	opts := temporalsdkclient.StartWorkflowOptions{
		ID:        workflowID,
		TaskQueue: s.taskQueue,
	}
	var args []interface{}
	if arg != nil {
		args = append(args, arg)
	}
	run, err := s.tc.ExecuteWorkflow(ctx, opts, name, args...)
	if err != nil {
		return "", fmt.Errorf("start workflow %s: %w", name, err)
	}
	return run.GetRunID(), nil
}
