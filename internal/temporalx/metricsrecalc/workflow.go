package metricsrecalc

import (
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"
)

func Workflow(ctx workflow.Context, in Input) (*Result, error) {
	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Minute,
		HeartbeatTimeout:    time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:        10 * time.Second,
			BackoffCoefficient:     2,
			MaximumInterval:        5 * time.Minute,
			MaximumAttempts:        3,
			NonRetryableErrorTypes: []string{ErrTypeInvalidInput},
		},
	})

	var out Result
	if err := workflow.ExecuteActivity(ctx, ActivityRecalculate, in).Get(ctx, &out); err != nil {
		return nil, err
	}
	workflow.GetLogger(ctx).Info("metrics recalculation finished",
		"learner_id", in.LearnerID,
		"updated", out.UpdatedCount,
		"learners", out.LearnersProcessed,
		"skipped", out.LearnersSkipped,
	)
	return &out, nil
}

func workflowOptions() workflow.RegisterOptions {
	return workflow.RegisterOptions{Name: WorkflowName}
}

// Register adds the workflow and its activity to a worker.
func Register(w worker.Registry, acts *Activities) {
	w.RegisterWorkflowWithOptions(Workflow, workflowOptions())
	w.RegisterActivityWithOptions(acts.Recalculate, activity.RegisterOptions{Name: ActivityRecalculate})
}
