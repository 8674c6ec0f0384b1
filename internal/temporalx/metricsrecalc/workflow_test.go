package metricsrecalc

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/testsuite"

	"github.com/yungbote/neurobridge-tutor/internal/platform/logger"
	"github.com/yungbote/neurobridge-tutor/internal/services"
)

type fakeMetrics struct {
	mu       sync.Mutex
	calls    []*uuid.UUID
	failures int
	result   services.RecalcResult
}

func (f *fakeMetrics) Recalculate(_ context.Context, learnerID *uuid.UUID) (*services.RecalcResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, learnerID)
	if f.failures > 0 {
		f.failures--
		return nil, errors.New("database is restarting")
	}
	out := f.result
	return &out, nil
}

func (f *fakeMetrics) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func newEnv(t *testing.T, m services.MetricsService) *testsuite.TestWorkflowEnvironment {
	t.Helper()
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	acts := &Activities{Log: logger.Nop(), Metrics: m}
	env.RegisterWorkflowWithOptions(Workflow, workflowOptions())
	env.RegisterActivityWithOptions(acts.Recalculate, activity.RegisterOptions{Name: ActivityRecalculate})
	return env
}

func TestWorkflowRecalculatesOneLearner(t *testing.T) {
	learner := uuid.New()
	m := &fakeMetrics{result: services.RecalcResult{UpdatedCount: 3, LearnersProcessed: 1, ArmsRebuilt: 4, AbilityEstimates: 1}}
	env := newEnv(t, m)

	env.ExecuteWorkflow(WorkflowName, Input{LearnerID: learner.String()})

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())
	var out *Result
	require.NoError(t, env.GetWorkflowResult(&out))
	assert.Equal(t, 3, out.UpdatedCount)
	assert.Equal(t, 4, out.ArmsRebuilt)
	require.Len(t, m.calls, 1)
	require.NotNil(t, m.calls[0])
	assert.Equal(t, learner, *m.calls[0])
}

func TestWorkflowEmptyInputCoversEveryone(t *testing.T) {
	m := &fakeMetrics{result: services.RecalcResult{LearnersProcessed: 5}}
	env := newEnv(t, m)

	env.ExecuteWorkflow(WorkflowName, Input{})

	require.NoError(t, env.GetWorkflowError())
	require.Len(t, m.calls, 1)
	assert.Nil(t, m.calls[0])
}

func TestWorkflowRetriesTransientFailures(t *testing.T) {
	m := &fakeMetrics{failures: 2, result: services.RecalcResult{UpdatedCount: 1}}
	env := newEnv(t, m)

	env.ExecuteWorkflow(WorkflowName, Input{})

	require.NoError(t, env.GetWorkflowError())
	assert.Equal(t, 3, m.callCount())
}

func TestWorkflowGivesUpAfterMaxAttempts(t *testing.T) {
	m := &fakeMetrics{failures: 10}
	env := newEnv(t, m)

	env.ExecuteWorkflow(WorkflowName, Input{})

	require.Error(t, env.GetWorkflowError())
	assert.Equal(t, 3, m.callCount())
}

func TestWorkflowRejectsBadLearnerWithoutRetry(t *testing.T) {
	m := &fakeMetrics{}
	env := newEnv(t, m)

	env.ExecuteWorkflow(WorkflowName, Input{LearnerID: "not-a-uuid"})

	require.Error(t, env.GetWorkflowError())
	assert.Equal(t, 0, m.callCount())
}

func TestActivityRequiresMetricsService(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestActivityEnvironment()
	acts := &Activities{Log: logger.Nop()}
	env.RegisterActivity(acts.Recalculate)

	_, err := env.ExecuteActivity(acts.Recalculate, Input{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}
