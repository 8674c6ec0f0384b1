package metricsrecalc

import "github.com/yungbote/neurobridge-tutor/internal/services"

const (
	WorkflowName        = "tutor_metrics_recalc"
	ActivityRecalculate = "tutor_metrics_recalc_activity"
)

// Input scopes a run to one learner. An empty LearnerID recalculates everyone.
type Input struct {
	LearnerID string `json:"learner_id,omitempty"`
}

type Result = services.RecalcResult
