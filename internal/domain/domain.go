package domain

import (
	"github.com/yungbote/neurobridge-tutor/internal/domain/tutor"
)

type Topic = tutor.Topic
type Arm = tutor.Arm
type AnswerEvent = tutor.AnswerEvent
type QuestionPosition = tutor.QuestionPosition
type ReviewItem = tutor.ReviewItem
type DimensionCoverage = tutor.DimensionCoverage
type TopicMetric = tutor.TopicMetric
type AbilityEstimate = tutor.AbilityEstimate
type DecisionTrace = tutor.DecisionTrace

// Models lists every persisted model in migration order.
func Models() []any {
	return []any{
		&Topic{},
		&Arm{},
		&AnswerEvent{},
		&QuestionPosition{},
		&ReviewItem{},
		&DimensionCoverage{},
		&TopicMetric{},
		&AbilityEstimate{},
		&DecisionTrace{},
	}
}
