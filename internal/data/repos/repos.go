package repos

import (
	"github.com/yungbote/neurobridge-tutor/internal/data/repos/tutor"
	"github.com/yungbote/neurobridge-tutor/internal/platform/logger"
	"gorm.io/gorm"
)

var ErrVersionConflict = tutor.ErrVersionConflict

type TopicRepo = tutor.TopicRepo
type ArmRepo = tutor.ArmRepo
type AnswerEventRepo = tutor.AnswerEventRepo
type QuestionPositionRepo = tutor.QuestionPositionRepo
type ReviewItemRepo = tutor.ReviewItemRepo
type DimensionCoverageRepo = tutor.DimensionCoverageRepo
type TopicMetricRepo = tutor.TopicMetricRepo
type AbilityEstimateRepo = tutor.AbilityEstimateRepo
type DecisionTraceRepo = tutor.DecisionTraceRepo

func NewTopicRepo(db *gorm.DB, baseLog *logger.Logger) TopicRepo {
	return tutor.NewTopicRepo(db, baseLog)
}
func NewArmRepo(db *gorm.DB, baseLog *logger.Logger) ArmRepo { return tutor.NewArmRepo(db, baseLog) }
func NewAnswerEventRepo(db *gorm.DB, baseLog *logger.Logger) AnswerEventRepo {
	return tutor.NewAnswerEventRepo(db, baseLog)
}
func NewQuestionPositionRepo(db *gorm.DB, baseLog *logger.Logger) QuestionPositionRepo {
	return tutor.NewQuestionPositionRepo(db, baseLog)
}
func NewReviewItemRepo(db *gorm.DB, baseLog *logger.Logger) ReviewItemRepo {
	return tutor.NewReviewItemRepo(db, baseLog)
}
func NewDimensionCoverageRepo(db *gorm.DB, baseLog *logger.Logger) DimensionCoverageRepo {
	return tutor.NewDimensionCoverageRepo(db, baseLog)
}
func NewTopicMetricRepo(db *gorm.DB, baseLog *logger.Logger) TopicMetricRepo {
	return tutor.NewTopicMetricRepo(db, baseLog)
}
func NewAbilityEstimateRepo(db *gorm.DB, baseLog *logger.Logger) AbilityEstimateRepo {
	return tutor.NewAbilityEstimateRepo(db, baseLog)
}
func NewDecisionTraceRepo(db *gorm.DB, baseLog *logger.Logger) DecisionTraceRepo {
	return tutor.NewDecisionTraceRepo(db, baseLog)
}
