package tutor

import (
	"time"

	"github.com/google/uuid"
)

// TopicMetric is derived entirely from answer_event and may be rebuilt at
// any time.
type TopicMetric struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	LearnerID          uuid.UUID `gorm:"type:uuid;column:learner_id;not null;index:idx_topic_metric_key,unique,priority:1" json:"learner_id"`
	TopicID            uuid.UUID `gorm:"type:uuid;column:topic_id;not null;index:idx_topic_metric_key,unique,priority:2" json:"topic_id"`
	EventCount         int       `gorm:"column:event_count;not null" json:"event_count"`
	Mean               float64   `gorm:"column:mean;not null" json:"mean"`
	StdDev             float64   `gorm:"column:std_dev;not null" json:"std_dev"`
	Slope              float64   `gorm:"column:slope;not null" json:"slope"`
	RSquared           float64   `gorm:"column:r_squared;not null" json:"r_squared"`
	QuestionsToMastery *int      `gorm:"column:questions_to_mastery" json:"questions_to_mastery"`
	ComputedAt         time.Time `gorm:"column:computed_at;not null" json:"computed_at"`
}

func (TopicMetric) TableName() string { return "topic_metric" }

type AbilityEstimate struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	LearnerID       uuid.UUID `gorm:"type:uuid;column:learner_id;not null;index:idx_ability_estimate_key,unique,priority:1" json:"learner_id"`
	Subject         string    `gorm:"column:subject;not null;index:idx_ability_estimate_key,unique,priority:2" json:"subject"`
	Theta           float64   `gorm:"column:theta;not null" json:"theta"`
	StandardError   float64   `gorm:"column:standard_error;not null" json:"standard_error"`
	Information     float64   `gorm:"column:information;not null" json:"information"`
	Reliability     float64   `gorm:"column:reliability;not null" json:"reliability"`
	ExamScore       int       `gorm:"column:exam_score;not null" json:"exam_score"`
	PassProbability float64   `gorm:"column:pass_probability;not null" json:"pass_probability"`
	ResponseCount   int       `gorm:"column:response_count;not null" json:"response_count"`
	ComputedAt      time.Time `gorm:"column:computed_at;not null" json:"computed_at"`
}

func (AbilityEstimate) TableName() string { return "ability_estimate" }
