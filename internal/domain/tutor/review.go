package tutor

import (
	"time"

	"github.com/google/uuid"
)

// ReviewItem is the next scheduled resurfacing of one question.
type ReviewItem struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	LearnerID       uuid.UUID `gorm:"type:uuid;column:learner_id;not null;index:idx_review_item_key,unique,priority:1;index:idx_review_item_due,priority:1" json:"learner_id"`
	QuestionID      string    `gorm:"column:question_id;not null;index:idx_review_item_key,unique,priority:2" json:"question_id"`
	TopicID         uuid.UUID `gorm:"type:uuid;column:topic_id;not null;index" json:"topic_id"`
	Level           int       `gorm:"column:level;not null" json:"level"`
	Dimension       string    `gorm:"column:dimension" json:"dimension,omitempty"`
	LastCalibration float64   `gorm:"column:last_calibration;not null" json:"last_calibration"`
	NextReviewAt    time.Time `gorm:"column:next_review_at;not null;index:idx_review_item_due,priority:2" json:"next_review_at"`
	ReviewCount     int       `gorm:"column:review_count;not null;default:0" json:"review_count"`
	CreatedAt       time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time `gorm:"not null" json:"updated_at"`
}

func (ReviewItem) TableName() string { return "review_item" }

// DimensionCoverage marks a question dimension as practiced on a topic.
type DimensionCoverage struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	LearnerID uuid.UUID `gorm:"type:uuid;column:learner_id;not null;index:idx_dimension_coverage_key,unique,priority:1" json:"learner_id"`
	TopicID   uuid.UUID `gorm:"type:uuid;column:topic_id;not null;index:idx_dimension_coverage_key,unique,priority:2" json:"topic_id"`
	Dimension string    `gorm:"column:dimension;not null;index:idx_dimension_coverage_key,unique,priority:3" json:"dimension"`
	CoveredAt time.Time `gorm:"column:covered_at;not null" json:"covered_at"`
}

func (DimensionCoverage) TableName() string { return "dimension_coverage" }
