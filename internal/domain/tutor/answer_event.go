package tutor

import (
	"time"

	"github.com/google/uuid"
)

// AnswerEvent is immutable once written; metrics are rebuilt from it.
type AnswerEvent struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	LearnerID         uuid.UUID `gorm:"type:uuid;column:learner_id;not null;index:idx_answer_event_learner_time,priority:1" json:"learner_id"`
	TopicID           uuid.UUID `gorm:"type:uuid;column:topic_id;not null;index" json:"topic_id"`
	Level             int       `gorm:"column:level;not null" json:"level"`
	QuestionID        string    `gorm:"column:question_id;not null" json:"question_id"`
	Dimension         string    `gorm:"column:dimension" json:"dimension,omitempty"`
	IsCorrect         bool      `gorm:"column:is_correct;not null" json:"is_correct"`
	Confidence        int       `gorm:"column:confidence;not null" json:"confidence"`
	RecognitionMethod string    `gorm:"column:recognition_method;not null" json:"recognition_method"`
	CalibrationScore  float64   `gorm:"column:calibration_score;not null" json:"calibration_score"`
	LearningGain      float64   `gorm:"column:learning_gain;not null" json:"learning_gain"`
	OccurredAt        time.Time `gorm:"column:occurred_at;not null;index:idx_answer_event_learner_time,priority:2" json:"occurred_at"`
	CreatedAt         time.Time `gorm:"not null" json:"created_at"`
}

func (AnswerEvent) TableName() string { return "answer_event" }
