package tutor

import (
	"time"

	"github.com/google/uuid"
)

// QuestionPosition tracks where a learner is in the ten-question cycle.
type QuestionPosition struct {
	LearnerID uuid.UUID `gorm:"type:uuid;column:learner_id;primaryKey" json:"learner_id"`
	Position  int       `gorm:"column:position;not null;default:1" json:"position"`
	Version   int       `gorm:"column:version;not null;default:0" json:"version"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (QuestionPosition) TableName() string { return "question_position" }
