package tutor

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// DecisionTrace is the audit record of one selection. Nothing in the engine
// reads it back. RandomSeed is the unsigned 64-bit seed in decimal.
type DecisionTrace struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	LearnerID     uuid.UUID      `gorm:"type:uuid;column:learner_id;not null;index:idx_tutor_decision_trace_learner_time,priority:1" json:"learner_id"`
	Position      int            `gorm:"column:position;not null" json:"position"`
	Slot          string         `gorm:"column:slot;not null" json:"slot"`
	TopicID       *uuid.UUID     `gorm:"type:uuid;column:topic_id" json:"topic_id,omitempty"`
	Level         int            `gorm:"column:level" json:"level"`
	QuestionID    string         `gorm:"column:question_id" json:"question_id,omitempty"`
	Dimension     string         `gorm:"column:dimension" json:"dimension,omitempty"`
	Samples       datatypes.JSON `gorm:"column:samples;type:jsonb" json:"samples"`
	WinningSample float64        `gorm:"column:winning_sample" json:"winning_sample"`
	Boost         float64        `gorm:"column:boost" json:"boost"`
	Penalty       float64        `gorm:"column:penalty" json:"penalty"`
	Reason        string         `gorm:"column:reason;type:text" json:"reason"`
	RandomSeed    string         `gorm:"column:random_seed;type:varchar(20)" json:"random_seed"`
	OccurredAt    time.Time      `gorm:"column:occurred_at;not null;index:idx_tutor_decision_trace_learner_time,priority:2" json:"occurred_at"`
}

func (DecisionTrace) TableName() string { return "tutor_decision_trace" }
