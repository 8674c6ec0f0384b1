package tutor

import (
	"time"

	"github.com/google/uuid"
)

// Arm is one (learner, topic, level) unit of the bandit. Version is bumped
// on every write and checked on update.
type Arm struct {
	ID                 uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	LearnerID          uuid.UUID  `gorm:"type:uuid;column:learner_id;not null;index:idx_tutor_arm_key,unique,priority:1" json:"learner_id"`
	TopicID            uuid.UUID  `gorm:"type:uuid;column:topic_id;not null;index:idx_tutor_arm_key,unique,priority:2" json:"topic_id"`
	Level              int        `gorm:"column:level;not null;index:idx_tutor_arm_key,unique,priority:3" json:"level"`
	Successes          int        `gorm:"column:successes;not null;default:0" json:"successes"`
	Failures           int        `gorm:"column:failures;not null;default:0" json:"failures"`
	MasteryScore       float64    `gorm:"column:mastery_score;not null;default:0" json:"mastery_score"`
	QuestionsAttempted int        `gorm:"column:questions_attempted;not null;default:0" json:"questions_attempted"`
	QuestionsCorrect   int        `gorm:"column:questions_correct;not null;default:0" json:"questions_correct"`
	CurrentStreak      int        `gorm:"column:current_streak;not null;default:0" json:"current_streak"`
	Unlocked           bool       `gorm:"column:unlocked;not null;default:false" json:"unlocked"`
	UnlockedAt         *time.Time `gorm:"column:unlocked_at" json:"unlocked_at,omitempty"`
	LastPracticedAt    *time.Time `gorm:"column:last_practiced_at;index" json:"last_practiced_at,omitempty"`
	Version            int        `gorm:"column:version;not null;default:0" json:"version"`
	CreatedAt          time.Time  `gorm:"not null;index" json:"created_at"`
	UpdatedAt          time.Time  `gorm:"not null" json:"updated_at"`
}

func (Arm) TableName() string { return "tutor_arm" }
