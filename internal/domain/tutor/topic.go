package tutor

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Topic is one entry of the selectable catalog. ParentID mirrors the
// subtopic edge that is also kept in the graph store.
type Topic struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Subject   string         `gorm:"column:subject;not null;index:idx_topic_subject_key,unique,priority:1" json:"subject"`
	Key       string         `gorm:"column:key;not null;index:idx_topic_subject_key,unique,priority:2" json:"key"`
	Name      string         `gorm:"column:name;not null" json:"name"`
	ParentID  *uuid.UUID     `gorm:"type:uuid;column:parent_id;index" json:"parent_id,omitempty"`
	MaxLevel  int            `gorm:"column:max_level;not null;default:6" json:"max_level"`
	Active    bool           `gorm:"column:active;not null;index" json:"active"`
	Metadata  datatypes.JSON `gorm:"column:metadata;type:jsonb" json:"metadata,omitempty"`
	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
}

func (Topic) TableName() string { return "topic" }
