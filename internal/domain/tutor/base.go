// Package tutor holds the persisted state of the adaptive tutoring engine.
package tutor

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

func (t *Topic) BeforeCreate(*gorm.DB) error {
	ensureID(&t.ID)
	return nil
}

func (a *Arm) BeforeCreate(*gorm.DB) error {
	ensureID(&a.ID)
	return nil
}

func (e *AnswerEvent) BeforeCreate(*gorm.DB) error {
	ensureID(&e.ID)
	return nil
}

func (r *ReviewItem) BeforeCreate(*gorm.DB) error {
	ensureID(&r.ID)
	return nil
}

func (c *DimensionCoverage) BeforeCreate(*gorm.DB) error {
	ensureID(&c.ID)
	return nil
}

func (m *TopicMetric) BeforeCreate(*gorm.DB) error {
	ensureID(&m.ID)
	return nil
}

func (a *AbilityEstimate) BeforeCreate(*gorm.DB) error {
	ensureID(&a.ID)
	return nil
}

func (d *DecisionTrace) BeforeCreate(*gorm.DB) error {
	ensureID(&d.ID)
	return nil
}

