package db

import (
	"fmt"

	types "github.com/yungbote/neurobridge-tutor/internal/domain"
	"gorm.io/gorm"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(types.Models()...)
}

// EnsureTutorConstraints adds the range checks gorm tags cannot express.
// They are Postgres only; SQLite runs without them.
func EnsureTutorConstraints(db *gorm.DB) error {
	if db.Dialector.Name() != "postgres" {
		return nil
	}
	checks := []struct {
		table, name, expr string
	}{
		{"tutor_arm", "chk_tutor_arm_mastery", "mastery_score BETWEEN -100 AND 100"},
		{"tutor_arm", "chk_tutor_arm_level", "level BETWEEN 1 AND 6"},
		{"tutor_arm", "chk_tutor_arm_streak", "current_streak >= 0"},
		{"answer_event", "chk_answer_event_confidence", "confidence BETWEEN 1 AND 3"},
		{"answer_event", "chk_answer_event_calibration", "calibration_score BETWEEN -1.5 AND 1.5"},
		{"question_position", "chk_question_position_range", "position BETWEEN 1 AND 10"},
		{"ability_estimate", "chk_ability_estimate_score", "exam_score BETWEEN 100 AND 900"},
	}
	for _, c := range checks {
		stmt := fmt.Sprintf(`
			DO $$ BEGIN
				ALTER TABLE %s ADD CONSTRAINT %s CHECK (%s);
			EXCEPTION WHEN duplicate_object THEN NULL;
			END $$;`, c.table, c.name, c.expr)
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create %s: %w", c.name, err)
		}
	}
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_answer_event_learner_topic_time
		ON answer_event (learner_id, topic_id, occurred_at);
	`).Error; err != nil {
		return fmt.Errorf("create idx_answer_event_learner_topic_time: %w", err)
	}
	return nil
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating tutor tables...")
	if err := AutoMigrateAll(s.db); err != nil {
		s.log.Error("Auto migration failed", "error", err)
		return err
	}
	if err := EnsureTutorConstraints(s.db); err != nil {
		s.log.Error("Constraint migration failed", "error", err)
		return err
	}
	return nil
}
