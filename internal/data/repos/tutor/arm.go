package tutor

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/neurobridge-tutor/internal/domain"
	"github.com/yungbote/neurobridge-tutor/internal/platform/dbctx"
	"github.com/yungbote/neurobridge-tutor/internal/platform/logger"
)

type ArmRepo interface {
	ListByLearner(dbc dbctx.Context, learnerID uuid.UUID) ([]*types.Arm, error)
	ListByLearnerTopic(dbc dbctx.Context, learnerID, topicID uuid.UUID) ([]*types.Arm, error)
	Create(dbc dbctx.Context, row *types.Arm) error
	UpdateVersioned(dbc dbctx.Context, row *types.Arm) error
	ReplaceState(dbc dbctx.Context, rows []*types.Arm) error
	DeleteByLearnerTopic(dbc dbctx.Context, learnerID, topicID uuid.UUID) (int64, error)
}

type armRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewArmRepo(db *gorm.DB, baseLog *logger.Logger) ArmRepo {
	return &armRepo{db: db, log: baseLog.With("repo", "ArmRepo")}
}

// ListByLearner returns arms in creation order, the selector's last tie-break.
func (r *armRepo) ListByLearner(dbc dbctx.Context, learnerID uuid.UUID) ([]*types.Arm, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Arm
	if learnerID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("learner_id = ?", learnerID).
		Order("created_at ASC, topic_id ASC, level ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *armRepo) ListByLearnerTopic(dbc dbctx.Context, learnerID, topicID uuid.UUID) ([]*types.Arm, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Arm
	if err := t.WithContext(dbc.Ctx).
		Where("learner_id = ? AND topic_id = ?", learnerID, topicID).
		Order("level ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Create inserts a new arm. Losing a race against a concurrent first answer
// on the same (learner, topic, level) returns ErrVersionConflict.
func (r *armRepo) Create(dbc dbctx.Context, row *types.Arm) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	row.Version = 1
	return conflictOr(t.WithContext(dbc.Ctx).Create(row).Error)
}

// UpdateVersioned writes row only if the stored version still matches
// row.Version, then bumps row.Version.
func (r *armRepo) UpdateVersioned(dbc dbctx.Context, row *types.Arm) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	now := time.Now().UTC()
	res := t.WithContext(dbc.Ctx).
		Model(&types.Arm{}).
		Where("id = ? AND version = ?", row.ID, row.Version).
		Updates(map[string]interface{}{
			"successes":           row.Successes,
			"failures":            row.Failures,
			"mastery_score":       row.MasteryScore,
			"questions_attempted": row.QuestionsAttempted,
			"questions_correct":   row.QuestionsCorrect,
			"current_streak":      row.CurrentStreak,
			"unlocked":            row.Unlocked,
			"unlocked_at":         row.UnlockedAt,
			"last_practiced_at":   row.LastPracticedAt,
			"version":             row.Version + 1,
			"updated_at":          now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrVersionConflict
	}
	row.Version++
	row.UpdatedAt = now
	return nil
}

// ReplaceState writes rebuilt arm state. Rows that carry an ID go through
// the version guard; rows without one are inserted. Either kind of lost race
// returns ErrVersionConflict and nothing is merged.
func (r *armRepo) ReplaceState(dbc dbctx.Context, rows []*types.Arm) error {
	for _, row := range rows {
		var err error
		if row.ID == uuid.Nil {
			err = r.Create(dbc, row)
		} else {
			err = r.UpdateVersioned(dbc, row)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *armRepo) DeleteByLearnerTopic(dbc dbctx.Context, learnerID, topicID uuid.UUID) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	res := t.WithContext(dbc.Ctx).
		Where("learner_id = ? AND topic_id = ?", learnerID, topicID).
		Delete(&types.Arm{})
	return res.RowsAffected, res.Error
}
