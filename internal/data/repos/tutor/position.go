package tutor

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/neurobridge-tutor/internal/domain"
	"github.com/yungbote/neurobridge-tutor/internal/platform/dbctx"
	"github.com/yungbote/neurobridge-tutor/internal/platform/logger"
)

type QuestionPositionRepo interface {
	Get(dbc dbctx.Context, learnerID uuid.UUID) (*types.QuestionPosition, error)
	Advance(dbc dbctx.Context, cur *types.QuestionPosition, next int) error
}

type questionPositionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuestionPositionRepo(db *gorm.DB, baseLog *logger.Logger) QuestionPositionRepo {
	return &questionPositionRepo{db: db, log: baseLog.With("repo", "QuestionPositionRepo")}
}

// Get never returns nil: a learner without a row starts at position 1 with
// version 0, and the first Advance inserts the row.
func (r *questionPositionRepo) Get(dbc dbctx.Context, learnerID uuid.UUID) (*types.QuestionPosition, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var row types.QuestionPosition
	err := t.WithContext(dbc.Ctx).Where("learner_id = ?", learnerID).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &types.QuestionPosition{LearnerID: learnerID, Position: 1}, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// Advance moves the learner to next if nobody else moved them since cur was
// read. cur is updated in place on success.
func (r *questionPositionRepo) Advance(dbc dbctx.Context, cur *types.QuestionPosition, next int) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	now := time.Now().UTC()
	if cur.Version == 0 {
		row := &types.QuestionPosition{LearnerID: cur.LearnerID, Position: next, Version: 1, UpdatedAt: now}
		res := t.WithContext(dbc.Ctx).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(row)
		if res.Error != nil {
			return conflictOr(res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrVersionConflict
		}
		*cur = *row
		return nil
	}
	res := t.WithContext(dbc.Ctx).
		Model(&types.QuestionPosition{}).
		Where("learner_id = ? AND version = ?", cur.LearnerID, cur.Version).
		Updates(map[string]interface{}{
			"position":   next,
			"version":    cur.Version + 1,
			"updated_at": now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrVersionConflict
	}
	cur.Position = next
	cur.Version++
	cur.UpdatedAt = now
	return nil
}
