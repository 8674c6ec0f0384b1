package tutor

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/neurobridge-tutor/internal/domain"
	"github.com/yungbote/neurobridge-tutor/internal/platform/dbctx"
	"github.com/yungbote/neurobridge-tutor/internal/platform/logger"
)

type ReviewItemRepo interface {
	Upsert(dbc dbctx.Context, row *types.ReviewItem) error
	ListDue(dbc dbctx.Context, learnerID uuid.UUID, now time.Time, topicIDs []uuid.UUID, limit int) ([]*types.ReviewItem, error)
	DeleteByLearnerTopic(dbc dbctx.Context, learnerID, topicID uuid.UUID) (int64, error)
}

type reviewItemRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewReviewItemRepo(db *gorm.DB, baseLog *logger.Logger) ReviewItemRepo {
	return &reviewItemRepo{db: db, log: baseLog.With("repo", "ReviewItemRepo")}
}

// Upsert keys on (learner, question); answering a question again reschedules
// it and counts one more review.
func (r *reviewItemRepo) Upsert(dbc dbctx.Context, row *types.ReviewItem) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	row.UpdatedAt = time.Now().UTC()
	set := clause.AssignmentColumns([]string{
		"topic_id",
		"level",
		"dimension",
		"last_calibration",
		"next_review_at",
		"updated_at",
	})
	set = append(set, clause.Assignment{
		Column: clause.Column{Name: "review_count"},
		Value:  gorm.Expr("review_item.review_count + 1"),
	})
	return t.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "learner_id"}, {Name: "question_id"}},
			DoUpdates: set,
		}).
		Create(row).Error
}

// ListDue returns items due at now, most overdue first.
func (r *reviewItemRepo) ListDue(dbc dbctx.Context, learnerID uuid.UUID, now time.Time, topicIDs []uuid.UUID, limit int) ([]*types.ReviewItem, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.ReviewItem
	q := t.WithContext(dbc.Ctx).
		Where("learner_id = ? AND next_review_at <= ?", learnerID, now.UTC())
	if len(topicIDs) > 0 {
		q = q.Where("topic_id IN ?", topicIDs)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Order("next_review_at ASC, question_id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *reviewItemRepo) DeleteByLearnerTopic(dbc dbctx.Context, learnerID, topicID uuid.UUID) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	res := t.WithContext(dbc.Ctx).
		Where("learner_id = ? AND topic_id = ?", learnerID, topicID).
		Delete(&types.ReviewItem{})
	return res.RowsAffected, res.Error
}
