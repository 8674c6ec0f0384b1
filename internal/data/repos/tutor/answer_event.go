package tutor

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/neurobridge-tutor/internal/domain"
	"github.com/yungbote/neurobridge-tutor/internal/platform/dbctx"
	"github.com/yungbote/neurobridge-tutor/internal/platform/logger"
)

type AnswerEventRepo interface {
	Create(dbc dbctx.Context, row *types.AnswerEvent) error
	ListByLearner(dbc dbctx.Context, learnerID uuid.UUID) ([]*types.AnswerEvent, error)
	ListLearnerIDs(dbc dbctx.Context) ([]uuid.UUID, error)
	DeleteByLearnerTopic(dbc dbctx.Context, learnerID, topicID uuid.UUID) (int64, error)
}

type answerEventRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAnswerEventRepo(db *gorm.DB, baseLog *logger.Logger) AnswerEventRepo {
	return &answerEventRepo{db: db, log: baseLog.With("repo", "AnswerEventRepo")}
}

func (r *answerEventRepo) Create(dbc dbctx.Context, row *types.AnswerEvent) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	return t.WithContext(dbc.Ctx).Create(row).Error
}

// ListByLearner returns the full history in the order it was answered.
func (r *answerEventRepo) ListByLearner(dbc dbctx.Context, learnerID uuid.UUID) ([]*types.AnswerEvent, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.AnswerEvent
	if err := t.WithContext(dbc.Ctx).
		Where("learner_id = ?", learnerID).
		Order("occurred_at ASC, created_at ASC, id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *answerEventRepo) ListLearnerIDs(dbc dbctx.Context) ([]uuid.UUID, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []uuid.UUID
	if err := t.WithContext(dbc.Ctx).
		Model(&types.AnswerEvent{}).
		Distinct("learner_id").
		Order("learner_id ASC").
		Pluck("learner_id", &out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteByLearnerTopic is only used by the learner-initiated topic reset.
func (r *answerEventRepo) DeleteByLearnerTopic(dbc dbctx.Context, learnerID, topicID uuid.UUID) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	res := t.WithContext(dbc.Ctx).
		Where("learner_id = ? AND topic_id = ?", learnerID, topicID).
		Delete(&types.AnswerEvent{})
	return res.RowsAffected, res.Error
}
