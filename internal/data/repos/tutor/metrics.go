package tutor

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/neurobridge-tutor/internal/domain"
	"github.com/yungbote/neurobridge-tutor/internal/platform/dbctx"
	"github.com/yungbote/neurobridge-tutor/internal/platform/logger"
)

type TopicMetricRepo interface {
	Upsert(dbc dbctx.Context, rows []*types.TopicMetric) error
	ListByLearner(dbc dbctx.Context, learnerID uuid.UUID) ([]*types.TopicMetric, error)
	DeleteByLearnerTopic(dbc dbctx.Context, learnerID, topicID uuid.UUID) (int64, error)
}

type topicMetricRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTopicMetricRepo(db *gorm.DB, baseLog *logger.Logger) TopicMetricRepo {
	return &topicMetricRepo{db: db, log: baseLog.With("repo", "TopicMetricRepo")}
}

func (r *topicMetricRepo) Upsert(dbc dbctx.Context, rows []*types.TopicMetric) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return nil
	}
	for _, row := range rows {
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
	}
	return t.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "learner_id"}, {Name: "topic_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"event_count",
				"mean",
				"std_dev",
				"slope",
				"r_squared",
				"questions_to_mastery",
				"computed_at",
			}),
		}).
		Create(&rows).Error
}

func (r *topicMetricRepo) ListByLearner(dbc dbctx.Context, learnerID uuid.UUID) ([]*types.TopicMetric, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.TopicMetric
	if err := t.WithContext(dbc.Ctx).
		Where("learner_id = ?", learnerID).
		Order("topic_id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *topicMetricRepo) DeleteByLearnerTopic(dbc dbctx.Context, learnerID, topicID uuid.UUID) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	res := t.WithContext(dbc.Ctx).
		Where("learner_id = ? AND topic_id = ?", learnerID, topicID).
		Delete(&types.TopicMetric{})
	return res.RowsAffected, res.Error
}

type AbilityEstimateRepo interface {
	Upsert(dbc dbctx.Context, row *types.AbilityEstimate) error
	Get(dbc dbctx.Context, learnerID uuid.UUID, subject string) (*types.AbilityEstimate, error)
	ListByLearner(dbc dbctx.Context, learnerID uuid.UUID) ([]*types.AbilityEstimate, error)
}

type abilityEstimateRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAbilityEstimateRepo(db *gorm.DB, baseLog *logger.Logger) AbilityEstimateRepo {
	return &abilityEstimateRepo{db: db, log: baseLog.With("repo", "AbilityEstimateRepo")}
}

func (r *abilityEstimateRepo) Upsert(dbc dbctx.Context, row *types.AbilityEstimate) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	return t.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "learner_id"}, {Name: "subject"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"theta",
				"standard_error",
				"information",
				"reliability",
				"exam_score",
				"pass_probability",
				"response_count",
				"computed_at",
			}),
		}).
		Create(row).Error
}

// Get returns nil, nil when no estimate exists yet.
func (r *abilityEstimateRepo) Get(dbc dbctx.Context, learnerID uuid.UUID, subject string) (*types.AbilityEstimate, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var row types.AbilityEstimate
	err := t.WithContext(dbc.Ctx).
		Where("learner_id = ? AND subject = ?", learnerID, subject).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *abilityEstimateRepo) ListByLearner(dbc dbctx.Context, learnerID uuid.UUID) ([]*types.AbilityEstimate, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.AbilityEstimate
	if err := t.WithContext(dbc.Ctx).
		Where("learner_id = ?", learnerID).
		Order("subject ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
