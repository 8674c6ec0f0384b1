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

type DimensionCoverageRepo interface {
	MarkCovered(dbc dbctx.Context, learnerID, topicID uuid.UUID, dimension string, at time.Time) error
	ListByLearner(dbc dbctx.Context, learnerID uuid.UUID) ([]*types.DimensionCoverage, error)
	DeleteByLearnerTopic(dbc dbctx.Context, learnerID, topicID uuid.UUID) (int64, error)
}

type dimensionCoverageRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDimensionCoverageRepo(db *gorm.DB, baseLog *logger.Logger) DimensionCoverageRepo {
	return &dimensionCoverageRepo{db: db, log: baseLog.With("repo", "DimensionCoverageRepo")}
}

func (r *dimensionCoverageRepo) MarkCovered(dbc dbctx.Context, learnerID, topicID uuid.UUID, dimension string, at time.Time) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if dimension == "" {
		return nil
	}
	row := &types.DimensionCoverage{
		ID:        uuid.New(),
		LearnerID: learnerID,
		TopicID:   topicID,
		Dimension: dimension,
		CoveredAt: at.UTC(),
	}
	return t.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "learner_id"}, {Name: "topic_id"}, {Name: "dimension"}},
			DoNothing: true,
		}).
		Create(row).Error
}

func (r *dimensionCoverageRepo) ListByLearner(dbc dbctx.Context, learnerID uuid.UUID) ([]*types.DimensionCoverage, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.DimensionCoverage
	if err := t.WithContext(dbc.Ctx).
		Where("learner_id = ?", learnerID).
		Order("covered_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *dimensionCoverageRepo) DeleteByLearnerTopic(dbc dbctx.Context, learnerID, topicID uuid.UUID) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	res := t.WithContext(dbc.Ctx).
		Where("learner_id = ? AND topic_id = ?", learnerID, topicID).
		Delete(&types.DimensionCoverage{})
	return res.RowsAffected, res.Error
}
