package tutor

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/neurobridge-tutor/internal/domain"
	"github.com/yungbote/neurobridge-tutor/internal/platform/dbctx"
	"github.com/yungbote/neurobridge-tutor/internal/platform/logger"
)

type DecisionTraceRepo interface {
	Create(dbc dbctx.Context, row *types.DecisionTrace) error
	ListByLearner(dbc dbctx.Context, learnerID uuid.UUID, limit int) ([]*types.DecisionTrace, error)
}

type decisionTraceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDecisionTraceRepo(db *gorm.DB, baseLog *logger.Logger) DecisionTraceRepo {
	return &decisionTraceRepo{db: db, log: baseLog.With("repo", "DecisionTraceRepo")}
}

func (r *decisionTraceRepo) Create(dbc dbctx.Context, row *types.DecisionTrace) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	return t.WithContext(dbc.Ctx).Create(row).Error
}

func (r *decisionTraceRepo) ListByLearner(dbc dbctx.Context, learnerID uuid.UUID, limit int) ([]*types.DecisionTrace, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.DecisionTrace
	q := t.WithContext(dbc.Ctx).
		Where("learner_id = ?", learnerID).
		Order("occurred_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
