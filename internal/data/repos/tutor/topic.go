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

type TopicRepo interface {
	Upsert(dbc dbctx.Context, rows []*types.Topic) error
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Topic, error)
	GetBySubject(dbc dbctx.Context, subject string) ([]*types.Topic, error)
	ListActive(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Topic, error)
}

type topicRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTopicRepo(db *gorm.DB, baseLog *logger.Logger) TopicRepo {
	return &topicRepo{db: db, log: baseLog.With("repo", "TopicRepo")}
}

// Upsert keys rows on (subject, key). Row IDs are rewritten to the stored IDs
// so callers can wire parent links afterwards.
func (r *topicRepo) Upsert(dbc dbctx.Context, rows []*types.Topic) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for _, row := range rows {
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
		if row.MaxLevel == 0 {
			row.MaxLevel = 6
		}
		row.UpdatedAt = now
	}
	if err := t.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "subject"}, {Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"name",
				"parent_id",
				"max_level",
				"active",
				"metadata",
				"updated_at",
			}),
		}).
		Create(&rows).Error; err != nil {
		return err
	}

	subjects := map[string][]string{}
	for _, row := range rows {
		subjects[row.Subject] = append(subjects[row.Subject], row.Key)
	}
	stored := map[string]uuid.UUID{}
	for subject, keys := range subjects {
		var existing []*types.Topic
		if err := t.WithContext(dbc.Ctx).
			Where("subject = ? AND key IN ?", subject, keys).
			Find(&existing).Error; err != nil {
			return err
		}
		for _, e := range existing {
			stored[e.Subject+"\x00"+e.Key] = e.ID
		}
	}
	for _, row := range rows {
		if id, ok := stored[row.Subject+"\x00"+row.Key]; ok {
			row.ID = id
		}
	}
	return nil
}

func (r *topicRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Topic, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Topic
	if len(ids) == 0 {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *topicRepo) GetBySubject(dbc dbctx.Context, subject string) ([]*types.Topic, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Topic
	if err := t.WithContext(dbc.Ctx).
		Where("subject = ?", subject).
		Order("created_at ASC, key ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ListActive returns active topics, restricted to ids when non-empty.
func (r *topicRepo) ListActive(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Topic, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Topic
	q := t.WithContext(dbc.Ctx).Where("active = ?", true)
	if len(ids) > 0 {
		q = q.Where("id IN ?", ids)
	}
	if err := q.Order("created_at ASC, id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
