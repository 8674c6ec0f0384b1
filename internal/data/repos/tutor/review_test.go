package tutor

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/neurobridge-tutor/internal/data/repos/testutil"
	types "github.com/yungbote/neurobridge-tutor/internal/domain"
	"github.com/yungbote/neurobridge-tutor/internal/platform/dbctx"
)

func TestReviewItemRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewReviewItemRepo(db, testutil.Logger(t))

	learner := uuid.New()
	topic := uuid.New()
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

	items := []*types.ReviewItem{
		{LearnerID: learner, QuestionID: "q-late", TopicID: topic, Level: 1, LastCalibration: -1.3, NextReviewAt: now.Add(-4 * time.Hour)},
		{LearnerID: learner, QuestionID: "q-early", TopicID: topic, Level: 1, LastCalibration: -0.2, NextReviewAt: now.Add(-time.Hour)},
		{LearnerID: learner, QuestionID: "q-future", TopicID: topic, Level: 1, LastCalibration: 1.5, NextReviewAt: now.Add(7 * 24 * time.Hour)},
	}
	for _, it := range items {
		if err := repo.Upsert(dbc, it); err != nil {
			t.Fatalf("Upsert %s: %v", it.QuestionID, err)
		}
	}

	due, err := repo.ListDue(dbc, learner, now, nil, 0)
	if err != nil {
		t.Fatalf("ListDue: %v", err)
	}
	if len(due) != 2 || due[0].QuestionID != "q-late" {
		t.Fatalf("ListDue order: %+v", due)
	}

	again := &types.ReviewItem{LearnerID: learner, QuestionID: "q-late", TopicID: topic, Level: 1, LastCalibration: 1.2, NextReviewAt: now.Add(7 * 24 * time.Hour)}
	if err := repo.Upsert(dbc, again); err != nil {
		t.Fatalf("Upsert reschedule: %v", err)
	}
	due, err = repo.ListDue(dbc, learner, now, []uuid.UUID{topic}, 5)
	if err != nil || len(due) != 1 || due[0].QuestionID != "q-early" {
		t.Fatalf("ListDue after reschedule: %+v err=%v", due, err)
	}

	if n, err := repo.DeleteByLearnerTopic(dbc, learner, topic); err != nil || n != 3 {
		t.Fatalf("DeleteByLearnerTopic: n=%d err=%v", n, err)
	}
}
