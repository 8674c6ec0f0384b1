package tutor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/neurobridge-tutor/internal/data/repos/testutil"
	types "github.com/yungbote/neurobridge-tutor/internal/domain"
	"github.com/yungbote/neurobridge-tutor/internal/platform/dbctx"
)

func TestArmRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewArmRepo(db, testutil.Logger(t))

	learner := uuid.New()
	topic := testutil.SeedTopic(t, ctx, tx, "math", "fractions-"+uuid.NewString(), nil)

	a1 := &types.Arm{LearnerID: learner, TopicID: topic.ID, Level: 1, Unlocked: true}
	if err := repo.Create(dbc, a1); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if a1.Version != 1 {
		t.Fatalf("Create version: got %d want 1", a1.Version)
	}

	dup := &types.Arm{LearnerID: learner, TopicID: topic.ID, Level: 1}
	if err := repo.Create(dbc, dup); !errors.Is(err, ErrVersionConflict) {
		t.Fatalf("Create duplicate: want ErrVersionConflict, got %v", err)
	}
}

func TestArmRepoVersionedUpdate(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewArmRepo(db, testutil.Logger(t))

	learner := uuid.New()
	topic := testutil.SeedTopic(t, ctx, tx, "math", "ratios-"+uuid.NewString(), nil)

	arm := &types.Arm{LearnerID: learner, TopicID: topic.ID, Level: 1, Unlocked: true}
	if err := repo.Create(dbc, arm); err != nil {
		t.Fatalf("Create: %v", err)
	}

	stale := *arm
	now := time.Now().UTC()
	arm.MasteryScore = 10
	arm.Successes = 1
	arm.QuestionsAttempted = 1
	arm.QuestionsCorrect = 1
	arm.CurrentStreak = 1
	arm.LastPracticedAt = &now
	if err := repo.UpdateVersioned(dbc, arm); err != nil {
		t.Fatalf("UpdateVersioned: %v", err)
	}
	if arm.Version != 2 {
		t.Fatalf("version after update: got %d want 2", arm.Version)
	}

	stale.MasteryScore = -50
	if err := repo.UpdateVersioned(dbc, &stale); !errors.Is(err, ErrVersionConflict) {
		t.Fatalf("stale UpdateVersioned: want ErrVersionConflict, got %v", err)
	}

	rows, err := repo.ListByLearnerTopic(dbc, learner, topic.ID)
	if err != nil || len(rows) != 1 {
		t.Fatalf("ListByLearnerTopic: err=%v len=%d", err, len(rows))
	}
	if rows[0].MasteryScore != 10 || rows[0].LastPracticedAt == nil {
		t.Fatalf("stored arm: %+v", rows[0])
	}
}

func TestArmRepoReplaceStateAndDelete(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewArmRepo(db, testutil.Logger(t))

	learner := uuid.New()
	topic := testutil.SeedTopic(t, ctx, tx, "math", "angles-"+uuid.NewString(), nil)
	existing := testutil.SeedArm(t, ctx, tx, learner, topic.ID, 1, 5, 1)

	rows := []*types.Arm{
		{ID: existing.ID, Version: existing.Version, LearnerID: learner, TopicID: topic.ID, Level: 1, MasteryScore: 80, QuestionsCorrect: 8, QuestionsAttempted: 8, Successes: 8, Unlocked: true},
		{LearnerID: learner, TopicID: topic.ID, Level: 2, MasteryScore: 9, QuestionsCorrect: 1, QuestionsAttempted: 1, Successes: 1, Unlocked: true},
	}
	if err := repo.ReplaceState(dbc, rows); err != nil {
		t.Fatalf("ReplaceState: %v", err)
	}

	got, err := repo.ListByLearner(dbc, learner)
	if err != nil || len(got) != 2 {
		t.Fatalf("ListByLearner: err=%v len=%d", err, len(got))
	}
	byLevel := map[int]*types.Arm{}
	for _, a := range got {
		byLevel[a.Level] = a
	}
	if byLevel[1].ID != existing.ID {
		t.Fatalf("replace changed the arm id: got %s want %s", byLevel[1].ID, existing.ID)
	}
	if byLevel[1].MasteryScore != 80 || byLevel[1].QuestionsCorrect != 8 || byLevel[1].Version != existing.Version+1 {
		t.Fatalf("level 1 not overwritten: %+v", byLevel[1])
	}
	if !byLevel[2].Unlocked || byLevel[2].Version != 1 {
		t.Fatalf("level 2 not inserted: %+v", byLevel[2])
	}

	n, err := repo.DeleteByLearnerTopic(dbc, learner, topic.ID)
	if err != nil || n != 2 {
		t.Fatalf("DeleteByLearnerTopic: n=%d err=%v", n, err)
	}
}

func TestArmRepoReplaceStateRejectsStaleRows(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewArmRepo(db, testutil.Logger(t))

	learner := uuid.New()
	topic := testutil.SeedTopic(t, ctx, tx, "math", "ratios-"+uuid.NewString(), nil)
	existing := testutil.SeedArm(t, ctx, tx, learner, topic.ID, 1, 30, 3)

	// Another writer moved the arm on after the rebuild read it.
	if err := tx.Model(&types.Arm{}).Where("id = ?", existing.ID).
		Updates(map[string]interface{}{"mastery_score": 40, "version": existing.Version + 1}).Error; err != nil {
		t.Fatalf("bump version: %v", err)
	}
	stale := []*types.Arm{{ID: existing.ID, Version: existing.Version, LearnerID: learner, TopicID: topic.ID, Level: 1, MasteryScore: 30}}
	if err := repo.ReplaceState(dbc, stale); !errors.Is(err, ErrVersionConflict) {
		t.Fatalf("stale row: want ErrVersionConflict, got %v", err)
	}

	dup := []*types.Arm{{LearnerID: learner, TopicID: topic.ID, Level: 1}}
	if err := repo.ReplaceState(dbc, dup); !errors.Is(err, ErrVersionConflict) {
		t.Fatalf("duplicate insert: want ErrVersionConflict, got %v", err)
	}
}
