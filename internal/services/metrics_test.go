package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/neurobridge-tutor/internal/data/repos"
	"github.com/yungbote/neurobridge-tutor/internal/data/repos/testutil"
	types "github.com/yungbote/neurobridge-tutor/internal/domain"
	"github.com/yungbote/neurobridge-tutor/internal/platform/dbctx"
)

func TestRecalculateRebuildsFromHistory(t *testing.T) {
	h := newTutorHarness(t, nil, nil)
	for i := 1; i <= 8; i++ {
		h.answer(t, 1, true, fmt.Sprintf("q%d", i), "")
	}
	if err := h.db.Model(&types.Arm{}).
		Where("learner_id = ? AND level = ?", h.learner, 1).
		Updates(map[string]interface{}{"mastery_score": 5, "questions_correct": 0}).Error; err != nil {
		t.Fatalf("tamper arm: %v", err)
	}

	svc := NewMetricsService(h.db, testutil.Logger(t), h.repos, nil, DefaultPolicy(), 2)
	res, err := svc.Recalculate(context.Background(), &h.learner)
	if err != nil {
		t.Fatalf("Recalculate: %v", err)
	}
	if res.LearnersProcessed != 1 || res.UpdatedCount != 1 || res.ArmsRebuilt != 2 || res.AbilityEstimates != 1 {
		t.Fatalf("unexpected result %+v", res)
	}

	dbc := dbctx.Context{Ctx: context.Background()}
	arms, err := h.repos.Arms.ListByLearnerTopic(dbc, h.learner, h.topic.ID)
	if err != nil {
		t.Fatalf("ListByLearnerTopic: %v", err)
	}
	if len(arms) != 2 {
		t.Fatalf("arms after rebuild: %d", len(arms))
	}
	if arms[0].MasteryScore != 80 || arms[0].QuestionsCorrect != 8 || arms[0].CurrentStreak != 8 {
		t.Fatalf("level 1 not rebuilt: %+v", arms[0])
	}
	if !arms[1].Unlocked {
		t.Fatalf("level 2 relocked by rebuild")
	}

	metrics, err := h.repos.Metrics.ListByLearner(dbc, h.learner)
	if err != nil {
		t.Fatalf("ListByLearner metrics: %v", err)
	}
	if len(metrics) != 1 {
		t.Fatalf("topic metrics: %d", len(metrics))
	}
	m := metrics[0]
	if m.EventCount != 8 || m.Mean != 1.5 || m.StdDev != 0 || m.Slope != 0 {
		t.Fatalf("metric: %+v", m)
	}
	if m.QuestionsToMastery != nil {
		t.Fatalf("flat perfect history has no questions_to_mastery, got %d", *m.QuestionsToMastery)
	}

	est, err := h.repos.Abilities.Get(dbc, h.learner, "math")
	if err != nil || est == nil {
		t.Fatalf("ability estimate: %v %v", est, err)
	}
	if est.ResponseCount != 8 || est.ExamScore < 750 {
		t.Fatalf("ability estimate: %+v", est)
	}
}

func TestRecalculateIsIdempotent(t *testing.T) {
	h := newTutorHarness(t, nil, nil)
	for i := 1; i <= 6; i++ {
		h.answer(t, 1, i > 2, fmt.Sprintf("q%d", i), "")
	}
	svc := NewMetricsService(h.db, testutil.Logger(t), h.repos, nil, DefaultPolicy(), 1)
	dbc := dbctx.Context{Ctx: context.Background()}

	snapshot := func() (float64, float64, float64) {
		t.Helper()
		if _, err := svc.Recalculate(context.Background(), &h.learner); err != nil {
			t.Fatalf("Recalculate: %v", err)
		}
		arms, err := h.repos.Arms.ListByLearnerTopic(dbc, h.learner, h.topic.ID)
		if err != nil || len(arms) != 1 {
			t.Fatalf("arms: %v %d", err, len(arms))
		}
		ms, err := h.repos.Metrics.ListByLearner(dbc, h.learner)
		if err != nil || len(ms) != 1 {
			t.Fatalf("metrics: %v %d", err, len(ms))
		}
		return arms[0].MasteryScore, ms[0].Mean, ms[0].Slope
	}
	m1, mean1, slope1 := snapshot()
	m2, mean2, slope2 := snapshot()
	if m1 != m2 || mean1 != mean2 || slope1 != slope2 {
		t.Fatalf("second run differs: (%v %v %v) vs (%v %v %v)", m1, mean1, slope1, m2, mean2, slope2)
	}
	// -10, -10, +10, +10, +10, +10
	if m1 != 20 {
		t.Fatalf("mastery: got %v want 20", m1)
	}
	if slope1 <= 0 {
		t.Fatalf("improving learner should have a positive slope, got %v", slope1)
	}
}

func TestRecalculateAllLearners(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	r := NewTutorRepos(db, log)
	ctx := context.Background()
	topic := testutil.SeedTopic(t, ctx, db, "physics", "kinematics-"+uuid.NewString(), nil)

	base := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		learner := uuid.New()
		testutil.SeedAnswer(t, ctx, db, learner, topic.ID, 1, true, 1.5, base)
		testutil.SeedAnswer(t, ctx, db, learner, topic.ID, 1, false, -1.5, base.Add(time.Minute))
	}

	svc := NewMetricsService(db, log, r, nil, DefaultPolicy(), 3)
	res, err := svc.Recalculate(ctx, nil)
	if err != nil {
		t.Fatalf("Recalculate: %v", err)
	}
	if res.LearnersProcessed < 3 || res.UpdatedCount < 3 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestRecalculateSkipsBusyLearner(t *testing.T) {
	h := newTutorHarness(t, nil, nil)
	h.answer(t, 1, true, "q1", "")
	svc := NewMetricsService(h.db, testutil.Logger(t), h.repos, busyLocker{}, DefaultPolicy(), 1)
	res, err := svc.Recalculate(context.Background(), &h.learner)
	if err != nil {
		t.Fatalf("Recalculate: %v", err)
	}
	if res.LearnersSkipped != 1 || res.LearnersProcessed != 0 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestRecalculateProceedsWhenLockBackendDown(t *testing.T) {
	h := newTutorHarness(t, nil, nil)
	h.answer(t, 1, true, "q1", "")
	locker := &brokenLocker{}
	svc := NewMetricsService(h.db, testutil.Logger(t), h.repos, locker, DefaultPolicy(), 1)
	res, err := svc.Recalculate(context.Background(), &h.learner)
	if err != nil {
		t.Fatalf("Recalculate: %v", err)
	}
	if locker.calls != 1 || res.LearnersProcessed != 1 || res.LearnersSkipped != 0 {
		t.Fatalf("unexpected result %+v (lock calls %d)", res, locker.calls)
	}
}

// racingArmRepo moves every arm of the learner on right after the rebuild
// reads them, the way a concurrently committed answer would.
type racingArmRepo struct {
	repos.ArmRepo
	races int
	reads int
}

func (r *racingArmRepo) ListByLearner(dbc dbctx.Context, learnerID uuid.UUID) ([]*types.Arm, error) {
	out, err := r.ArmRepo.ListByLearner(dbc, learnerID)
	if err != nil || dbc.Tx == nil {
		return out, err
	}
	r.reads++
	if r.races > 0 {
		r.races--
		if err := dbc.Tx.Model(&types.Arm{}).
			Where("learner_id = ?", learnerID).
			Update("version", gorm.Expr("version + 1")).Error; err != nil {
			return nil, err
		}
	}
	return out, nil
}

func levelOneArm(t *testing.T, h *tutorHarness) *types.Arm {
	t.Helper()
	arms, err := h.repos.Arms.ListByLearnerTopic(dbctx.Context{Ctx: context.Background()}, h.learner, h.topic.ID)
	if err != nil || len(arms) == 0 {
		t.Fatalf("ListByLearnerTopic: %v (%d arms)", err, len(arms))
	}
	return arms[0]
}

func TestRecalculateRetriesWhenArmMovesDuringRebuild(t *testing.T) {
	h := newTutorHarness(t, nil, nil)
	for i := 1; i <= 3; i++ {
		h.answer(t, 1, true, fmt.Sprintf("q%d", i), "")
	}
	before := levelOneArm(t, h)

	r := h.repos
	racing := &racingArmRepo{ArmRepo: r.Arms, races: 1}
	r.Arms = racing
	svc := NewMetricsService(h.db, testutil.Logger(t), r, nil, DefaultPolicy(), 1)
	res, err := svc.Recalculate(context.Background(), &h.learner)
	if err != nil {
		t.Fatalf("Recalculate: %v", err)
	}
	if racing.reads != 2 || res.LearnersProcessed != 1 || res.LearnersSkipped != 0 {
		t.Fatalf("expected one retry: reads=%d result=%+v", racing.reads, res)
	}
	after := levelOneArm(t, h)
	if after.Version != before.Version+1 {
		t.Fatalf("version: got %d want %d", after.Version, before.Version+1)
	}
	if after.MasteryScore != 30 || after.QuestionsCorrect != 3 {
		t.Fatalf("rebuilt arm: %+v", after)
	}
}

func TestRecalculateNeverOverwritesArmThatKeepsMoving(t *testing.T) {
	h := newTutorHarness(t, nil, nil)
	for i := 1; i <= 3; i++ {
		h.answer(t, 1, true, fmt.Sprintf("q%d", i), "")
	}
	if err := h.db.Model(&types.Arm{}).
		Where("learner_id = ? AND level = ?", h.learner, 1).
		Update("mastery_score", 5).Error; err != nil {
		t.Fatalf("tamper arm: %v", err)
	}
	before := levelOneArm(t, h)

	r := h.repos
	racing := &racingArmRepo{ArmRepo: r.Arms, races: recalcAttempts}
	r.Arms = racing
	svc := NewMetricsService(h.db, testutil.Logger(t), r, nil, DefaultPolicy(), 1)
	res, err := svc.Recalculate(context.Background(), &h.learner)
	if err != nil {
		t.Fatalf("Recalculate: %v", err)
	}
	if racing.reads != recalcAttempts || res.LearnersSkipped != 1 || res.LearnersProcessed != 0 {
		t.Fatalf("expected a skip after %d attempts: reads=%d result=%+v", recalcAttempts, racing.reads, res)
	}
	after := levelOneArm(t, h)
	if after.Version != before.Version || after.MasteryScore != 5 {
		t.Fatalf("arm written despite conflicts: %+v", after)
	}
	if n := h.count(t, &types.TopicMetric{}); n != 0 {
		t.Fatalf("topic metrics written despite conflicts: %d", n)
	}
}

func TestReplayArmsCreatesUnlockedRows(t *testing.T) {
	learner, topic := uuid.New(), uuid.New()
	at := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
	var events []*types.AnswerEvent
	for i := 0; i < 8; i++ {
		events = append(events, &types.AnswerEvent{
			LearnerID:         learner,
			TopicID:           topic,
			Level:             1,
			IsCorrect:         true,
			Confidence:        3,
			RecognitionMethod: "memory",
			OccurredAt:        at.Add(time.Duration(i) * time.Minute),
		})
	}
	arms := replayArms(learner, events, nil)
	if len(arms) != 2 {
		t.Fatalf("arms: got %d want 2", len(arms))
	}
	if arms[0].MasteryScore != 80 || !arms[0].Unlocked {
		t.Fatalf("level 1: %+v", arms[0])
	}
	if arms[1].Level != 2 || !arms[1].Unlocked || arms[1].QuestionsAttempted != 0 {
		t.Fatalf("level 2: %+v", arms[1])
	}
	if !arms[1].UnlockedAt.Equal(at.Add(7 * time.Minute)) {
		t.Fatalf("level 2 unlocked at %v", arms[1].UnlockedAt)
	}
}
