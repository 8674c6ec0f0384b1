package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/yungbote/neurobridge-tutor/internal/clients/redis"
	"github.com/yungbote/neurobridge-tutor/internal/data/repos"
	types "github.com/yungbote/neurobridge-tutor/internal/domain"
	"github.com/yungbote/neurobridge-tutor/internal/learning/bloom"
	"github.com/yungbote/neurobridge-tutor/internal/learning/cognitive"
	"github.com/yungbote/neurobridge-tutor/internal/learning/irt"
	"github.com/yungbote/neurobridge-tutor/internal/learning/mastery"
	"github.com/yungbote/neurobridge-tutor/internal/learning/reward"
	"github.com/yungbote/neurobridge-tutor/internal/learning/stats"
	"github.com/yungbote/neurobridge-tutor/internal/observability"
	"github.com/yungbote/neurobridge-tutor/internal/platform/dbctx"
	"github.com/yungbote/neurobridge-tutor/internal/platform/logger"
)

type RecalcResult struct {
	// UpdatedCount is the number of topic metric rows written.
	UpdatedCount      int `json:"updated_count"`
	LearnersProcessed int `json:"learners_processed"`
	LearnersSkipped   int `json:"learners_skipped"`
	ArmsRebuilt       int `json:"arms_rebuilt"`
	AbilityEstimates  int `json:"ability_estimates"`
}

func (r *RecalcResult) add(o RecalcResult) {
	r.UpdatedCount += o.UpdatedCount
	r.LearnersProcessed += o.LearnersProcessed
	r.LearnersSkipped += o.LearnersSkipped
	r.ArmsRebuilt += o.ArmsRebuilt
	r.AbilityEstimates += o.AbilityEstimates
}

type MetricsService interface {
	// Recalculate rebuilds arms, topic metrics and ability estimates from the
	// answer history. A nil learnerID means every learner with answers.
	Recalculate(ctx context.Context, learnerID *uuid.UUID) (*RecalcResult, error)
}

type metricsService struct {
	db      *gorm.DB
	log     *logger.Logger
	repos   TutorRepos
	locks   LearnerLocker
	policy  Policy
	workers int
	now     func() time.Time
}

func NewMetricsService(db *gorm.DB, log *logger.Logger, r TutorRepos, locks LearnerLocker, policy Policy, workers int) MetricsService {
	if workers <= 0 {
		workers = 4
	}
	return &metricsService{
		db:      db,
		log:     log.With("service", "MetricsService"),
		repos:   r,
		locks:   locks,
		policy:  policy.normalized(),
		workers: workers,
		now:     time.Now,
	}
}

func (s *metricsService) Recalculate(ctx context.Context, learnerID *uuid.UUID) (*RecalcResult, error) {
	ctx, span := observability.Tracer().Start(ctx, "tutor.RecalculateMetrics")
	defer span.End()

	started := time.Now()
	scope := "all"
	var learners []uuid.UUID
	if learnerID != nil {
		if *learnerID == uuid.Nil {
			return nil, ErrLearnerMissing
		}
		scope = "learner"
		learners = []uuid.UUID{*learnerID}
	} else {
		ids, err := s.repos.Answers.ListLearnerIDs(dbctx.Context{Ctx: ctx})
		if err != nil {
			return nil, fmt.Errorf("list learners: %w", err)
		}
		learners = ids
	}
	span.SetAttributes(attribute.String("tutor.scope", scope), attribute.Int("tutor.learners", len(learners)))

	var (
		mu    sync.Mutex
		total RecalcResult
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for _, id := range learners {
		g.Go(func() error {
			res, err := s.recalculateLearner(gctx, id)
			if err != nil {
				return fmt.Errorf("learner %s: %w", id, err)
			}
			mu.Lock()
			total.add(res)
			mu.Unlock()
			return nil
		})
	}
	err := g.Wait()
	observability.ObserveRecalc(scope, time.Since(started), total.UpdatedCount, err)
	if err != nil {
		span.RecordError(err)
		s.log.Error("metrics recalculation failed", "scope", scope, "error", err)
		return nil, err
	}
	s.log.Info("metrics recalculated",
		"scope", scope,
		"learners", total.LearnersProcessed,
		"skipped", total.LearnersSkipped,
		"updated", total.UpdatedCount,
		"arms", total.ArmsRebuilt,
		"duration_ms", time.Since(started).Milliseconds(),
	)
	return &total, nil
}

// recalcAttempts bounds how often one learner's rebuild restarts after an
// answer lands between its reads and its writes.
const recalcAttempts = 3

func (s *metricsService) recalculateLearner(ctx context.Context, learnerID uuid.UUID) (RecalcResult, error) {
	if s.locks != nil {
		release, err := s.locks.LockLearner(ctx, learnerID, s.policy.LockTTL)
		switch {
		case errors.Is(err, redis.ErrLockHeld):
			// A learner mid-answer is picked up on the next run.
			s.log.Info("skipping busy learner", "learner_id", learnerID)
			return RecalcResult{LearnersSkipped: 1}, nil
		case err != nil:
			s.log.Warn("learner lock unavailable, relying on versioned writes", "learner_id", learnerID, "error", err)
		default:
			defer release()
		}
	}

	for attempt := 1; ; attempt++ {
		out, err := s.rebuildLearner(ctx, learnerID)
		if err == nil {
			out.LearnersProcessed = 1
			return out, nil
		}
		if !errors.Is(err, repos.ErrVersionConflict) {
			return RecalcResult{}, err
		}
		if attempt >= recalcAttempts {
			s.log.Warn("skipping learner, arms kept changing during rebuild", "learner_id", learnerID, "attempts", attempt)
			return RecalcResult{LearnersSkipped: 1}, nil
		}
		s.log.Debug("arm changed during rebuild, retrying", "learner_id", learnerID, "attempt", attempt)
	}
}

// rebuildLearner replays one learner's history in a single transaction. Arms
// are read before answers, so any answer committed after the arm read bumps a
// version the write then refuses.
func (s *metricsService) rebuildLearner(ctx context.Context, learnerID uuid.UUID) (RecalcResult, error) {
	var out RecalcResult
	now := s.now().UTC()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}

		existing, err := s.repos.Arms.ListByLearner(dbc, learnerID)
		if err != nil {
			return fmt.Errorf("load arms: %w", err)
		}
		events, err := s.repos.Answers.ListByLearner(dbc, learnerID)
		if err != nil {
			return fmt.Errorf("load answers: %w", err)
		}

		arms := replayArms(learnerID, events, existing)
		if err := s.repos.Arms.ReplaceState(dbc, arms); err != nil {
			return fmt.Errorf("rebuild arms: %w", err)
		}
		out.ArmsRebuilt = len(arms)

		metrics := topicMetrics(learnerID, events, now)
		if err := s.repos.Metrics.Upsert(dbc, metrics); err != nil {
			return fmt.Errorf("write topic metrics: %w", err)
		}
		out.UpdatedCount = len(metrics)

		estimates, err := s.abilityEstimates(dbc, learnerID, events, now)
		if err != nil {
			return err
		}
		for _, est := range estimates {
			if err := s.repos.Abilities.Upsert(dbc, est); err != nil {
				return fmt.Errorf("write ability estimate: %w", err)
			}
		}
		out.AbilityEstimates = len(estimates)
		return nil
	})
	if err != nil {
		return RecalcResult{}, err
	}
	return out, nil
}

type armKey struct {
	topic uuid.UUID
	level cognitive.Level
}

// replayArms folds the history into fresh arm state from a zero baseline.
// Unlock flags already stored are kept so a rebuild never relocks a level,
// and stored rows keep their ID and version for the guarded write.
func replayArms(learnerID uuid.UUID, events []*types.AnswerEvent, existing []*types.Arm) []*types.Arm {
	stored := map[armKey]*types.Arm{}
	states := map[armKey]mastery.State{}
	unlockedAt := map[armKey]*time.Time{}
	var order []armKey
	touch := func(k armKey) {
		if _, ok := states[k]; !ok {
			states[k] = mastery.State{}
			order = append(order, k)
		}
	}
	for _, a := range existing {
		k := armKey{a.TopicID, cognitive.Level(a.Level)}
		touch(k)
		stored[k] = a
		if a.Unlocked {
			unlockedAt[k] = a.UnlockedAt
			if unlockedAt[k] == nil {
				t := a.CreatedAt.UTC()
				unlockedAt[k] = &t
			}
		}
	}

	history := func(topic uuid.UUID) map[cognitive.Level]bloom.Evidence {
		h := map[cognitive.Level]bloom.Evidence{}
		for k, st := range states {
			if k.topic != topic {
				continue
			}
			_, open := unlockedAt[k]
			h[k.level] = bloom.Evidence{Present: true, Mastery: st.Score, Correct: st.QuestionsCorrect, Unlocked: open}
		}
		return h
	}

	for _, ev := range events {
		k := armKey{ev.TopicID, cognitive.Level(ev.Level)}
		touch(k)
		if _, ok := unlockedAt[k]; !ok {
			t := ev.OccurredAt.UTC()
			unlockedAt[k] = &t
		}
		res := replayReward(ev)
		before := history(ev.TopicID)
		states[k] = mastery.Apply(states[k], ev.IsCorrect, res.LearningGain, ev.OccurredAt)
		for _, lvl := range bloom.NewlyUnlocked(before, history(ev.TopicID)) {
			nk := armKey{ev.TopicID, lvl}
			touch(nk)
			if _, ok := unlockedAt[nk]; !ok {
				t := ev.OccurredAt.UTC()
				unlockedAt[nk] = &t
			}
		}
	}

	out := make([]*types.Arm, 0, len(order))
	for _, k := range order {
		st := states[k]
		at, open := unlockedAt[k]
		a := &types.Arm{
			LearnerID:          learnerID,
			TopicID:            k.topic,
			Level:              int(k.level),
			Successes:          st.Successes,
			Failures:           st.Failures,
			MasteryScore:       st.Score,
			QuestionsAttempted: st.QuestionsAttempted,
			QuestionsCorrect:   st.QuestionsCorrect,
			CurrentStreak:      st.CurrentStreak,
			Unlocked:           open || k.level == cognitive.MinLevel,
			LastPracticedAt:    st.LastPracticedAt,
		}
		if open {
			a.UnlockedAt = at
		}
		if prev, ok := stored[k]; ok {
			a.ID = prev.ID
			a.Version = prev.Version
			a.CreatedAt = prev.CreatedAt
		}
		out = append(out, a)
	}
	return out
}

// replayReward recomputes the reward from the raw answer. Rows whose method
// no longer parses fall back to what was recorded at answer time.
func replayReward(ev *types.AnswerEvent) reward.Result {
	method, err := reward.ParseMethod(ev.RecognitionMethod)
	if err != nil {
		return reward.Result{CalibrationScore: ev.CalibrationScore, LearningGain: ev.LearningGain}
	}
	return reward.Calculate(reward.Input{
		IsCorrect:  ev.IsCorrect,
		Confidence: ev.Confidence,
		Method:     method,
		Level:      cognitive.Level(ev.Level),
	})
}

// topicMetrics summarizes calibration over event index for every topic with
// at least two answers.
func topicMetrics(learnerID uuid.UUID, events []*types.AnswerEvent, now time.Time) []*types.TopicMetric {
	series := map[uuid.UUID][]float64{}
	var order []uuid.UUID
	for _, ev := range events {
		if _, ok := series[ev.TopicID]; !ok {
			order = append(order, ev.TopicID)
		}
		series[ev.TopicID] = append(series[ev.TopicID], replayReward(ev).CalibrationScore)
	}
	var out []*types.TopicMetric
	for _, topicID := range order {
		values := series[topicID]
		if len(values) < 2 {
			continue
		}
		sum := stats.Summarize(values)
		out = append(out, &types.TopicMetric{
			LearnerID:          learnerID,
			TopicID:            topicID,
			EventCount:         sum.N,
			Mean:               sum.Mean,
			StdDev:             sum.StdDev,
			Slope:              sum.Slope,
			RSquared:           sum.RSquared,
			QuestionsToMastery: stats.QuestionsToMastery(sum.Mean, sum.Slope),
			ComputedAt:         now,
		})
	}
	return out
}

// abilityEstimates fits one Rasch ability per subject, using the cognitive
// level of each answer as its item difficulty.
func (s *metricsService) abilityEstimates(dbc dbctx.Context, learnerID uuid.UUID, events []*types.AnswerEvent, now time.Time) ([]*types.AbilityEstimate, error) {
	if len(events) == 0 {
		return nil, nil
	}
	seen := map[uuid.UUID]bool{}
	var topicIDs []uuid.UUID
	for _, ev := range events {
		if !seen[ev.TopicID] {
			seen[ev.TopicID] = true
			topicIDs = append(topicIDs, ev.TopicID)
		}
	}
	topics, err := s.repos.Topics.GetByIDs(dbc, topicIDs)
	if err != nil {
		return nil, fmt.Errorf("load topics: %w", err)
	}
	subjectOf := make(map[uuid.UUID]string, len(topics))
	for _, tp := range topics {
		subjectOf[tp.ID] = tp.Subject
	}

	responses := map[string][]irt.Response{}
	var subjects []string
	for _, ev := range events {
		subject, ok := subjectOf[ev.TopicID]
		if !ok {
			continue
		}
		if _, ok := responses[subject]; !ok {
			subjects = append(subjects, subject)
		}
		responses[subject] = append(responses[subject], irt.Response{
			Correct:    ev.IsCorrect,
			Difficulty: irt.LevelDifficulty(cognitive.Level(ev.Level)),
		})
	}

	out := make([]*types.AbilityEstimate, 0, len(subjects))
	for _, subject := range subjects {
		out = append(out, abilityRow(learnerID, subject, irt.EstimateTheta(responses[subject]), now))
	}
	return out, nil
}

func abilityRow(learnerID uuid.UUID, subject string, est irt.Estimate, now time.Time) *types.AbilityEstimate {
	return &types.AbilityEstimate{
		LearnerID:       learnerID,
		Subject:         subject,
		Theta:           est.Theta,
		StandardError:   est.StandardError,
		Information:     est.Information,
		Reliability:     irt.Reliability(est.Information),
		ExamScore:       irt.ThetaToScore(est.Theta),
		PassProbability: irt.PassProbability(est.Theta, est.StandardError),
		ResponseCount:   est.Responses,
		ComputedAt:      now,
	}
}
