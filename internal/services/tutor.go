package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/neurobridge-tutor/internal/clients/redis"
	"github.com/yungbote/neurobridge-tutor/internal/data/repos"
	types "github.com/yungbote/neurobridge-tutor/internal/domain"
	"github.com/yungbote/neurobridge-tutor/internal/learning/bandit"
	"github.com/yungbote/neurobridge-tutor/internal/learning/bloom"
	"github.com/yungbote/neurobridge-tutor/internal/learning/cognitive"
	"github.com/yungbote/neurobridge-tutor/internal/learning/cycle"
	"github.com/yungbote/neurobridge-tutor/internal/learning/keystone"
	"github.com/yungbote/neurobridge-tutor/internal/learning/mastery"
	"github.com/yungbote/neurobridge-tutor/internal/learning/review"
	"github.com/yungbote/neurobridge-tutor/internal/learning/reward"
	"github.com/yungbote/neurobridge-tutor/internal/observability"
	"github.com/yungbote/neurobridge-tutor/internal/platform/dbctx"
	"github.com/yungbote/neurobridge-tutor/internal/platform/logger"
)

// Scope narrows a selection to a subset of the catalog. An empty scope means
// every active topic.
type Scope struct {
	TopicIDs []uuid.UUID `json:"topic_ids,omitempty"`
}

// Selection is what the learner should see next plus the record explaining
// why. For spaced-repetition slots QuestionID names the question to replay.
type Selection struct {
	LearnerID     uuid.UUID       `json:"learner_id"`
	Position      int             `json:"position"`
	Slot          cycle.SlotKind  `json:"slot"`
	Degraded      bool            `json:"degraded"`
	TopicID       uuid.UUID       `json:"topic_id"`
	TopicName     string          `json:"topic_name"`
	Level         cognitive.Level `json:"level"`
	QuestionID    string          `json:"question_id,omitempty"`
	Dimension     string          `json:"dimension,omitempty"`
	Samples       []bandit.Sample `json:"samples,omitempty"`
	WinningSample float64         `json:"winning_sample"`
	Boost         float64         `json:"boost"`
	Penalty       float64         `json:"penalty"`
	Reason        string          `json:"reason"`
	RandomSeed    uint64          `json:"random_seed,string"`
}

type AnswerOutcome struct {
	TopicID          uuid.UUID         `json:"topic_id"`
	Level            cognitive.Level   `json:"level"`
	NewMastery       float64           `json:"new_mastery"`
	CalibrationScore float64           `json:"calibration_score"`
	LearningGain     float64           `json:"learning_gain"`
	NextReviewAt     time.Time         `json:"next_review_at"`
	UnlockedLevels   []cognitive.Level `json:"unlocked_levels"`
	OpenLevels       []cognitive.Level `json:"open_levels"`
	Position         int               `json:"position"`
}

type TutorService interface {
	// SelectNext decides and records the next item. It never advances the
	// question position; only an answer does.
	SelectNext(ctx context.Context, learnerID uuid.UUID, scope Scope) (*Selection, error)
	// PreviewNext runs the same decision without writing anything.
	PreviewNext(ctx context.Context, learnerID uuid.UUID, scope Scope) (*Selection, error)
	SubmitAnswer(ctx context.Context, learnerID uuid.UUID, in AnswerInput) (*AnswerOutcome, error)
	ResetTopic(ctx context.Context, learnerID, topicID uuid.UUID) error
}

// TutorRepos groups the stores the engine reads and writes.
type TutorRepos struct {
	Topics    repos.TopicRepo
	Arms      repos.ArmRepo
	Answers   repos.AnswerEventRepo
	Positions repos.QuestionPositionRepo
	Reviews   repos.ReviewItemRepo
	Coverage  repos.DimensionCoverageRepo
	Metrics   repos.TopicMetricRepo
	Abilities repos.AbilityEstimateRepo
	Traces    repos.DecisionTraceRepo
}

func NewTutorRepos(db *gorm.DB, log *logger.Logger) TutorRepos {
	return TutorRepos{
		Topics:    repos.NewTopicRepo(db, log),
		Arms:      repos.NewArmRepo(db, log),
		Answers:   repos.NewAnswerEventRepo(db, log),
		Positions: repos.NewQuestionPositionRepo(db, log),
		Reviews:   repos.NewReviewItemRepo(db, log),
		Coverage:  repos.NewDimensionCoverageRepo(db, log),
		Metrics:   repos.NewTopicMetricRepo(db, log),
		Abilities: repos.NewAbilityEstimateRepo(db, log),
		Traces:    repos.NewDecisionTraceRepo(db, log),
	}
}

// LearnerLocker serializes decisions per learner. *redis.Store implements it.
type LearnerLocker interface {
	LockLearner(ctx context.Context, learnerID uuid.UUID, ttl time.Duration) (func(), error)
}

type TutorOption func(*tutorService)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) TutorOption {
	return func(s *tutorService) { s.now = now }
}

// WithSeeds replaces the per-decision random seed source.
func WithSeeds(next func() uint64) TutorOption {
	return func(s *tutorService) { s.seed = next }
}

type tutorService struct {
	db         *gorm.DB
	log        *logger.Logger
	repos      TutorRepos
	centrality CentralityProvider
	locks      LearnerLocker
	policy     Policy
	now        func() time.Time
	seed       func() uint64
}

func NewTutorService(db *gorm.DB, log *logger.Logger, r TutorRepos, centrality CentralityProvider, locks LearnerLocker, policy Policy, opts ...TutorOption) TutorService {
	s := &tutorService{
		db:         db,
		log:        log.With("service", "TutorService"),
		repos:      r,
		centrality: centrality,
		locks:      locks,
		policy:     policy.normalized(),
		now:        time.Now,
		seed:       rand.Uint64,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.centrality == nil {
		s.centrality = NewCentralityProvider(log, nil, nil, r.Topics, s.policy)
	}
	return s
}

func (s *tutorService) SelectNext(ctx context.Context, learnerID uuid.UUID, scope Scope) (*Selection, error) {
	ctx, span := observability.Tracer().Start(ctx, "tutor.SelectNext")
	defer span.End()

	sel, err := s.decide(ctx, learnerID, scope)
	if err != nil {
		observability.ObserveSelection("unknown", outcomeOf(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.String("tutor.slot", string(sel.Slot)),
		attribute.Int("tutor.level", int(sel.Level)),
		attribute.Bool("tutor.degraded", sel.Degraded),
	)

	samples := datatypes.JSON([]byte("[]"))
	if s.policy.TraceSamples && len(sel.Samples) > 0 {
		raw, err := json.Marshal(sel.Samples)
		if err != nil {
			return nil, fmt.Errorf("encode decision samples: %w", err)
		}
		samples = datatypes.JSON(raw)
	}
	topicID := sel.TopicID
	trace := &types.DecisionTrace{
		LearnerID:     learnerID,
		Position:      sel.Position,
		Slot:          string(sel.Slot),
		TopicID:       &topicID,
		Level:         int(sel.Level),
		QuestionID:    sel.QuestionID,
		Dimension:     sel.Dimension,
		Samples:       samples,
		WinningSample: sel.WinningSample,
		Boost:         sel.Boost,
		Penalty:       sel.Penalty,
		Reason:        sel.Reason,
		RandomSeed:    strconv.FormatUint(sel.RandomSeed, 10),
		OccurredAt:    s.now().UTC(),
	}
	if err := s.repos.Traces.Create(dbctx.Context{Ctx: ctx}, trace); err != nil {
		s.log.Error("write decision trace failed", "learner_id", learnerID, "error", err)
		return nil, fmt.Errorf("write decision trace: %w", err)
	}
	observability.ObserveSelection(string(sel.Slot), outcomeOf(nil))
	return sel, nil
}

func (s *tutorService) PreviewNext(ctx context.Context, learnerID uuid.UUID, scope Scope) (*Selection, error) {
	ctx, span := observability.Tracer().Start(ctx, "tutor.PreviewNext")
	defer span.End()
	sel, err := s.decide(ctx, learnerID, scope)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return sel, nil
}

// decide performs every read up front and returns the decision without
// writing anything.
func (s *tutorService) decide(ctx context.Context, learnerID uuid.UUID, scope Scope) (*Selection, error) {
	if learnerID == uuid.Nil {
		return nil, ErrLearnerMissing
	}
	dbc := dbctx.Context{Ctx: ctx}
	now := s.now().UTC()

	pos, err := s.repos.Positions.Get(dbc, learnerID)
	if err != nil {
		return nil, fmt.Errorf("load question position: %w", err)
	}
	position := cycle.Normalize(pos.Position)
	slot := cycle.SlotFor(position)

	topics, err := s.repos.Topics.ListActive(dbc, scope.TopicIDs)
	if err != nil {
		return nil, fmt.Errorf("load topics: %w", err)
	}
	if len(topics) == 0 {
		return nil, ErrNoArmAvailable
	}
	topicByID := make(map[uuid.UUID]*types.Topic, len(topics))
	topicIDs := make([]uuid.UUID, 0, len(topics))
	for _, tp := range topics {
		topicByID[tp.ID] = tp
		topicIDs = append(topicIDs, tp.ID)
	}

	allArms, err := s.repos.Arms.ListByLearner(dbc, learnerID)
	if err != nil {
		return nil, fmt.Errorf("load arms: %w", err)
	}
	arms := make([]*types.Arm, 0, len(allArms))
	for _, a := range allArms {
		if _, ok := topicByID[a.TopicID]; ok {
			arms = append(arms, a)
		}
	}

	base := &Selection{LearnerID: learnerID, Position: position, Slot: slot}
	var fallback string
	switch slot {
	case cycle.SpacedRepetition:
		due, err := s.repos.Reviews.ListDue(dbc, learnerID, now, topicIDs, 1)
		if err != nil {
			return nil, fmt.Errorf("load due reviews: %w", err)
		}
		if len(due) > 0 {
			it := due[0]
			base.TopicID = it.TopicID
			base.TopicName = topicByID[it.TopicID].Name
			base.Level = cognitive.Level(it.Level)
			base.QuestionID = it.QuestionID
			base.Dimension = it.Dimension
			base.Reason = fmt.Sprintf("spaced repetition: question %s due %s ago (last calibration %.2f)",
				it.QuestionID, now.Sub(it.NextReviewAt).Round(time.Second), it.LastCalibration)
			return base, nil
		}
		fallback = "no review due"
	case cycle.DimensionPractice:
		ok, err := s.pickDimension(dbc, learnerID, topicByID, arms, base)
		if err != nil {
			return nil, err
		}
		if ok {
			return base, nil
		}
		fallback = "no mastered topic with an uncovered dimension"
	}

	if err := s.pickNewTopic(ctx, topics, arms, now, base); err != nil {
		return nil, err
	}
	if fallback != "" {
		base.Degraded = true
		base.Reason = fmt.Sprintf("%s slot served as new topic (%s): %s", slot, fallback, base.Reason)
	}
	return base, nil
}

// pickDimension serves the least recently practiced mastered topic that
// still has an uncovered dimension.
func (s *tutorService) pickDimension(dbc dbctx.Context, learnerID uuid.UUID, topicByID map[uuid.UUID]*types.Topic, arms []*types.Arm, out *Selection) (bool, error) {
	type mastered struct {
		topic   *types.Topic
		last    time.Time
		highest cognitive.Level
	}
	byTopic := map[uuid.UUID]*mastered{}
	var order []uuid.UUID
	for _, a := range arms {
		m := byTopic[a.TopicID]
		if m == nil {
			m = &mastered{topic: topicByID[a.TopicID], highest: cognitive.MinLevel}
			byTopic[a.TopicID] = m
			order = append(order, a.TopicID)
		}
		if a.LastPracticedAt != nil && a.LastPracticedAt.After(m.last) {
			m.last = *a.LastPracticedAt
		}
	}
	var candidates []*mastered
	for _, id := range order {
		m := byTopic[id]
		history := evidenceFor(arms, id)
		if ev := history[cognitive.MinLevel]; !ev.Present || ev.Mastery < bloom.UnlockMastery {
			continue
		}
		for _, lvl := range bloom.UnlockedLevels(history) {
			if int(lvl) <= m.topic.MaxLevel && lvl > m.highest {
				m.highest = lvl
			}
		}
		candidates = append(candidates, m)
	}
	if len(candidates) == 0 {
		return false, nil
	}
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].last.Before(candidates[j].last) })

	rows, err := s.repos.Coverage.ListByLearner(dbc, learnerID)
	if err != nil {
		return false, fmt.Errorf("load dimension coverage: %w", err)
	}
	covered := map[uuid.UUID]map[string]bool{}
	for _, r := range rows {
		if covered[r.TopicID] == nil {
			covered[r.TopicID] = map[string]bool{}
		}
		covered[r.TopicID][r.Dimension] = true
	}
	for _, m := range candidates {
		dim, ok := cycle.NextDimension(s.policy.Dimensions, covered[m.topic.ID])
		if !ok {
			continue
		}
		out.TopicID = m.topic.ID
		out.TopicName = m.topic.Name
		out.Level = m.highest
		out.Dimension = dim
		out.Reason = fmt.Sprintf("dimension practice: %s on mastered topic %s at level %s", dim, m.topic.Name, m.highest)
		return true, nil
	}
	return false, nil
}

func (s *tutorService) pickNewTopic(ctx context.Context, topics []*types.Topic, arms []*types.Arm, now time.Time, out *Selection) error {
	centrality := s.centrality.Centrality(ctx, topics)
	cands := buildCandidates(topics, arms, centrality)

	seed := s.seed()
	dec, err := bandit.NewSeeded(seed, s.policy.Recency).Select(cands, now)
	out.Samples = dec.Samples
	out.RandomSeed = seed
	if err != nil {
		return err
	}
	tp := topicOf(topics, dec.Chosen.TopicID)
	out.TopicID = dec.Chosen.TopicID
	if tp != nil {
		out.TopicName = tp.Name
	}
	out.Level = dec.Chosen.Level
	out.WinningSample = dec.WinningSample
	out.Boost = dec.Boost
	out.Penalty = dec.Penalty
	out.Reason = dec.Reason
	return nil
}

// buildCandidates turns stored arms into selector candidates and adds a
// virtual candidate for every level without a row yet. Virtual candidates
// rank after all stored ones in creation order.
func buildCandidates(topics []*types.Topic, arms []*types.Arm, centrality map[uuid.UUID]keystone.Centrality) []bandit.Candidate {
	type key struct {
		topic uuid.UUID
		level cognitive.Level
	}
	stored := make(map[key]int, len(arms))
	for i, a := range arms {
		stored[key{a.TopicID, cognitive.Level(a.Level)}] = i
	}

	var cands []bandit.Candidate
	virtual := len(arms)
	for _, tp := range topics {
		history := evidenceFor(arms, tp.ID)
		prio := keystone.Boost(centrality[tp.ID])
		for _, lvl := range cognitive.Levels() {
			if int(lvl) > tp.MaxLevel {
				break
			}
			unlocked := bloom.StateOf(lvl, history) == bloom.Unlocked
			if i, ok := stored[key{tp.ID, lvl}]; ok {
				a := arms[i]
				cands = append(cands, bandit.Candidate{
					TopicID:         tp.ID,
					Level:           lvl,
					Successes:       a.Successes,
					Failures:        a.Failures,
					Mastery:         a.MasteryScore,
					LastPracticedAt: a.LastPracticedAt,
					Order:           i,
					Unlocked:        unlocked,
					Eligible:        tp.Active && a.MasteryScore < mastery.MaxScore,
					Priority:        prio,
				})
				continue
			}
			cands = append(cands, bandit.Candidate{
				TopicID:  tp.ID,
				Level:    lvl,
				Order:    virtual,
				Unlocked: unlocked,
				Eligible: tp.Active,
				Priority: prio,
			})
			virtual++
		}
	}
	return cands
}

func evidenceFor(arms []*types.Arm, topicID uuid.UUID) map[cognitive.Level]bloom.Evidence {
	out := map[cognitive.Level]bloom.Evidence{}
	for _, a := range arms {
		if a.TopicID != topicID {
			continue
		}
		out[cognitive.Level(a.Level)] = bloom.Evidence{
			Present:  true,
			Mastery:  a.MasteryScore,
			Correct:  a.QuestionsCorrect,
			Unlocked: a.Unlocked,
		}
	}
	return out
}

func topicOf(topics []*types.Topic, id uuid.UUID) *types.Topic {
	for _, tp := range topics {
		if tp.ID == id {
			return tp
		}
	}
	return nil
}

func (s *tutorService) SubmitAnswer(ctx context.Context, learnerID uuid.UUID, in AnswerInput) (*AnswerOutcome, error) {
	ctx, span := observability.Tracer().Start(ctx, "tutor.SubmitAnswer")
	defer span.End()

	if learnerID == uuid.Nil {
		return nil, ErrLearnerMissing
	}
	in.normalize()
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	method, err := reward.ParseMethod(in.RecognitionMethod)
	if err != nil {
		return nil, invalidField("recognition_method", err.Error())
	}
	level := cognitive.Level(in.Level)

	release, err := s.lock(ctx, learnerID)
	if err != nil {
		return nil, err
	}
	defer release()

	now := s.now().UTC()
	var out *AnswerOutcome
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}

		found, err := s.repos.Topics.GetByIDs(dbc, []uuid.UUID{in.TopicID})
		if err != nil {
			return fmt.Errorf("load topic: %w", err)
		}
		if len(found) == 0 {
			return ErrTopicNotFound
		}
		topic := found[0]
		if int(level) > topic.MaxLevel {
			return invalidField("level", fmt.Sprintf("exceeds topic max level %d", topic.MaxLevel))
		}

		arms, err := s.repos.Arms.ListByLearnerTopic(dbc, learnerID, topic.ID)
		if err != nil {
			return fmt.Errorf("load arms: %w", err)
		}
		before := evidenceFor(arms, topic.ID)
		if bloom.StateOf(level, before) != bloom.Unlocked {
			return invalidField("level", "is locked")
		}

		pos, err := s.repos.Positions.Get(dbc, learnerID)
		if err != nil {
			return fmt.Errorf("load question position: %w", err)
		}

		var arm *types.Arm
		for _, a := range arms {
			if a.Level == int(level) {
				arm = a
			}
		}
		isNew := arm == nil
		if isNew {
			arm = &types.Arm{
				LearnerID:  learnerID,
				TopicID:    topic.ID,
				Level:      int(level),
				Unlocked:   true,
				UnlockedAt: &now,
			}
			arms = append(arms, arm)
		}

		res := reward.Calculate(reward.Input{
			IsCorrect:      in.IsCorrect,
			Confidence:     in.Confidence,
			Method:         method,
			CurrentMastery: arm.MasteryScore,
			Level:          level,
		})
		st := mastery.Apply(stateOf(arm), in.IsCorrect, res.LearningGain, now)
		applyState(arm, st)
		if !arm.Unlocked {
			arm.Unlocked = true
			arm.UnlockedAt = &now
		}

		if isNew {
			err = s.repos.Arms.Create(dbc, arm)
		} else {
			err = s.repos.Arms.UpdateVersioned(dbc, arm)
		}
		if err != nil {
			return staleOr(err, "write arm")
		}

		after := evidenceFor(arms, topic.ID)
		newly := bloom.NewlyUnlocked(before, after)
		var opened []cognitive.Level
		for _, lvl := range newly {
			if int(lvl) > topic.MaxLevel || lvl == level {
				continue
			}
			if err := s.openLevel(dbc, arms, learnerID, topic.ID, lvl, now); err != nil {
				return err
			}
			opened = append(opened, lvl)
		}

		event := &types.AnswerEvent{
			LearnerID:         learnerID,
			TopicID:           topic.ID,
			Level:             int(level),
			QuestionID:        in.QuestionID,
			Dimension:         in.Dimension,
			IsCorrect:         in.IsCorrect,
			Confidence:        in.Confidence,
			RecognitionMethod: string(method),
			CalibrationScore:  res.CalibrationScore,
			LearningGain:      res.LearningGain,
			OccurredAt:        now,
		}
		if err := s.repos.Answers.Create(dbc, event); err != nil {
			return fmt.Errorf("write answer event: %w", err)
		}

		next := review.NextReview(now, res.CalibrationScore)
		if err := s.repos.Reviews.Upsert(dbc, &types.ReviewItem{
			LearnerID:       learnerID,
			QuestionID:      in.QuestionID,
			TopicID:         topic.ID,
			Level:           int(level),
			Dimension:       in.Dimension,
			LastCalibration: res.CalibrationScore,
			NextReviewAt:    next,
		}); err != nil {
			return fmt.Errorf("schedule review: %w", err)
		}

		if in.Dimension != "" {
			if err := s.repos.Coverage.MarkCovered(dbc, learnerID, topic.ID, in.Dimension, now); err != nil {
				return fmt.Errorf("mark dimension covered: %w", err)
			}
		}

		if err := s.repos.Positions.Advance(dbc, pos, cycle.Advance(pos.Position)); err != nil {
			return staleOr(err, "advance question position")
		}

		open := bloom.UnlockedLevels(evidenceFor(arms, topic.ID))
		bounded := open[:0]
		for _, lvl := range open {
			if int(lvl) <= topic.MaxLevel {
				bounded = append(bounded, lvl)
			}
		}
		if opened == nil {
			opened = []cognitive.Level{}
		}
		out = &AnswerOutcome{
			TopicID:          topic.ID,
			Level:            level,
			NewMastery:       arm.MasteryScore,
			CalibrationScore: res.CalibrationScore,
			LearningGain:     res.LearningGain,
			NextReviewAt:     next,
			UnlockedLevels:   opened,
			OpenLevels:       bounded,
			Position:         pos.Position,
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrStaleWrite) {
			observability.IncStaleWrite()
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	observability.ObserveAnswer(in.IsCorrect, int(level))
	for _, lvl := range out.UnlockedLevels {
		observability.ObserveUnlock(int(lvl))
		s.log.Info("level unlocked", "learner_id", learnerID, "topic_id", out.TopicID, "level", int(lvl))
	}
	return out, nil
}

// openLevel persists an unlock so that later mastery loss below it cannot
// close the level again.
func (s *tutorService) openLevel(dbc dbctx.Context, arms []*types.Arm, learnerID, topicID uuid.UUID, lvl cognitive.Level, now time.Time) error {
	for _, a := range arms {
		if a.Level != int(lvl) {
			continue
		}
		if a.Unlocked {
			return nil
		}
		a.Unlocked = true
		a.UnlockedAt = &now
		return staleOr(s.repos.Arms.UpdateVersioned(dbc, a), "unlock level")
	}
	return staleOr(s.repos.Arms.Create(dbc, &types.Arm{
		LearnerID:  learnerID,
		TopicID:    topicID,
		Level:      int(lvl),
		Unlocked:   true,
		UnlockedAt: &now,
	}), "unlock level")
}

func (s *tutorService) ResetTopic(ctx context.Context, learnerID, topicID uuid.UUID) error {
	if learnerID == uuid.Nil {
		return ErrLearnerMissing
	}
	if topicID == uuid.Nil {
		return invalidField("topic_id", "is required")
	}
	release, err := s.lock(ctx, learnerID)
	if err != nil {
		return err
	}
	defer release()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		found, err := s.repos.Topics.GetByIDs(dbc, []uuid.UUID{topicID})
		if err != nil {
			return fmt.Errorf("load topic: %w", err)
		}
		if len(found) == 0 {
			return ErrTopicNotFound
		}
		deleted := map[string]int64{}
		steps := []struct {
			name string
			fn   func(dbctx.Context, uuid.UUID, uuid.UUID) (int64, error)
		}{
			{"arms", s.repos.Arms.DeleteByLearnerTopic},
			{"reviews", s.repos.Reviews.DeleteByLearnerTopic},
			{"coverage", s.repos.Coverage.DeleteByLearnerTopic},
			{"metrics", s.repos.Metrics.DeleteByLearnerTopic},
			{"answers", s.repos.Answers.DeleteByLearnerTopic},
		}
		for _, st := range steps {
			n, err := st.fn(dbc, learnerID, topicID)
			if err != nil {
				return fmt.Errorf("reset topic %s: %w", st.name, err)
			}
			deleted[st.name] = n
		}
		s.log.Info("topic reset", "learner_id", learnerID, "topic_id", topicID, "deleted", deleted)
		return nil
	})
}

func (s *tutorService) lock(ctx context.Context, learnerID uuid.UUID) (func(), error) {
	noop := func() {}
	if s.locks == nil {
		return noop, nil
	}
	release, err := s.locks.LockLearner(ctx, learnerID, s.policy.LockTTL)
	switch {
	case errors.Is(err, redis.ErrLockHeld):
		return nil, ErrLearnerBusy
	case err != nil:
		// Versioned writes still protect the learner without the lock.
		s.log.Warn("learner lock unavailable", "learner_id", learnerID, "error", err)
		return noop, nil
	}
	return release, nil
}

func staleOr(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, repos.ErrVersionConflict) {
		return fmt.Errorf("%s: %w", what, ErrStaleWrite)
	}
	return fmt.Errorf("%s: %w", what, err)
}

func stateOf(a *types.Arm) mastery.State {
	return mastery.State{
		Score:              a.MasteryScore,
		Successes:          a.Successes,
		Failures:           a.Failures,
		QuestionsAttempted: a.QuestionsAttempted,
		QuestionsCorrect:   a.QuestionsCorrect,
		CurrentStreak:      a.CurrentStreak,
		LastPracticedAt:    a.LastPracticedAt,
	}
}

func applyState(a *types.Arm, st mastery.State) {
	a.MasteryScore = st.Score
	a.Successes = st.Successes
	a.Failures = st.Failures
	a.QuestionsAttempted = st.QuestionsAttempted
	a.QuestionsCorrect = st.QuestionsCorrect
	a.CurrentStreak = st.CurrentStreak
	a.LastPracticedAt = st.LastPracticedAt
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNoArmAvailable):
		return "no_arm"
	default:
		return "error"
	}
}
