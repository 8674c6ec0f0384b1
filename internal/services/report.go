package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	types "github.com/yungbote/neurobridge-tutor/internal/domain"
	"github.com/yungbote/neurobridge-tutor/internal/learning/irt"
	"github.com/yungbote/neurobridge-tutor/internal/platform/dbctx"
	"github.com/yungbote/neurobridge-tutor/internal/platform/logger"
)

const (
	StatusReady            = "ready"
	StatusInsufficientData = "insufficient_data"
)

type AbilityReport struct {
	Subject         string  `json:"subject"`
	Status          string  `json:"status"`
	Theta           float64 `json:"theta"`
	StandardError   float64 `json:"standard_error"`
	Reliability     float64 `json:"reliability"`
	ExamScore       int     `json:"exam_score"`
	PassingScore    int     `json:"passing_score"`
	PassProbability float64 `json:"pass_probability"`
	ResponseCount   int     `json:"response_count"`
}

type TopicReport struct {
	TopicID            uuid.UUID `json:"topic_id"`
	TopicName          string    `json:"topic_name"`
	Status             string    `json:"status"`
	EventCount         int       `json:"event_count"`
	Mean               float64   `json:"mean"`
	StdDev             float64   `json:"std_dev"`
	Slope              float64   `json:"slope"`
	RSquared           float64   `json:"r_squared"`
	QuestionsToMastery *int      `json:"questions_to_mastery"`
}

// ReportService exposes the derived tables. Reports only ever read what the
// recalculation job wrote; they never recompute on the request path.
type ReportService interface {
	Ability(ctx context.Context, learnerID uuid.UUID, subject string) (*AbilityReport, error)
	TopicMetrics(ctx context.Context, learnerID uuid.UUID) ([]*TopicReport, error)
}

type reportService struct {
	log   *logger.Logger
	repos TutorRepos
}

func NewReportService(log *logger.Logger, r TutorRepos) ReportService {
	return &reportService{log: log.With("service", "ReportService"), repos: r}
}

func (s *reportService) Ability(ctx context.Context, learnerID uuid.UUID, subject string) (*AbilityReport, error) {
	if learnerID == uuid.Nil {
		return nil, ErrLearnerMissing
	}
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return nil, invalidField("subject", "is required")
	}
	row, err := s.repos.Abilities.Get(dbctx.Context{Ctx: ctx}, learnerID, subject)
	if err != nil {
		return nil, fmt.Errorf("load ability estimate: %w", err)
	}
	if row == nil || row.ResponseCount == 0 {
		return &AbilityReport{
			Subject:       subject,
			Status:        StatusInsufficientData,
			StandardError: irt.MaxStandardError,
			PassingScore:  irt.PassingScore,
			ExamScore:     irt.ThetaToScore(0),
		}, nil
	}
	return abilityReport(row), nil
}

func abilityReport(row *types.AbilityEstimate) *AbilityReport {
	return &AbilityReport{
		Subject:         row.Subject,
		Status:          StatusReady,
		Theta:           row.Theta,
		StandardError:   row.StandardError,
		Reliability:     row.Reliability,
		ExamScore:       row.ExamScore,
		PassingScore:    irt.PassingScore,
		PassProbability: row.PassProbability,
		ResponseCount:   row.ResponseCount,
	}
}

// TopicMetrics lists every topic the learner has an arm on. Topics with fewer
// than two answers report insufficient_data instead of a regression.
func (s *reportService) TopicMetrics(ctx context.Context, learnerID uuid.UUID) ([]*TopicReport, error) {
	if learnerID == uuid.Nil {
		return nil, ErrLearnerMissing
	}
	dbc := dbctx.Context{Ctx: ctx}
	arms, err := s.repos.Arms.ListByLearner(dbc, learnerID)
	if err != nil {
		return nil, fmt.Errorf("load arms: %w", err)
	}
	metrics, err := s.repos.Metrics.ListByLearner(dbc, learnerID)
	if err != nil {
		return nil, fmt.Errorf("load topic metrics: %w", err)
	}
	byTopic := make(map[uuid.UUID]*types.TopicMetric, len(metrics))
	for _, m := range metrics {
		byTopic[m.TopicID] = m
	}

	seen := map[uuid.UUID]bool{}
	var ids []uuid.UUID
	for _, a := range arms {
		if !seen[a.TopicID] {
			seen[a.TopicID] = true
			ids = append(ids, a.TopicID)
		}
	}
	for _, m := range metrics {
		if !seen[m.TopicID] {
			seen[m.TopicID] = true
			ids = append(ids, m.TopicID)
		}
	}
	topics, err := s.repos.Topics.GetByIDs(dbc, ids)
	if err != nil {
		return nil, fmt.Errorf("load topics: %w", err)
	}
	names := make(map[uuid.UUID]string, len(topics))
	for _, tp := range topics {
		names[tp.ID] = tp.Name
	}

	out := make([]*TopicReport, 0, len(ids))
	for _, id := range ids {
		rep := &TopicReport{TopicID: id, TopicName: names[id], Status: StatusInsufficientData}
		if m, ok := byTopic[id]; ok && m.EventCount >= 2 {
			rep.Status = StatusReady
			rep.EventCount = m.EventCount
			rep.Mean = m.Mean
			rep.StdDev = m.StdDev
			rep.Slope = m.Slope
			rep.RSquared = m.RSquared
			rep.QuestionsToMastery = m.QuestionsToMastery
		}
		out = append(out, rep)
	}
	return out, nil
}
