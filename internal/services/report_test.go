package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/neurobridge-tutor/internal/data/repos/testutil"
)

func TestReportsBeforeAndAfterRecalculation(t *testing.T) {
	h := newTutorHarness(t, nil, nil)
	reports := NewReportService(testutil.Logger(t), h.repos)
	ctx := context.Background()

	ab, err := reports.Ability(ctx, h.learner, "math")
	if err != nil {
		t.Fatalf("Ability: %v", err)
	}
	if ab.Status != StatusInsufficientData || ab.PassingScore != 750 {
		t.Fatalf("empty ability report: %+v", ab)
	}

	h.answer(t, 1, true, "q1", "")
	topics, err := reports.TopicMetrics(ctx, h.learner)
	if err != nil {
		t.Fatalf("TopicMetrics: %v", err)
	}
	if len(topics) != 1 || topics[0].Status != StatusInsufficientData || topics[0].TopicName != h.topic.Name {
		t.Fatalf("single-answer topic report: %+v", topics)
	}

	for i := 2; i <= 4; i++ {
		h.answer(t, 1, i%2 == 0, fmt.Sprintf("q%d", i), "")
	}
	metrics := NewMetricsService(h.db, testutil.Logger(t), h.repos, nil, DefaultPolicy(), 1)
	if _, err := metrics.Recalculate(ctx, &h.learner); err != nil {
		t.Fatalf("Recalculate: %v", err)
	}

	topics, err = reports.TopicMetrics(ctx, h.learner)
	if err != nil {
		t.Fatalf("TopicMetrics: %v", err)
	}
	if len(topics) != 1 || topics[0].Status != StatusReady || topics[0].EventCount != 4 {
		t.Fatalf("topic report after recalc: %+v", topics[0])
	}

	ab, err = reports.Ability(ctx, h.learner, "math")
	if err != nil {
		t.Fatalf("Ability: %v", err)
	}
	if ab.Status != StatusReady || ab.ResponseCount != 4 {
		t.Fatalf("ability report after recalc: %+v", ab)
	}
	if ab.ExamScore < 100 || ab.ExamScore > 900 {
		t.Fatalf("exam score out of range: %d", ab.ExamScore)
	}
	if ab.PassProbability < 0 || ab.PassProbability > 1 {
		t.Fatalf("pass probability out of range: %v", ab.PassProbability)
	}
}

func TestAbilityReportRequiresSubject(t *testing.T) {
	h := newTutorHarness(t, nil, nil)
	reports := NewReportService(testutil.Logger(t), h.repos)
	if _, err := reports.Ability(context.Background(), h.learner, " "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("want ErrInvalidInput, got %v", err)
	}
	if _, err := reports.TopicMetrics(context.Background(), uuid.Nil); !errors.Is(err, ErrLearnerMissing) {
		t.Fatalf("want ErrLearnerMissing, got %v", err)
	}
}
