package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/neurobridge-tutor/internal/domain"
)

func SeedTopic(tb testing.TB, ctx context.Context, tx *gorm.DB, subject, key string, parentID *uuid.UUID) *types.Topic {
	tb.Helper()
	tp := &types.Topic{
		ID:       uuid.New(),
		Subject:  subject,
		Key:      key,
		Name:     key,
		ParentID: parentID,
		MaxLevel: 6,
		Active:   true,
	}
	if err := tx.WithContext(ctx).Create(tp).Error; err != nil {
		tb.Fatalf("seed topic: %v", err)
	}
	return tp
}

func SeedArm(tb testing.TB, ctx context.Context, tx *gorm.DB, learnerID, topicID uuid.UUID, level int, mastery float64, correct int) *types.Arm {
	tb.Helper()
	a := &types.Arm{
		ID:                 uuid.New(),
		LearnerID:          learnerID,
		TopicID:            topicID,
		Level:              level,
		Successes:          correct,
		MasteryScore:       mastery,
		QuestionsAttempted: correct,
		QuestionsCorrect:   correct,
		Unlocked:           level == 1,
	}
	if err := tx.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed arm: %v", err)
	}
	return a
}

func SeedAnswer(tb testing.TB, ctx context.Context, tx *gorm.DB, learnerID, topicID uuid.UUID, level int, correct bool, calibration float64, at time.Time) *types.AnswerEvent {
	tb.Helper()
	ev := &types.AnswerEvent{
		ID:                uuid.New(),
		LearnerID:         learnerID,
		TopicID:           topicID,
		Level:             level,
		QuestionID:        uuid.NewString(),
		IsCorrect:         correct,
		Confidence:        3,
		RecognitionMethod: "memory",
		CalibrationScore:  calibration,
		OccurredAt:        at,
	}
	if err := tx.WithContext(ctx).Create(ev).Error; err != nil {
		tb.Fatalf("seed answer: %v", err)
	}
	return ev
}
