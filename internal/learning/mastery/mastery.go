// Package mastery applies learning gains to a single arm's running state.
package mastery

import (
	"math"
	"time"
)

const (
	MinScore = -100.0
	MaxScore = 100.0
)

// State is the mutable part of an arm that every answer touches.
type State struct {
	Score              float64
	Successes          int
	Failures           int
	QuestionsAttempted int
	QuestionsCorrect   int
	CurrentStreak      int
	LastPracticedAt    *time.Time
}

// UpdateMastery clamps current+gain to [-100, 100] at two-decimal precision.
// Mastery is allowed to go negative: confident wrong answers erode trust.
func UpdateMastery(current, gain float64) float64 {
	if math.IsNaN(gain) {
		gain = 0
	}
	next := math.Max(MinScore, math.Min(MaxScore, current+gain))
	return Round2(next)
}

// Apply folds one answer into s. It is not idempotent: replaying the same
// answer twice double-counts it, so rebuilds must start from a zero State.
func Apply(s State, isCorrect bool, gain float64, at time.Time) State {
	s.Score = UpdateMastery(s.Score, gain)
	s.QuestionsAttempted++
	if isCorrect {
		s.QuestionsCorrect++
		s.Successes++
		s.CurrentStreak++
	} else {
		s.Failures++
		s.CurrentStreak = 0
	}
	t := at.UTC()
	s.LastPracticedAt = &t
	return s
}

func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
