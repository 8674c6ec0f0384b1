package review

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIntervalBuckets(t *testing.T) {
	h := time.Hour
	d := 24 * h
	cases := []struct {
		score float64
		want  time.Duration
	}{
		{1.5, 7 * d},
		{1.0, 7 * d},
		{0.99, 3 * d},
		{0.5, 3 * d},
		{0.49, d},
		{0.0, d},
		{-0.01, 12 * h},
		{-0.5, 12 * h},
		{-0.75, 8 * h},
		{-1.0, 8 * h},
		{-1.3, 4 * h},
		{-1.5, 4 * h},
		{9, 7 * d},
		{-9, 4 * h},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Interval(tc.score), "score %v", tc.score)
	}
}

func TestNextReviewAndDue(t *testing.T) {
	now := time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)
	next := NextReview(now, -1.3)
	assert.Equal(t, now.Add(4*time.Hour), next)
	assert.False(t, IsDue(next, now))
	assert.True(t, IsDue(next, next))
	assert.True(t, IsDue(next, next.Add(time.Second)))
}

func TestIntervalMonotoneInScore(t *testing.T) {
	prev := Interval(-1.5)
	for s := -1.5; s <= 1.5; s += 0.01 {
		cur := Interval(s)
		assert.GreaterOrEqual(t, cur, prev, "score %v", s)
		prev = cur
	}
}
