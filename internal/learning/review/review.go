// Package review schedules when an answered question should come back.
package review

import (
	"math"
	"time"

	"github.com/yungbote/neurobridge-tutor/internal/learning/reward"
)

type bucket struct {
	floor    float64
	interval time.Duration
}

// Ordered from the highest floor down; the first floor <= score wins.
var buckets = []bucket{
	{1.0, 7 * 24 * time.Hour},
	{0.5, 3 * 24 * time.Hour},
	{0.0, 24 * time.Hour},
	{-0.5, 12 * time.Hour},
	{-1.0, 8 * time.Hour},
	{math.Inf(-1), 4 * time.Hour},
}

// Interval maps a calibration score to a review delay. Scores outside
// [-1.5, 1.5] are clamped first.
func Interval(calibration float64) time.Duration {
	s := reward.ClampCalibration(calibration)
	for _, b := range buckets {
		if s >= b.floor {
			return b.interval
		}
	}
	return buckets[len(buckets)-1].interval
}

func NextReview(now time.Time, calibration float64) time.Time {
	return now.UTC().Add(Interval(calibration))
}

func IsDue(nextReviewAt, now time.Time) bool {
	return !nextReviewAt.After(now)
}
