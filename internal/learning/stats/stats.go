// Package stats summarizes a learner's calibration trajectory on a topic.
package stats

import "math"

const (
	MinTrendSlope      = 0.001
	MaxQuestionsToGoal = 1000
	MasteryTarget      = 1.0
)

// Summary holds the mean, population standard deviation and the OLS trend of
// a series over its index. Slope and RSquared are 0 when the regression is
// degenerate (fewer than two points, or no spread in x or y).
type Summary struct {
	N        int
	Mean     float64
	StdDev   float64
	Slope    float64
	RSquared float64
}

func (s Summary) Degenerate() bool { return s.N < 2 }

func Summarize(values []float64) Summary {
	n := len(values)
	out := Summary{N: n}
	if n == 0 {
		return out
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(n)
	out.Mean = mean

	var ss float64
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	out.StdDev = math.Sqrt(ss / float64(n))
	if n < 2 {
		return out
	}

	xMean := float64(n-1) / 2
	var sxx, sxy float64
	for i, v := range values {
		dx := float64(i) - xMean
		sxx += dx * dx
		sxy += dx * (v - mean)
	}
	if sxx == 0 {
		return out
	}
	out.Slope = sxy / sxx
	if ss == 0 {
		out.Slope = 0
		return out
	}
	intercept := mean - out.Slope*xMean
	var sse float64
	for i, v := range values {
		r := v - (intercept + out.Slope*float64(i))
		sse += r * r
	}
	out.RSquared = math.Max(0, math.Min(1, 1-sse/ss))
	return out
}

// QuestionsToMastery projects how many more answers the current trend needs
// to lift the mean to MasteryTarget. It returns nil when the trend is flat,
// falling, or the target is already met.
func QuestionsToMastery(mean, slope float64) *int {
	if slope <= MinTrendSlope || mean >= MasteryTarget {
		return nil
	}
	q := math.Ceil((MasteryTarget - mean) / slope)
	if q > MaxQuestionsToGoal {
		q = MaxQuestionsToGoal
	}
	n := int(q)
	return &n
}
