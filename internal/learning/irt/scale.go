// Package irt maps a learner's latent ability onto the 100-900 exam scale and
// estimates that ability from answered questions.
package irt

import "math"

const (
	MinTheta = -3.0
	MaxTheta = 3.0

	MinScore     = 100
	MaxScore     = 900
	PassingScore = 750

	scoreSpan = float64(MaxScore - MinScore)

	bisectIterations = 60
)

// Phi is the standard normal CDF using the Abramowitz and Stegun 26.2.17
// rational approximation (absolute error below 7.5e-8).
func Phi(x float64) float64 {
	if math.IsNaN(x) {
		return 0.5
	}
	if x < 0 {
		return 1 - Phi(-x)
	}
	const (
		p  = 0.2316419
		b1 = 0.319381530
		b2 = -0.356563782
		b3 = 1.781477937
		b4 = -1.821255978
		b5 = 1.330274429
	)
	t := 1 / (1 + p*x)
	pdf := math.Exp(-x*x/2) / math.Sqrt(2*math.Pi)
	poly := t * (b1 + t*(b2+t*(b3+t*(b4+t*b5))))
	return 1 - pdf*poly
}

// scaleOffset shifts the curve so that theta 0 lands on PassingScore.
var scaleOffset = func() float64 {
	target := float64(PassingScore-MinScore) / scoreSpan
	lo, hi := -6.0, 6.0
	for i := 0; i < 200; i++ {
		mid := (lo + hi) / 2
		if Phi(mid) < target {
			lo = mid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2
}()

func ClampTheta(theta float64) float64 {
	if math.IsNaN(theta) {
		return 0
	}
	return math.Max(MinTheta, math.Min(MaxTheta, theta))
}

// ThetaToRawScore is the unrounded exam score for theta.
func ThetaToRawScore(theta float64) float64 {
	return MinScore + Phi(ClampTheta(theta)+scaleOffset)*scoreSpan
}

// ThetaToScore is the integer exam score reported to learners.
func ThetaToScore(theta float64) int {
	return int(math.Round(ThetaToRawScore(theta)))
}

// ScoreToTheta inverts ThetaToRawScore by bisection over [-3, 3]. Scores
// outside the reachable range resolve to the nearest bound.
func ScoreToTheta(score float64) float64 {
	lo, hi := MinTheta, MaxTheta
	if score <= ThetaToRawScore(lo) {
		return lo
	}
	if score >= ThetaToRawScore(hi) {
		return hi
	}
	for i := 0; i < bisectIterations; i++ {
		mid := (lo + hi) / 2
		if ThetaToRawScore(mid) < score {
			lo = mid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2
}

// PassProbability is the chance the true ability clears the passing score
// given a point estimate and its standard error.
func PassProbability(theta, standardError float64) float64 {
	cut := ScoreToTheta(PassingScore)
	if standardError <= 0 || math.IsNaN(standardError) {
		if theta >= cut {
			return 1
		}
		return 0
	}
	return Phi((theta - cut) / standardError)
}

func Reliability(information float64) float64 {
	if information <= 0 || math.IsNaN(information) {
		return 0
	}
	return math.Max(0, math.Min(1, 1-1/information))
}
