package irt

import (
	"math"

	"github.com/yungbote/neurobridge-tutor/internal/learning/cognitive"
)

// MaxStandardError is reported when there is no information at all.
const MaxStandardError = MaxTheta - MinTheta

type Response struct {
	Correct    bool
	Difficulty float64
}

type Estimate struct {
	Theta         float64 `json:"theta"`
	Information   float64 `json:"information"`
	StandardError float64 `json:"standard_error"`
	Responses     int     `json:"responses"`
}

// LevelDifficulty spreads the six cognitive levels evenly over [-1.25, 1.25].
func LevelDifficulty(level cognitive.Level) float64 {
	if !level.Valid() {
		return 0
	}
	return -1.25 + 0.5*float64(level-cognitive.MinLevel)
}

func probability(theta, difficulty float64) float64 {
	return 1 / (1 + math.Exp(-(theta - difficulty)))
}

// EstimateTheta fits a Rasch model by Newton-Raphson starting at theta 0.
// All-correct or all-wrong histories run off to the clamp bounds.
func EstimateTheta(responses []Response) Estimate {
	if len(responses) == 0 {
		return Estimate{StandardError: MaxStandardError}
	}
	theta := 0.0
	for iter := 0; iter < 50; iter++ {
		var grad, info float64
		for _, r := range responses {
			p := probability(theta, r.Difficulty)
			u := 0.0
			if r.Correct {
				u = 1
			}
			grad += u - p
			info += p * (1 - p)
		}
		if info <= 0 {
			break
		}
		step := grad / info
		next := ClampTheta(theta + step)
		done := math.Abs(next-theta) < 1e-6
		theta = next
		if done {
			break
		}
	}
	info := Information(theta, responses)
	se := MaxStandardError
	if info > 0 {
		se = math.Min(MaxStandardError, 1/math.Sqrt(info))
	}
	return Estimate{Theta: theta, Information: info, StandardError: se, Responses: len(responses)}
}

// Information is the Fisher information of responses at theta.
func Information(theta float64, responses []Response) float64 {
	var info float64
	for _, r := range responses {
		p := probability(theta, r.Difficulty)
		info += p * (1 - p)
	}
	return info
}
