// Package reward turns a single answer into a calibration score and the
// learning gain the mastery tracker applies.
package reward

import (
	"math"

	"github.com/yungbote/neurobridge-tutor/internal/learning/cognitive"
)

const (
	MinCalibration = -1.5
	MaxCalibration = 1.5

	MinConfidence = 1
	MaxConfidence = 3
)

type Input struct {
	IsCorrect      bool
	Confidence     int
	Method         RecognitionMethod
	CurrentMastery float64
	Level          cognitive.Level
}

type Result struct {
	CalibrationScore float64
	LearningGain     float64
}

// calibration[correct][confidence-1]
var calibration = [2][3]float64{
	{-0.1, -0.75, -1.5}, // incorrect: low, medium, high confidence
	{0.5, 1.0, 1.5},     // correct
}

// Calculate is pure. Confidence outside 1..3 is clamped; callers are expected
// to have rejected it already.
func Calculate(in Input) Result {
	conf := in.Confidence
	if conf < MinConfidence {
		conf = MinConfidence
	}
	if conf > MaxConfidence {
		conf = MaxConfidence
	}
	row := 0
	if in.IsCorrect {
		row = 1
	}
	score := calibration[row][conf-1]
	if score > 0 {
		score = math.Min(score, in.Method.positiveCap())
	}
	score = ClampCalibration(score)
	return Result{
		CalibrationScore: score,
		LearningGain:     score / MaxCalibration * MaxGain(in.Level),
	}
}

// MaxGain is the mastery movement of a perfectly calibrated answer at level.
// Higher levels need more evidence, so the step shrinks.
func MaxGain(level cognitive.Level) float64 {
	switch {
	case level <= cognitive.Remember:
		return 10
	case level >= cognitive.Create:
		return 5
	default:
		return 10 - float64(level-cognitive.Remember)
	}
}

func ClampCalibration(s float64) float64 {
	if math.IsNaN(s) {
		return 0
	}
	return math.Max(MinCalibration, math.Min(MaxCalibration, s))
}
