package irt

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/neurobridge-tutor/internal/learning/cognitive"
)

func TestPhiKnownValues(t *testing.T) {
	assert.InDelta(t, 0.5, Phi(0), 1e-7)
	assert.InDelta(t, 0.841344746, Phi(1), 1e-6)
	assert.InDelta(t, 0.158655254, Phi(-1), 1e-6)
	assert.InDelta(t, 0.977249868, Phi(2), 1e-6)
	assert.InDelta(t, 0.998650102, Phi(3), 1e-6)
	for x := -5.0; x <= 5; x += 0.1 {
		assert.InDelta(t, 1.0, Phi(x)+Phi(-x), 1e-9)
	}
}

func TestThetaZeroIsPassingScore(t *testing.T) {
	assert.Equal(t, 750, ThetaToScore(0))
	assert.InDelta(t, 750, ThetaToRawScore(0), 1e-6)
	assert.InDelta(t, 0, ScoreToTheta(PassingScore), 1e-6)
}

func TestScoreRangeAndMonotone(t *testing.T) {
	prev := ThetaToScore(-10)
	assert.GreaterOrEqual(t, prev, MinScore)
	for th := -3.0; th <= 3.0; th += 0.05 {
		s := ThetaToScore(th)
		require.GreaterOrEqual(t, s, MinScore)
		require.LessOrEqual(t, s, MaxScore)
		require.GreaterOrEqual(t, s, prev)
		prev = s
	}
	assert.Equal(t, ThetaToScore(3), ThetaToScore(42), "theta is clamped")
	assert.Equal(t, ThetaToScore(-3), ThetaToScore(-42))
}

func TestRoundTrip(t *testing.T) {
	for th := -3.0; th <= 3.0; th += 0.01 {
		got := ScoreToTheta(ThetaToRawScore(th))
		require.InDelta(t, th, got, 0.01, "theta %v", th)
	}
}

func TestIntegerScoresInvert(t *testing.T) {
	lo := int(math.Ceil(ThetaToRawScore(MinTheta)))
	hi := int(math.Floor(ThetaToRawScore(MaxTheta)))
	for s := lo; s <= hi; s++ {
		require.Equal(t, s, ThetaToScore(ScoreToTheta(float64(s))), "score %d", s)
	}
	assert.Equal(t, MinTheta, ScoreToTheta(0))
	assert.Equal(t, MaxTheta, ScoreToTheta(5000))
}

func TestPassProbability(t *testing.T) {
	assert.InDelta(t, 0.5, PassProbability(0, 0.4), 1e-6)
	assert.Greater(t, PassProbability(1, 0.4), 0.9)
	assert.Less(t, PassProbability(-1, 0.4), 0.1)
	assert.Equal(t, 1.0, PassProbability(0.2, 0))
	assert.Equal(t, 0.0, PassProbability(-0.2, 0))
	// A wider error band pulls the probability toward a coin flip.
	assert.Less(t, PassProbability(1, 2), PassProbability(1, 0.5))
}

func TestReliability(t *testing.T) {
	assert.Equal(t, 0.0, Reliability(0))
	assert.Equal(t, 0.0, Reliability(-3))
	assert.Equal(t, 0.0, Reliability(0.5))
	assert.InDelta(t, 0.5, Reliability(2), 1e-12)
	assert.InDelta(t, 0.9, Reliability(10), 1e-12)
}

func TestEstimateTheta(t *testing.T) {
	empty := EstimateTheta(nil)
	assert.Equal(t, 0.0, empty.Theta)
	assert.Equal(t, MaxStandardError, empty.StandardError)

	var all []Response
	for i := 0; i < 12; i++ {
		all = append(all, Response{Correct: true, Difficulty: LevelDifficulty(cognitive.Apply)})
	}
	assert.Equal(t, MaxTheta, EstimateTheta(all).Theta)

	var mixed []Response
	for i := 0; i < 20; i++ {
		mixed = append(mixed, Response{Correct: i%2 == 0, Difficulty: 0.25})
	}
	est := EstimateTheta(mixed)
	assert.InDelta(t, 0.25, est.Theta, 1e-4, "half right at difficulty b lands on b")
	assert.InDelta(t, 5.0, est.Information, 1e-3)
	assert.InDelta(t, 1/math.Sqrt(5), est.StandardError, 1e-3)
	assert.Equal(t, 20, est.Responses)

	var strong []Response
	for i := 0; i < 20; i++ {
		strong = append(strong, Response{Correct: i%4 != 0, Difficulty: 0})
	}
	assert.Greater(t, EstimateTheta(strong).Theta, est.Theta)
}

func TestLevelDifficulty(t *testing.T) {
	assert.Equal(t, -1.25, LevelDifficulty(cognitive.Remember))
	assert.Equal(t, 1.25, LevelDifficulty(cognitive.Create))
	assert.Equal(t, 0.0, LevelDifficulty(cognitive.Level(9)))
}
