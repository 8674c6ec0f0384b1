package reward

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/neurobridge-tutor/internal/learning/cognitive"
)

func TestCalibrationBoundedForAllInputs(t *testing.T) {
	for _, correct := range []bool{true, false} {
		for conf := -2; conf <= 5; conf++ {
			for _, m := range Methods() {
				for _, lvl := range cognitive.Levels() {
					r := Calculate(Input{IsCorrect: correct, Confidence: conf, Method: m, Level: lvl})
					assert.GreaterOrEqual(t, r.CalibrationScore, MinCalibration)
					assert.LessOrEqual(t, r.CalibrationScore, MaxCalibration)
				}
			}
		}
	}
}

func TestOverconfidencePenalisedMoreThanUnderconfidence(t *testing.T) {
	overconfident := Calculate(Input{IsCorrect: false, Confidence: 3, Method: Memory, Level: cognitive.Remember})
	underconfident := Calculate(Input{IsCorrect: true, Confidence: 1, Method: Memory, Level: cognitive.Remember})
	ideal := Calculate(Input{IsCorrect: true, Confidence: 3, Method: Memory, Level: cognitive.Remember})
	humble := Calculate(Input{IsCorrect: false, Confidence: 1, Method: Memory, Level: cognitive.Remember})

	assert.Equal(t, 1.5, ideal.CalibrationScore)
	assert.Equal(t, -1.5, overconfident.CalibrationScore)
	assert.Greater(t, underconfident.CalibrationScore, 0.0)
	assert.Less(t, ideal.CalibrationScore-underconfident.CalibrationScore, 0-overconfident.CalibrationScore)
	assert.InDelta(t, 0, humble.CalibrationScore, 0.2)
}

func TestRandomGuessCapsPositiveScore(t *testing.T) {
	guess := Calculate(Input{IsCorrect: true, Confidence: 3, Method: RandomGuess, Level: cognitive.Remember})
	educated := Calculate(Input{IsCorrect: true, Confidence: 3, Method: EducatedGuess, Level: cognitive.Remember})
	memory := Calculate(Input{IsCorrect: true, Confidence: 3, Method: Memory, Level: cognitive.Remember})

	assert.Equal(t, 0.25, guess.CalibrationScore)
	assert.Less(t, guess.CalibrationScore, educated.CalibrationScore)
	assert.Less(t, educated.CalibrationScore, memory.CalibrationScore)

	// the cap never softens a wrong answer
	wrongGuess := Calculate(Input{IsCorrect: false, Confidence: 3, Method: RandomGuess, Level: cognitive.Remember})
	assert.Equal(t, -1.5, wrongGuess.CalibrationScore)
}

func TestLearningGainShrinksWithLevel(t *testing.T) {
	prev := 0.0
	for i, lvl := range cognitive.Levels() {
		r := Calculate(Input{IsCorrect: true, Confidence: 3, Method: Memory, Level: lvl})
		if i > 0 {
			assert.Less(t, r.LearningGain, prev, "level %s", lvl)
		}
		prev = r.LearningGain
	}
	top := Calculate(Input{IsCorrect: true, Confidence: 3, Method: Memory, Level: cognitive.Remember})
	assert.Equal(t, 10.0, top.LearningGain)
}

func TestParseMethod(t *testing.T) {
	m, err := ParseMethod(" Educated_Guess ")
	require.NoError(t, err)
	assert.Equal(t, EducatedGuess, m)

	_, err = ParseMethod("telepathy")
	assert.Error(t, err)
}
