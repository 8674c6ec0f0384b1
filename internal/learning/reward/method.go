package reward

import (
	"fmt"
	"strings"
)

// RecognitionMethod is how the learner says they reached the answer.
type RecognitionMethod string

const (
	Memory        RecognitionMethod = "memory"
	Recognition   RecognitionMethod = "recognition"
	EducatedGuess RecognitionMethod = "educated_guess"
	RandomGuess   RecognitionMethod = "random_guess"
)

func Methods() []RecognitionMethod {
	return []RecognitionMethod{Memory, Recognition, EducatedGuess, RandomGuess}
}

func ParseMethod(s string) (RecognitionMethod, error) {
	switch m := RecognitionMethod(strings.ToLower(strings.TrimSpace(s))); m {
	case Memory, Recognition, EducatedGuess, RandomGuess:
		return m, nil
	default:
		return "", fmt.Errorf("unknown recognition method %q", s)
	}
}

// positiveCap bounds the calibration score a method can earn on a correct
// answer. A lucky guess must never read as mastery.
func (m RecognitionMethod) positiveCap() float64 {
	switch m {
	case Memory:
		return MaxCalibration
	case Recognition:
		return 1.25
	case EducatedGuess:
		return 0.75
	case RandomGuess:
		return 0.25
	default:
		return 0
	}
}
