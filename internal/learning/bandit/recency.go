package bandit

import (
	"math"
	"time"
)

// RecencyPenalty discourages re-serving an arm that was just practiced.
// The penalty is Max right after practice and halves every HalfLife.
type RecencyPenalty struct {
	Max      float64       `yaml:"max"`
	HalfLife time.Duration `yaml:"half_life"`
}

func DefaultRecencyPenalty() RecencyPenalty {
	return RecencyPenalty{Max: 0.2, HalfLife: 10 * time.Minute}
}

// At returns the penalty for an arm last practiced at last, evaluated at now.
// Never-practiced arms carry no penalty.
func (p RecencyPenalty) At(last *time.Time, now time.Time) float64 {
	if last == nil || p.Max <= 0 {
		return 0
	}
	elapsed := now.Sub(*last)
	if elapsed < 0 {
		elapsed = 0
	}
	if p.HalfLife <= 0 {
		if elapsed == 0 {
			return p.Max
		}
		return 0
	}
	return p.Max * math.Exp2(-elapsed.Seconds()/p.HalfLife.Seconds())
}
