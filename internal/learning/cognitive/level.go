// Package cognitive names the six Bloom levels an arm can sit at.
package cognitive

import "fmt"

type Level int

const (
	Remember Level = iota + 1
	Understand
	Apply
	Analyze
	Evaluate
	Create
)

const (
	MinLevel = Remember
	MaxLevel = Create
)

// Levels lists every level in ascending order.
func Levels() []Level {
	return []Level{Remember, Understand, Apply, Analyze, Evaluate, Create}
}

func (l Level) Valid() bool { return l >= MinLevel && l <= MaxLevel }

func (l Level) String() string {
	switch l {
	case Remember:
		return "remember"
	case Understand:
		return "understand"
	case Apply:
		return "apply"
	case Analyze:
		return "analyze"
	case Evaluate:
		return "evaluate"
	case Create:
		return "create"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// Prev returns the level below l and false for level 1.
func (l Level) Prev() (Level, bool) {
	if l <= MinLevel {
		return 0, false
	}
	return l - 1, true
}

// Next returns the level above l and false for the top level.
func (l Level) Next() (Level, bool) {
	if l >= MaxLevel {
		return 0, false
	}
	return l + 1, true
}

func Parse(n int) (Level, error) {
	l := Level(n)
	if !l.Valid() {
		return 0, fmt.Errorf("cognitive level %d out of range [%d,%d]", n, MinLevel, MaxLevel)
	}
	return l, nil
}
