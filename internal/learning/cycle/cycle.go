// Package cycle interleaves new material, reviews and dimension practice
// over a repeating ten-question cycle.
package cycle

import "fmt"

const Length = 10

type SlotKind string

const (
	NewTopic          SlotKind = "new_topic"
	SpacedRepetition  SlotKind = "spaced_repetition"
	DimensionPractice SlotKind = "dimension_practice"
)

func (k SlotKind) Valid() bool {
	switch k {
	case NewTopic, SpacedRepetition, DimensionPractice:
		return true
	}
	return false
}

func ParseSlotKind(s string) (SlotKind, error) {
	k := SlotKind(s)
	if !k.Valid() {
		return "", fmt.Errorf("unknown slot kind %q", s)
	}
	return k, nil
}

// Normalize folds any position into 1..10.
func Normalize(position int) int {
	m := (position - 1) % Length
	if m < 0 {
		m += Length
	}
	return m + 1
}

// SlotFor returns the slot served at position: 1-7 new topic, 8-9 spaced
// repetition, 10 dimension practice.
func SlotFor(position int) SlotKind {
	switch p := Normalize(position); {
	case p <= 7:
		return NewTopic
	case p <= 9:
		return SpacedRepetition
	default:
		return DimensionPractice
	}
}

func Advance(position int) int {
	return Normalize(Normalize(position) + 1)
}

// NextDimension returns the first dimension in all not present in covered,
// or false once every dimension has been covered.
func NextDimension(all []string, covered map[string]bool) (string, bool) {
	for _, d := range all {
		if !covered[d] {
			return d, true
		}
	}
	return "", false
}
