// Package bloom gates cognitive levels: a level opens once the level below it
// is mastered, and never closes again.
package bloom

import (
	"sort"

	"github.com/yungbote/neurobridge-tutor/internal/learning/cognitive"
)

const (
	UnlockMastery = 80.0
	UnlockCorrect = 3
)

type State int

const (
	Locked State = iota
	Unlocked
)

func (s State) String() string {
	if s == Unlocked {
		return "unlocked"
	}
	return "locked"
}

// Evidence is what the machine needs to know about one level of a topic.
// A zero Evidence (Present=false) means the learner never answered there.
type Evidence struct {
	Present  bool
	Mastery  float64
	Correct  int
	Unlocked bool
}

// CanUnlock reports whether prev satisfies the guard for the level above it.
func CanUnlock(prev Evidence) bool {
	return prev.Present && prev.Mastery >= UnlockMastery && prev.Correct >= UnlockCorrect
}

// StateOf derives the state of level from the topic's history. Level 1 is
// always open, a level already marked unlocked stays unlocked, and missing
// evidence below keeps it locked.
func StateOf(level cognitive.Level, history map[cognitive.Level]Evidence) State {
	if level <= cognitive.MinLevel {
		return Unlocked
	}
	if cur, ok := history[level]; ok && cur.Unlocked {
		return Unlocked
	}
	prev, _ := level.Prev()
	if CanUnlock(history[prev]) {
		return Unlocked
	}
	return Locked
}

// UnlockedLevels returns every open level for one topic, ascending.
func UnlockedLevels(history map[cognitive.Level]Evidence) []cognitive.Level {
	out := make([]cognitive.Level, 0, len(cognitive.Levels()))
	for _, lvl := range cognitive.Levels() {
		if StateOf(lvl, history) == Unlocked {
			out = append(out, lvl)
		}
	}
	return out
}

// NewlyUnlocked lists levels open in after but not in before.
func NewlyUnlocked(before, after map[cognitive.Level]Evidence) []cognitive.Level {
	was := map[cognitive.Level]bool{}
	for _, l := range UnlockedLevels(before) {
		was[l] = true
	}
	var out []cognitive.Level
	for _, l := range UnlockedLevels(after) {
		if !was[l] {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
