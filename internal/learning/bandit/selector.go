// Package bandit picks the next (topic, level) arm with Thompson sampling.
package bandit

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/neurobridge-tutor/internal/learning/cognitive"
	"github.com/yungbote/neurobridge-tutor/internal/learning/keystone"
)

var ErrNoArmAvailable = errors.New("no arm available")

// Candidate is one arm as the selector sees it. Order is the arm's creation
// rank and breaks ties after mastery.
type Candidate struct {
	TopicID         uuid.UUID
	Level           cognitive.Level
	Successes       int
	Failures        int
	Mastery         float64
	LastPracticedAt *time.Time
	Order           int
	Unlocked        bool
	Eligible        bool
	Priority        keystone.Priority
}

type Sample struct {
	TopicID  uuid.UUID       `json:"topic_id"`
	Level    cognitive.Level `json:"level"`
	Raw      float64         `json:"raw"`
	Boost    float64         `json:"boost"`
	Penalty  float64         `json:"penalty"`
	Adjusted float64         `json:"adjusted"`
}

type Decision struct {
	Chosen        Candidate
	Samples       []Sample
	WinningSample float64
	Boost         float64
	Penalty       float64
	Reason        string
}

// Selector is not safe for concurrent use; build one per decision.
type Selector struct {
	rng     *rand.Rand
	penalty RecencyPenalty
}

func NewSelector(rng *rand.Rand, penalty RecencyPenalty) *Selector {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Selector{rng: rng, penalty: penalty}
}

// NewSeeded returns a selector whose draws are fully determined by seed.
func NewSeeded(seed uint64, penalty RecencyPenalty) *Selector {
	return NewSelector(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)), penalty)
}

// Select samples every unlocked, eligible candidate once and returns the
// highest adjusted sample.
func (s *Selector) Select(cands []Candidate, now time.Time) (Decision, error) {
	var (
		best    = -1
		bestAdj float64
		samples = make([]Sample, 0, len(cands))
		pool    = make([]Candidate, 0, len(cands))
	)
	for _, c := range cands {
		if !c.Unlocked || !c.Eligible {
			continue
		}
		raw := Beta(s.rng, float64(c.Successes+1), float64(c.Failures+1))
		pen := s.penalty.At(c.LastPracticedAt, now)
		adj := raw + c.Priority.Boost - pen
		samples = append(samples, Sample{
			TopicID:  c.TopicID,
			Level:    c.Level,
			Raw:      raw,
			Boost:    c.Priority.Boost,
			Penalty:  pen,
			Adjusted: adj,
		})
		pool = append(pool, c)
		i := len(pool) - 1
		if best < 0 || beats(adj, c, bestAdj, pool[best]) {
			best = i
			bestAdj = adj
		}
	}
	if best < 0 {
		return Decision{Samples: samples}, ErrNoArmAvailable
	}
	win := samples[best]
	chosen := pool[best]
	return Decision{
		Chosen:        chosen,
		Samples:       samples,
		WinningSample: win.Adjusted,
		Boost:         win.Boost,
		Penalty:       win.Penalty,
		Reason: fmt.Sprintf("thompson sample %.3f (raw %.3f, %s %+.2f, recency -%.3f) at level %s",
			win.Adjusted, win.Raw, chosen.Priority.Reason, win.Boost, win.Penalty, chosen.Level),
	}, nil
}

func beats(adj float64, c Candidate, bestAdj float64, best Candidate) bool {
	if adj != bestAdj {
		return adj > bestAdj
	}
	if c.Mastery != best.Mastery {
		return c.Mastery < best.Mastery
	}
	return c.Order < best.Order
}
