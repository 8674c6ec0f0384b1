package bandit

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/neurobridge-tutor/internal/learning/cognitive"
	"github.com/yungbote/neurobridge-tutor/internal/learning/keystone"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestSelectNeverPicksLockedArm(t *testing.T) {
	topic := uuid.New()
	cands := []Candidate{
		{TopicID: topic, Level: cognitive.Remember, Successes: 0, Failures: 9, Unlocked: true, Eligible: true, Order: 0},
		// A locked arm with a far better record must never win.
		{TopicID: topic, Level: cognitive.Understand, Successes: 50, Failures: 0, Unlocked: false, Eligible: true, Order: 1},
		{TopicID: uuid.New(), Level: cognitive.Apply, Successes: 50, Failures: 0, Unlocked: true, Eligible: false, Order: 2},
	}
	sel := NewSeeded(1, DefaultRecencyPenalty())
	for i := 0; i < 10000; i++ {
		d, err := sel.Select(cands, t0)
		require.NoError(t, err)
		require.Equal(t, cognitive.Remember, d.Chosen.Level, "trial %d", i)
	}
}

func TestSelectLevelOneOnlyScenario(t *testing.T) {
	var cands []Candidate
	for i := 0; i < 4; i++ {
		id := uuid.New()
		cands = append(cands, Candidate{TopicID: id, Level: cognitive.Remember, Unlocked: true, Eligible: true, Order: i * 2})
		cands = append(cands, Candidate{TopicID: id, Level: cognitive.Understand, Unlocked: false, Eligible: true, Order: i*2 + 1})
	}
	sel := NewSeeded(99, DefaultRecencyPenalty())
	seen := map[uuid.UUID]bool{}
	for i := 0; i < 2000; i++ {
		d, err := sel.Select(cands, t0)
		require.NoError(t, err)
		require.Equal(t, cognitive.Remember, d.Chosen.Level)
		seen[d.Chosen.TopicID] = true
	}
	assert.Len(t, seen, 4, "uniform priors should explore every topic")
}

func TestSelectEmpty(t *testing.T) {
	sel := NewSeeded(3, DefaultRecencyPenalty())
	_, err := sel.Select(nil, t0)
	assert.ErrorIs(t, err, ErrNoArmAvailable)

	_, err = sel.Select([]Candidate{{Level: cognitive.Apply, Unlocked: false, Eligible: true}}, t0)
	assert.ErrorIs(t, err, ErrNoArmAvailable)
}

func TestSelectIsDeterministicForSeed(t *testing.T) {
	cands := make([]Candidate, 0, 6)
	for i := 0; i < 6; i++ {
		cands = append(cands, Candidate{TopicID: uuid.New(), Level: cognitive.Remember, Successes: i, Failures: 6 - i, Unlocked: true, Eligible: true, Order: i})
	}
	a := NewSeeded(2024, DefaultRecencyPenalty())
	b := NewSeeded(2024, DefaultRecencyPenalty())
	for i := 0; i < 50; i++ {
		da, err := a.Select(cands, t0)
		require.NoError(t, err)
		db, err := b.Select(cands, t0)
		require.NoError(t, err)
		require.Equal(t, da.Chosen.TopicID, db.Chosen.TopicID)
		require.Equal(t, da.WinningSample, db.WinningSample)
	}
}

func TestSelectRecordsEverySample(t *testing.T) {
	cands := []Candidate{
		{TopicID: uuid.New(), Level: cognitive.Remember, Unlocked: true, Eligible: true, Priority: keystone.Priority{Boost: 0.3, Reason: keystone.ReasonKeystone}},
		{TopicID: uuid.New(), Level: cognitive.Remember, Unlocked: true, Eligible: true},
	}
	d, err := NewSeeded(5, DefaultRecencyPenalty()).Select(cands, t0)
	require.NoError(t, err)
	require.Len(t, d.Samples, 2)
	for _, s := range d.Samples {
		assert.InDelta(t, s.Raw+s.Boost-s.Penalty, s.Adjusted, 1e-12)
		assert.LessOrEqual(t, s.Adjusted, d.WinningSample)
	}
	assert.NotEmpty(t, d.Reason)
}

func TestKeystoneBoostShiftsSelection(t *testing.T) {
	boosted := Candidate{TopicID: uuid.New(), Level: cognitive.Remember, Unlocked: true, Eligible: true, Order: 0,
		Priority: keystone.Priority{Boost: 0.3, Reason: keystone.ReasonKeystone}}
	plain := Candidate{TopicID: uuid.New(), Level: cognitive.Remember, Unlocked: true, Eligible: true, Order: 1}
	sel := NewSeeded(11, DefaultRecencyPenalty())
	wins := 0
	const n = 5000
	for i := 0; i < n; i++ {
		d, err := sel.Select([]Candidate{boosted, plain}, t0)
		require.NoError(t, err)
		if d.Chosen.TopicID == boosted.TopicID {
			wins++
		}
	}
	assert.Greater(t, wins, n*6/10)
}

func TestTieBreaking(t *testing.T) {
	low := Candidate{Mastery: 10, Order: 5}
	high := Candidate{Mastery: 40, Order: 0}
	assert.True(t, beats(0.5, low, 0.5, high), "lower mastery wins a tie")
	assert.False(t, beats(0.5, high, 0.5, low))

	older := Candidate{Mastery: 10, Order: 1}
	newer := Candidate{Mastery: 10, Order: 2}
	assert.True(t, beats(0.5, older, 0.5, newer), "creation order breaks remaining ties")
	assert.True(t, beats(0.6, newer, 0.5, older))
}

func TestBetaMean(t *testing.T) {
	rng := rand.New(rand.NewPCG(8, 8))
	cases := [][2]float64{{1, 1}, {3, 1}, {2, 8}, {21, 5}}
	for _, c := range cases {
		sum := 0.0
		const n = 20000
		for i := 0; i < n; i++ {
			v := Beta(rng, c[0], c[1])
			require.GreaterOrEqual(t, v, 0.0)
			require.LessOrEqual(t, v, 1.0)
			sum += v
		}
		assert.InDelta(t, c[0]/(c[0]+c[1]), sum/n, 0.01, "Beta(%v,%v)", c[0], c[1])
	}
}

func TestGammaSmallShape(t *testing.T) {
	rng := rand.New(rand.NewPCG(4, 2))
	sum := 0.0
	const n = 20000
	for i := 0; i < n; i++ {
		sum += Gamma(rng, 0.5)
	}
	assert.InDelta(t, 0.5, sum/n, 0.03)
	assert.Equal(t, 0.0, Gamma(rng, 0))
}

func TestRecencyPenalty(t *testing.T) {
	p := DefaultRecencyPenalty()
	assert.Equal(t, 0.0, p.At(nil, t0), "never practiced")

	just := t0
	assert.InDelta(t, 0.2, p.At(&just, t0), 1e-12)

	prev := p.At(&just, t0)
	for m := 1; m <= 120; m++ {
		cur := p.At(&just, t0.Add(time.Duration(m)*time.Minute))
		require.Less(t, cur, prev, "penalty must decay, minute %d", m)
		prev = cur
	}
	half := p.At(&just, t0.Add(10*time.Minute))
	assert.InDelta(t, 0.1, half, 1e-9)

	future := t0.Add(time.Hour)
	assert.InDelta(t, 0.2, p.At(&future, t0), 1e-12, "clock skew clamps to zero elapsed")

	assert.Equal(t, 0.0, RecencyPenalty{}.At(&just, t0))
}
