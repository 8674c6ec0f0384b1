package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/neurobridge-tutor/internal/platform/logger"
	"github.com/yungbote/neurobridge-tutor/internal/services"
)

type countingMetrics struct {
	calls   atomic.Int32
	release chan struct{}
	panics  bool
}

func (c *countingMetrics) Recalculate(ctx context.Context, learnerID *uuid.UUID) (*services.RecalcResult, error) {
	c.calls.Add(1)
	if c.panics {
		panic("boom")
	}
	if c.release != nil {
		<-c.release
	}
	return &services.RecalcResult{LearnersProcessed: 2, UpdatedCount: 5}, nil
}

func TestRunOnce(t *testing.T) {
	m := &countingMetrics{}
	s := New(logger.Nop(), m, time.Hour)
	res, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, res.UpdatedCount)
	assert.Equal(t, int32(1), m.calls.Load())
}

func TestRunOnceSkipsOverlap(t *testing.T) {
	m := &countingMetrics{release: make(chan struct{})}
	s := New(logger.Nop(), m, time.Hour)

	done := make(chan struct{})
	go func() {
		_, _ = s.RunOnce(context.Background())
		close(done)
	}()
	require.Eventually(t, func() bool { return m.calls.Load() == 1 }, time.Second, time.Millisecond)

	res, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Nil(t, res)

	close(m.release)
	<-done
	assert.Equal(t, int32(1), m.calls.Load())
}

func TestRunOnceRecoversPanic(t *testing.T) {
	s := New(logger.Nop(), &countingMetrics{panics: true}, time.Hour)
	_, err := s.RunOnce(context.Background())
	assert.Error(t, err)
}

func TestStartTicks(t *testing.T) {
	m := &countingMetrics{}
	s := New(logger.Nop(), m, 5*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)
	require.Eventually(t, func() bool { return m.calls.Load() >= 2 }, 2*time.Second, time.Millisecond)
}

func TestDisabled(t *testing.T) {
	assert.False(t, New(logger.Nop(), &countingMetrics{}, 0).Enabled())
	assert.False(t, New(logger.Nop(), nil, time.Minute).Enabled())
	t.Setenv("METRICS_RECALC_INTERVAL", "30m")
	assert.True(t, FromEnv(logger.Nop(), &countingMetrics{}).Enabled())
}
