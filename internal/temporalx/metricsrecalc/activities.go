package metricsrecalc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"github.com/yungbote/neurobridge-tutor/internal/platform/logger"
	"github.com/yungbote/neurobridge-tutor/internal/services"
)

const ErrTypeInvalidInput = "InvalidInput"

type Activities struct {
	Log     *logger.Logger
	Metrics services.MetricsService

	// HeartbeatEvery defaults to 10s.
	HeartbeatEvery time.Duration
}

func (a *Activities) Recalculate(ctx context.Context, in Input) (*Result, error) {
	if a == nil || a.Metrics == nil {
		return nil, fmt.Errorf("metricsrecalc: activity not configured")
	}
	var learnerID *uuid.UUID
	if raw := strings.TrimSpace(in.LearnerID); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil || id == uuid.Nil {
			return nil, temporal.NewNonRetryableApplicationError("invalid learner_id", ErrTypeInvalidInput, err)
		}
		learnerID = &id
	}

	stop := a.startHeartbeat(ctx)
	defer stop()

	res, err := a.Metrics.Recalculate(ctx, learnerID)
	if err != nil {
		if errors.Is(err, services.ErrInvalidInput) {
			return nil, temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeInvalidInput, err)
		}
		if a.Log != nil {
			a.Log.Warn("metrics recalculation failed", "learner_id", in.LearnerID, "attempt", activity.GetInfo(ctx).Attempt, "error", err)
		}
		return nil, err
	}
	return res, nil
}

func (a *Activities) startHeartbeat(ctx context.Context) func() {
	every := a.HeartbeatEvery
	if every <= 0 {
		every = 10 * time.Second
	}
	done := make(chan struct{})
	go func() {
		t := time.NewTicker(every)
		defer t.Stop()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-t.C:
				activity.RecordHeartbeat(ctx)
			}
		}
	}()
	return func() { close(done) }
}
