package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/yungbote/neurobridge-tutor/internal/platform/envutil"
	"github.com/yungbote/neurobridge-tutor/internal/platform/logger"
	"github.com/yungbote/neurobridge-tutor/internal/services"
)

// Scheduler runs metrics recalculation in-process on a fixed interval. It is
// the fallback when no Temporal address is configured.
type Scheduler struct {
	log      *logger.Logger
	metrics  services.MetricsService
	interval time.Duration

	mu      sync.Mutex
	running bool
}

func New(log *logger.Logger, metrics services.MetricsService, interval time.Duration) *Scheduler {
	return &Scheduler{
		log:      log.With("component", "MetricsScheduler"),
		metrics:  metrics,
		interval: interval,
	}
}

// FromEnv reads METRICS_RECALC_INTERVAL. Zero or negative disables the loop.
func FromEnv(log *logger.Logger, metrics services.MetricsService) *Scheduler {
	return New(log, metrics, envutil.Duration("METRICS_RECALC_INTERVAL", time.Hour))
}

func (s *Scheduler) Enabled() bool {
	return s != nil && s.metrics != nil && s.interval > 0
}

func (s *Scheduler) Start(ctx context.Context) {
	if !s.Enabled() {
		s.log.Info("Metrics scheduler disabled")
		return
	}
	s.log.Info("Metrics scheduler started", "interval", s.interval.String())
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := s.RunOnce(ctx); err != nil {
					s.log.Warn("Scheduled metrics recalculation failed", "error", err)
				}
			}
		}
	}()
}

// RunOnce recalculates every learner. Overlapping runs are skipped.
func (s *Scheduler) RunOnce(ctx context.Context) (res *services.RecalcResult, err error) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.log.Debug("Metrics recalculation already running; tick skipped")
		return nil, nil
	}
	s.running = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("Metrics recalculation panic", "panic", r)
			err = fmt.Errorf("panic: unexpected error")
		}
	}()

	res, err = s.metrics.Recalculate(ctx, nil)
	if err != nil {
		return nil, err
	}
	s.log.Info("Scheduled metrics recalculation done",
		"updated", res.UpdatedCount,
		"learners", res.LearnersProcessed,
		"skipped", res.LearnersSkipped,
	)
	return res, nil
}
