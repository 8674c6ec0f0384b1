package temporalworker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.temporal.io/api/serviceerror"
	temporalsdkclient "go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	"github.com/yungbote/neurobridge-tutor/internal/platform/envutil"
	"github.com/yungbote/neurobridge-tutor/internal/platform/logger"
	"github.com/yungbote/neurobridge-tutor/internal/services"
	"github.com/yungbote/neurobridge-tutor/internal/temporalx"
	"github.com/yungbote/neurobridge-tutor/internal/temporalx/metricsrecalc"
)

type Runner struct {
	log     *logger.Logger
	tc      temporalsdkclient.Client
	cfg     temporalx.Config
	metrics services.MetricsService
}

func NewRunner(log *logger.Logger, tc temporalsdkclient.Client, metrics services.MetricsService) (*Runner, error) {
	if tc == nil {
		return nil, fmt.Errorf("temporal client is not configured")
	}
	if metrics == nil {
		return nil, fmt.Errorf("temporal worker missing metrics service")
	}
	return &Runner{
		log:     log.With("component", "TemporalWorker"),
		tc:      tc,
		cfg:     temporalx.LoadConfig(),
		metrics: metrics,
	}, nil
}

// Start polls the task queue until ctx is done. A failed start is retried
// with backoff for up to TEMPORAL_WORKER_START_MAX_WAIT.
func (r *Runner) Start(ctx context.Context) error {
	cfg := r.cfg
	r.log.Info("Starting Temporal worker", "address", cfg.Address, "namespace", cfg.Namespace, "task_queue", cfg.TaskQueue)

	maxWait := envutil.Duration("TEMPORAL_WORKER_START_MAX_WAIT", time.Minute)
	deadline := time.Now().Add(maxWait)

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		w := r.newWorker()
		startErr := w.Start()
		if startErr == nil {
			go func() {
				<-ctx.Done()
				w.Stop()
			}()
			r.log.Info("Temporal worker started", "namespace", cfg.Namespace, "task_queue", cfg.TaskQueue, "attempts", attempt)
			return nil
		}
		w.Stop()

		var nfe *serviceerror.NamespaceNotFound
		if errors.As(startErr, &nfe) && cfg.AutoRegisterNamespace {
			if err := temporalx.EnsureNamespace(ctx, cfg, r.log); err != nil {
				r.log.Warn("Temporal namespace ensure failed", "namespace", cfg.Namespace, "error", err)
			}
		}
		if maxWait <= 0 || time.Now().After(deadline) {
			if errors.As(startErr, &nfe) {
				return fmt.Errorf("temporal namespace not found (namespace=%s): %w", cfg.Namespace, startErr)
			}
			return startErr
		}
		r.log.Warn("Temporal worker failed to start; retrying", "task_queue", cfg.TaskQueue, "attempt", attempt, "error", startErr)
		time.Sleep(temporalx.Backoff(cfg.DialBackoff, cfg.DialBackoffMax, attempt))
	}
}

func (r *Runner) newWorker() worker.Worker {
	concurrency := r.cfg.WorkerConcurrency
	if concurrency < 1 {
		concurrency = 1
	}
	w := worker.New(r.tc, r.cfg.TaskQueue, worker.Options{
		MaxConcurrentActivityExecutionSize:     concurrency,
		MaxConcurrentWorkflowTaskExecutionSize: concurrency,
	})
	metricsrecalc.Register(w, &metricsrecalc.Activities{Log: r.log, Metrics: r.metrics})
	return w
}

// EnsureMetricsSchedule starts the cron recalculation workflow under a fixed
// ID. An already running schedule is left alone.
func (r *Runner) EnsureMetricsSchedule(ctx context.Context) error {
	cfg := r.cfg
	if cfg.MetricsCron == "" {
		r.log.Info("Metrics cron disabled")
		return nil
	}
	run, err := r.tc.ExecuteWorkflow(ctx, temporalsdkclient.StartWorkflowOptions{
		ID:                                       cfg.MetricsWorkflowID,
		TaskQueue:                                cfg.TaskQueue,
		CronSchedule:                             cfg.MetricsCron,
		WorkflowExecutionErrorWhenAlreadyStarted: true,
	}, metricsrecalc.WorkflowName, metricsrecalc.Input{})
	var started *serviceerror.WorkflowExecutionAlreadyStarted
	if errors.As(err, &started) {
		r.log.Debug("Metrics cron already scheduled", "workflow_id", cfg.MetricsWorkflowID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("schedule metrics recalculation: %w", err)
	}
	r.log.Info("Metrics cron scheduled", "workflow_id", run.GetID(), "run_id", run.GetRunID(), "cron", cfg.MetricsCron)
	return nil
}

// TriggerRecalculation starts a one-off run for a learner, or for everyone
// when learnerID is empty.
func TriggerRecalculation(ctx context.Context, tc temporalsdkclient.Client, cfg temporalx.Config, learnerID string) (string, error) {
	id := "tutor-metrics-recalc-manual-" + time.Now().UTC().Format("20060102T150405.000")
	if learnerID != "" {
		id += "-" + learnerID
	}
	run, err := tc.ExecuteWorkflow(ctx, temporalsdkclient.StartWorkflowOptions{
		ID:        id,
		TaskQueue: cfg.TaskQueue,
	}, metricsrecalc.WorkflowName, metricsrecalc.Input{LearnerID: learnerID})
	if err != nil {
		return "", fmt.Errorf("start metrics recalculation: %w", err)
	}
	return run.GetID(), nil
}
