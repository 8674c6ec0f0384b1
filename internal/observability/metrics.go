package observability

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/yungbote/neurobridge-tutor/internal/platform/logger"
)

var (
	apiRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tutor_api_requests_total",
		Help: "HTTP requests by route, method and status",
	}, []string{"route", "method", "status"})

	apiLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tutor_api_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
	}, []string{"route", "method"})

	selections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tutor_selections_total",
		Help: "Selection decisions by served slot and outcome",
	}, []string{"slot", "outcome"})

	answers = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tutor_answers_total",
		Help: "Submitted answers by correctness and cognitive level",
	}, []string{"correct", "level"})

	unlocks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tutor_level_unlocks_total",
		Help: "Levels unlocked by answers",
	}, []string{"level"})

	staleWrites = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tutor_stale_writes_total",
		Help: "Answer submissions rejected by an optimistic version check",
	})

	recalcDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tutor_metrics_recalc_duration_seconds",
		Help:    "Metrics recalculation run time",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 14),
	}, []string{"scope", "result"})

	recalcUpdated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tutor_metrics_recalc_updated_total",
		Help: "Aggregate rows written by metrics recalculation",
	})

	pgStats = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "tutor_db_connections",
		Help: "Database pool connections by state",
	}, []string{"state"})
)

func ObserveHTTP(route, method string, status int, dur time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	apiRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	apiLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

func ObserveSelection(slot, outcome string) {
	selections.WithLabelValues(slot, outcome).Inc()
}

func ObserveAnswer(correct bool, level int) {
	answers.WithLabelValues(strconv.FormatBool(correct), strconv.Itoa(level)).Inc()
}

func ObserveUnlock(level int) {
	unlocks.WithLabelValues(strconv.Itoa(level)).Inc()
}

func IncStaleWrite() { staleWrites.Inc() }

func ObserveRecalc(scope string, dur time.Duration, updated int, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	recalcDuration.WithLabelValues(scope, result).Observe(dur.Seconds())
	if updated > 0 {
		recalcUpdated.Add(float64(updated))
	}
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler { return promhttp.Handler() }

// StartDBSampler publishes pool stats every interval until ctx is done.
func StartDBSampler(ctx context.Context, log *logger.Logger, db *gorm.DB, interval time.Duration) {
	if db == nil {
		return
	}
	if interval <= 0 {
		interval = 15 * time.Second
	}
	sqlDB, err := db.DB()
	if err != nil {
		if log != nil {
			log.Warn("db sampler disabled", "error", err)
		}
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			st := sqlDB.Stats()
			pgStats.WithLabelValues("open").Set(float64(st.OpenConnections))
			pgStats.WithLabelValues("in_use").Set(float64(st.InUse))
			pgStats.WithLabelValues("idle").Set(float64(st.Idle))
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}
