package temporalx

import (
	"strings"
	"time"

	"github.com/yungbote/neurobridge-tutor/internal/platform/envutil"
)

type Config struct {
	Address   string
	Namespace string
	TaskQueue string

	ClientCertPath string
	ClientKeyPath  string
	ClientCAPath   string

	AutoRegisterNamespace bool
	NamespaceRetention    time.Duration

	DialTimeout    time.Duration
	DialMaxWait    time.Duration
	DialBackoff    time.Duration
	DialBackoffMax time.Duration

	WorkerConcurrency int

	// MetricsCron schedules the recalculation workflow. "off" disables it.
	MetricsCron       string
	MetricsWorkflowID string
}

func LoadConfig() Config {
	return Config{
		Address:   envutil.String("TEMPORAL_ADDRESS", ""),
		Namespace: envutil.String("TEMPORAL_NAMESPACE", "neurobridge-tutor"),
		TaskQueue: envutil.String("TEMPORAL_TASK_QUEUE", "neurobridge-tutor"),

		ClientCertPath: envutil.String("TEMPORAL_CLIENT_CERT_PATH", ""),
		ClientKeyPath:  envutil.String("TEMPORAL_CLIENT_KEY_PATH", ""),
		ClientCAPath:   envutil.String("TEMPORAL_CLIENT_CA_PATH", ""),

		AutoRegisterNamespace: envutil.Bool("TEMPORAL_AUTO_REGISTER_NAMESPACE", false),
		NamespaceRetention:    envutil.Duration("TEMPORAL_NAMESPACE_RETENTION", 7*24*time.Hour),

		DialTimeout:    envutil.Duration("TEMPORAL_DIAL_TIMEOUT", 5*time.Second),
		DialMaxWait:    envutil.Duration("TEMPORAL_DIAL_MAX_WAIT", time.Minute),
		DialBackoff:    envutil.Duration("TEMPORAL_DIAL_BACKOFF", 250*time.Millisecond),
		DialBackoffMax: envutil.Duration("TEMPORAL_DIAL_BACKOFF_MAX", 5*time.Second),

		WorkerConcurrency: envutil.Int("TEMPORAL_WORKER_CONCURRENCY", 4),

		MetricsCron:       metricsCron(),
		MetricsWorkflowID: envutil.String("TEMPORAL_METRICS_WORKFLOW_ID", "tutor-metrics-recalc"),
	}
}

func metricsCron() string {
	v := envutil.String("TEMPORAL_METRICS_CRON", "0 * * * *")
	if strings.EqualFold(v, "off") {
		return ""
	}
	return v
}

func (c Config) tlsEnabled() bool {
	return c.ClientCertPath != "" || c.ClientKeyPath != "" || c.ClientCAPath != ""
}

// Backoff doubles base per attempt, capped at max.
func Backoff(base, max time.Duration, attempt int) time.Duration {
	if base <= 0 {
		base = 250 * time.Millisecond
	}
	sleep := base
	for i := 1; i < attempt; i++ {
		sleep *= 2
		if max > 0 && sleep >= max {
			return max
		}
	}
	if max > 0 && sleep > max {
		return max
	}
	return sleep
}
