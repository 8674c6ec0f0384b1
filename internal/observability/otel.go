package observability

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.27.0"

	"github.com/yungbote/neurobridge-tutor/internal/platform/envutil"
	"github.com/yungbote/neurobridge-tutor/internal/platform/logger"
)

const serviceNamespace = "neurobridge"

// OtelConfig describes the process on the trace resource. Attributes carries
// engine settings worth seeing next to every span, such as the selection
// policy and which scheduler drives metric rebuilds.
type OtelConfig struct {
	ServiceName string
	Environment string
	Version     string
	Attributes  []attribute.KeyValue
}

// TraceSettings is the exporter and sampler setup read from the standard
// OTEL_* variables.
type TraceSettings struct {
	Enabled  bool
	Endpoint string
	Insecure bool
	Headers  map[string]string
	Sampler  string
	Ratio    float64
}

func LoadTraceSettings() TraceSettings {
	return TraceSettings{
		Enabled:  envutil.Bool("OTEL_ENABLED", false),
		Endpoint: envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		Insecure: envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", false),
		Headers:  parseHeaders(envutil.String("OTEL_EXPORTER_OTLP_HEADERS", "")),
		Sampler:  strings.ToLower(envutil.String("OTEL_TRACES_SAMPLER", "parentbased_traceidratio")),
		Ratio:    clampRatio(envutil.Float("OTEL_TRACES_SAMPLER_ARG", 0.1)),
	}
}

// NewSampler maps OTEL_TRACES_SAMPLER names onto sdk samplers. Unknown names
// fall back to parent-based ratio sampling.
func (s TraceSettings) NewSampler() sdktrace.Sampler {
	switch s.Sampler {
	case "always_on":
		return sdktrace.AlwaysSample()
	case "always_off":
		return sdktrace.NeverSample()
	case "traceidratio":
		return sdktrace.TraceIDRatioBased(s.Ratio)
	case "parentbased_always_on":
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	case "parentbased_always_off":
		return sdktrace.ParentBased(sdktrace.NeverSample())
	default:
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(s.Ratio))
	}
}

var (
	otelOnce     sync.Once
	otelShutdown func(context.Context) error
)

// InitOTel installs the global tracer provider once. It returns nil when
// tracing is disabled; spans then go to the no-op provider.
func InitOTel(ctx context.Context, log *logger.Logger, cfg OtelConfig) func(context.Context) error {
	otelOnce.Do(func() {
		settings := LoadTraceSettings()
		if !settings.Enabled {
			return
		}
		res, err := newResource(ctx, cfg)
		if err != nil {
			log.Warn("otel resource incomplete", "error", err)
		}
		opts := []sdktrace.TracerProviderOption{
			sdktrace.WithSampler(settings.NewSampler()),
			sdktrace.WithResource(res),
		}
		exporter, err := newExporter(ctx, settings)
		if err != nil {
			log.Warn("otel exporter unavailable, spans are sampled but dropped", "error", err)
		} else {
			opts = append(opts, sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(5*time.Second)))
		}
		tp := sdktrace.NewTracerProvider(opts...)
		otel.SetTracerProvider(tp)
		otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		))
		otelShutdown = tp.Shutdown
		log.Info("otel tracing initialized",
			"service", resourceServiceName(cfg),
			"sampler", settings.NewSampler().Description(),
			"endpoint", settings.Endpoint,
		)
	})
	return otelShutdown
}

func resourceServiceName(cfg OtelConfig) string {
	if name := strings.TrimSpace(cfg.ServiceName); name != "" {
		return name
	}
	return "neurobridge-tutor"
}

func resourceAttributes(cfg OtelConfig) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		semconv.ServiceNameKey.String(resourceServiceName(cfg)),
		semconv.ServiceNamespaceKey.String(serviceNamespace),
	}
	if env := strings.TrimSpace(cfg.Environment); env != "" {
		attrs = append(attrs, semconv.DeploymentEnvironmentNameKey.String(env))
	}
	if v := strings.TrimSpace(cfg.Version); v != "" {
		attrs = append(attrs, semconv.ServiceVersionKey.String(v))
	}
	return append(attrs, cfg.Attributes...)
}

func newResource(ctx context.Context, cfg OtelConfig) (*resource.Resource, error) {
	return resource.New(ctx,
		resource.WithAttributes(resourceAttributes(cfg)...),
		resource.WithHost(),
		resource.WithProcessRuntimeVersion(),
	)
}

// newExporter prefers OTLP over HTTP and writes spans to stdout when no
// endpoint is set.
func newExporter(ctx context.Context, s TraceSettings) (sdktrace.SpanExporter, error) {
	if s.Endpoint == "" {
		return stdouttrace.New()
	}
	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(s.Endpoint)}
	if s.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	if len(s.Headers) > 0 {
		opts = append(opts, otlptracehttp.WithHeaders(s.Headers))
	}
	return otlptracehttp.New(ctx, opts...)
}

// parseHeaders reads "k1=v1,k2=v2". Malformed pairs are dropped.
func parseHeaders(raw string) map[string]string {
	headers := map[string]string{}
	for _, part := range strings.Split(raw, ",") {
		key, val, ok := strings.Cut(part, "=")
		key, val = strings.TrimSpace(key), strings.TrimSpace(val)
		if !ok || key == "" || val == "" {
			continue
		}
		headers[key] = val
	}
	if len(headers) == 0 {
		return nil
	}
	return headers
}

func clampRatio(f float64) float64 {
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	default:
		return f
	}
}
